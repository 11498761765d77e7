package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
	"github.com/davicafu/hexaquery/pkg/utils"
)

// TaskQueries son los casos de uso que consume el handler.
type TaskQueries interface {
	ListTasks(ctx context.Context, params query.QueryParams, base *url.URL) (query.QueryResponse[query.Record], error)
	ListPendingTasksForUser(ctx context.Context, userID uuid.UUID, params query.QueryParams, base *url.URL) (query.QueryResponse[query.Record], error)
	GetTask(ctx context.Context, id uuid.UUID, include string) (query.Record, error)
}

type TaskHandler struct {
	service TaskQueries
}

func NewTaskHandler(service TaskQueries) *TaskHandler {
	return &TaskHandler{service: service}
}

// ListTasks endpoint GET /tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := query.ParseParams(c.Request.URL.Query())

	resp, err := h.service.ListTasks(c.Request.Context(), params, utils.RequestURL(c))
	if err != nil {
		utils.SendQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPendingForUser endpoint GET /users/:id/tasks/pending
func (h *TaskHandler) ListPendingForUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid user id")
		return
	}
	params := query.ParseParams(c.Request.URL.Query())

	resp, err := h.service.ListPendingTasksForUser(c.Request.Context(), userID, params, utils.RequestURL(c))
	if err != nil {
		utils.SendQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTask endpoint GET /tasks/:id?include=assignee,createdBy
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid task id")
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), id, c.Query("include"))
	if err != nil {
		if errors.Is(err, taskDomain.ErrTaskNotFound) {
			utils.SendNotFound(c, "task not found")
			return
		}
		utils.SendQueryError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, task)
}
