package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	"github.com/davicafu/hexaquery/internal/user/domain"
	"github.com/davicafu/hexaquery/pkg/utils"
)

// UserQueries son los casos de uso que consume el handler.
type UserQueries interface {
	ListUsers(ctx context.Context, params query.QueryParams, base *url.URL) (query.QueryResponse[query.Record], error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	CountUsers(ctx context.Context, params query.QueryParams) (int64, error)
}

// UserHandler encapsula los endpoints HTTP de lectura de usuarios.
type UserHandler struct {
	service UserQueries
}

func NewUserHandler(service UserQueries) *UserHandler {
	return &UserHandler{service: service}
}

// ---------------- Handlers ----------------

// ListUsers endpoint GET /users?filter[..]=..&sort=..&include=..&page=..
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := query.ParseParams(c.Request.URL.Query())

	resp, err := h.service.ListUsers(c.Request.Context(), params, utils.RequestURL(c))
	if err != nil {
		utils.SendQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CountUsers endpoint GET /users/count
func (h *UserHandler) CountUsers(c *gin.Context) {
	params := query.ParseParams(c.Request.URL.Query())

	total, err := h.service.CountUsers(c.Request.Context(), params)
	if err != nil {
		utils.SendQueryError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"total": total})
}

// GetUser endpoint GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid user id")
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			utils.SendNotFound(c, "user not found")
			return
		}
		utils.SendQueryError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}
