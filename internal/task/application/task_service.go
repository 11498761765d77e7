package application

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
)

// TaskService expone los listados de tareas con sus relaciones.
type TaskService struct {
	runner query.Runner
	entity taskDomain.TaskQuery
	opts   []query.Option
	log    *zap.Logger
}

func NewTaskService(runner query.Runner, log *zap.Logger, opts ...query.Option) *TaskService {
	return &TaskService{
		runner: runner,
		entity: taskDomain.NewTaskQuery(),
		opts:   opts,
		log:    log,
	}
}

// ListTasks filtra, ordena, pagina e incluye relaciones según params.
func (s *TaskService) ListTasks(ctx context.Context, params query.QueryParams, base *url.URL) (query.QueryResponse[query.Record], error) {
	b, err := s.fromParams(params)
	if err != nil {
		return query.QueryResponse[query.Record]{}, err
	}
	return s.runner.Respond(ctx, b, base)
}

// ListPendingTasksForUser restringe el listado a las tareas pendientes
// asignadas a userID; el resto de parámetros se aplica igual.
func (s *TaskService) ListPendingTasksForUser(ctx context.Context, userID uuid.UUID, params query.QueryParams, base *url.URL) (query.QueryResponse[query.Record], error) {
	b, err := s.fromParams(params)
	if err != nil {
		return query.QueryResponse[query.Record]{}, err
	}
	b = b.WhereEq("assignee_id", userID.String()).
		WhereEq("status", string(taskDomain.TaskPending))
	return s.runner.Respond(ctx, b, base)
}

// GetTask devuelve una tarea con las relaciones pedidas en include
// ("assignee,createdBy.organizations").
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID, include string) (query.Record, error) {
	b := query.New(s.entity, s.opts...).WhereEq("id", id.String())
	for _, inc := range query.ParseIncludes(include) {
		b = b.With(inc.Relation)
	}

	rec, found, err := s.runner.ExecuteFirst(ctx, b)
	if err != nil {
		s.log.Error("Failed to get task", zap.String("id", id.String()), zap.Error(err))
		return nil, err
	}
	if !found {
		return nil, taskDomain.ErrTaskNotFound
	}
	return rec, nil
}

func (s *TaskService) fromParams(params query.QueryParams) (query.Builder, error) {
	b, err := query.FromParams(s.entity, params, s.opts...)
	if err != nil {
		s.log.Debug("Rejected task query parameters", zap.Error(err))
		return b, err
	}
	if w := b.Warnings(); len(w) > 0 {
		s.log.Debug("Task query parameters ignored", zap.Strings("warnings", w))
	}
	return b, nil
}
