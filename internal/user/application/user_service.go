package application

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	"github.com/davicafu/hexaquery/internal/user/domain"
)

// UserService expone los casos de uso de lectura de usuarios sobre el motor
// de consultas.
type UserService struct {
	runner query.Runner
	entity domain.UserQuery
	opts   []query.Option
	log    *zap.Logger
}

// NewUserService recibe las opciones del Builder (límite de per_page, modo
// estricto) que se aplican a cada petición.
func NewUserService(runner query.Runner, log *zap.Logger, opts ...query.Option) *UserService {
	return &UserService{
		runner: runner,
		entity: domain.NewUserQuery(),
		opts:   opts,
		log:    log,
	}
}

// ListUsers filtra, ordena y pagina usuarios según los parámetros de la
// petición. Solo devuelve error por parámetros en modo estricto o por fallos
// de la base.
func (s *UserService) ListUsers(ctx context.Context, params query.QueryParams, base *url.URL) (query.QueryResponse[query.Record], error) {
	b, err := query.FromParams(s.entity, params, s.opts...)
	if err != nil {
		s.log.Debug("Rejected user query parameters", zap.Error(err))
		return query.QueryResponse[query.Record]{}, err
	}
	if w := b.Warnings(); len(w) > 0 {
		s.log.Debug("User query parameters ignored", zap.Strings("warnings", w))
	}
	return s.runner.Respond(ctx, b, base)
}

// GetUser busca un usuario activo por ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	b := query.New(s.entity, s.opts...).WhereEq("id", id.String())

	rec, found, err := s.runner.ExecuteFirst(ctx, b)
	if err != nil {
		s.log.Error("Failed to get user", zap.String("id", id.String()), zap.Error(err))
		return nil, err
	}
	if !found {
		return nil, domain.ErrUserNotFound
	}
	return domain.UserFromRecord(rec)
}

// CountUsers cuenta los usuarios que cumplen los filtros de params.
func (s *UserService) CountUsers(ctx context.Context, params query.QueryParams) (int64, error) {
	b, err := query.FromParams(s.entity, params, s.opts...)
	if err != nil {
		return 0, err
	}
	return s.runner.ExecuteCount(ctx, b)
}
