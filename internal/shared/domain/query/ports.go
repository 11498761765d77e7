package query

import (
	"context"
	"net/url"
)

// Runner es el puerto que usan los servicios de aplicación para ejecutar
// un Builder; lo implementa el ejecutor SQL.
type Runner interface {
	Respond(ctx context.Context, b Builder, base *url.URL) (QueryResponse[Record], error)
	ExecuteFirst(ctx context.Context, b Builder) (Record, bool, error)
	ExecuteCount(ctx context.Context, b Builder) (int64, error)
}
