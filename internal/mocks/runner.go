package mocks

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

// MockRunner es un mock de query.Runner.
type MockRunner struct {
	mock.Mock
}

var _ query.Runner = (*MockRunner)(nil)

func (m *MockRunner) Respond(ctx context.Context, b query.Builder, base *url.URL) (query.QueryResponse[query.Record], error) {
	args := m.Called(ctx, b, base)
	resp, _ := args.Get(0).(query.QueryResponse[query.Record])
	return resp, args.Error(1)
}

func (m *MockRunner) ExecuteFirst(ctx context.Context, b query.Builder) (query.Record, bool, error) {
	args := m.Called(ctx, b)
	rec, _ := args.Get(0).(query.Record)
	return rec, args.Bool(1), args.Error(2)
}

func (m *MockRunner) ExecuteCount(ctx context.Context, b query.Builder) (int64, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(int64), args.Error(1)
}
