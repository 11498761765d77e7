package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/sqlexec"
)

func TestCollector_QueryExecuted_CountsByStatus(t *testing.T) {
	c := NewCollector("test", nil)
	ctx := context.Background()

	c.QueryExecuted(ctx, sqlexec.Execution{Table: "users", Operation: sqlexec.OpPaginate, Duration: 3 * time.Millisecond, Rows: 10, CacheStatus: query.CacheMiss})
	c.QueryExecuted(ctx, sqlexec.Execution{Table: "users", Operation: sqlexec.OpPaginate, CacheStatus: query.CacheHit})
	c.QueryExecuted(ctx, sqlexec.Execution{Table: "users", Operation: sqlexec.OpCount, Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.queriesTotal.WithLabelValues("users", sqlexec.OpPaginate, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queriesTotal.WithLabelValues("users", sqlexec.OpCount, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheRequests.WithLabelValues("users", query.CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheRequests.WithLabelValues("users", query.CacheMiss)))
}

func TestCollector_CountOperationsDoNotTouchCacheMetric(t *testing.T) {
	c := NewCollector("test", nil)
	c.QueryExecuted(context.Background(), sqlexec.Execution{Table: "tasks", Operation: sqlexec.OpCount, CacheStatus: query.CacheDisabled})

	assert.Equal(t, 0, testutil.CollectAndCount(c.cacheRequests))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("test", nil)
	c.QueryExecuted(context.Background(), sqlexec.Execution{Table: "tasks", Operation: sqlexec.OpAll, Rows: 3})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_queries_total")
	assert.Contains(t, rec.Body.String(), `table="tasks"`)
}
