package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/sqlexec"
)

// Collector registra métricas de las consultas ejecutadas:
//   - hexaquery_queries_total{table,operation,status}
//   - hexaquery_query_duration_seconds{table,operation}
//   - hexaquery_query_rows{table}
//   - hexaquery_cache_requests_total{table,status}
//   - hexaquery_query_complexity{table}
type Collector struct {
	registry *prometheus.Registry

	queriesTotal  *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rows          *prometheus.HistogramVec
	cacheRequests *prometheus.CounterVec
	complexity    *prometheus.HistogramVec
}

var _ sqlexec.Observer = (*Collector)(nil)

// NewCollector crea y registra las métricas. Con registry nil se usa uno
// propio, nunca el global.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "hexaquery"
	}

	c := &Collector{
		registry: registry,
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of executed queries",
			},
			[]string{"table", "operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query execution time including relation loading",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"table", "operation"},
		),
		rows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_rows",
				Help:      "Rows returned per query",
				Buckets:   []float64{0, 1, 5, 15, 50, 100, 500},
			},
			[]string{"table"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_requests_total",
				Help:      "Result cache lookups by status",
			},
			[]string{"table", "status"},
		),
		complexity: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_complexity",
				Help:      "Complexity score of executed queries",
				Buckets:   []float64{5, 10, 20, 40, 60, 80, 100},
			},
			[]string{"table"},
		),
	}

	registry.MustRegister(c.queriesTotal, c.duration, c.rows, c.cacheRequests, c.complexity)
	return c
}

// QueryExecuted implementa sqlexec.Observer.
func (c *Collector) QueryExecuted(_ context.Context, e sqlexec.Execution) {
	status := "success"
	if e.Err != nil {
		status = "error"
	}
	c.queriesTotal.WithLabelValues(e.Table, e.Operation, status).Inc()
	c.duration.WithLabelValues(e.Table, e.Operation).Observe(e.Duration.Seconds())
	c.complexity.WithLabelValues(e.Table).Observe(float64(e.Complexity))
	if e.Err == nil {
		c.rows.WithLabelValues(e.Table).Observe(float64(e.Rows))
	}
	if e.Operation == sqlexec.OpPaginate && e.CacheStatus != "" {
		c.cacheRequests.WithLabelValues(e.Table, e.CacheStatus).Inc()
	}
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler expone el registro en formato Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
