package events

import (
	"time"

	"github.com/google/uuid"
)

// QueryTopic es el topic por defecto de la telemetría de consultas.
const QueryTopic = "query-events"

// QueryExecutedType identifica el evento en el sobre.
const QueryExecutedType = "query.executed"

// QueryExecuted es un contrato de integración: se publica uno por cada
// ejecución del motor de consultas. Nunca incluye valores de filtros.
type QueryExecuted struct {
	ID          uuid.UUID `json:"id"`
	Table       string    `json:"table"`
	Operation   string    `json:"operation"`
	Complexity  int       `json:"complexity_score"`
	DurationMs  float64   `json:"duration_ms"`
	Rows        int       `json:"rows"`
	CacheStatus string    `json:"cache_status"`
	Error       string    `json:"error,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PartitionKey agrupa los eventos por tabla.
func (e QueryExecuted) PartitionKey() string { return e.Table }
