package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexaquery/internal/shared/events"
	"github.com/davicafu/hexaquery/internal/shared/infra/utils"
)

// SlowQueryHandler consume QueryExecuted y avisa de las consultas lentas o
// fallidas.
type SlowQueryHandler struct {
	threshold time.Duration
	log       *zap.Logger
}

var _ MessageHandler = (*SlowQueryHandler)(nil)

func NewSlowQueryHandler(threshold time.Duration, log *zap.Logger) *SlowQueryHandler {
	return &SlowQueryHandler{threshold: threshold, log: log}
}

func (h *SlowQueryHandler) HandleMessage(ctx context.Context, key string, payload []byte) {
	var env sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &env); err != nil {
		h.log.Warn("Discarding malformed query event", zap.String("key", key), zap.Error(err))
		return
	}

	switch env.Type {
	case sharedEvents.QueryExecutedType:
		utils.UnmarshalAndHandle(h.log, env.Type, env.Data, h.onQueryExecuted)
	default:
		h.log.Debug("Ignoring event", zap.String("type", env.Type))
	}
}

func (h *SlowQueryHandler) onQueryExecuted(evt sharedEvents.QueryExecuted) {
	fields := []zap.Field{
		zap.String("table", evt.Table),
		zap.String("operation", evt.Operation),
		zap.Float64("duration_ms", evt.DurationMs),
		zap.Int("complexity_score", evt.Complexity),
		zap.Int("rows", evt.Rows),
	}
	switch {
	case evt.Error != "":
		h.log.Error("Query failed", append(fields, zap.String("error", evt.Error))...)
	case time.Duration(evt.DurationMs*float64(time.Millisecond)) >= h.threshold:
		h.log.Warn("Slow query", fields...)
	}
}
