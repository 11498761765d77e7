package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexaquery/internal/shared/events"
	sharedBus "github.com/davicafu/hexaquery/internal/shared/infra/platform/bus"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/sqlexec"
)

// QueryEventObserver publica un QueryExecuted por ejecución. La publicación
// va en background con su propio timeout y un fallo solo se registra.
type QueryEventObserver struct {
	bus     sharedBus.EventBus
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

var _ sqlexec.Observer = (*QueryEventObserver)(nil)

func NewQueryEventObserver(bus sharedBus.EventBus, log *zap.Logger, timeout time.Duration) *QueryEventObserver {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &QueryEventObserver{bus: bus, log: log, timeout: timeout, now: time.Now}
}

func (o *QueryEventObserver) QueryExecuted(_ context.Context, e sqlexec.Execution) {
	evt := sharedEvents.QueryExecuted{
		ID:          uuid.New(),
		Table:       e.Table,
		Operation:   e.Operation,
		Complexity:  e.Complexity,
		DurationMs:  float64(e.Duration.Microseconds()) / 1000,
		Rows:        e.Rows,
		CacheStatus: e.CacheStatus,
		OccurredAt:  o.now().UTC(),
	}
	if e.Err != nil {
		evt.Error = e.Err.Error()
	}

	env, err := sharedEvents.Envelope(sharedEvents.QueryExecutedType, evt, evt.OccurredAt)
	if err != nil {
		o.log.Warn("Query event encode failed", zap.Error(err))
		return
	}

	go func() {
		// La petición original puede haber terminado ya.
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		defer cancel()
		if err := o.bus.Publish(ctx, env); err != nil {
			o.log.Warn("Query event publish failed",
				zap.String("table", evt.Table),
				zap.String("event_id", evt.ID.String()),
				zap.Error(err))
		}
	}()
}
