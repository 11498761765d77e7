package bus

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keyer lo implementan los eventos que fijan su clave de partición
// (la tabla en la telemetría de consultas).
type Keyer interface {
	PartitionKey() string
}

// EventBus publica eventos de telemetría. El transporte (Kafka o canal en
// memoria) lo decide cada adapter; el formato es siempre el de Encode.
type EventBus interface {
	Publish(ctx context.Context, event interface{}) error
}

// Encode serializa el evento a JSON y extrae su clave de partición, que es
// nil si el evento no implementa Keyer o la deja vacía.
func Encode(event interface{}) (key, payload []byte, err error) {
	payload, err = json.Marshal(event)
	if err != nil {
		return nil, nil, fmt.Errorf("encode event %T: %w", event, err)
	}
	if keyer, ok := event.(Keyer); ok && keyer.PartitionKey() != "" {
		key = []byte(keyer.PartitionKey())
	}
	return key, payload, nil
}
