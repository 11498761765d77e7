package events

import (
	"encoding/json"
	"time"
)

// IntegrationEvent es el sobre común de los eventos publicados.
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`

	key string
}

// Envelope serializa data dentro de un IntegrationEvent. Si data fija su
// clave de partición el sobre la conserva.
func Envelope(eventType string, data interface{}, at time.Time) (IntegrationEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return IntegrationEvent{}, err
	}
	evt := IntegrationEvent{Type: eventType, Timestamp: at.UTC(), Data: raw}
	if keyer, ok := data.(interface{ PartitionKey() string }); ok {
		evt.key = keyer.PartitionKey()
	}
	return evt, nil
}

func (e IntegrationEvent) PartitionKey() string { return e.key }
