package events

import (
	"context"
	"sync"

	sharedBus "github.com/davicafu/hexaquery/internal/shared/infra/platform/bus"
)

// InMemoryEventBus reparte eventos de un único topic entre suscriptores
// locales. Si el buffer de un suscriptor está lleno el evento se descarta
// para ese suscriptor.
type InMemoryEventBus struct {
	subscribers []chan []byte
	mu          sync.RWMutex
	topic       string
}

var _ sharedBus.EventBus = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{topic: topic}
}

func (b *InMemoryEventBus) Topic() string { return b.topic }

// Publish serializa el evento como haría Kafka y lo entrega sin bloquear.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	_, payload, err := sharedBus.Encode(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		select {
		case sub <- payload:
		default:
		}
	}
	return nil
}

// Subscribe registra un oyente con el buffer indicado.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}
