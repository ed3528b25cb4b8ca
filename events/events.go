// Package events publishes order and payment lifecycle events.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/Govind-619/JewelSphere/utils"
)

// Event types
const (
	OrderCreated          = "order.created"
	PaymentAttemptCreated = "payment.attempt_created"
	PaymentResolved       = "payment.resolved"
)

type Event struct {
	Type       string      `json:"event_type"`
	OrderID    string      `json:"order_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher delivers events after the state change they describe has committed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the info log. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event Event) error {
	utils.LogInfo("Event %s for order %s: %+v", event.Type, event.OrderID, event.Data)
	return nil
}

// MemoryPublisher keeps published events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (m *MemoryPublisher) Publish(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// OfType returns the published events of one type.
func (m *MemoryPublisher) OfType(eventType string) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
