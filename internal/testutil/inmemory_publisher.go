package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/publisher"
)

// PublishedEvent is one event captured by the in-memory publisher
type PublishedEvent struct {
	Topic   string
	Payload interface{}
}

// InMemoryEventPublisher collects published events for assertions
type InMemoryEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

// NewInMemoryEventPublisher creates a new capturing publisher
func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Topic: topic, Payload: payload})
	return nil
}

// Events returns all captured events
func (p *InMemoryEventPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventsForTopic returns the captured events published to one topic
func (p *InMemoryEventPublisher) EventsForTopic(topic string) []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []PublishedEvent
	for _, e := range p.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops all captured events
func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
