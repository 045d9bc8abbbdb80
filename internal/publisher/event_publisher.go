package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/pubsub"
	"github.com/billforge/billforge/internal/types"
)

// Topics for billing events. Consumers subscribe per topic.
const (
	TopicReceiptRecorded     = "receipt.recorded"
	TopicInvoicePaid         = "invoice.paid"
	TopicSubscriptionExpired = "subscription.expired"
)

// Event is the envelope every billing event is published in.
type Event struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	TenantID  string      `json:"tenant_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EventPublisher publishes billing events after the owning transaction
// commits. Delivery is best effort; callers decide whether a publish
// failure is fatal.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

type eventPublisher struct {
	pubsub pubsub.Publisher
	logger *logger.Logger
}

// NewEventPublisher creates a new billing event publisher
func NewEventPublisher(ps pubsub.Publisher, logger *logger.Logger) EventPublisher {
	return &eventPublisher{
		pubsub: ps,
		logger: logger,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	event := &Event{
		ID:        types.GenerateUUID(),
		Name:      topic,
		TenantID:  types.GetTenantID(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode event payload").
			Mark(ierr.ErrValidation)
	}

	msg := message.NewMessage(event.ID, body)
	msg.Metadata.Set("topic", topic)
	msg.Metadata.Set("tenant_id", event.TenantID)

	p.logger.Debugw("publishing event", "event_id", event.ID, "topic", topic)

	if err := p.pubsub.Publish(ctx, topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish event").
			WithReportableDetails(map[string]any{
				"topic": topic,
			}).
			Mark(ierr.ErrSystem)
	}
	return nil
}
