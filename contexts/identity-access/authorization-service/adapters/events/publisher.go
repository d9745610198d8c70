package events

import (
	"context"
	"log/slog"

	"quorum/contexts/identity-access/authorization-service/ports"
)

// TopicPolicyEvents carries role grant, revoke, and delegation events.
const TopicPolicyEvents = "identity.policy.events"

// Bus is the broker surface the publisher needs. The platform Kafka adapter
// satisfies it.
type Bus interface {
	Publish(ctx context.Context, topic string, event ports.PolicyChangedEvent) error
}

// Publisher forwards policy-change envelopes to the event bus. With no bus
// attached it logs and drops, which keeps single-process deployments working.
type Publisher struct {
	bus    Bus
	logger *slog.Logger
}

func NewPublisher(bus Bus, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{bus: bus, logger: logger}
}

func (p *Publisher) PublishPolicyChanged(ctx context.Context, event ports.PolicyChangedEvent) error {
	if p.bus == nil {
		p.logger.Info("policy change dropped, no event bus attached",
			"event", "policy_changed_unpublished",
			"module", "identity-access/authorization-service",
			"layer", "adapter",
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
		return nil
	}
	return p.bus.Publish(ctx, TopicPolicyEvents, event)
}
