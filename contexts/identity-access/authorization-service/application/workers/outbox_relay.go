package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "quorum/contexts/identity-access/authorization-service/application"
	"quorum/contexts/identity-access/authorization-service/ports"
)

// OutboxRelay drains pending policy-change rows to the event bus. Rows are
// published oldest first and acknowledged one by one, so a publish failure
// leaves the rest pending for the next pass.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.PolicyChangedPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("policy outbox list failed",
			"event", "policy_outbox_list_failed",
			"module", "identity-access/authorization-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.PolicyChangedEvent
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			return err
		}
		if err := r.Publisher.PublishPolicyChanged(ctx, event); err != nil {
			logger.Error("policy outbox publish failed",
				"event", "policy_outbox_publish_failed",
				"module", "identity-access/authorization-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}

// Run drains the outbox on a fixed interval until the context is cancelled.
func (r OutboxRelay) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}
