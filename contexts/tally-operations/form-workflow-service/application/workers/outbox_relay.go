package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// TopicFormEvents carries every result-form workflow event.
const TopicFormEvents = "tally.result_form.events"

type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
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
		logger.Error("outbox list failed",
			"event", "form_outbox_list_failed",
			"module", "tally-operations/form-workflow-service",
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
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			return err
		}
		if err := r.Publisher.Publish(ctx, TopicFormEvents, envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "form_outbox_publish_failed",
				"module", "tally-operations/form-workflow-service",
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
