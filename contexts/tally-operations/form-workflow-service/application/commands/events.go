package commands

import (
	"context"
	"encoding/json"
	"time"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// Event types appended to the outbox on workflow transitions.
const (
	EventFormStateChanged    = "tally.result_form.state_changed"
	EventFormArchived        = "tally.result_form.archived"
	EventQuarantineTriggered = "tally.result_form.quarantine_triggered"
)

type formEventData struct {
	ResultFormID      string `json:"result_form_id"`
	TallyID           string `json:"tally_id"`
	Barcode           string `json:"barcode"`
	FormState         string `json:"form_state"`
	PreviousFormState string `json:"previous_form_state"`
	UserID            string `json:"user_id"`
}

// emitFormEvent appends a workflow event to the transactional outbox. A nil
// writer disables emission, which the in-memory wiring uses in tests.
func emitFormEvent(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	eventType string,
	form entities.ResultForm,
	now time.Time,
) error {
	if outbox == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(formEventData{
		ResultFormID:      form.ResultFormID,
		TallyID:           form.TallyID,
		Barcode:           form.Barcode,
		FormState:         string(form.FormState),
		PreviousFormState: string(form.PreviousFormState),
		UserID:            form.UserID,
	})
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       now,
		SourceService:    "tally-operations/form-workflow-service",
		SchemaVersion:    1,
		PartitionKeyPath: "result_form_id",
		PartitionKey:     form.ResultFormID,
		Data:             data,
	})
}
