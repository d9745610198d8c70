package queries

import (
	"context"
	"time"

	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// HistoryRow is one revision of a result form with the time it spent in the
// state it was leaving.
type HistoryRow struct {
	UserID          string
	RecordedAt      time.Time
	PreviousState   string
	CurrentState    string
	DurationSeconds float64
}

type FormHistoryUseCase struct {
	Forms     ports.ResultFormRepository
	Revisions ports.RevisionLogger
}

// Execute replays the revision log for one form into state-change rows.
// Each revision holds the before-image; the state it moved to is the next
// revision's before-image, or the live form for the newest row.
func (uc FormHistoryUseCase) Execute(ctx context.Context, formID string) ([]HistoryRow, error) {
	form, err := uc.Forms.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	entries, err := uc.Revisions.ListRevisions(ctx, "result_form", formID)
	if err != nil {
		return nil, err
	}

	rows := make([]HistoryRow, 0, len(entries))
	for i, entry := range entries {
		row := HistoryRow{
			UserID:        entry.UserID,
			RecordedAt:    entry.RecordedAt,
			PreviousState: stringField(entry.FieldDict, "form_state"),
		}
		if i+1 < len(entries) {
			next := entries[i+1]
			row.CurrentState = stringField(next.FieldDict, "form_state")
			row.DurationSeconds = next.RecordedAt.Sub(entry.RecordedAt).Seconds()
		} else {
			row.CurrentState = string(form.FormState)
			row.DurationSeconds = form.UpdatedAt.Sub(entry.RecordedAt).Seconds()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stringField(dict map[string]any, key string) string {
	value, ok := dict[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return text
}
