package commands

import (
	"context"
	"time"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// formFieldDict captures a form's state before a mutation for the revision
// log.
func formFieldDict(form entities.ResultForm) map[string]any {
	fields := map[string]any{
		"barcode":                   form.Barcode,
		"serial_number":             form.SerialNumber,
		"form_state":                string(form.FormState),
		"previous_form_state":       string(form.PreviousFormState),
		"center_id":                 form.CenterID,
		"ballot_id":                 form.BallotID,
		"office":                    form.Office,
		"gender":                    string(form.Gender),
		"is_replacement":            form.IsReplacement,
		"rejected_count":            form.RejectedCount,
		"audited_count":             form.AuditedCount,
		"duplicate_reviewed":        form.DuplicateReviewed,
		"reject_reason":             form.RejectReason,
		"skip_quarantine_checks":    form.SkipQuarantineChecks,
		"skip_all_zero_votes_check": form.SkipAllZeroVotesCheck,
		"user_id":                   form.UserID,
	}
	if form.StationNumber != nil {
		fields["station_number"] = *form.StationNumber
	}
	return fields
}

func recordFormRevision(
	ctx context.Context,
	revisions ports.RevisionLogger,
	before entities.ResultForm,
	userID string,
	now time.Time,
) error {
	if revisions == nil {
		return nil
	}
	return revisions.RecordRevision(ctx, ports.RevisionEntry{
		EntityType: "result_form",
		EntityID:   before.ResultFormID,
		FieldDict:  formFieldDict(before),
		UserID:     userID,
		RecordedAt: now,
	})
}

// rejectForm deactivates every result and reconciliation row for the form,
// applies the state bookkeeping, and persists the form. requestID links the
// deactivations to a recall request when applicable.
func rejectForm(
	ctx context.Context,
	forms ports.ResultFormRepository,
	results ports.ResultRepository,
	recons ports.ReconRepository,
	revisions ports.RevisionLogger,
	form *entities.ResultForm,
	newState entities.FormState,
	reason string,
	requestID string,
	userID string,
	now time.Time,
) error {
	if err := recordFormRevision(ctx, revisions, *form, userID, now); err != nil {
		return err
	}
	if err := results.DeactivateResults(ctx, form.ResultFormID, requestID); err != nil {
		return err
	}
	if err := recons.DeactivateRecons(ctx, form.ResultFormID, requestID); err != nil {
		return err
	}
	form.ApplyReject(newState, reason)
	form.UpdatedAt = now
	return forms.UpdateForm(ctx, *form)
}

// formNumVotes sums the active final results for a form.
func formNumVotes(ctx context.Context, results ports.ResultRepository, formID string) (int, []entities.Result, error) {
	rows, err := results.ListResults(ctx, ports.ResultFilter{
		ResultFormID: formID,
		EntryVersion: entities.EntryVersionFinal,
		ActiveOnly:   true,
	})
	if err != nil {
		return 0, nil, err
	}
	total := 0
	for _, row := range rows {
		total += row.Votes
	}
	return total, rows, nil
}

// activeRecon returns the active reconciliation row for the given entry
// version, or nil when absent.
func activeRecon(
	ctx context.Context,
	recons ports.ReconRepository,
	formID string,
	version entities.EntryVersion,
) (*entities.ReconciliationForm, error) {
	rows, err := recons.ListRecons(ctx, formID, true)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].EntryVersion == version {
			return &rows[i], nil
		}
	}
	return nil, nil
}
