package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// QuarantineGate evaluates the active quarantine checks against a form at
// the archive gate and, on failure, diverts the form to audit with the
// failed check ids attached.
type QuarantineGate struct {
	Forms     ports.ResultFormRepository
	Geography ports.GeographyRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Reviews   ports.ReviewRepository
	Checks    ports.QuarantineCheckRepository
	Revisions ports.RevisionLogger
	Outbox    ports.OutboxWriter
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Apply runs the checks and, when any fail, moves the form to audit. The
// caller holds the form already loaded and persists nothing further on the
// triggered path.
func (g QuarantineGate) Apply(ctx context.Context, form *entities.ResultForm, userID string, now time.Time) (triggered bool, failed []entities.QuarantineCheck, err error) {
	logger := application.ResolveLogger(g.Logger)

	input, err := g.assembleInput(ctx, *form)
	if err != nil {
		return false, nil, err
	}
	checks, err := g.Checks.ListQuarantineChecks(ctx, form.TallyID, true)
	if err != nil {
		return false, nil, err
	}
	failed = services.RunQuarantineChecks(checks, input)
	if len(failed) == 0 {
		return false, nil, nil
	}

	if err := recordFormRevision(ctx, g.Revisions, *form, userID, now); err != nil {
		return false, nil, err
	}
	// One active audit per form: retire leftovers before opening the new
	// case.
	if err := g.Reviews.DeactivateAudits(ctx, form.ResultFormID); err != nil {
		return false, nil, err
	}

	auditID, err := g.IDGen.NewID(ctx)
	if err != nil {
		return false, nil, err
	}
	audit := entities.Audit{
		AuditID:      auditID,
		ResultFormID: form.ResultFormID,
		TallyID:      form.TallyID,
		UserID:       userID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, check := range failed {
		audit.FailedQuarantineCheckIDs = append(audit.FailedQuarantineCheckIDs, check.QuarantineCheckID)
	}
	if err := g.Reviews.CreateAudit(ctx, audit); err != nil {
		return false, nil, err
	}

	if err := services.Transition(form, entities.FormStateAudit); err != nil {
		return false, nil, err
	}
	form.AuditedCount++
	form.UpdatedAt = now
	if err := g.Forms.UpdateForm(ctx, *form); err != nil {
		return false, nil, err
	}
	if err := emitFormEvent(ctx, g.Outbox, g.IDGen, EventQuarantineTriggered, *form, now); err != nil {
		return false, nil, err
	}

	names := make([]string, 0, len(failed))
	for _, check := range failed {
		names = append(names, check.Name)
	}
	logger.Warn("quarantine checks failed",
		"event", "quarantine_triggered",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"barcode", form.Barcode,
		"failed_checks", names,
	)
	return true, failed, nil
}

// assembleInput gathers the form's final capture and station registration
// for the predicates.
func (g QuarantineGate) assembleInput(ctx context.Context, form entities.ResultForm) (services.QuarantineInput, error) {
	numVotes, finals, err := formNumVotes(ctx, g.Results, form.ResultFormID)
	if err != nil {
		return services.QuarantineInput{}, err
	}
	candidateVotes := make([]int, 0, len(finals))
	for _, row := range finals {
		candidateVotes = append(candidateVotes, row.Votes)
	}

	recon, err := activeRecon(ctx, g.Recons, form.ResultFormID, entities.EntryVersionFinal)
	if err != nil {
		return services.QuarantineInput{}, err
	}

	var registrants *int
	if form.HasCenter() && form.StationNumber != nil {
		station, err := g.Geography.GetStation(ctx, form.CenterID, *form.StationNumber)
		switch {
		case err == nil:
			registrants = station.Registrants
		case !errors.Is(err, domainerrors.ErrStationNotFound):
			return services.QuarantineInput{}, err
		}
	}

	return services.QuarantineInput{
		Form:           form,
		Recon:          recon,
		Registrants:    registrants,
		NumVotes:       numVotes,
		CandidateVotes: candidateVotes,
	}, nil
}
