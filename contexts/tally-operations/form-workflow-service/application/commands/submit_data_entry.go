package commands

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

// AutoClearReason is the reject reason recorded when a blank submission
// short-circuits the form to clearance.
const AutoClearReason = "Form rejected: All candidate votes are blank or zero, or reconciliation form is invalid."

type VoteEntry struct {
	CandidateID string
	Votes       int
}

type SubmitDataEntryCommand struct {
	FormID string
	Actor  services.Actor

	Votes []VoteEntry
	// Recon carries the ballot-accounting ledger for centers that file one.
	// Identifier fields are assigned here.
	Recon *entities.ReconciliationForm

	ProcessingTimeSeconds int
}

type SubmitDataEntryUseCase struct {
	Forms     ports.ResultFormRepository
	Geography ports.GeographyRepository
	Ballots   ports.BallotRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Reviews   ports.ReviewRepository
	Stats     ports.StatsRepository
	Revisions ports.RevisionLogger
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger

	// Centers with a code at or above this threshold vote out of the
	// country and file no reconciliation ledger.
	OCVCenterMin int
}

// Execute records one full pass of candidate votes (and the reconciliation
// ledger where the center files one) for whichever data entry station the
// form sits at, then advances the form.
func (uc SubmitDataEntryUseCase) Execute(ctx context.Context, cmd SubmitDataEntryCommand) (entities.ResultForm, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionDataEntrySubmit); err != nil {
		return entities.ResultForm{}, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.ResultForm{}, err
	}
	if err := services.FormInState(form,
		entities.FormStateDataEntry1, entities.FormStateDataEntry2); err != nil {
		return entities.ResultForm{}, err
	}

	var version entities.EntryVersion
	var clerkRole string
	var next entities.FormState
	if form.FormState == entities.FormStateDataEntry1 {
		version = entities.EntryVersionDataEntry1
		clerkRole = services.RoleDataEntry1Clerk
		next = entities.FormStateDataEntry2
	} else {
		version = entities.EntryVersionDataEntry2
		clerkRole = services.RoleDataEntry2Clerk
		next = entities.FormStateCorrection
	}
	// The two entry stations must be staffed by distinct clerk pools.
	if !cmd.Actor.IsAdmin() && !cmd.Actor.HasRole(clerkRole) {
		return entities.ResultForm{}, domainerrors.ErrForbidden
	}

	candidates, err := uc.Ballots.ListCandidates(ctx, form.BallotID)
	if err != nil {
		return entities.ResultForm{}, err
	}
	votes, err := alignVotes(candidates, cmd.Votes)
	if err != nil {
		return entities.ResultForm{}, err
	}

	hasRecon, err := uc.centerFilesRecon(ctx, form)
	if err != nil {
		return entities.ResultForm{}, err
	}

	// Only the first entry can auto-clear: a blank second entry against a
	// non-blank first entry is a keying disagreement for corrections to settle.
	now := uc.Clock.Now().UTC()
	if version == entities.EntryVersionDataEntry1 &&
		!form.SkipAllZeroVotesCheck && blankSubmission(votes, hasRecon, cmd.Recon) {
		if err := uc.autoClear(ctx, &form, cmd.Actor, now); err != nil {
			return entities.ResultForm{}, err
		}
		logger.Warn("blank submission sent to clearance",
			"event", "data_entry_auto_cleared",
			"module", "tally-operations/form-workflow-service",
			"layer", "application",
			"barcode", form.Barcode,
			"entry_version", string(version),
		)
		return form, domainerrors.ErrAutoCleared
	}

	for candidateID, count := range votes {
		resultID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.ResultForm{}, err
		}
		row := entities.Result{
			ResultID:     resultID,
			ResultFormID: form.ResultFormID,
			CandidateID:  candidateID,
			TallyID:      form.TallyID,
			EntryVersion: version,
			Votes:        count,
			UserID:       cmd.Actor.UserID,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.Results.CreateResult(ctx, row); err != nil {
			return entities.ResultForm{}, err
		}
	}

	if hasRecon && cmd.Recon != nil {
		reconID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.ResultForm{}, err
		}
		recon := *cmd.Recon
		recon.ReconciliationFormID = reconID
		recon.ResultFormID = form.ResultFormID
		recon.TallyID = form.TallyID
		recon.EntryVersion = version
		recon.UserID = cmd.Actor.UserID
		recon.Active = true
		recon.CreatedAt = now
		recon.UpdatedAt = now
		if err := uc.Recons.CreateRecon(ctx, recon); err != nil {
			return entities.ResultForm{}, err
		}
	}

	statsID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ResultForm{}, err
	}
	stats := entities.ResultFormStats{
		StatsID:               statsID,
		ResultFormID:          form.ResultFormID,
		TallyID:               form.TallyID,
		UserID:                cmd.Actor.UserID,
		UserRole:              clerkRole,
		ProcessingTimeSeconds: cmd.ProcessingTimeSeconds,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := uc.Stats.AppendStats(ctx, stats); err != nil {
		return entities.ResultForm{}, err
	}

	if err := recordFormRevision(ctx, uc.Revisions, form, cmd.Actor.UserID, now); err != nil {
		return entities.ResultForm{}, err
	}
	if err := services.Transition(&form, next); err != nil {
		return entities.ResultForm{}, err
	}
	form.UserID = cmd.Actor.UserID
	form.UpdatedAt = now
	if err := uc.Forms.UpdateForm(ctx, form); err != nil {
		return entities.ResultForm{}, err
	}
	if err := emitFormEvent(ctx, uc.Outbox, uc.IDGen, EventFormStateChanged, form, now); err != nil {
		return entities.ResultForm{}, err
	}

	logger.Info("data entry recorded",
		"event", "data_entry_submitted",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"barcode", form.Barcode,
		"entry_version", string(version),
		"form_state", string(form.FormState),
	)
	return form, nil
}

// alignVotes validates the submitted counts against the ballot's candidate
// roster: exactly one non-negative count per candidate.
func alignVotes(candidates []entities.Candidate, submitted []VoteEntry) (map[string]int, error) {
	votes := make(map[string]int, len(submitted))
	for _, entry := range submitted {
		if entry.Votes < 0 {
			return nil, domainerrors.ErrInvalidInput
		}
		if _, dup := votes[entry.CandidateID]; dup {
			return nil, domainerrors.ErrInvalidInput
		}
		votes[entry.CandidateID] = entry.Votes
	}
	if len(votes) != len(candidates) {
		return nil, domainerrors.ErrInvalidInput
	}
	for _, candidate := range candidates {
		if _, ok := votes[candidate.CandidateID]; !ok {
			return nil, domainerrors.ErrInvalidInput
		}
	}
	return votes, nil
}

func (uc SubmitDataEntryUseCase) centerFilesRecon(ctx context.Context, form entities.ResultForm) (bool, error) {
	if !form.HasCenter() {
		return false, nil
	}
	center, err := uc.Geography.GetCenter(ctx, form.CenterID)
	if err != nil {
		return false, err
	}
	return center.Code < uc.OCVCenterMin, nil
}

// blankSubmission reports the all-zero signal that routes a form to
// clearance: every candidate count is zero, or the required ledger is blank.
func blankSubmission(votes map[string]int, hasRecon bool, recon *entities.ReconciliationForm) bool {
	allZero := true
	for _, count := range votes {
		if count != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return true
	}
	if !hasRecon {
		return false
	}
	if recon == nil {
		return true
	}
	return recon.NumberBallotsInsideBox == 0 &&
		recon.NumberValidVotes == 0 &&
		recon.NumberBallotsReceived == 0
}

func (uc SubmitDataEntryUseCase) autoClear(
	ctx context.Context,
	form *entities.ResultForm,
	actor services.Actor,
	now time.Time,
) error {
	if err := recordFormRevision(ctx, uc.Revisions, *form, actor.UserID, now); err != nil {
		return err
	}
	form.SendToClearance()
	form.RejectReason = AutoClearReason
	form.UserID = actor.UserID
	form.UpdatedAt = now
	if err := uc.Forms.UpdateForm(ctx, *form); err != nil {
		return err
	}

	clearanceID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	clearance := entities.Clearance{
		ClearanceID:  clearanceID,
		ResultFormID: form.ResultFormID,
		TallyID:      form.TallyID,
		UserID:       actor.UserID,
		Active:       true,
		TeamComment:  AutoClearReason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return uc.Reviews.CreateClearance(ctx, clearance)
}
