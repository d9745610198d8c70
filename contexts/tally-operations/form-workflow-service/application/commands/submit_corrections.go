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

type SubmitCorrectionsCommand struct {
	FormID string
	Actor  services.Actor

	// VoteResolutions maps each mismatched candidate id to the count the
	// clerk chose. The chosen count must be one of the two captured values.
	VoteResolutions map[string]int
	// ReconResolutions maps each mismatched ledger field to the chosen
	// value.
	ReconResolutions map[string]any

	// Abandon rejects the form back to data entry 1 without arbitrating.
	Abandon bool
}

type CorrectionsOutcome struct {
	Form            entities.ResultForm
	VoteMismatches  []services.VoteMismatch
	ReconMismatches []services.ReconMismatch
}

type SubmitCorrectionsUseCase struct {
	Forms     ports.ResultFormRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Stats     ports.StatsRepository
	Revisions ports.RevisionLogger
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Preview reports the DE1/DE2 disagreements without mutating anything, so
// the corrections station can present them for arbitration.
func (uc SubmitCorrectionsUseCase) Preview(ctx context.Context, formID string, actor services.Actor) (CorrectionsOutcome, error) {
	if err := services.Authorize(actor, services.ActionCorrectionsSubmit); err != nil {
		return CorrectionsOutcome{}, err
	}
	form, err := uc.Forms.GetForm(ctx, formID)
	if err != nil {
		return CorrectionsOutcome{}, err
	}
	if err := services.FormInState(form, entities.FormStateCorrection); err != nil {
		return CorrectionsOutcome{}, err
	}

	rows, err := uc.Results.ListResults(ctx, ports.ResultFilter{
		ResultFormID: form.ResultFormID, ActiveOnly: true,
	})
	if err != nil {
		return CorrectionsOutcome{}, err
	}
	_, voteMismatches, err := services.MatchResults(form, rows)
	if err != nil {
		return CorrectionsOutcome{Form: form}, err
	}

	outcome := CorrectionsOutcome{Form: form, VoteMismatches: voteMismatches}
	recon1, err := activeRecon(ctx, uc.Recons, form.ResultFormID, entities.EntryVersionDataEntry1)
	if err != nil {
		return CorrectionsOutcome{}, err
	}
	recon2, err := activeRecon(ctx, uc.Recons, form.ResultFormID, entities.EntryVersionDataEntry2)
	if err != nil {
		return CorrectionsOutcome{}, err
	}
	if recon1 != nil && recon2 != nil {
		outcome.ReconMismatches = services.MatchReconForms(*recon1, *recon2)
	}
	return outcome, nil
}

// Execute arbitrates the double entries into a final capture and advances
// the form to quality control. Structural anomalies reject the form back to
// data entry 1.
func (uc SubmitCorrectionsUseCase) Execute(ctx context.Context, cmd SubmitCorrectionsCommand) (entities.ResultForm, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionCorrectionsSubmit); err != nil {
		return entities.ResultForm{}, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.ResultForm{}, err
	}
	if err := services.FormInState(form, entities.FormStateCorrection); err != nil {
		return entities.ResultForm{}, err
	}

	now := uc.Clock.Now().UTC()
	if cmd.Abandon {
		if err := rejectForm(ctx, uc.Forms, uc.Results, uc.Recons, uc.Revisions,
			&form, entities.FormStateDataEntry1, "", "", cmd.Actor.UserID, now); err != nil {
			return entities.ResultForm{}, err
		}
		return form, nil
	}

	rows, err := uc.Results.ListResults(ctx, ports.ResultFilter{
		ResultFormID: form.ResultFormID, ActiveOnly: true,
	})
	if err != nil {
		return entities.ResultForm{}, err
	}

	matched, voteMismatches, err := services.MatchResults(form, rows)
	if err != nil {
		var suspicious *services.SuspiciousReject
		if errors.As(err, &suspicious) {
			if rejectErr := rejectForm(ctx, uc.Forms, uc.Results, uc.Recons, uc.Revisions,
				&form, suspicious.NewState, suspicious.Message, "", cmd.Actor.UserID, now); rejectErr != nil {
				return entities.ResultForm{}, rejectErr
			}
			logger.Warn("suspicious result cardinality rejected",
				"event", "corrections_suspicious_reject",
				"module", "tally-operations/form-workflow-service",
				"layer", "application",
				"barcode", form.Barcode,
			)
		}
		return form, err
	}

	finalVotes, de1Errors, de2Errors, err := resolveVotes(matched, voteMismatches, cmd.VoteResolutions)
	if err != nil {
		return entities.ResultForm{}, err
	}

	recon1, err := activeRecon(ctx, uc.Recons, form.ResultFormID, entities.EntryVersionDataEntry1)
	if err != nil {
		return entities.ResultForm{}, err
	}
	recon2, err := activeRecon(ctx, uc.Recons, form.ResultFormID, entities.EntryVersionDataEntry2)
	if err != nil {
		return entities.ResultForm{}, err
	}
	var finalRecon *entities.ReconciliationForm
	if recon1 != nil && recon2 != nil {
		arbitrated, err := services.ArbitrateRecon(*recon1, *recon2, cmd.ReconResolutions)
		if err != nil {
			return entities.ResultForm{}, err
		}
		finalRecon = &arbitrated
	}

	if err := uc.retireFinalRows(ctx, form.ResultFormID, now); err != nil {
		return entities.ResultForm{}, err
	}

	for candidateID, count := range finalVotes {
		resultID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.ResultForm{}, err
		}
		row := entities.Result{
			ResultID:     resultID,
			ResultFormID: form.ResultFormID,
			CandidateID:  candidateID,
			TallyID:      form.TallyID,
			EntryVersion: entities.EntryVersionFinal,
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

	if finalRecon != nil {
		reconID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.ResultForm{}, err
		}
		recon := *finalRecon
		recon.ReconciliationFormID = reconID
		recon.UserID = cmd.Actor.UserID
		recon.Active = true
		recon.CreatedAt = now
		recon.UpdatedAt = now
		if err := uc.Recons.CreateRecon(ctx, recon); err != nil {
			return entities.ResultForm{}, err
		}
	}

	if err := uc.creditErrors(ctx, form.ResultFormID, services.RoleDataEntry1Clerk, de1Errors, now); err != nil {
		return entities.ResultForm{}, err
	}
	if err := uc.creditErrors(ctx, form.ResultFormID, services.RoleDataEntry2Clerk, de2Errors, now); err != nil {
		return entities.ResultForm{}, err
	}

	if err := recordFormRevision(ctx, uc.Revisions, form, cmd.Actor.UserID, now); err != nil {
		return entities.ResultForm{}, err
	}
	if err := services.Transition(&form, entities.FormStateQualityControl); err != nil {
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

	logger.Info("corrections arbitrated",
		"event", "corrections_submitted",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"barcode", form.Barcode,
		"vote_mismatches", len(voteMismatches),
		"de1_errors", de1Errors,
		"de2_errors", de2Errors,
	)
	return form, nil
}

// resolveVotes builds the final per-candidate counts. Matched candidates
// carry their agreed value; each mismatch needs a resolution equal to one of
// the two captures. Error tallies count how often each entry lost.
func resolveVotes(
	matched []entities.Result,
	mismatches []services.VoteMismatch,
	resolutions map[string]int,
) (finalVotes map[string]int, de1Errors, de2Errors int, err error) {
	finalVotes = make(map[string]int, len(matched)+len(mismatches))
	for _, row := range matched {
		finalVotes[row.CandidateID] = row.Votes
	}
	for _, mismatch := range mismatches {
		chosen, resolved := resolutions[mismatch.CandidateID]
		if !resolved {
			return nil, 0, 0, domainerrors.ErrUnresolvedCorrections
		}
		if chosen != mismatch.Votes1 && chosen != mismatch.Votes2 {
			return nil, 0, 0, domainerrors.ErrInvalidInput
		}
		if chosen != mismatch.Votes1 {
			de1Errors++
		}
		if chosen != mismatch.Votes2 {
			de2Errors++
		}
		finalVotes[mismatch.CandidateID] = chosen
	}
	return finalVotes, de1Errors, de2Errors, nil
}

// retireFinalRows deactivates final rows left over from a previous pass
// through corrections, so re-arbitration never double-counts.
func (uc SubmitCorrectionsUseCase) retireFinalRows(ctx context.Context, formID string, now time.Time) error {
	finals, err := uc.Results.ListResults(ctx, ports.ResultFilter{
		ResultFormID: formID,
		EntryVersion: entities.EntryVersionFinal,
		ActiveOnly:   true,
	})
	if err != nil {
		return err
	}
	for _, row := range finals {
		row.Active = false
		row.UpdatedAt = now
		if err := uc.Results.UpdateResult(ctx, row); err != nil {
			return err
		}
	}

	recons, err := uc.Recons.ListRecons(ctx, formID, true)
	if err != nil {
		return err
	}
	for _, recon := range recons {
		if recon.EntryVersion != entities.EntryVersionFinal {
			continue
		}
		recon.Active = false
		recon.UpdatedAt = now
		if err := uc.Recons.UpdateRecon(ctx, recon); err != nil {
			return err
		}
	}
	return nil
}

func (uc SubmitCorrectionsUseCase) creditErrors(ctx context.Context, formID, role string, count int, now time.Time) error {
	if count == 0 {
		return nil
	}
	stats, found, err := uc.Stats.LatestStatsByRole(ctx, formID, role)
	if err != nil || !found {
		return err
	}
	stats.DataEntryErrors += count
	stats.UpdatedAt = now
	return uc.Stats.UpdateStats(ctx, stats)
}
