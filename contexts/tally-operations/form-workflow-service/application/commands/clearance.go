package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

type CreateClearanceCommand struct {
	FormID   string
	Actor    services.Actor
	UserName string
}

type CreateClearanceUseCase struct {
	Forms     ports.ResultFormRepository
	Tallies   ports.TallyRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Reviews   ports.ReviewRepository
	Revisions ports.RevisionLogger
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute pulls a form out of the normal path into clearance by explicit
// staff action. The returned flag asks the station to print a clearance
// cover sheet for the paper form.
func (uc CreateClearanceUseCase) Execute(ctx context.Context, cmd CreateClearanceCommand) (entities.Clearance, bool, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionClearanceCreate); err != nil {
		return entities.Clearance{}, false, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.Clearance{}, false, err
	}
	if form.FormState == entities.FormStateClearance {
		return entities.Clearance{}, false, domainerrors.ErrInvalidState
	}
	tally, err := uc.Tallies.GetTally(ctx, form.TallyID)
	if err != nil {
		return entities.Clearance{}, false, err
	}

	// Pulling a form into clearance is a rejection: the reason is kept on
	// the form and any captured results or ledgers are retired with it.
	name := cmd.UserName
	if name == "" {
		name = cmd.Actor.UserID
	}
	reason := fmt.Sprintf("Clearance case created by user %s", name)

	now := uc.Clock.Now().UTC()
	if err := rejectForm(ctx, uc.Forms, uc.Results, uc.Recons, uc.Revisions,
		&form, entities.FormStateClearance, reason, "", cmd.Actor.UserID, now); err != nil {
		return entities.Clearance{}, false, err
	}
	form.UserID = cmd.Actor.UserID
	if err := uc.Forms.UpdateForm(ctx, form); err != nil {
		return entities.Clearance{}, false, err
	}

	clearanceID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Clearance{}, false, err
	}
	clearance := entities.Clearance{
		ClearanceID:  clearanceID,
		ResultFormID: form.ResultFormID,
		TallyID:      form.TallyID,
		UserID:       cmd.Actor.UserID,
		Active:       true,
		TeamComment:  reason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Reviews.CreateClearance(ctx, clearance); err != nil {
		return entities.Clearance{}, false, err
	}

	logger.Info("clearance case opened",
		"event", "clearance_created",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"barcode", form.Barcode,
	)
	return clearance, tally.PrintCoverInClearance, nil
}

type ClearanceAction string

const (
	ClearanceActionReviewTeam   ClearanceAction = "review_team"
	ClearanceActionReturnToTeam ClearanceAction = "return_to_team"
	ClearanceActionImplement    ClearanceAction = "implement"
)

type ClearanceReviewCommand struct {
	FormID string
	Actor  services.Actor
	Action ClearanceAction

	ActionPrior entities.ActionPrior
	Resolution  entities.ClearanceResolution
	Comment     string
}

type ClearanceReviewUseCase struct {
	Forms     ports.ResultFormRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Reviews   ports.ReviewRepository
	Revisions ports.RevisionLogger
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute advances the two-person clearance review. Reset resolutions send
// the form back to the start of the pipeline; the pending resolutions hold
// it in clearance.
func (uc ClearanceReviewUseCase) Execute(ctx context.Context, cmd ClearanceReviewCommand) (entities.Clearance, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionClearanceReview); err != nil {
		return entities.Clearance{}, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.Clearance{}, err
	}
	if err := services.FormInState(form, entities.FormStateClearance); err != nil {
		return entities.Clearance{}, err
	}
	clearance, err := uc.activeOrNewClearance(ctx, form, cmd.Actor)
	if err != nil {
		return entities.Clearance{}, err
	}

	now := uc.Clock.Now().UTC()
	switch cmd.Action {
	case ClearanceActionReviewTeam:
		clearance.ActionPriorToRecommendation = cmd.ActionPrior
		clearance.ResolutionRecommendation = cmd.Resolution
		clearance.TeamComment = cmd.Comment
		clearance.ReviewedTeam = true
		clearance.UserID = cmd.Actor.UserID
		clearance.DateTeamModified = &now
		clearance.UpdatedAt = now
		if err := uc.Reviews.UpdateClearance(ctx, clearance); err != nil {
			return entities.Clearance{}, err
		}
		return clearance, nil

	case ClearanceActionReturnToTeam:
		clearance.ReviewedTeam = false
		clearance.ReviewedSupervisor = false
		clearance.SupervisorComment = cmd.Comment
		clearance.DateSupervisorModified = &now
		clearance.UpdatedAt = now
		if err := uc.Reviews.UpdateClearance(ctx, clearance); err != nil {
			return entities.Clearance{}, err
		}
		return clearance, nil

	case ClearanceActionImplement:
		if !clearance.ReviewedTeam {
			return entities.Clearance{}, domainerrors.ErrInvalidState
		}
		clearance.ReviewedSupervisor = true
		clearance.SupervisorID = cmd.Actor.UserID
		if cmd.Comment != "" {
			clearance.SupervisorComment = cmd.Comment
		}
		clearance.DateSupervisorModified = &now
		return uc.implement(ctx, form, clearance, cmd.Actor, now, logger)
	}

	return entities.Clearance{}, domainerrors.ErrInvalidInput
}

func (uc ClearanceReviewUseCase) implement(
	ctx context.Context,
	form entities.ResultForm,
	clearance entities.Clearance,
	actor services.Actor,
	now time.Time,
	logger *slog.Logger,
) (entities.Clearance, error) {
	switch clearance.ResolutionRecommendation {
	case entities.ClearanceResolutionResetToPreintake,
		entities.ClearanceResolutionResetToPreintakeSkipZeroCheck:
		clearance.Active = false
		clearance.UpdatedAt = now
		if err := uc.Reviews.UpdateClearance(ctx, clearance); err != nil {
			return entities.Clearance{}, err
		}
		if clearance.ResolutionRecommendation == entities.ClearanceResolutionResetToPreintakeSkipZeroCheck {
			form.SkipAllZeroVotesCheck = true
		}
		if err := rejectForm(ctx, uc.Forms, uc.Results, uc.Recons, uc.Revisions,
			&form, entities.FormStateUnsubmitted, clearance.SupervisorComment, "", actor.UserID, now); err != nil {
			return entities.Clearance{}, err
		}
		if err := emitFormEvent(ctx, uc.Outbox, uc.IDGen, EventFormStateChanged, form, now); err != nil {
			return entities.Clearance{}, err
		}
		logger.Info("cleared form reset to pre-intake",
			"event", "clearance_implemented",
			"module", "tally-operations/form-workflow-service",
			"layer", "application",
			"barcode", form.Barcode,
			"resolution", string(clearance.ResolutionRecommendation),
		)
		return clearance, nil

	case entities.ClearanceResolutionPendingFieldInput,
		entities.ClearanceResolutionPassToAdministrator:
		// The case stays open; the form waits in clearance.
		clearance.UpdatedAt = now
		if err := uc.Reviews.UpdateClearance(ctx, clearance); err != nil {
			return entities.Clearance{}, err
		}
		return clearance, nil
	}

	return entities.Clearance{}, domainerrors.ErrInvalidInput
}

func (uc ClearanceReviewUseCase) activeOrNewClearance(
	ctx context.Context,
	form entities.ResultForm,
	actor services.Actor,
) (entities.Clearance, error) {
	clearance, err := uc.Reviews.ActiveClearance(ctx, form.ResultFormID)
	if err == nil {
		return clearance, nil
	}
	if !errors.Is(err, domainerrors.ErrReviewNotFound) {
		return entities.Clearance{}, err
	}

	now := uc.Clock.Now().UTC()
	clearanceID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Clearance{}, err
	}
	clearance = entities.Clearance{
		ClearanceID:  clearanceID,
		ResultFormID: form.ResultFormID,
		TallyID:      form.TallyID,
		UserID:       actor.UserID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Reviews.CreateClearance(ctx, clearance); err != nil {
		return entities.Clearance{}, err
	}
	return clearance, nil
}
