package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/tally-operations/form-workflow-service/application"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/domain/services"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
)

type QCDecision string

const (
	QCDecisionCorrect   QCDecision = "correct"
	QCDecisionIncorrect QCDecision = "incorrect"
	QCDecisionAbort     QCDecision = "abort"
)

type QualityControlCommand struct {
	FormID   string
	Actor    services.Actor
	Decision QCDecision

	// RejectReason is mandatory on an incorrect decision once the form's
	// race has been released for publication.
	RejectReason string

	PassedReconciliation bool
}

type QualityControlUseCase struct {
	Forms     ports.ResultFormRepository
	Tallies   ports.TallyRepository
	Ballots   ports.BallotRepository
	Results   ports.ResultRepository
	Recons    ports.ReconRepository
	Reviews   ports.ReviewRepository
	Revisions ports.RevisionLogger
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger

	Gate QuarantineGate
}

// Execute records the supervisor's inspection verdict. A correct form passes
// the quarantine gate before archiving; an incorrect one goes back to data
// entry 1; an aborted session leaves the form in place. The returned flag
// asks the station to print an archive cover sheet for the paper form.
func (uc QualityControlUseCase) Execute(ctx context.Context, cmd QualityControlCommand) (entities.ResultForm, bool, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionQualityControl); err != nil {
		return entities.ResultForm{}, false, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.ResultForm{}, false, err
	}
	if err := services.FormInState(form, entities.FormStateQualityControl); err != nil {
		return entities.ResultForm{}, false, err
	}

	now := uc.Clock.Now().UTC()
	review, err := uc.activeOrNewReview(ctx, form, cmd.Actor, now)
	if err != nil {
		return entities.ResultForm{}, false, err
	}

	switch cmd.Decision {
	case QCDecisionAbort:
		review.Active = false
		review.UpdatedAt = now
		if err := uc.Reviews.UpdateQualityControl(ctx, review); err != nil {
			return entities.ResultForm{}, false, err
		}
		return form, false, nil

	case QCDecisionIncorrect:
		ballot, err := uc.Ballots.GetBallot(ctx, form.BallotID)
		if err != nil {
			return entities.ResultForm{}, false, err
		}
		if ballot.AvailableForRelease && strings.TrimSpace(cmd.RejectReason) == "" {
			return entities.ResultForm{}, false, domainerrors.ErrRejectReasonRequired
		}
		review.Active = false
		review.UpdatedAt = now
		if err := uc.Reviews.UpdateQualityControl(ctx, review); err != nil {
			return entities.ResultForm{}, false, err
		}
		if err := rejectForm(ctx, uc.Forms, uc.Results, uc.Recons, uc.Revisions,
			&form, entities.FormStateDataEntry1, cmd.RejectReason, "", cmd.Actor.UserID, now); err != nil {
			return entities.ResultForm{}, false, err
		}
		logger.Info("form failed quality control",
			"event", "quality_control_rejected",
			"module", "tally-operations/form-workflow-service",
			"layer", "application",
			"barcode", form.Barcode,
		)
		return form, false, nil

	case QCDecisionCorrect:
		review.PassedQC = true
		review.PassedReconciliation = cmd.PassedReconciliation
		review.SupervisorID = cmd.Actor.UserID
		review.UpdatedAt = now
		if err := uc.Reviews.UpdateQualityControl(ctx, review); err != nil {
			return entities.ResultForm{}, false, err
		}

		triggered, _, err := uc.Gate.Apply(ctx, &form, cmd.Actor.UserID, now)
		if err != nil {
			return entities.ResultForm{}, false, err
		}
		if triggered {
			return form, false, nil
		}

		if err := recordFormRevision(ctx, uc.Revisions, form, cmd.Actor.UserID, now); err != nil {
			return entities.ResultForm{}, false, err
		}
		if err := services.Transition(&form, entities.FormStateArchived); err != nil {
			return entities.ResultForm{}, false, err
		}
		form.UserID = cmd.Actor.UserID
		form.UpdatedAt = now
		if err := uc.Forms.UpdateForm(ctx, form); err != nil {
			return entities.ResultForm{}, false, err
		}
		if err := emitFormEvent(ctx, uc.Outbox, uc.IDGen, EventFormArchived, form, now); err != nil {
			return entities.ResultForm{}, false, err
		}
		logger.Info("form archived",
			"event", "form_archived",
			"module", "tally-operations/form-workflow-service",
			"layer", "application",
			"barcode", form.Barcode,
		)
		tally, err := uc.Tallies.GetTally(ctx, form.TallyID)
		if err != nil {
			return entities.ResultForm{}, false, err
		}
		return form, tally.PrintCoverInQualityControl, nil
	}

	return entities.ResultForm{}, false, domainerrors.ErrInvalidInput
}

func (uc QualityControlUseCase) activeOrNewReview(
	ctx context.Context,
	form entities.ResultForm,
	actor services.Actor,
	now time.Time,
) (entities.QualityControl, error) {
	review, err := uc.Reviews.ActiveQualityControl(ctx, form.ResultFormID)
	if err == nil {
		return review, nil
	}
	if !errors.Is(err, domainerrors.ErrReviewNotFound) {
		return entities.QualityControl{}, err
	}

	reviewID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.QualityControl{}, err
	}
	review = entities.QualityControl{
		QualityControlID: reviewID,
		ResultFormID:     form.ResultFormID,
		TallyID:          form.TallyID,
		UserID:           actor.UserID,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.Reviews.CreateQualityControl(ctx, review); err != nil {
		return entities.QualityControl{}, err
	}
	return review, nil
}
