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

// IntakeDuplicateMarker is the error marker stored on forms routed to
// clearance because another form for the same station already entered the
// workflow.
const IntakeDuplicateMarker = "INTAKE_DUPLICATE"

type IntakeUseCase struct {
	Forms     ports.ResultFormRepository
	Tallies   ports.TallyRepository
	Geography ports.GeographyRepository
	Ballots   ports.BallotRepository
	Reviews   ports.ReviewRepository
	Revisions ports.RevisionLogger
	Clock     ports.Clock
	Logger    *slog.Logger
}

type SubmitIntakeCommand struct {
	FormID string
	Actor  services.Actor
}

type IntakeOutcome struct {
	Form entities.ResultForm
	// Duplicate is set when the form and its twins were routed to clearance.
	Duplicate bool
	// NeedsCenter is set for replacement forms that still need a center and
	// station assignment.
	NeedsCenter bool
}

// Execute is the first physical-form touch: it moves an unsubmitted form into
// intake, or routes it and any duplicates to clearance.
func (uc IntakeUseCase) Execute(ctx context.Context, cmd SubmitIntakeCommand) (IntakeOutcome, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionIntakeBarcode); err != nil {
		return IntakeOutcome{}, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return IntakeOutcome{}, err
	}
	if err := services.FormInState(form,
		entities.FormStateUnsubmitted, entities.FormStateIntake); err != nil {
		return IntakeOutcome{}, err
	}

	now := uc.Clock.Now().UTC()
	duplicates, err := uc.duplicatedForms(ctx, form)
	if err != nil {
		return IntakeOutcome{}, err
	}
	if len(duplicates) > 0 {
		if err := uc.routeDuplicatesToClearance(ctx, form, duplicates, cmd.Actor, now); err != nil {
			return IntakeOutcome{}, err
		}
		logger.Warn("duplicate forms routed to clearance",
			"event", "intake_duplicate",
			"module", "tally-operations/form-workflow-service",
			"layer", "application",
			"barcode", form.Barcode,
			"duplicates", len(duplicates),
		)
		return IntakeOutcome{Form: form, Duplicate: true}, domainerrors.ErrDuplicateBlocked
	}

	if form.FormState == entities.FormStateUnsubmitted {
		if err := recordFormRevision(ctx, uc.Revisions, form, cmd.Actor.UserID, now); err != nil {
			return IntakeOutcome{}, err
		}
		if err := services.Transition(&form, entities.FormStateIntake); err != nil {
			return IntakeOutcome{}, err
		}
		form.UserID = cmd.Actor.UserID
		form.UpdatedAt = now
		if err := uc.Forms.UpdateForm(ctx, form); err != nil {
			return IntakeOutcome{}, err
		}
	}

	return IntakeOutcome{Form: form, NeedsCenter: !form.HasCenter()}, nil
}

type ConfirmIntakeCommand struct {
	FormID  string
	Actor   services.Actor
	IsMatch bool
}

// ExecuteConfirm advances a matched form to data entry 1, or sends a declined
// form to clearance. The returned flag tells the station whether a cover
// sheet must be printed to travel with the paper.
func (uc IntakeUseCase) ExecuteConfirm(ctx context.Context, cmd ConfirmIntakeCommand) (entities.ResultForm, bool, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := services.Authorize(cmd.Actor, services.ActionIntakeConfirm); err != nil {
		return entities.ResultForm{}, false, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.ResultForm{}, false, err
	}
	if err := services.FormInState(form, entities.FormStateIntake); err != nil {
		return entities.ResultForm{}, false, err
	}
	tally, err := uc.Tallies.GetTally(ctx, form.TallyID)
	if err != nil {
		return entities.ResultForm{}, false, err
	}

	now := uc.Clock.Now().UTC()
	if err := recordFormRevision(ctx, uc.Revisions, form, cmd.Actor.UserID, now); err != nil {
		return entities.ResultForm{}, false, err
	}

	printCover := false
	if cmd.IsMatch {
		if err := services.Transition(&form, entities.FormStateDataEntry1); err != nil {
			return entities.ResultForm{}, false, err
		}
		printCover = tally.PrintCoverInIntake
	} else {
		form.SendToClearance()
	}
	form.UpdatedAt = now
	if err := uc.Forms.UpdateForm(ctx, form); err != nil {
		return entities.ResultForm{}, false, err
	}

	logger.Info("intake confirmed",
		"event", "intake_confirmed",
		"module", "tally-operations/form-workflow-service",
		"layer", "application",
		"barcode", form.Barcode,
		"is_match", cmd.IsMatch,
		"form_state", string(form.FormState),
	)
	return form, printCover, nil
}

type AssignCenterStationCommand struct {
	FormID        string
	Actor         services.Actor
	CenterCode    int
	StationNumber int
}

// ExecuteAssign binds a replacement form to a center and station after
// confirming ballot compatibility against the center's races.
func (uc IntakeUseCase) ExecuteAssign(ctx context.Context, cmd AssignCenterStationCommand) (entities.ResultForm, error) {
	if err := services.Authorize(cmd.Actor, services.ActionIntakeAssignCenter); err != nil {
		return entities.ResultForm{}, err
	}

	form, err := uc.Forms.GetForm(ctx, cmd.FormID)
	if err != nil {
		return entities.ResultForm{}, err
	}
	if err := services.FormInState(form, entities.FormStateIntake); err != nil {
		return entities.ResultForm{}, err
	}

	center, err := uc.Geography.GetCenterByCode(ctx, form.TallyID, cmd.CenterCode)
	if err != nil {
		return entities.ResultForm{}, err
	}
	if _, err := uc.Geography.GetStation(ctx, center.CenterID, cmd.StationNumber); err != nil {
		return entities.ResultForm{}, err
	}

	ballot, err := uc.Ballots.GetBallot(ctx, form.BallotID)
	if err != nil {
		return entities.ResultForm{}, err
	}
	compatible := form.BallotID == center.BallotGeneralID
	if form.Gender == entities.GenderFemale || ballot.BallotName == "women" {
		compatible = compatible || form.BallotID == center.BallotWomenID
	}
	if !compatible {
		return entities.ResultForm{}, domainerrors.ErrBallotMismatch
	}

	now := uc.Clock.Now().UTC()
	candidate := form
	candidate.CenterID = center.CenterID
	station := cmd.StationNumber
	candidate.StationNumber = &station

	duplicates, err := uc.duplicatedForms(ctx, candidate)
	if err != nil {
		return entities.ResultForm{}, err
	}
	if len(duplicates) > 0 {
		if err := uc.routeDuplicatesToClearance(ctx, form, duplicates, cmd.Actor, now); err != nil {
			return entities.ResultForm{}, err
		}
		return form, domainerrors.ErrDuplicateBlocked
	}

	if err := recordFormRevision(ctx, uc.Revisions, form, cmd.Actor.UserID, now); err != nil {
		return entities.ResultForm{}, err
	}
	form.CenterID = center.CenterID
	form.StationNumber = &station
	form.UpdatedAt = now
	if err := uc.Forms.UpdateForm(ctx, form); err != nil {
		return entities.ResultForm{}, err
	}
	return form, nil
}

// duplicatedForms finds other forms for the same center, station, and ballot
// that already entered the workflow.
func (uc IntakeUseCase) duplicatedForms(ctx context.Context, form entities.ResultForm) ([]entities.ResultForm, error) {
	if !form.HasCenter() || form.StationNumber == nil || form.BallotID == "" {
		return nil, nil
	}

	siblings, err := uc.Forms.ListForms(ctx, ports.FormFilter{
		TallyID:       form.TallyID,
		CenterID:      form.CenterID,
		StationNumber: form.StationNumber,
		BallotID:      form.BallotID,
	})
	if err != nil {
		return nil, err
	}

	var duplicates []entities.ResultForm
	for _, sibling := range siblings {
		if sibling.ResultFormID == form.ResultFormID {
			continue
		}
		switch sibling.FormState {
		case entities.FormStateUnsubmitted:
			continue
		case entities.FormStateIntake:
			if form.FormState == entities.FormStateIntake {
				continue
			}
		}
		duplicates = append(duplicates, sibling)
	}
	return duplicates, nil
}

func (uc IntakeUseCase) routeDuplicatesToClearance(
	ctx context.Context,
	form entities.ResultForm,
	duplicates []entities.ResultForm,
	actor services.Actor,
	timestamp time.Time,
) error {
	route := func(target entities.ResultForm) error {
		if target.FormState == entities.FormStateClearance {
			return nil
		}
		if err := recordFormRevision(ctx, uc.Revisions, target, actor.UserID, timestamp); err != nil {
			return err
		}
		target.SendToClearance()
		target.RejectReason = IntakeDuplicateMarker
		target.UpdatedAt = timestamp
		return uc.Forms.UpdateForm(ctx, target)
	}

	if err := route(form); err != nil {
		return err
	}
	for _, duplicate := range duplicates {
		if err := route(duplicate); err != nil {
			return err
		}
	}
	return nil
}
