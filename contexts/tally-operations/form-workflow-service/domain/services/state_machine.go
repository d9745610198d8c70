package services

import (
	"fmt"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
)

// forwardTransitions is the legal transition table for result forms. Any
// state may additionally move to clearance via an explicit clerk or
// supervisor action, which is modeled separately by SendToClearance.
var forwardTransitions = map[entities.FormState][]entities.FormState{
	entities.FormStateUnsubmitted: {
		entities.FormStateIntake,
		entities.FormStateClearance,
	},
	entities.FormStateIntake: {
		entities.FormStateDataEntry1,
		entities.FormStateClearance,
	},
	entities.FormStateDataEntry1: {
		entities.FormStateDataEntry2,
		entities.FormStateClearance,
		entities.FormStateAudit,
	},
	entities.FormStateDataEntry2: {
		entities.FormStateCorrection,
		entities.FormStateClearance,
		entities.FormStateAudit,
	},
	entities.FormStateCorrection: {
		entities.FormStateQualityControl,
		entities.FormStateDataEntry1,
		entities.FormStateClearance,
		entities.FormStateAudit,
	},
	entities.FormStateQualityControl: {
		entities.FormStateArchived,
		entities.FormStateAudit,
		entities.FormStateDataEntry1,
		entities.FormStateClearance,
	},
	entities.FormStateArchived: {
		entities.FormStateAudit,
	},
	entities.FormStateAudit: {
		entities.FormStateDataEntry1,
		entities.FormStateDataEntry2,
		entities.FormStateCorrection,
		entities.FormStateQualityControl,
		entities.FormStateArchived,
		entities.FormStateClearance,
	},
	entities.FormStateClearance: {
		entities.FormStateUnsubmitted,
		entities.FormStateIntake,
		entities.FormStateDataEntry1,
		entities.FormStateDataEntry2,
		entities.FormStateCorrection,
		entities.FormStateQualityControl,
		entities.FormStateAudit,
		entities.FormStateArchived,
	},
}

// CanTransition reports whether from -> to is in the transition table.
// The legacy archiving state is never a legal endpoint of a new transition.
func CanTransition(from, to entities.FormState) bool {
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// FormInState fails with the invalid-state error unless the form is in one of
// the allowed states. The message names the state to return the form to, so
// the clerk on the floor knows where the paper belongs.
func FormInState(form entities.ResultForm, allowed ...entities.FormState) error {
	for _, state := range allowed {
		if form.FormState == state {
			return nil
		}
	}
	return fmt.Errorf("%w: return form %s to %s",
		domainerrors.ErrInvalidState, form.Barcode, form.FormState)
}

// Transition validates and applies a state change on the form.
func Transition(form *entities.ResultForm, to entities.FormState) error {
	if !CanTransition(form.FormState, to) {
		return fmt.Errorf("%w: %s cannot move from %s to %s",
			domainerrors.ErrInvalidState, form.Barcode, form.FormState, to)
	}
	form.PreviousFormState = form.FormState
	form.FormState = to
	return nil
}
