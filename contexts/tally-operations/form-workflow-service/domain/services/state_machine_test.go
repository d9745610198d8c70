package services

import (
	"errors"
	"testing"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
)

func TestCanTransitionForwardPath(t *testing.T) {
	legal := []struct {
		from, to entities.FormState
	}{
		{entities.FormStateUnsubmitted, entities.FormStateIntake},
		{entities.FormStateIntake, entities.FormStateDataEntry1},
		{entities.FormStateDataEntry1, entities.FormStateDataEntry2},
		{entities.FormStateDataEntry2, entities.FormStateCorrection},
		{entities.FormStateCorrection, entities.FormStateQualityControl},
		{entities.FormStateQualityControl, entities.FormStateArchived},
		{entities.FormStateArchived, entities.FormStateAudit},
		{entities.FormStateAudit, entities.FormStateDataEntry1},
		{entities.FormStateClearance, entities.FormStateUnsubmitted},
	}
	for _, tc := range legal {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be legal", tc.from, tc.to)
		}
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	illegal := []struct {
		from, to entities.FormState
	}{
		{entities.FormStateUnsubmitted, entities.FormStateDataEntry1},
		{entities.FormStateIntake, entities.FormStateQualityControl},
		{entities.FormStateDataEntry1, entities.FormStateArchived},
		{entities.FormStateArchived, entities.FormStateDataEntry1},
		{entities.FormStateArchived, entities.FormStateArchived},
	}
	for _, tc := range illegal {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestCanTransitionNeverTargetsArchiving(t *testing.T) {
	states := []entities.FormState{
		entities.FormStateUnsubmitted, entities.FormStateIntake,
		entities.FormStateDataEntry1, entities.FormStateDataEntry2,
		entities.FormStateCorrection, entities.FormStateQualityControl,
		entities.FormStateArchived, entities.FormStateAudit,
		entities.FormStateClearance,
	}
	for _, from := range states {
		if CanTransition(from, entities.FormStateArchiving) {
			t.Fatalf("legacy archiving state reachable from %s", from)
		}
	}
}

func TestTransitionAppliesStateBookkeeping(t *testing.T) {
	form := entities.ResultForm{
		Barcode:   "10000001",
		FormState: entities.FormStateIntake,
	}
	if err := Transition(&form, entities.FormStateDataEntry1); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if form.FormState != entities.FormStateDataEntry1 {
		t.Fatalf("unexpected state %s", form.FormState)
	}
	if form.PreviousFormState != entities.FormStateIntake {
		t.Fatalf("unexpected previous state %s", form.PreviousFormState)
	}
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	form := entities.ResultForm{
		Barcode:   "10000001",
		FormState: entities.FormStateIntake,
	}
	err := Transition(&form, entities.FormStateArchived)
	if !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if form.FormState != entities.FormStateIntake {
		t.Fatalf("form mutated on rejected transition: %s", form.FormState)
	}
}

func TestFormInState(t *testing.T) {
	form := entities.ResultForm{
		Barcode:   "10000001",
		FormState: entities.FormStateDataEntry2,
	}
	if err := FormInState(form, entities.FormStateDataEntry1, entities.FormStateDataEntry2); err != nil {
		t.Fatalf("expected state to be accepted: %v", err)
	}
	err := FormInState(form, entities.FormStateQualityControl)
	if !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}
