package services

import (
	"testing"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
)

func intPtr(v int) *int {
	return &v
}

func TestScaledToleranceOK(t *testing.T) {
	cases := []struct {
		a, b  int
		value float64
		want  bool
	}{
		{100, 100, 0, true},
		{100, 102, 2, true}, // diff 2, tolerance 2.02
		{100, 110, 2, false}, // diff 10, tolerance 2.1
		{0, 0, 5, true},
		{50, 40, 50, true}, // diff 10, tolerance 22.5
		{50, 40, 10, false}, // diff 10, tolerance 4.5
	}
	for _, tc := range cases {
		if got := scaledToleranceOK(tc.a, tc.b, tc.value); got != tc.want {
			t.Fatalf("scaledToleranceOK(%d, %d, %v) = %v, want %v",
				tc.a, tc.b, tc.value, got, tc.want)
		}
	}
}

func TestRunQuarantineChecksOvervote(t *testing.T) {
	check := entities.QuarantineCheck{
		QuarantineCheckID: "qc-overvote",
		Name:              "overvote",
		Method:            entities.QuarantineMethodOvervote,
		Value:             10,
		Percentage:        100,
		Active:            true,
	}
	input := QuarantineInput{
		Registrants: intPtr(21),
		Recon:       &entities.ReconciliationForm{NumberUnstampedBallots: 1000},
		NumVotes:    5,
	}
	failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input)
	if len(failed) != 1 || failed[0].QuarantineCheckID != "qc-overvote" {
		t.Fatalf("expected overvote check to fail, got %v", failed)
	}

	// Within the registrant envelope the check passes.
	input.Recon = &entities.ReconciliationForm{}
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 0 {
		t.Fatalf("expected no failures, got %v", failed)
	}
}

func TestRunQuarantineChecksPassWithoutLedger(t *testing.T) {
	checks := []entities.QuarantineCheck{
		{Method: entities.QuarantineMethodOvervote, Active: true},
		{Method: entities.QuarantineMethodTampering, Active: true},
		{Method: entities.QuarantineMethodSumOfCandidatesVotes, Active: true},
	}
	input := QuarantineInput{NumVotes: 100}
	if failed := RunQuarantineChecks(checks, input); len(failed) != 0 {
		t.Fatalf("ledger-based checks must pass without a recon, got %v", failed)
	}
}

func TestRunQuarantineChecksSkipFlag(t *testing.T) {
	checks := []entities.QuarantineCheck{
		{Method: entities.QuarantineMethodTampering, Active: true},
	}
	input := QuarantineInput{
		Form:     entities.ResultForm{SkipQuarantineChecks: true},
		Recon:    &entities.ReconciliationForm{NumberBallotsInsideBox: 500},
		NumVotes: 1,
	}
	if failed := RunQuarantineChecks(checks, input); len(failed) != 0 {
		t.Fatalf("skip flag must pass everything, got %v", failed)
	}
}

func TestRunQuarantineChecksIgnoresInactiveAndUnknown(t *testing.T) {
	checks := []entities.QuarantineCheck{
		{Method: entities.QuarantineMethodTampering, Active: false},
		{Method: entities.QuarantineMethod("does_not_exist"), Active: true},
	}
	input := QuarantineInput{
		Recon:    &entities.ReconciliationForm{NumberBallotsInsideBox: 500},
		NumVotes: 1,
	}
	if failed := RunQuarantineChecks(checks, input); len(failed) != 0 {
		t.Fatalf("expected no failures, got %v", failed)
	}
}

func TestTamperingCheck(t *testing.T) {
	check := entities.QuarantineCheck{
		Method: entities.QuarantineMethodTampering,
		Value:  2,
		Active: true,
	}
	// Expected = inside - unstamped - invalid = 100; votes 100 matches.
	recon := &entities.ReconciliationForm{
		NumberBallotsInsideBox: 105,
		NumberUnstampedBallots: 3,
		NumberInvalidVotes:     2,
	}
	input := QuarantineInput{Recon: recon, NumVotes: 100}
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 0 {
		t.Fatalf("matching totals should pass, got %v", failed)
	}

	input.NumVotes = 150
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 1 {
		t.Fatalf("diverging totals should fail, got %v", failed)
	}
}

func TestTurnoutPercentageCheck(t *testing.T) {
	check := entities.QuarantineCheck{
		Method:     entities.QuarantineMethodTurnoutPercent,
		Percentage: 100,
		Active:     true,
	}
	input := QuarantineInput{
		Registrants: intPtr(100),
		Recon:       &entities.ReconciliationForm{},
		NumVotes:    90,
	}
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 0 {
		t.Fatalf("turnout below 100%% should pass, got %v", failed)
	}

	input.NumVotes = 120
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 1 {
		t.Fatalf("turnout above 100%% should fail, got %v", failed)
	}

	// Unknown registrants: not applicable.
	input.Registrants = nil
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 0 {
		t.Fatalf("unknown registrants should pass, got %v", failed)
	}
}

func TestVotesPerCandidateCheck(t *testing.T) {
	check := entities.QuarantineCheck{
		Method:     entities.QuarantineMethodVotesPerCandidate,
		Percentage: 90,
		Active:     true,
	}
	input := QuarantineInput{
		Recon:          &entities.ReconciliationForm{},
		NumVotes:       100,
		CandidateVotes: []int{60, 40},
	}
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 0 {
		t.Fatalf("balanced spread should pass, got %v", failed)
	}

	input.CandidateVotes = []int{95, 5}
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 1 {
		t.Fatalf("dominant candidate should fail, got %v", failed)
	}
}

func TestBlankBallotsPercentageCheck(t *testing.T) {
	check := entities.QuarantineCheck{
		Method:     entities.QuarantineMethodBlankBallotsPercent,
		Percentage: 10,
		Active:     true,
	}
	recon := &entities.ReconciliationForm{
		NumberValidVotes:   95,
		NumberInvalidVotes: 5,
		NumberBlankBallots: 5,
	}
	input := QuarantineInput{Recon: recon}
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 0 {
		t.Fatalf("5%% blank should pass, got %v", failed)
	}

	recon.NumberBlankBallots = 20
	if failed := RunQuarantineChecks([]entities.QuarantineCheck{check}, input); len(failed) != 1 {
		t.Fatalf("20%% blank should fail, got %v", failed)
	}
}
