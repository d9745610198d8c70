package services

import (
	"math"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
)

// QuarantineInput is everything a quarantine predicate may look at, assembled
// by the caller. Recon is nil when the form has no reconciliation ledger, in
// which case ledger-based checks are not applicable and pass.
type QuarantineInput struct {
	Form           entities.ResultForm
	Recon          *entities.ReconciliationForm
	Registrants    *int
	NumVotes       int
	CandidateVotes []int
}

// QuarantinePredicate returns true when the form passes the check.
type QuarantinePredicate func(check entities.QuarantineCheck, input QuarantineInput) bool

// quarantinePredicates joins descriptor method ids to predicate functions.
var quarantinePredicates = map[entities.QuarantineMethod]QuarantinePredicate{
	entities.QuarantineMethodOvervote:              passOvervote,
	entities.QuarantineMethodTampering:             passTampering,
	entities.QuarantineMethodBallotsNumber:         passBallotsNumber,
	entities.QuarantineMethodSignatures:            passSignatures,
	entities.QuarantineMethodBallotsInsideBox:      passBallotsInsideBox,
	entities.QuarantineMethodSumOfCandidatesVotes:  passSumOfCandidatesVotes,
	entities.QuarantineMethodInvalidBallotsPercent: passInvalidBallotsPercentage,
	entities.QuarantineMethodTurnoutPercent:        passTurnoutPercentage,
	entities.QuarantineMethodVotesPerCandidate:     passVotesPerCandidatePercentage,
	entities.QuarantineMethodBlankBallotsPercent:   passBlankBallotsPercentage,
}

// RunQuarantineChecks applies every active descriptor with a known method and
// returns the descriptors that failed, in input order. A form flagged to skip
// quarantine checks fails nothing.
func RunQuarantineChecks(checks []entities.QuarantineCheck, input QuarantineInput) []entities.QuarantineCheck {
	if input.Form.SkipQuarantineChecks {
		return nil
	}

	var failed []entities.QuarantineCheck
	for _, check := range checks {
		if !check.Active {
			continue
		}
		predicate, known := quarantinePredicates[check.Method]
		if !known {
			continue
		}
		if !predicate(check, input) {
			failed = append(failed, check)
		}
	}
	return failed
}

// scaledToleranceOK compares two quantities with a tolerance of value percent
// of their mean.
func scaledToleranceOK(a, b int, valuePercent float64) bool {
	diff := math.Abs(float64(a - b))
	tolerance := (valuePercent / 100) * float64(a+b) / 2
	return diff <= tolerance
}

func passOvervote(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil || input.Registrants == nil {
		return true
	}
	maxBallots := (check.Percentage/100)*float64(*input.Registrants) + check.Value
	return float64(input.Recon.NumberBallotsUsed(input.NumVotes)) <= maxBallots
}

func passTampering(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil {
		return true
	}
	return scaledToleranceOK(input.NumVotes, input.Recon.NumberBallotsExpected(), check.Value)
}

func passBallotsNumber(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil {
		return true
	}
	insideAndOutside := input.Recon.NumberBallotsInsideBox +
		input.Recon.NumberBallotsOutsideBox
	return scaledToleranceOK(input.Recon.NumberBallotsReceived, insideAndOutside, check.Value)
}

func passSignatures(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil {
		return true
	}
	insideAndCancelled := input.Recon.NumberBallotsInsideBox +
		input.Recon.NumberCancelledBallots
	return scaledToleranceOK(input.Recon.NumberSignaturesInVR, insideAndCancelled, check.Value)
}

func passBallotsInsideBox(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil {
		return true
	}
	return scaledToleranceOK(
		input.Recon.NumberBallotsInsideBox,
		input.Recon.NumberBallotsInsideTheBox(),
		check.Value,
	)
}

func passSumOfCandidatesVotes(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil {
		return true
	}
	return scaledToleranceOK(input.NumVotes, input.Recon.NumberValidVotes, check.Value)
}

func passInvalidBallotsPercentage(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil {
		return true
	}
	inside := input.Recon.NumberBallotsInsideTheBox()
	if inside == 0 {
		return true
	}
	percentage := float64(input.Recon.NumberInvalidVotes) / float64(inside) * 100
	return percentage <= check.Percentage
}

func passTurnoutPercentage(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil || input.Registrants == nil || *input.Registrants == 0 {
		return true
	}
	percentage := float64(input.Recon.NumberBallotsUsed(input.NumVotes)) /
		float64(*input.Registrants) * 100
	return percentage <= check.Percentage
}

func passVotesPerCandidatePercentage(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil || input.NumVotes == 0 {
		return true
	}
	for _, votes := range input.CandidateVotes {
		percentage := float64(votes) / float64(input.NumVotes) * 100
		if percentage > check.Percentage {
			return false
		}
	}
	return true
}

func passBlankBallotsPercentage(check entities.QuarantineCheck, input QuarantineInput) bool {
	if input.Recon == nil {
		return true
	}
	inside := input.Recon.NumberBallotsInsideTheBox()
	if inside == 0 {
		return true
	}
	percentage := 100 * float64(input.Recon.NumberBlankBallots) / float64(inside)
	return percentage <= check.Percentage
}
