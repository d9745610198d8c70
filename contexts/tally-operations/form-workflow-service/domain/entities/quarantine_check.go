package entities

import "time"

// QuarantineMethod identifies a built-in quarantine predicate. Descriptors in
// storage are joined to predicate functions in code by this id.
type QuarantineMethod string

const (
	QuarantineMethodOvervote              QuarantineMethod = "pass_overvote"
	QuarantineMethodTampering             QuarantineMethod = "pass_tampering"
	QuarantineMethodBallotsNumber         QuarantineMethod = "pass_ballots_number_validation"
	QuarantineMethodSignatures            QuarantineMethod = "pass_signatures_validation"
	QuarantineMethodBallotsInsideBox      QuarantineMethod = "pass_ballots_inside_box_validation"
	QuarantineMethodSumOfCandidatesVotes  QuarantineMethod = "pass_sum_of_candidates_votes_validation"
	QuarantineMethodInvalidBallotsPercent QuarantineMethod = "pass_invalid_ballots_percentage_validation"
	QuarantineMethodTurnoutPercent        QuarantineMethod = "pass_turnout_percentage_validation"
	QuarantineMethodVotesPerCandidate     QuarantineMethod = "pass_percentage_of_votes_per_candidate_validation"
	QuarantineMethodBlankBallotsPercent   QuarantineMethod = "pass_percentage_of_blank_ballots_trigger"
)

// QuarantineCheck is the persisted descriptor half of a quarantine check; the
// predicate half lives in domain/services and is resolved by Method.
type QuarantineCheck struct {
	QuarantineCheckID string
	TallyID           string
	Name              string
	Method            QuarantineMethod
	Value             float64
	Percentage        float64
	Active            bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
