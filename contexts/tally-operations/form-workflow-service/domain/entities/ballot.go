package entities

import "time"

type ElectionLevel string

const (
	ElectionLevelPresidential  ElectionLevel = "presidential"
	ElectionLevelParliamentary ElectionLevel = "parliamentary"
	ElectionLevelLocal         ElectionLevel = "local"
)

// Ballot is one race instance; it groups the candidates that appear on a
// result form.
type Ballot struct {
	BallotID            string
	TallyID             string
	Number              int
	ElectionLevel       ElectionLevel
	BallotName          string
	AvailableForRelease bool
	Active              bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Candidate is ordered within its ballot; order drives display and the
// duplicate vote-list tuples.
type Candidate struct {
	CandidateID string
	BallotID    string
	TallyID     string
	FullName    string
	Order       int
	Active      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Result is one captured vote count for one candidate on one result form.
// Multiple rows per (form, candidate, entry version) accumulate over the
// form's life; the active rows are the current truth.
type Result struct {
	ResultID     string
	ResultFormID string
	CandidateID  string
	TallyID      string
	EntryVersion EntryVersion
	Votes        int
	UserID       string
	Active       bool

	// Set when a recall approval deactivated this row.
	DeactivatedByRequestID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
