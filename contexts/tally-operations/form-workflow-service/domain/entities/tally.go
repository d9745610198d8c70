package entities

import "time"

// Tally is the top-level tenant. All forms, centers, and review records hang
// off exactly one tally.
type Tally struct {
	TallyID string
	Name    string
	Active  bool

	PrintCoverInIntake         bool
	PrintCoverInClearance      bool
	PrintCoverInQualityControl bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CenterType string

const (
	CenterTypeGeneral CenterType = "general"
	CenterTypeSpecial CenterType = "special"
)

// Center is a polling place owning one or more stations. Centers with a code
// below the out-of-country-voting threshold require reconciliation forms.
type Center struct {
	CenterID        string
	TallyID         string
	Code            int
	Name            string
	Office          string
	SubConstituency string
	CenterType      CenterType
	Active          bool

	// Race bindings used to confirm ballot compatibility at intake.
	BallotGeneralID string
	BallotWomenID   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Station is a polling position within a center. Registrants may be unknown,
// in which case registrant-based quarantine checks do not apply.
type Station struct {
	StationID     string
	CenterID      string
	TallyID       string
	StationNumber int
	Gender        Gender
	Registrants   *int
	Active        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
