package entities

import "time"

// ResultForm is the central entity: one physical polling-station tally sheet
// moving through the digitization workflow.
type ResultForm struct {
	ResultFormID string
	TallyID      string

	Barcode      string
	SerialNumber int

	FormState         FormState
	PreviousFormState FormState

	// Empty for replacement forms until re-assignment at intake.
	CenterID      string
	StationNumber *int
	BallotID      string

	Office string
	Gender Gender
	Name   string

	IsReplacement         bool
	RejectedCount         int
	AuditedCount          int
	DuplicateReviewed     bool
	RejectReason          string
	SkipQuarantineChecks  bool
	SkipAllZeroVotesCheck bool

	UserID        string
	CreatedUserID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f ResultForm) HasCenter() bool {
	return f.CenterID != ""
}

// Reject deactivation of results/recon rows happens in the application layer;
// this applies the state bookkeeping only.
func (f *ResultForm) ApplyReject(newState FormState, reason string) {
	f.PreviousFormState = f.FormState
	f.FormState = newState
	f.RejectedCount++
	f.DuplicateReviewed = false
	f.RejectReason = reason
	if f.IsReplacement && newState == FormStateUnsubmitted {
		f.CenterID = ""
		f.StationNumber = nil
	}
}

// SendToClearance records the state the form came from so clearance can
// restore or reset it later.
func (f *ResultForm) SendToClearance() {
	f.PreviousFormState = f.FormState
	f.FormState = FormStateClearance
}
