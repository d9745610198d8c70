package entities

import "time"

// ReconciliationForm is the ballot-paper accounting ledger for one result
// form. Like Result rows it is soft-deactivated and versioned by entry.
type ReconciliationForm struct {
	ReconciliationFormID string
	ResultFormID         string
	TallyID              string
	EntryVersion         EntryVersion
	UserID               string
	Active               bool

	IsStamped bool

	BallotNumberFrom string
	BallotNumberTo   string

	NumberBallotsReceived            int
	NumberSignaturesInVR             int
	NumberUnusedBallots              int
	NumberSpoiledBallots             int
	NumberCancelledBallots           int
	NumberBallotsOutsideBox          int
	NumberBallotsInsideBox           int
	NumberBallotsInsideAndOutsideBox int
	NumberUnstampedBallots           int
	NumberInvalidVotes               int
	NumberValidVotes                 int
	NumberSortedAndCounted           int
	NumberBlankBallots               int

	SignaturePollingOfficer1     bool
	SignaturePollingOfficer2     bool
	SignaturePollingStationChair bool
	SignatureDated               bool

	DeactivatedByRequestID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NumberBallotsUsed derives the used-ballot total from the ledger plus the
// form's summed candidate votes.
func (r ReconciliationForm) NumberBallotsUsed(numVotes int) int {
	return r.NumberCancelledBallots +
		r.NumberUnstampedBallots +
		r.NumberInvalidVotes +
		numVotes
}

// NumberBallotsExpected is the ledger's expectation for the candidate vote
// total: ballots inside the box less unstamped and invalid ones.
func (r ReconciliationForm) NumberBallotsExpected() int {
	return r.NumberBallotsInsideBox -
		r.NumberUnstampedBallots -
		r.NumberInvalidVotes
}

// NumberBallotsInsideTheBox recomputes the inside-box total from the sorted
// categories, as opposed to the clerk-entered NumberBallotsInsideBox.
func (r ReconciliationForm) NumberBallotsInsideTheBox() int {
	return r.NumberValidVotes +
		r.NumberInvalidVotes +
		r.NumberUnstampedBallots
}

// ComparableFields returns the ledger as a field map for field-by-field
// arbitration. Identity and entry-version columns are excluded.
func (r ReconciliationForm) ComparableFields() map[string]any {
	return map[string]any{
		"is_stamped":                            r.IsStamped,
		"ballot_number_from":                    r.BallotNumberFrom,
		"ballot_number_to":                      r.BallotNumberTo,
		"number_ballots_received":               r.NumberBallotsReceived,
		"number_signatures_in_vr":               r.NumberSignaturesInVR,
		"number_unused_ballots":                 r.NumberUnusedBallots,
		"number_spoiled_ballots":                r.NumberSpoiledBallots,
		"number_cancelled_ballots":              r.NumberCancelledBallots,
		"number_ballots_outside_box":            r.NumberBallotsOutsideBox,
		"number_ballots_inside_box":             r.NumberBallotsInsideBox,
		"number_ballots_inside_and_outside_box": r.NumberBallotsInsideAndOutsideBox,
		"number_unstamped_ballots":              r.NumberUnstampedBallots,
		"number_invalid_votes":                  r.NumberInvalidVotes,
		"number_valid_votes":                    r.NumberValidVotes,
		"number_sorted_and_counted":             r.NumberSortedAndCounted,
		"number_blank_ballots":                  r.NumberBlankBallots,
		"signature_polling_officer_1":           r.SignaturePollingOfficer1,
		"signature_polling_officer_2":           r.SignaturePollingOfficer2,
		"signature_polling_station_chair":       r.SignaturePollingStationChair,
		"signature_dated":                       r.SignatureDated,
	}
}

// ApplyField sets a single comparable field by its arbitration name.
func (r *ReconciliationForm) ApplyField(name string, value any) bool {
	switch name {
	case "is_stamped":
		r.IsStamped, _ = value.(bool)
	case "ballot_number_from":
		r.BallotNumberFrom, _ = value.(string)
	case "ballot_number_to":
		r.BallotNumberTo, _ = value.(string)
	case "number_ballots_received":
		r.NumberBallotsReceived = asInt(value)
	case "number_signatures_in_vr":
		r.NumberSignaturesInVR = asInt(value)
	case "number_unused_ballots":
		r.NumberUnusedBallots = asInt(value)
	case "number_spoiled_ballots":
		r.NumberSpoiledBallots = asInt(value)
	case "number_cancelled_ballots":
		r.NumberCancelledBallots = asInt(value)
	case "number_ballots_outside_box":
		r.NumberBallotsOutsideBox = asInt(value)
	case "number_ballots_inside_box":
		r.NumberBallotsInsideBox = asInt(value)
	case "number_ballots_inside_and_outside_box":
		r.NumberBallotsInsideAndOutsideBox = asInt(value)
	case "number_unstamped_ballots":
		r.NumberUnstampedBallots = asInt(value)
	case "number_invalid_votes":
		r.NumberInvalidVotes = asInt(value)
	case "number_valid_votes":
		r.NumberValidVotes = asInt(value)
	case "number_sorted_and_counted":
		r.NumberSortedAndCounted = asInt(value)
	case "number_blank_ballots":
		r.NumberBlankBallots = asInt(value)
	case "signature_polling_officer_1":
		r.SignaturePollingOfficer1, _ = value.(bool)
	case "signature_polling_officer_2":
		r.SignaturePollingOfficer2, _ = value.(bool)
	case "signature_polling_station_chair":
		r.SignaturePollingStationChair, _ = value.(bool)
	case "signature_dated":
		r.SignatureDated, _ = value.(bool)
	default:
		return false
	}
	return true
}

func asInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
