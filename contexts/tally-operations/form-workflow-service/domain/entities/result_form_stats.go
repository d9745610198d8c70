package entities

import "time"

// ResultFormStats is one per-clerk processing-time sample. Correction
// arbitration credits data-entry error counts to the most recent DE1/DE2
// rows.
type ResultFormStats struct {
	StatsID      string
	ResultFormID string
	TallyID      string
	UserID       string
	UserRole     string

	ProcessingTimeSeconds int
	ApprovedBySupervisor  bool
	RejectedBySupervisor  bool
	DataEntryErrors       int

	CreatedAt time.Time
	UpdatedAt time.Time
}
