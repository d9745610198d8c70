package entities

import "time"

// ReviewKind distinguishes the three two-person review records. At most one
// active review of each kind exists per form at a time.
type ReviewKind string

const (
	ReviewKindQualityControl ReviewKind = "quality_control"
	ReviewKindAudit          ReviewKind = "audit"
	ReviewKindClearance      ReviewKind = "clearance"
)

type ActionPrior string

const (
	ActionPriorEmpty                       ActionPrior = ""
	ActionPriorRequestCopyFromField        ActionPrior = "request_copy_from_field"
	ActionPriorRequestAuditActionFromField ActionPrior = "request_audit_action_from_field"
	ActionPriorPendingAdvice               ActionPrior = "pending_advice"
	ActionPriorNoneRequired                ActionPrior = "none_required"
)

type AuditResolution string

const (
	AuditResolutionEmpty                   AuditResolution = ""
	AuditResolutionNoProblemToDE1          AuditResolution = "no_problem_to_data_entry_1"
	AuditResolutionClarifiedFiguresToDE1   AuditResolution = "clarified_figures_to_data_entry_1"
	AuditResolutionOtherCorrectionToDE1    AuditResolution = "other_correction_to_data_entry_1"
	AuditResolutionMakeAvailableForArchive AuditResolution = "make_available_for_archive"
)

type ClearanceResolution string

const (
	ClearanceResolutionEmpty               ClearanceResolution = ""
	ClearanceResolutionPendingFieldInput   ClearanceResolution = "pending_field_input"
	ClearanceResolutionPassToAdministrator ClearanceResolution = "pass_to_administrator"
	ClearanceResolutionResetToPreintake    ClearanceResolution = "reset_to_preintake"
	// ResetToPreintakeSkipZeroCheck additionally marks the form so a later
	// all-zero data entry no longer auto-clears it.
	ClearanceResolutionResetToPreintakeSkipZeroCheck ClearanceResolution = "reset_to_preintake_and_skip_all_zero_votes_check"
)

// QualityControl is the supervisor inspection record in front of the archive
// gate.
type QualityControl struct {
	QualityControlID string
	ResultFormID     string
	TallyID          string
	UserID           string
	SupervisorID     string
	Active           bool

	PassedQC             bool
	PassedReconciliation bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Audit is the two-person review record for quarantined or escalated forms.
type Audit struct {
	AuditID      string
	ResultFormID string
	TallyID      string
	UserID       string
	SupervisorID string
	Active       bool

	ForSuperadmin      bool
	ReviewedTeam       bool
	ReviewedSupervisor bool

	// Problem flags ticked by the audit clerk.
	BlankReconciliation bool
	BlankResults        bool
	DamagedForm         bool
	UnclearFigures      bool
	OtherProblem        string

	ActionPriorToRecommendation ActionPrior
	ResolutionRecommendation    AuditResolution

	TeamComment       string
	SupervisorComment string

	// Quarantine check ids attached when the engine diverted the form here.
	FailedQuarantineCheckIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Problems lists the ticked problem flags.
func (a Audit) Problems() []string {
	var problems []string
	if a.BlankReconciliation {
		problems = append(problems, "blank reconciliation")
	}
	if a.BlankResults {
		problems = append(problems, "blank results")
	}
	if a.DamagedForm {
		problems = append(problems, "damaged form")
	}
	if a.UnclearFigures {
		problems = append(problems, "unclear figures")
	}
	if a.OtherProblem != "" {
		problems = append(problems, a.OtherProblem)
	}
	return problems
}

// Clearance is the two-person review record for forms blocked from the
// normal path.
type Clearance struct {
	ClearanceID  string
	ResultFormID string
	TallyID      string
	UserID       string
	SupervisorID string
	Active       bool

	ReviewedTeam       bool
	ReviewedSupervisor bool

	ActionPriorToRecommendation ActionPrior
	ResolutionRecommendation    ClearanceResolution

	TeamComment       string
	SupervisorComment string

	DateTeamModified       *time.Time
	DateSupervisorModified *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
