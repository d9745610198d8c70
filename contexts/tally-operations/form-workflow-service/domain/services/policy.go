package services

import (
	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
)

// Workflow roles. Names match the authorization service's role registry.
const (
	RoleIntakeClerk              = "intake_clerk"
	RoleIntakeSupervisor         = "intake_supervisor"
	RoleDataEntry1Clerk          = "data_entry_1_clerk"
	RoleDataEntry2Clerk          = "data_entry_2_clerk"
	RoleCorrectionsClerk         = "corrections_clerk"
	RoleQualityControlClerk      = "quality_control_clerk"
	RoleQualityControlSupervisor = "quality_control_supervisor"
	RoleClearanceClerk           = "clearance_clerk"
	RoleClearanceSupervisor      = "clearance_supervisor"
	RoleAuditClerk               = "audit_clerk"
	RoleAuditSupervisor          = "audit_supervisor"
	RoleTallyManager             = "tally_manager"
	RoleSuperAdministrator       = "super_administrator"
)

// Actor is the acting user as seen by the workflow commands.
type Actor struct {
	UserID string
	Roles  []string
}

func (a Actor) HasRole(role string) bool {
	for _, held := range a.Roles {
		if held == role {
			return true
		}
	}
	return false
}

// IsAdmin reports the roles that bypass role gates (never state gates).
func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleSuperAdministrator) || a.HasRole(RoleTallyManager)
}

// Workflow actions, role-gated by the table below.
const (
	ActionIntakeBarcode       = "intake.submit_barcode"
	ActionIntakeConfirm       = "intake.confirm"
	ActionIntakeAssignCenter  = "intake.assign_center_station"
	ActionDataEntrySubmit     = "data_entry.submit"
	ActionCorrectionsSubmit   = "corrections.submit"
	ActionQualityControl      = "quality_control.review"
	ActionAuditReview         = "audit.review"
	ActionAuditCreate         = "audit.create"
	ActionClearanceReview     = "clearance.review"
	ActionClearanceCreate     = "clearance.create"
	ActionRecallRequest       = "recall.request"
	ActionRecallResolve       = "recall.resolve"
	ActionQuarantineConfigure = "quarantine.configure"
)

var actionRoles = map[string][]string{
	ActionIntakeBarcode:       {RoleIntakeClerk, RoleIntakeSupervisor},
	ActionIntakeConfirm:       {RoleIntakeClerk, RoleIntakeSupervisor},
	ActionIntakeAssignCenter:  {RoleIntakeClerk, RoleIntakeSupervisor},
	ActionDataEntrySubmit:     {RoleDataEntry1Clerk, RoleDataEntry2Clerk},
	ActionCorrectionsSubmit:   {RoleCorrectionsClerk},
	ActionQualityControl:      {RoleQualityControlClerk, RoleQualityControlSupervisor},
	ActionAuditReview:         {RoleAuditClerk, RoleAuditSupervisor},
	ActionAuditCreate:         {RoleAuditClerk, RoleAuditSupervisor},
	ActionClearanceReview:     {RoleClearanceClerk, RoleClearanceSupervisor},
	ActionClearanceCreate:     {RoleClearanceClerk, RoleClearanceSupervisor},
	ActionRecallRequest:       {RoleAuditClerk, RoleAuditSupervisor},
	ActionRecallResolve:       {RoleTallyManager, RoleSuperAdministrator},
	ActionQuarantineConfigure: {RoleTallyManager},
}

// Authorize enforces the static role gate for an action. Tally managers and
// super administrators pass every role gate.
func Authorize(actor Actor, action string) error {
	if actor.IsAdmin() {
		return nil
	}
	for _, role := range actionRoles[action] {
		if actor.HasRole(role) {
			return nil
		}
	}
	return domainerrors.ErrForbidden
}
