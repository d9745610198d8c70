package services

import "quorum/contexts/identity-access/authorization-service/domain/entities"

// BaselineRoles is the station role registry seeded into every deployment.
// Role ids double as stable names so grants stay readable in audit logs.
func BaselineRoles() []entities.Role {
	return []entities.Role{
		{
			RoleID:      "intake_clerk",
			RoleName:    "intake_clerk",
			Permissions: []string{"intake.submit_barcode", "intake.confirm", "intake.assign_center_station"},
		},
		{
			RoleID:      "intake_supervisor",
			RoleName:    "intake_supervisor",
			Permissions: []string{"intake.submit_barcode", "intake.confirm", "intake.assign_center_station", "clearance.create"},
		},
		{
			RoleID:      "data_entry_1_clerk",
			RoleName:    "data_entry_1_clerk",
			Permissions: []string{"data_entry.submit"},
		},
		{
			RoleID:      "data_entry_2_clerk",
			RoleName:    "data_entry_2_clerk",
			Permissions: []string{"data_entry.submit"},
		},
		{
			RoleID:      "corrections_clerk",
			RoleName:    "corrections_clerk",
			Permissions: []string{"corrections.submit"},
		},
		{
			RoleID:      "quality_control_clerk",
			RoleName:    "quality_control_clerk",
			Permissions: []string{"quality_control.review"},
		},
		{
			RoleID:      "quality_control_supervisor",
			RoleName:    "quality_control_supervisor",
			Permissions: []string{"quality_control.review", "audit.create"},
		},
		{
			RoleID:      "clearance_clerk",
			RoleName:    "clearance_clerk",
			Permissions: []string{"clearance.review"},
		},
		{
			RoleID:      "clearance_supervisor",
			RoleName:    "clearance_supervisor",
			Permissions: []string{"clearance.review", "clearance.create"},
		},
		{
			RoleID:      "audit_clerk",
			RoleName:    "audit_clerk",
			Permissions: []string{"audit.review"},
		},
		{
			RoleID:      "audit_supervisor",
			RoleName:    "audit_supervisor",
			Permissions: []string{"audit.review", "audit.create", "recall.request"},
		},
		{
			RoleID:   "tally_manager",
			RoleName: "tally_manager",
			Permissions: []string{
				"form.create", "recall.request", "recall.resolve", "quarantine.configure",
				PermissionGrantRole, PermissionRevokeRole,
			},
		},
		{
			RoleID:   "super_administrator",
			RoleName: "super_administrator",
			Permissions: []string{
				"form.create", "recall.request", "recall.resolve", "quarantine.configure",
				PermissionGrantRole, PermissionRevokeRole, PermissionDelegateRole,
			},
		},
	}
}
