package services

import (
	"errors"
	"testing"

	domainerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
)

func TestAuthorizeRoleGates(t *testing.T) {
	cases := []struct {
		action string
		role   string
		want   bool
	}{
		{ActionIntakeBarcode, RoleIntakeClerk, true},
		{ActionIntakeBarcode, RoleDataEntry1Clerk, false},
		{ActionDataEntrySubmit, RoleDataEntry2Clerk, true},
		{ActionDataEntrySubmit, RoleCorrectionsClerk, false},
		{ActionCorrectionsSubmit, RoleCorrectionsClerk, true},
		{ActionQualityControl, RoleQualityControlSupervisor, true},
		{ActionQualityControl, RoleClearanceClerk, false},
		{ActionClearanceReview, RoleClearanceSupervisor, true},
		{ActionAuditReview, RoleAuditClerk, true},
		{ActionRecallRequest, RoleAuditClerk, true},
		{ActionRecallRequest, RoleIntakeClerk, false},
		{ActionRecallResolve, RoleTallyManager, true},
		{ActionRecallResolve, RoleAuditSupervisor, false},
		{ActionQuarantineConfigure, RoleTallyManager, true},
		{ActionQuarantineConfigure, RoleAuditSupervisor, false},
	}
	for _, tc := range cases {
		actor := Actor{UserID: "user-1", Roles: []string{tc.role}}
		err := Authorize(actor, tc.action)
		if tc.want && err != nil {
			t.Fatalf("role %s should pass %s: %v", tc.role, tc.action, err)
		}
		if !tc.want && !errors.Is(err, domainerrors.ErrForbidden) {
			t.Fatalf("role %s should be forbidden for %s, got %v", tc.role, tc.action, err)
		}
	}
}

func TestAuthorizeAdminBypass(t *testing.T) {
	for _, role := range []string{RoleTallyManager, RoleSuperAdministrator} {
		actor := Actor{UserID: "admin", Roles: []string{role}}
		for _, action := range []string{
			ActionIntakeBarcode, ActionDataEntrySubmit, ActionCorrectionsSubmit,
			ActionQualityControl, ActionAuditReview, ActionClearanceReview,
		} {
			if err := Authorize(actor, action); err != nil {
				t.Fatalf("%s should bypass the %s gate: %v", role, action, err)
			}
		}
	}
}

func TestAuthorizeNoRoles(t *testing.T) {
	err := Authorize(Actor{UserID: "user-1"}, ActionIntakeBarcode)
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
