package unit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	authorization "quorum/contexts/identity-access/authorization-service"
	authworkers "quorum/contexts/identity-access/authorization-service/application/workers"
	"quorum/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/ports"
	httptransport "quorum/contexts/identity-access/authorization-service/transport/http"
)

// newAuthzModule seeds admin-1 as tally_manager so grant/revoke commands
// pass the actor permission guard.
func newAuthzModule() authorization.Module {
	module := authorization.NewInMemoryModule(nil)
	module.Store.SeedAssignment(entities.RoleAssignment{
		AssignmentID: "seed-admin-1",
		UserID:       "admin-1",
		RoleID:       "tally_manager",
		AssignedBy:   "system",
		AssignedAt:   time.Now().UTC(),
		IsActive:     true,
	})
	return module
}

func TestAuthorizationGrantAndCheckPermission(t *testing.T) {
	module := newAuthzModule()

	grant, err := module.Handler.GrantRoleHandler(
		context.Background(),
		"user-1",
		"admin-1",
		"idem-grant-1",
		httptransport.GrantRoleRequest{
			RoleID: "intake_clerk",
			Reason: "station staffing",
		},
	)
	if err != nil {
		t.Fatalf("grant role failed: %v", err)
	}
	if grant.AssignmentID == "" {
		t.Fatalf("expected assignment id")
	}

	decision, err := module.Handler.CheckPermissionHandler(
		context.Background(),
		"user-1",
		httptransport.CheckPermissionRequest{
			Permission: "intake.submit_barcode",
		},
	)
	if err != nil {
		t.Fatalf("permission check failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected permission allowed")
	}
}

func TestAuthorizationGrantRequiresActorPermission(t *testing.T) {
	module := newAuthzModule()

	_, err := module.Handler.GrantRoleHandler(
		context.Background(),
		"user-9",
		"admin-without-roles",
		"idem-grant-forbidden",
		httptransport.GrantRoleRequest{RoleID: "intake_clerk"},
	)
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden for actor without user.grant_role, got %v", err)
	}

	// audit_clerk cannot staff stations either
	module.Store.SeedAssignment(entities.RoleAssignment{
		AssignmentID: "seed-audit-admin",
		UserID:       "admin-audit",
		RoleID:       "audit_clerk",
		AssignedBy:   "system",
		AssignedAt:   time.Now().UTC(),
		IsActive:     true,
	})
	_, err = module.Handler.GrantRoleHandler(
		context.Background(),
		"user-9",
		"admin-audit",
		"idem-grant-forbidden-2",
		httptransport.GrantRoleRequest{RoleID: "intake_clerk"},
	)
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden for audit_clerk actor, got %v", err)
	}
}

func TestAuthorizationGrantUnknownRole(t *testing.T) {
	module := newAuthzModule()

	_, err := module.Handler.GrantRoleHandler(
		context.Background(),
		"user-8",
		"admin-1",
		"idem-grant-unknown-role",
		httptransport.GrantRoleRequest{RoleID: "ballot_wizard"},
	)
	if !errors.Is(err, domainerrors.ErrRoleNotFound) {
		t.Fatalf("expected role not found, got %v", err)
	}
}

func TestAuthorizationGrantRoleIdempotencyReplay(t *testing.T) {
	module := newAuthzModule()

	first, err := module.Handler.GrantRoleHandler(
		context.Background(),
		"user-2",
		"admin-1",
		"idem-grant-replay",
		httptransport.GrantRoleRequest{RoleID: "data_entry_1_clerk"},
	)
	if err != nil {
		t.Fatalf("first grant failed: %v", err)
	}

	second, err := module.Handler.GrantRoleHandler(
		context.Background(),
		"user-2",
		"admin-1",
		"idem-grant-replay",
		httptransport.GrantRoleRequest{RoleID: "data_entry_1_clerk"},
	)
	if err != nil {
		t.Fatalf("second grant replay failed: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("expected replayed response")
	}
	if first.AssignmentID != second.AssignmentID {
		t.Fatalf("expected same assignment id, got %s and %s", first.AssignmentID, second.AssignmentID)
	}
}

func TestAuthorizationGrantRoleIdempotencyConflict(t *testing.T) {
	module := newAuthzModule()

	_, err := module.Handler.GrantRoleHandler(
		context.Background(),
		"user-3",
		"admin-1",
		"idem-grant-conflict",
		httptransport.GrantRoleRequest{RoleID: "data_entry_1_clerk"},
	)
	if err != nil {
		t.Fatalf("first grant failed: %v", err)
	}

	_, err = module.Handler.GrantRoleHandler(
		context.Background(),
		"user-3",
		"admin-1",
		"idem-grant-conflict",
		httptransport.GrantRoleRequest{RoleID: "data_entry_2_clerk"},
	)
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestAuthorizationRevokeRoleRemovesPermission(t *testing.T) {
	module := newAuthzModule()

	_, err := module.Handler.GrantRoleHandler(
		context.Background(),
		"user-4",
		"admin-1",
		"idem-grant-revoke",
		httptransport.GrantRoleRequest{RoleID: "corrections_clerk"},
	)
	if err != nil {
		t.Fatalf("grant before revoke failed: %v", err)
	}

	_, err = module.Handler.RevokeRoleHandler(
		context.Background(),
		"user-4",
		"admin-1",
		"idem-revoke-1",
		httptransport.RevokeRoleRequest{RoleID: "corrections_clerk", Reason: "station closed"},
	)
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	decision, err := module.Handler.CheckPermissionHandler(
		context.Background(),
		"user-4",
		httptransport.CheckPermissionRequest{Permission: "corrections.submit"},
	)
	if err != nil {
		t.Fatalf("permission check after revoke failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected permission denied after revoke")
	}
}

func TestAuthorizationDelegationRequiresFutureExpiry(t *testing.T) {
	module := newAuthzModule()

	_, err := module.Handler.CreateDelegationHandler(
		context.Background(),
		"idem-delegation-1",
		httptransport.CreateDelegationRequest{
			FromAdminID: "super-admin-1",
			ToAdminID:   "admin-2",
			RoleID:      "tally_manager",
			ExpiresAt:   time.Now().Add(-time.Minute),
			Reason:      "temporary",
		},
	)
	if !errors.Is(err, domainerrors.ErrInvalidDelegation) {
		t.Fatalf("expected invalid delegation, got %v", err)
	}
}

func TestAuthorizationDelegationExtendsPermissions(t *testing.T) {
	module := newAuthzModule()
	module.Store.SeedAssignment(entities.RoleAssignment{
		AssignmentID: "seed-super-admin",
		UserID:       "super-admin-1",
		RoleID:       "super_administrator",
		AssignedBy:   "system",
		AssignedAt:   time.Now().UTC(),
		IsActive:     true,
	})

	// delegation requires role.delegate, which tally_manager lacks
	_, err := module.Handler.CreateDelegationHandler(
		context.Background(),
		"idem-delegation-forbidden",
		httptransport.CreateDelegationRequest{
			FromAdminID: "admin-1",
			ToAdminID:   "admin-2",
			RoleID:      "tally_manager",
			ExpiresAt:   time.Now().Add(8 * time.Hour),
		},
	)
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden for tally_manager delegator, got %v", err)
	}

	resp, err := module.Handler.CreateDelegationHandler(
		context.Background(),
		"idem-delegation-2",
		httptransport.CreateDelegationRequest{
			FromAdminID: "super-admin-1",
			ToAdminID:   "admin-2",
			RoleID:      "tally_manager",
			ExpiresAt:   time.Now().Add(8 * time.Hour),
			Reason:      "night shift cover",
		},
	)
	if err != nil {
		t.Fatalf("delegation failed: %v", err)
	}
	if resp.DelegationID == "" {
		t.Fatalf("expected delegation id")
	}

	decision, err := module.Handler.CheckPermissionHandler(
		context.Background(),
		"admin-2",
		httptransport.CheckPermissionRequest{Permission: "quarantine.configure"},
	)
	if err != nil {
		t.Fatalf("permission check for delegate failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected delegated permission allowed")
	}
}

func TestAuthorizationPolicyConsumerInvalidatesCache(t *testing.T) {
	module := newAuthzModule()
	ctx := context.Background()

	expiry := time.Now().Add(5 * time.Minute)
	if err := module.Store.Set(ctx, "user-7", []string{"intake.submit_barcode"}, expiry); err != nil {
		t.Fatalf("cache set failed: %v", err)
	}

	payload, err := json.Marshal(map[string]string{"user_id": "user-7"})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	event := ports.PolicyChangedEvent{
		EventID:   "evt-1",
		EventType: "authz.policy_changed",
		Data:      payload,
	}

	consumer := authworkers.PolicyChangedConsumer{
		Dedup:           module.Store,
		PermissionCache: module.Store,
	}
	if err := consumer.Handle(ctx, event); err != nil {
		t.Fatalf("consumer handle failed: %v", err)
	}

	if _, hit, err := module.Store.Get(ctx, "user-7", time.Now()); err != nil {
		t.Fatalf("cache get failed: %v", err)
	} else if hit {
		t.Fatalf("expected cache entry invalidated")
	}

	// redelivery of the same event id is a no-op
	if err := module.Store.Set(ctx, "user-7", []string{"intake.submit_barcode"}, expiry); err != nil {
		t.Fatalf("cache reset failed: %v", err)
	}
	if err := consumer.Handle(ctx, event); err != nil {
		t.Fatalf("consumer redelivery failed: %v", err)
	}
	if _, hit, err := module.Store.Get(ctx, "user-7", time.Now()); err != nil {
		t.Fatalf("cache get after redelivery failed: %v", err)
	} else if !hit {
		t.Fatalf("expected redelivery to leave cache untouched")
	}
}
