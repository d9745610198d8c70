package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/identity-access/authorization-service/application"
	"quorum/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/domain/services"
	"quorum/contexts/identity-access/authorization-service/domain/valueobjects"
	"quorum/contexts/identity-access/authorization-service/ports"
)

type GrantRoleCommand struct {
	IdempotencyKey string
	UserID         string
	RoleID         string
	AdminID        string
	Reason         string
	ExpiresAt      *time.Time
}

// GrantRoleResult doubles as the replay payload stored under the
// idempotency key.
type GrantRoleResult struct {
	Assignment entities.RoleAssignment `json:"assignment"`
	AuditLogID string                  `json:"audit_log_id"`
	Replayed   bool                    `json:"replayed"`
}

// GrantRoleUseCase assigns a role to a user on behalf of an admin. The write
// lands atomically with its audit and outbox rows, and any cached permission
// set for the user is retired.
type GrantRoleUseCase struct {
	Repository      ports.Repository
	Idempotency     ports.IdempotencyStore
	PermissionCache ports.PermissionCache
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	IdempotencyTTL  time.Duration
	Logger          *slog.Logger
}

func (u GrantRoleUseCase) Execute(ctx context.Context, cmd GrantRoleCommand) (GrantRoleResult, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return GrantRoleResult{}, domainerrors.ErrIdempotencyKeyRequired
	}
	if _, err := valueobjects.NewUserID(cmd.UserID); err != nil {
		return GrantRoleResult{}, err
	}
	if strings.TrimSpace(cmd.RoleID) == "" {
		return GrantRoleResult{}, domainerrors.ErrInvalidRoleID
	}
	if _, err := valueobjects.NewUserID(cmd.AdminID); err != nil {
		return GrantRoleResult{}, domainerrors.ErrInvalidAdminID
	}

	requestHash, err := hashRequest(struct {
		UserID    string     `json:"user_id"`
		RoleID    string     `json:"role_id"`
		AdminID   string     `json:"admin_id"`
		Reason    string     `json:"reason"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
	}{cmd.UserID, cmd.RoleID, cmd.AdminID, cmd.Reason, cmd.ExpiresAt})
	if err != nil {
		return GrantRoleResult{}, err
	}

	key := idempotencyKeyPrefix + cmd.IdempotencyKey
	now := u.now()

	payload, found, err := storedResponse(ctx, u.Idempotency, key, requestHash, now)
	if err != nil {
		return GrantRoleResult{}, err
	}
	if found {
		var replay GrantRoleResult
		if err := json.Unmarshal(payload, &replay); err != nil {
			return GrantRoleResult{}, err
		}
		replay.Replayed = true
		return replay, nil
	}

	if err := ensureActorPermission(ctx, u.Repository, cmd.AdminID, services.PermissionGrantRole, now); err != nil {
		return GrantRoleResult{}, err
	}

	assignmentID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return GrantRoleResult{}, err
	}
	auditLogID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return GrantRoleResult{}, err
	}
	outboxID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return GrantRoleResult{}, err
	}

	mutation, err := u.Repository.GrantRole(ctx, ports.GrantRoleInput{
		AssignmentID: assignmentID,
		AuditLogID:   auditLogID,
		OutboxID:     outboxID,
		UserID:       cmd.UserID,
		RoleID:       cmd.RoleID,
		AdminID:      cmd.AdminID,
		Reason:       cmd.Reason,
		AssignedAt:   now,
		ExpiresAt:    cmd.ExpiresAt,
	})
	if err != nil {
		return GrantRoleResult{}, err
	}

	if u.PermissionCache != nil {
		if err := u.PermissionCache.Invalidate(ctx, cmd.UserID); err != nil {
			logger.Warn("permission cache invalidate failed after grant",
				"event", "permission_cache_invalidate_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"user_id", cmd.UserID,
				"error", err.Error(),
			)
		}
	}

	result := GrantRoleResult{
		Assignment: mutation.Assignment,
		AuditLogID: mutation.AuditLogID,
	}
	if err := rememberResponse(ctx, u.Idempotency, key, "grant_role", requestHash,
		result, now.Add(u.idempotencyTTL())); err != nil {
		return GrantRoleResult{}, err
	}

	logger.Info("role granted",
		"event", "role_granted",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"user_id", cmd.UserID,
		"role_id", cmd.RoleID,
		"admin_id", cmd.AdminID,
		"assignment_id", result.Assignment.AssignmentID,
	)
	return result, nil
}

func (u GrantRoleUseCase) idempotencyTTL() time.Duration {
	if u.IdempotencyTTL <= 0 {
		return defaultIdempotencyTTL
	}
	return u.IdempotencyTTL
}

func (u GrantRoleUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
