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

type RevokeRoleCommand struct {
	IdempotencyKey string
	UserID         string
	RoleID         string
	AdminID        string
	Reason         string
}

type RevokeRoleResult struct {
	Assignment entities.RoleAssignment `json:"assignment"`
	AuditLogID string                  `json:"audit_log_id"`
	Replayed   bool                    `json:"replayed"`
}

// RevokeRoleUseCase deactivates an active assignment. The user's cached
// permission set is retired so the revocation takes effect immediately.
type RevokeRoleUseCase struct {
	Repository      ports.Repository
	Idempotency     ports.IdempotencyStore
	PermissionCache ports.PermissionCache
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	IdempotencyTTL  time.Duration
	Logger          *slog.Logger
}

func (u RevokeRoleUseCase) Execute(ctx context.Context, cmd RevokeRoleCommand) (RevokeRoleResult, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return RevokeRoleResult{}, domainerrors.ErrIdempotencyKeyRequired
	}
	if _, err := valueobjects.NewUserID(cmd.UserID); err != nil {
		return RevokeRoleResult{}, err
	}
	if strings.TrimSpace(cmd.RoleID) == "" {
		return RevokeRoleResult{}, domainerrors.ErrInvalidRoleID
	}
	if _, err := valueobjects.NewUserID(cmd.AdminID); err != nil {
		return RevokeRoleResult{}, domainerrors.ErrInvalidAdminID
	}

	requestHash, err := hashRequest(struct {
		UserID  string `json:"user_id"`
		RoleID  string `json:"role_id"`
		AdminID string `json:"admin_id"`
		Reason  string `json:"reason"`
	}{cmd.UserID, cmd.RoleID, cmd.AdminID, cmd.Reason})
	if err != nil {
		return RevokeRoleResult{}, err
	}

	key := idempotencyKeyPrefix + cmd.IdempotencyKey
	now := u.now()

	payload, found, err := storedResponse(ctx, u.Idempotency, key, requestHash, now)
	if err != nil {
		return RevokeRoleResult{}, err
	}
	if found {
		var replay RevokeRoleResult
		if err := json.Unmarshal(payload, &replay); err != nil {
			return RevokeRoleResult{}, err
		}
		replay.Replayed = true
		return replay, nil
	}

	if err := ensureActorPermission(ctx, u.Repository, cmd.AdminID, services.PermissionRevokeRole, now); err != nil {
		return RevokeRoleResult{}, err
	}

	auditLogID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return RevokeRoleResult{}, err
	}
	outboxID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return RevokeRoleResult{}, err
	}

	mutation, err := u.Repository.RevokeRole(ctx, ports.RevokeRoleInput{
		AuditLogID: auditLogID,
		OutboxID:   outboxID,
		UserID:     cmd.UserID,
		RoleID:     cmd.RoleID,
		AdminID:    cmd.AdminID,
		Reason:     cmd.Reason,
		RevokedAt:  now,
	})
	if err != nil {
		return RevokeRoleResult{}, err
	}

	if u.PermissionCache != nil {
		if err := u.PermissionCache.Invalidate(ctx, cmd.UserID); err != nil {
			logger.Warn("permission cache invalidate failed after revoke",
				"event", "permission_cache_invalidate_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"user_id", cmd.UserID,
				"error", err.Error(),
			)
		}
	}

	result := RevokeRoleResult{
		Assignment: mutation.Assignment,
		AuditLogID: mutation.AuditLogID,
	}
	if err := rememberResponse(ctx, u.Idempotency, key, "revoke_role", requestHash,
		result, now.Add(u.idempotencyTTL())); err != nil {
		return RevokeRoleResult{}, err
	}

	logger.Info("role revoked",
		"event", "role_revoked",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"user_id", cmd.UserID,
		"role_id", cmd.RoleID,
		"admin_id", cmd.AdminID,
	)
	return result, nil
}

func (u RevokeRoleUseCase) idempotencyTTL() time.Duration {
	if u.IdempotencyTTL <= 0 {
		return defaultIdempotencyTTL
	}
	return u.IdempotencyTTL
}

func (u RevokeRoleUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
