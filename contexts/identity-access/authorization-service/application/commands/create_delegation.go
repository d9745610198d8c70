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

type CreateDelegationCommand struct {
	IdempotencyKey string
	FromAdminID    string
	ToAdminID      string
	RoleID         string
	ExpiresAt      time.Time
	Reason         string
}

type CreateDelegationResult struct {
	Delegation entities.Delegation `json:"delegation"`
	AuditLogID string              `json:"audit_log_id"`
	Replayed   bool                `json:"replayed"`
}

// CreateDelegationUseCase lends a role from one admin to another until a
// mandatory expiry. Self-delegation and past expiries are rejected up front.
type CreateDelegationUseCase struct {
	Repository     ports.Repository
	Idempotency    ports.IdempotencyStore
	IDGenerator    ports.IDGenerator
	Clock          ports.Clock
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (u CreateDelegationUseCase) Execute(ctx context.Context, cmd CreateDelegationCommand) (CreateDelegationResult, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return CreateDelegationResult{}, domainerrors.ErrIdempotencyKeyRequired
	}
	if _, err := valueobjects.NewUserID(cmd.FromAdminID); err != nil {
		return CreateDelegationResult{}, domainerrors.ErrInvalidAdminID
	}
	if _, err := valueobjects.NewUserID(cmd.ToAdminID); err != nil {
		return CreateDelegationResult{}, domainerrors.ErrInvalidAdminID
	}
	if strings.TrimSpace(cmd.RoleID) == "" {
		return CreateDelegationResult{}, domainerrors.ErrInvalidRoleID
	}
	if cmd.FromAdminID == cmd.ToAdminID {
		return CreateDelegationResult{}, domainerrors.ErrInvalidDelegation
	}
	if !cmd.ExpiresAt.After(u.now()) {
		return CreateDelegationResult{}, domainerrors.ErrInvalidDelegation
	}

	requestHash, err := hashRequest(struct {
		FromAdminID string    `json:"from_admin_id"`
		ToAdminID   string    `json:"to_admin_id"`
		RoleID      string    `json:"role_id"`
		ExpiresAt   time.Time `json:"expires_at"`
		Reason      string    `json:"reason"`
	}{cmd.FromAdminID, cmd.ToAdminID, cmd.RoleID, cmd.ExpiresAt.UTC(), cmd.Reason})
	if err != nil {
		return CreateDelegationResult{}, err
	}

	key := idempotencyKeyPrefix + cmd.IdempotencyKey
	now := u.now()

	payload, found, err := storedResponse(ctx, u.Idempotency, key, requestHash, now)
	if err != nil {
		return CreateDelegationResult{}, err
	}
	if found {
		var replay CreateDelegationResult
		if err := json.Unmarshal(payload, &replay); err != nil {
			return CreateDelegationResult{}, err
		}
		replay.Replayed = true
		return replay, nil
	}

	if err := ensureActorPermission(ctx, u.Repository, cmd.FromAdminID, services.PermissionDelegateRole, now); err != nil {
		return CreateDelegationResult{}, err
	}

	delegationID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateDelegationResult{}, err
	}
	auditLogID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateDelegationResult{}, err
	}
	outboxID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateDelegationResult{}, err
	}

	mutation, err := u.Repository.CreateDelegation(ctx, ports.DelegationInput{
		DelegationID: delegationID,
		AuditLogID:   auditLogID,
		OutboxID:     outboxID,
		FromAdminID:  cmd.FromAdminID,
		ToAdminID:    cmd.ToAdminID,
		RoleID:       cmd.RoleID,
		Reason:       cmd.Reason,
		DelegatedAt:  now,
		ExpiresAt:    cmd.ExpiresAt.UTC(),
	})
	if err != nil {
		return CreateDelegationResult{}, err
	}

	result := CreateDelegationResult{
		Delegation: mutation.Delegation,
		AuditLogID: mutation.AuditLogID,
	}
	if err := rememberResponse(ctx, u.Idempotency, key, "create_delegation", requestHash,
		result, now.Add(u.idempotencyTTL())); err != nil {
		return CreateDelegationResult{}, err
	}

	logger.Info("role delegated",
		"event", "role_delegated",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"delegation_id", result.Delegation.DelegationID,
		"from_admin_id", cmd.FromAdminID,
		"to_admin_id", cmd.ToAdminID,
		"role_id", cmd.RoleID,
	)
	return result, nil
}

func (u CreateDelegationUseCase) idempotencyTTL() time.Duration {
	if u.IdempotencyTTL <= 0 {
		return defaultIdempotencyTTL
	}
	return u.IdempotencyTTL
}

func (u CreateDelegationUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
