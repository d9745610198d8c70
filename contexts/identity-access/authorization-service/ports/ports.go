package ports

import (
	"context"
	"time"

	"quorum/contexts/identity-access/authorization-service/domain/entities"
	contractsv1 "quorum/contracts/gen/events/v1"
)

// Clock supplies current time so expiry checks stay testable.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints identifiers for assignments, audit rows, and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// PermissionCache holds a user's effective permission set until expiresAt.
// A miss or expired entry falls through to the repository.
type PermissionCache interface {
	Get(ctx context.Context, userID string, now time.Time) ([]string, bool, error)
	Set(ctx context.Context, userID string, permissions []string, expiresAt time.Time) error
	Invalidate(ctx context.Context, userID string) error
}

// IdempotencyRecord pins an idempotency key to the request hash and the
// response that was returned the first time.
type IdempotencyRecord struct {
	Key             string
	Operation       string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

// IdempotencyStore backs replay and conflict detection on mutating commands.
type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

// GrantRoleInput is written in one transaction with its audit and outbox rows.
type GrantRoleInput struct {
	AssignmentID string
	AuditLogID   string
	OutboxID     string
	UserID       string
	RoleID       string
	AdminID      string
	Reason       string
	AssignedAt   time.Time
	ExpiresAt    *time.Time
}

// RevokeRoleInput carries a revoke together with its audit context.
type RevokeRoleInput struct {
	AuditLogID string
	OutboxID   string
	UserID     string
	RoleID     string
	AdminID    string
	Reason     string
	RevokedAt  time.Time
}

// DelegationInput carries a time-boxed delegation between two administrators.
type DelegationInput struct {
	DelegationID string
	AuditLogID   string
	OutboxID     string
	FromAdminID  string
	ToAdminID    string
	RoleID       string
	Reason       string
	DelegatedAt  time.Time
	ExpiresAt    time.Time
}

// RoleMutationResult is what grant and revoke hand back to the use case.
type RoleMutationResult struct {
	Assignment entities.RoleAssignment
	AuditLogID string
}

// DelegationMutationResult is what delegation creation hands back.
type DelegationMutationResult struct {
	Delegation entities.Delegation
	AuditLogID string
}

// Repository is the persistence boundary for roles, assignments, and
// delegations.
type Repository interface {
	ListEffectivePermissions(ctx context.Context, userID string, now time.Time) ([]string, error)
	ListUserRoles(ctx context.Context, userID string, now time.Time) ([]entities.RoleAssignment, error)
	GrantRole(ctx context.Context, input GrantRoleInput) (RoleMutationResult, error)
	RevokeRole(ctx context.Context, input RevokeRoleInput) (RoleMutationResult, error)
	CreateDelegation(ctx context.Context, input DelegationInput) (DelegationMutationResult, error)
}

// OutboxMessage is one pending policy-change row awaiting relay.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository lets the relay poll pending rows and acknowledge them.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// PolicyChangedEvent is the shared event envelope; grants, revokes, and
// delegations all travel in it.
type PolicyChangedEvent = contractsv1.Envelope

// PolicyChangedPublisher pushes policy changes onto the event bus.
type PolicyChangedPublisher interface {
	PublishPolicyChanged(ctx context.Context, event PolicyChangedEvent) error
}

// EventDedupStore remembers consumed event ids so redeliveries are no-ops.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}
