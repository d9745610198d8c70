package queries

import (
	"context"
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

const defaultPermissionCacheTTL = 5 * time.Minute

type CheckPermissionQuery struct {
	UserID       string
	Permission   string
	ResourceType string
	ResourceID   string
}

// CheckPermissionUseCase answers one permission question for one user,
// serving from the permission cache when it is still fresh.
type CheckPermissionUseCase struct {
	Repository         ports.Repository
	PermissionCache    ports.PermissionCache
	Clock              ports.Clock
	PermissionCacheTTL time.Duration
	Logger             *slog.Logger
}

// Execute evaluates the permission. A failed lookup denies rather than
// erroring, so a degraded store can never grant by accident.
func (u CheckPermissionUseCase) Execute(ctx context.Context, query CheckPermissionQuery) (entities.PermissionDecision, error) {
	if _, err := valueobjects.NewUserID(query.UserID); err != nil {
		return entities.PermissionDecision{}, err
	}
	if strings.TrimSpace(query.Permission) == "" {
		return entities.PermissionDecision{}, domainerrors.ErrInvalidPermission
	}

	logger := application.ResolveLogger(u.Logger)
	now := u.now()

	permissions, cacheHit, err := u.loadPermissions(ctx, query.UserID, now)
	if err != nil {
		logger.Warn("permission lookup failed, denying by default",
			"event", "permission_lookup_failed",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"user_id", query.UserID,
			"permission", query.Permission,
			"error", err.Error(),
		)
		return entities.PermissionDecision{
			UserID:     query.UserID,
			Permission: query.Permission,
			Allowed:    false,
			Reason:     "deny_by_default",
			CheckedAt:  now,
		}, nil
	}

	allowed := services.GrantsPermission(permissions, query.Permission)
	reason := "permission_granted"
	if !allowed {
		reason = "permission_missing"
	}
	logger.Debug("permission checked",
		"event", "permission_checked",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"user_id", query.UserID,
		"permission", query.Permission,
		"resource_type", query.ResourceType,
		"resource_id", query.ResourceID,
		"allowed", allowed,
		"cache_hit", cacheHit,
	)
	return entities.PermissionDecision{
		UserID:     query.UserID,
		Permission: query.Permission,
		Allowed:    allowed,
		Reason:     reason,
		CheckedAt:  now,
		CacheHit:   cacheHit,
	}, nil
}

// loadPermissions prefers the cache and refills it after a repository read.
// A failed refill is ignored; the next check reads through again.
func (u CheckPermissionUseCase) loadPermissions(
	ctx context.Context,
	userID string,
	now time.Time,
) ([]string, bool, error) {
	if u.PermissionCache != nil {
		items, hit, err := u.PermissionCache.Get(ctx, userID, now)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return items, true, nil
		}
	}

	permissions, err := u.Repository.ListEffectivePermissions(ctx, userID, now)
	if err != nil {
		return nil, false, err
	}
	if u.PermissionCache != nil {
		_ = u.PermissionCache.Set(ctx, userID, permissions, now.Add(u.cacheTTL()))
	}
	return permissions, false, nil
}

func (u CheckPermissionUseCase) cacheTTL() time.Duration {
	if u.PermissionCacheTTL <= 0 {
		return defaultPermissionCacheTTL
	}
	return u.PermissionCacheTTL
}

func (u CheckPermissionUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
