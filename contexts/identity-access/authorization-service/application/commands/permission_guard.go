package commands

import (
	"context"
	"time"

	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/domain/services"
	"quorum/contexts/identity-access/authorization-service/ports"
)

// ensureActorPermission resolves the acting admin's effective permissions and
// rejects the mutation when the required one is missing. Delegated
// permissions count, so a delegated tally manager can staff stations.
func ensureActorPermission(
	ctx context.Context,
	repository ports.Repository,
	actorID string,
	permission string,
	now time.Time,
) error {
	permissions, err := repository.ListEffectivePermissions(ctx, actorID, now)
	if err != nil {
		return err
	}
	if !services.GrantsPermission(permissions, permission) {
		return domainerrors.ErrForbidden
	}
	return nil
}
