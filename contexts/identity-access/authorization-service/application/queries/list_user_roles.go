package queries

import (
	"context"
	"time"

	"quorum/contexts/identity-access/authorization-service/domain/entities"
	"quorum/contexts/identity-access/authorization-service/domain/valueobjects"
	"quorum/contexts/identity-access/authorization-service/ports"
)

// ListUserRolesUseCase returns a user's assignments, newest first. Expired
// active ones are filtered out; revoked ones stay visible as history.
type ListUserRolesUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
}

func (u ListUserRolesUseCase) Execute(ctx context.Context, userID string) ([]entities.RoleAssignment, error) {
	id, err := valueobjects.NewUserID(userID)
	if err != nil {
		return nil, err
	}
	return u.Repository.ListUserRoles(ctx, id.String(), u.now())
}

func (u ListUserRolesUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
