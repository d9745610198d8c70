package queries

import (
	"context"

	"quorum/contexts/identity-access/authorization-service/domain/entities"
	"quorum/contexts/identity-access/authorization-service/domain/valueobjects"
)

type CheckPermissionsBatchQuery struct {
	UserID      string
	Permissions []string
}

// CheckPermissionsBatchUseCase answers several permission questions for one
// user in a single call, preserving input order.
type CheckPermissionsBatchUseCase struct {
	CheckPermission CheckPermissionUseCase
}

// Execute delegates to the single check per permission. After the first
// miss the user's permission set sits in the cache, so the loop stays cheap.
func (u CheckPermissionsBatchUseCase) Execute(
	ctx context.Context,
	query CheckPermissionsBatchQuery,
) ([]entities.PermissionDecision, error) {
	if _, err := valueobjects.NewUserID(query.UserID); err != nil {
		return nil, err
	}

	decisions := make([]entities.PermissionDecision, 0, len(query.Permissions))
	for _, permission := range query.Permissions {
		decision, err := u.CheckPermission.Execute(ctx, CheckPermissionQuery{
			UserID:     query.UserID,
			Permission: permission,
		})
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, decision)
	}
	return decisions, nil
}
