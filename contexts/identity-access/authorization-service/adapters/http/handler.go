package httpadapter

import (
	"context"
	"log/slog"

	"quorum/contexts/identity-access/authorization-service/application/commands"
	"quorum/contexts/identity-access/authorization-service/application/queries"
	"quorum/contexts/identity-access/authorization-service/domain/entities"
	httptransport "quorum/contexts/identity-access/authorization-service/transport/http"
)

// Handler maps transport DTOs onto application commands and queries. It
// carries no policy of its own; validation and logging live below it.
type Handler struct {
	CheckPermission queries.CheckPermissionUseCase
	CheckBatch      queries.CheckPermissionsBatchUseCase
	ListRoles       queries.ListUserRolesUseCase
	GrantRole       commands.GrantRoleUseCase
	RevokeRole      commands.RevokeRoleUseCase
	DelegateRole    commands.CreateDelegationUseCase
	Logger          *slog.Logger
}

func (h Handler) CheckPermissionHandler(
	ctx context.Context,
	userID string,
	req httptransport.CheckPermissionRequest,
) (httptransport.CheckPermissionResponse, error) {
	decision, err := h.CheckPermission.Execute(ctx, queries.CheckPermissionQuery{
		UserID:       userID,
		Permission:   req.Permission,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
	})
	if err != nil {
		return httptransport.CheckPermissionResponse{}, err
	}
	return mapDecision(decision), nil
}

func (h Handler) CheckBatchHandler(
	ctx context.Context,
	userID string,
	req httptransport.CheckBatchRequest,
) (httptransport.CheckBatchResponse, error) {
	decisions, err := h.CheckBatch.Execute(ctx, queries.CheckPermissionsBatchQuery{
		UserID:      userID,
		Permissions: req.Permissions,
	})
	if err != nil {
		return httptransport.CheckBatchResponse{}, err
	}
	items := make([]httptransport.CheckPermissionResponse, 0, len(decisions))
	for _, decision := range decisions {
		items = append(items, mapDecision(decision))
	}
	return httptransport.CheckBatchResponse{Results: items}, nil
}

func (h Handler) ListUserRolesHandler(ctx context.Context, userID string) (httptransport.ListUserRolesResponse, error) {
	assignments, err := h.ListRoles.Execute(ctx, userID)
	if err != nil {
		return httptransport.ListUserRolesResponse{}, err
	}
	items := make([]httptransport.RoleAssignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		items = append(items, mapAssignment(assignment))
	}
	return httptransport.ListUserRolesResponse{
		UserID: userID,
		Roles:  items,
	}, nil
}

func (h Handler) GrantRoleHandler(
	ctx context.Context,
	userID string,
	adminID string,
	idempotencyKey string,
	req httptransport.GrantRoleRequest,
) (httptransport.GrantRoleResponse, error) {
	result, err := h.GrantRole.Execute(ctx, commands.GrantRoleCommand{
		IdempotencyKey: idempotencyKey,
		UserID:         userID,
		RoleID:         req.RoleID,
		AdminID:        adminID,
		Reason:         req.Reason,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		return httptransport.GrantRoleResponse{}, err
	}
	return httptransport.GrantRoleResponse{
		AssignmentID: result.Assignment.AssignmentID,
		UserID:       result.Assignment.UserID,
		RoleID:       result.Assignment.RoleID,
		AssignedAt:   result.Assignment.AssignedAt,
		ExpiresAt:    result.Assignment.ExpiresAt,
		AuditLogID:   result.AuditLogID,
		Replayed:     result.Replayed,
	}, nil
}

func (h Handler) RevokeRoleHandler(
	ctx context.Context,
	userID string,
	adminID string,
	idempotencyKey string,
	req httptransport.RevokeRoleRequest,
) (httptransport.RevokeRoleResponse, error) {
	result, err := h.RevokeRole.Execute(ctx, commands.RevokeRoleCommand{
		IdempotencyKey: idempotencyKey,
		UserID:         userID,
		RoleID:         req.RoleID,
		AdminID:        adminID,
		Reason:         req.Reason,
	})
	if err != nil {
		return httptransport.RevokeRoleResponse{}, err
	}
	return httptransport.RevokeRoleResponse{
		UserID:     result.Assignment.UserID,
		RoleID:     result.Assignment.RoleID,
		RevokedAt:  result.Assignment.RevokedAt,
		AuditLogID: result.AuditLogID,
		Replayed:   result.Replayed,
	}, nil
}

func (h Handler) CreateDelegationHandler(
	ctx context.Context,
	idempotencyKey string,
	req httptransport.CreateDelegationRequest,
) (httptransport.CreateDelegationResponse, error) {
	result, err := h.DelegateRole.Execute(ctx, commands.CreateDelegationCommand{
		IdempotencyKey: idempotencyKey,
		FromAdminID:    req.FromAdminID,
		ToAdminID:      req.ToAdminID,
		RoleID:         req.RoleID,
		ExpiresAt:      req.ExpiresAt,
		Reason:         req.Reason,
	})
	if err != nil {
		return httptransport.CreateDelegationResponse{}, err
	}
	return httptransport.CreateDelegationResponse{
		DelegationID: result.Delegation.DelegationID,
		FromAdminID:  result.Delegation.FromAdminID,
		ToAdminID:    result.Delegation.ToAdminID,
		RoleID:       result.Delegation.RoleID,
		DelegatedAt:  result.Delegation.DelegatedAt,
		ExpiresAt:    result.Delegation.ExpiresAt,
		AuditLogID:   result.AuditLogID,
		Replayed:     result.Replayed,
	}, nil
}

func mapDecision(decision entities.PermissionDecision) httptransport.CheckPermissionResponse {
	return httptransport.CheckPermissionResponse{
		UserID:     decision.UserID,
		Permission: decision.Permission,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
		CheckedAt:  decision.CheckedAt,
		CacheHit:   decision.CacheHit,
	}
}

func mapAssignment(assignment entities.RoleAssignment) httptransport.RoleAssignmentDTO {
	return httptransport.RoleAssignmentDTO{
		AssignmentID: assignment.AssignmentID,
		UserID:       assignment.UserID,
		RoleID:       assignment.RoleID,
		RoleName:     assignment.RoleName,
		AssignedBy:   assignment.AssignedBy,
		Reason:       assignment.Reason,
		AssignedAt:   assignment.AssignedAt,
		ExpiresAt:    assignment.ExpiresAt,
		IsActive:     assignment.IsActive,
		RevokedAt:    assignment.RevokedAt,
	}
}
