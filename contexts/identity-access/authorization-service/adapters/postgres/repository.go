package postgresadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"quorum/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	policyChangedEventType = "authz.policy_changed"
)

type roleModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name"`
	Permissions []byte `gorm:"column:permissions;type:jsonb"`
}

func (roleModel) TableName() string { return "authz_roles" }

type assignmentModel struct {
	ID         string     `gorm:"column:id;primaryKey"`
	UserID     string     `gorm:"column:user_id;index"`
	RoleID     string     `gorm:"column:role_id;index"`
	RoleName   string     `gorm:"column:role_name"`
	AssignedBy string     `gorm:"column:assigned_by"`
	Reason     string     `gorm:"column:reason"`
	AssignedAt time.Time  `gorm:"column:assigned_at"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	IsActive   bool       `gorm:"column:is_active;index"`
	RevokedAt  *time.Time `gorm:"column:revoked_at"`
}

func (assignmentModel) TableName() string { return "authz_role_assignments" }

func (m assignmentModel) toEntity() entities.RoleAssignment {
	return entities.RoleAssignment{
		AssignmentID: m.ID,
		UserID:       m.UserID,
		RoleID:       m.RoleID,
		RoleName:     m.RoleName,
		AssignedBy:   m.AssignedBy,
		Reason:       m.Reason,
		AssignedAt:   m.AssignedAt.UTC(),
		ExpiresAt:    m.ExpiresAt,
		IsActive:     m.IsActive,
		RevokedAt:    m.RevokedAt,
	}
}

type delegationModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	FromAdminID string    `gorm:"column:from_admin_id;index"`
	ToAdminID   string    `gorm:"column:to_admin_id;index"`
	RoleID      string    `gorm:"column:role_id"`
	Reason      string    `gorm:"column:reason"`
	DelegatedAt time.Time `gorm:"column:delegated_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	IsActive    bool      `gorm:"column:is_active;index"`
}

func (delegationModel) TableName() string { return "authz_delegations" }

type auditLogModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ActionType string    `gorm:"column:action_type"`
	UserID     string    `gorm:"column:user_id;index"`
	RoleID     string    `gorm:"column:role_id"`
	AdminID    string    `gorm:"column:admin_id"`
	Reason     string    `gorm:"column:reason"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (auditLogModel) TableName() string { return "authz_audit_logs" }

type outboxModel struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	OutboxID    string     `gorm:"column:outbox_id;uniqueIndex"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload;type:jsonb"`
	Status      string     `gorm:"column:status;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "authz_outbox" }

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the service's tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&roleModel{},
		&assignmentModel{},
		&delegationModel{},
		&auditLogModel{},
		&outboxModel{},
	)
}

// SeedRoles upserts the role registry. Role ids are stable names, so
// reseeding on boot is idempotent.
func (r *Repository) SeedRoles(ctx context.Context, roles []entities.Role) error {
	for _, role := range roles {
		permissions, err := json.Marshal(role.Permissions)
		if err != nil {
			return err
		}
		row := roleModel{
			ID:          role.RoleID,
			Name:        role.RoleName,
			Permissions: permissions,
		}
		create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":        row.Name,
				"permissions": row.Permissions,
			}),
		}).Create(&row)
		if create.Error != nil {
			return r.logError("authz_repo_seed_roles_failed", create.Error, "role_id", role.RoleID)
		}
	}
	return nil
}

func (r *Repository) ListEffectivePermissions(ctx context.Context, userID string, now time.Time) ([]string, error) {
	permissions := make(map[string]struct{})

	var assignments []assignmentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("is_active = ?", true).
		Find(&assignments).Error; err != nil {
		return nil, r.logError("authz_repo_list_permissions_failed", err, "user_id", userID)
	}
	for _, assignment := range assignments {
		if assignment.ExpiresAt != nil && !assignment.ExpiresAt.After(now) {
			continue
		}
		if err := r.collectRolePermissions(ctx, assignment.RoleID, permissions); err != nil {
			return nil, err
		}
	}

	var delegations []delegationModel
	if err := r.db.WithContext(ctx).
		Where("to_admin_id = ?", strings.TrimSpace(userID)).
		Where("is_active = ?", true).
		Where("expires_at > ?", now).
		Find(&delegations).Error; err != nil {
		return nil, r.logError("authz_repo_list_delegations_failed", err, "user_id", userID)
	}
	for _, delegation := range delegations {
		if err := r.collectRolePermissions(ctx, delegation.RoleID, permissions); err != nil {
			return nil, err
		}
	}

	items := make([]string, 0, len(permissions))
	for permission := range permissions {
		items = append(items, permission)
	}
	sort.Strings(items)
	return items, nil
}

func (r *Repository) collectRolePermissions(ctx context.Context, roleID string, into map[string]struct{}) error {
	var role roleModel
	err := r.db.WithContext(ctx).Where("id = ?", roleID).First(&role).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return r.logError("authz_repo_get_role_failed", err, "role_id", roleID)
	}
	var permissions []string
	if len(role.Permissions) > 0 {
		if err := json.Unmarshal(role.Permissions, &permissions); err != nil {
			return err
		}
	}
	for _, permission := range permissions {
		into[permission] = struct{}{}
	}
	return nil
}

func (r *Repository) ListUserRoles(ctx context.Context, userID string, now time.Time) ([]entities.RoleAssignment, error) {
	var rows []assignmentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("assigned_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("authz_repo_list_user_roles_failed", err, "user_id", userID)
	}
	items := make([]entities.RoleAssignment, 0, len(rows))
	for _, row := range rows {
		if row.IsActive && row.ExpiresAt != nil && !row.ExpiresAt.After(now) {
			continue
		}
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GrantRole(ctx context.Context, input ports.GrantRoleInput) (ports.RoleMutationResult, error) {
	var result ports.RoleMutationResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role roleModel
		if err := tx.Where("id = ?", input.RoleID).First(&role).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domainerrors.ErrRoleNotFound
			}
			return err
		}

		var existing []assignmentModel
		if err := tx.
			Where("user_id = ?", input.UserID).
			Where("role_id = ?", input.RoleID).
			Where("is_active = ?", true).
			Find(&existing).Error; err != nil {
			return err
		}
		for _, assignment := range existing {
			if assignment.ExpiresAt == nil || assignment.ExpiresAt.After(input.AssignedAt) {
				return domainerrors.ErrRoleAlreadyAssigned
			}
		}

		row := assignmentModel{
			ID:         input.AssignmentID,
			UserID:     input.UserID,
			RoleID:     input.RoleID,
			RoleName:   role.Name,
			AssignedBy: input.AdminID,
			Reason:     input.Reason,
			AssignedAt: input.AssignedAt.UTC(),
			ExpiresAt:  input.ExpiresAt,
			IsActive:   true,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := appendAudit(tx, input.AuditLogID, "role_granted", input.UserID, input.RoleID, input.AdminID, input.Reason, input.AssignedAt); err != nil {
			return err
		}
		if err := appendPolicyChanged(tx, input.OutboxID, input.UserID, input.RoleID, "role_granted", input.AssignedAt); err != nil {
			return err
		}
		result = ports.RoleMutationResult{
			Assignment: row.toEntity(),
			AuditLogID: input.AuditLogID,
		}
		return nil
	})
	if err != nil {
		return ports.RoleMutationResult{}, r.passOrLog("authz_repo_grant_role_failed", err,
			"user_id", input.UserID, "role_id", input.RoleID)
	}
	return result, nil
}

func (r *Repository) RevokeRole(ctx context.Context, input ports.RevokeRoleInput) (ports.RoleMutationResult, error) {
	var result ports.RoleMutationResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row assignmentModel
		err := tx.
			Where("user_id = ?", input.UserID).
			Where("role_id = ?", input.RoleID).
			Where("is_active = ?", true).
			First(&row).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return domainerrors.ErrRoleNotAssigned
			}
			return err
		}

		revokedAt := input.RevokedAt.UTC()
		update := tx.Model(&assignmentModel{}).
			Where("id = ?", row.ID).
			Where("is_active = ?", true).
			Updates(map[string]any{
				"is_active":  false,
				"revoked_at": revokedAt,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return domainerrors.ErrRoleNotAssigned
		}
		row.IsActive = false
		row.RevokedAt = &revokedAt

		if err := appendAudit(tx, input.AuditLogID, "role_revoked", input.UserID, input.RoleID, input.AdminID, input.Reason, input.RevokedAt); err != nil {
			return err
		}
		if err := appendPolicyChanged(tx, input.OutboxID, input.UserID, input.RoleID, "role_revoked", input.RevokedAt); err != nil {
			return err
		}
		result = ports.RoleMutationResult{
			Assignment: row.toEntity(),
			AuditLogID: input.AuditLogID,
		}
		return nil
	})
	if err != nil {
		return ports.RoleMutationResult{}, r.passOrLog("authz_repo_revoke_role_failed", err,
			"user_id", input.UserID, "role_id", input.RoleID)
	}
	return result, nil
}

func (r *Repository) CreateDelegation(ctx context.Context, input ports.DelegationInput) (ports.DelegationMutationResult, error) {
	if input.FromAdminID == input.ToAdminID || !input.ExpiresAt.After(input.DelegatedAt) {
		return ports.DelegationMutationResult{}, domainerrors.ErrInvalidDelegation
	}

	var result ports.DelegationMutationResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role roleModel
		if err := tx.Where("id = ?", input.RoleID).First(&role).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domainerrors.ErrRoleNotFound
			}
			return err
		}

		row := delegationModel{
			ID:          input.DelegationID,
			FromAdminID: input.FromAdminID,
			ToAdminID:   input.ToAdminID,
			RoleID:      input.RoleID,
			Reason:      input.Reason,
			DelegatedAt: input.DelegatedAt.UTC(),
			ExpiresAt:   input.ExpiresAt.UTC(),
			IsActive:    true,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := appendAudit(tx, input.AuditLogID, "role_delegated", input.ToAdminID, input.RoleID, input.FromAdminID, input.Reason, input.DelegatedAt); err != nil {
			return err
		}
		if err := appendPolicyChanged(tx, input.OutboxID, input.ToAdminID, input.RoleID, "role_delegated", input.DelegatedAt); err != nil {
			return err
		}
		result = ports.DelegationMutationResult{
			Delegation: entities.Delegation{
				DelegationID: row.ID,
				FromAdminID:  row.FromAdminID,
				ToAdminID:    row.ToAdminID,
				RoleID:       row.RoleID,
				Reason:       row.Reason,
				DelegatedAt:  row.DelegatedAt,
				ExpiresAt:    row.ExpiresAt,
				IsActive:     row.IsActive,
			},
			AuditLogID: input.AuditLogID,
		}
		return nil
	})
	if err != nil {
		return ports.DelegationMutationResult{}, r.passOrLog("authz_repo_create_delegation_failed", err,
			"from_admin_id", input.FromAdminID, "to_admin_id", input.ToAdminID)
	}
	return result, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("authz_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("authz_repo_mark_outbox_published_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func appendAudit(tx *gorm.DB, auditLogID, actionType, userID, roleID, adminID, reason string, occurredAt time.Time) error {
	return tx.Create(&auditLogModel{
		ID:         auditLogID,
		ActionType: actionType,
		UserID:     userID,
		RoleID:     roleID,
		AdminID:    adminID,
		Reason:     reason,
		OccurredAt: occurredAt.UTC(),
	}).Error
}

func appendPolicyChanged(tx *gorm.DB, outboxID, userID, roleID, actionType string, occurredAt time.Time) error {
	payload, err := json.Marshal(map[string]string{
		"user_id":     userID,
		"role_id":     roleID,
		"action_type": actionType,
	})
	if err != nil {
		return err
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&outboxModel{
		OutboxID:  outboxID,
		EventType: policyChangedEventType,
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: occurredAt.UTC(),
	}).Error
}

func (r *Repository) passOrLog(event string, err error, attrs ...any) error {
	switch err {
	case domainerrors.ErrRoleNotFound,
		domainerrors.ErrRoleAlreadyAssigned,
		domainerrors.ErrRoleNotAssigned,
		domainerrors.ErrInvalidDelegation:
		return err
	}
	return r.logError(event, err, attrs...)
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/authorization-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("authorization repository operation failed", fields...)
	return err
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
