package entities

import "time"

// Delegation hands a role from one tally administrator to another for a
// bounded window, typically to cover a shift or an absence.
type Delegation struct {
	DelegationID string    `json:"delegation_id"`
	FromAdminID  string    `json:"from_admin_id"`
	ToAdminID    string    `json:"to_admin_id"`
	RoleID       string    `json:"role_id"`
	Reason       string    `json:"reason"`
	DelegatedAt  time.Time `json:"delegated_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsActive     bool      `json:"is_active"`
}
