package entities

import "time"

// PermissionDecision records the outcome of a single permission check,
// including whether the permission set came from cache.
type PermissionDecision struct {
	UserID     string    `json:"user_id"`
	Permission string    `json:"permission"`
	Allowed    bool      `json:"allowed"`
	Reason     string    `json:"reason"`
	CheckedAt  time.Time `json:"checked_at"`
	CacheHit   bool      `json:"cache_hit"`
}
