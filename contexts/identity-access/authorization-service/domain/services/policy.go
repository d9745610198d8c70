package services

// Administrative permissions checked inside this service. Station-level
// permissions are opaque strings owned by the workflow services.
const (
	PermissionGrantRole    = "user.grant_role"
	PermissionRevokeRole   = "user.revoke_role"
	PermissionDelegateRole = "role.delegate"
)

// GrantsPermission reports whether an effective permission set carries the
// requested permission. Permission strings match exactly, no wildcards.
func GrantsPermission(permissions []string, permission string) bool {
	for _, held := range permissions {
		if held == permission {
			return true
		}
	}
	return false
}
