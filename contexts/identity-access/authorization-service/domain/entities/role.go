package entities

// Role is a named bundle of permission strings. The baseline station
// roles live in domain/services.
type Role struct {
	RoleID      string   `json:"role_id"`
	RoleName    string   `json:"role_name"`
	Permissions []string `json:"permissions"`
}
