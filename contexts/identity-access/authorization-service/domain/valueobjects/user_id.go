package valueobjects

import (
	"strings"

	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
)

// UserID is a non-blank principal identifier. Admins are users too, so
// grant and delegation commands validate both sides with it.
type UserID string

func NewUserID(v string) (UserID, error) {
	if strings.TrimSpace(v) == "" {
		return "", domainerrors.ErrInvalidUserID
	}
	return UserID(v), nil
}

func (id UserID) String() string {
	return string(id)
}
