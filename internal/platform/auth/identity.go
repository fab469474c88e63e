package auth

import "github.com/google/uuid"

// Role is the access role carried in a verified token.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleResident
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin returns true if the caller holds the administrator role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
