package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/residenza/service-facility/internal/platform/auth"
)

// User is the read model of a resident or administrator account. Accounts are
// managed by the identity service; this service only resolves display names.
type User struct {
	ID       uuid.UUID
	FullName string
	Email    string
	Role     auth.Role
}

// Directory resolves user records by id.
type Directory interface {
	// FindByIDs returns the users found among ids, keyed by id. Missing ids are omitted.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error)
}

// NameOf returns the full name of id in users, or "" when unknown.
func NameOf(users map[uuid.UUID]*User, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	if u, ok := users[*id]; ok {
		return u.FullName
	}
	return ""
}
