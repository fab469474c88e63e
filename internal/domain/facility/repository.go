package facility

import (
	"context"

	"github.com/google/uuid"
)

// Registry is the read path over facility metadata used at booking time.
type Registry interface {
	// GetActive returns the active facility with the given id, or ErrNotFound.
	GetActive(ctx context.Context, id uuid.UUID) (*Facility, error)

	// ListActive returns all active facilities ordered by name.
	ListActive(ctx context.Context) ([]*Facility, error)
}
