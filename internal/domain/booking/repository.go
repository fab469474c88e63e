package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows a booking listing.
type ListFilter struct {
	FacilityID *uuid.UUID
	OwnerID    *uuid.UUID
	// VisibleTo restricts results to approved bookings plus those owned by this user.
	VisibleTo *uuid.UUID
	Status    *BookingStatus
	Date      *time.Time
	// Descending orders by date and start time newest first.
	Descending bool
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	Ledger

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// List retrieves bookings matching the filter with pagination.
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Create persists a new booking. The overlap check against active bookings of the
	// same facility and date is repeated atomically with the insert; ErrConflict is
	// returned when it fails.
	Create(ctx context.Context, booking *Booking) error

	// ApplyDecision persists an approval review only if the stored booking is still
	// pending. ErrNotFound is returned otherwise.
	ApplyDecision(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
