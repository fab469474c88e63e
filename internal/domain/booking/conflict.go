package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/residenza/service-facility/internal/domain/slot"
)

// Ledger is the read side of the booking store used for overlap checks.
type Ledger interface {
	// FindActiveOn returns the pending and approved bookings of a facility on a date.
	FindActiveOn(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]*Booking, error)
}

// FindConflict returns the first active booking in existing whose interval overlaps
// candidate, skipping the booking with id excluding. Overlap is half-open, so
// back-to-back bookings never conflict.
func FindConflict(existing []*Booking, candidate slot.Interval, excluding *uuid.UUID) *Booking {
	for _, b := range existing {
		if excluding != nil && b.ID() == *excluding {
			continue
		}
		if !b.Status().IsActive() {
			continue
		}
		if b.Interval().Overlaps(candidate) {
			return b
		}
	}
	return nil
}

// ConflictDetector answers whether a proposed slot collides with the ledger.
type ConflictDetector struct {
	ledger Ledger
}

// NewConflictDetector creates a ConflictDetector over the given ledger.
func NewConflictDetector(ledger Ledger) *ConflictDetector {
	return &ConflictDetector{ledger: ledger}
}

// HasConflict reports whether [start, end) on date overlaps an active booking of the
// facility. excluding skips one booking id and is meant for re-checks on edits.
func (d *ConflictDetector) HasConflict(
	ctx context.Context,
	facilityID uuid.UUID,
	date time.Time,
	candidate slot.Interval,
	excluding *uuid.UUID,
) (bool, error) {
	existing, err := d.ledger.FindActiveOn(ctx, facilityID, slot.DateOf(date))
	if err != nil {
		return false, fmt.Errorf("failed to load bookings for conflict check: %w", err)
	}
	return FindConflict(existing, candidate, excluding) != nil, nil
}
