package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/residenza/service-facility/internal/domain/facility"
	"github.com/residenza/service-facility/internal/domain/slot"
	"github.com/residenza/service-facility/internal/platform/apperror"
)

// Details carries resolved names for display. It is read-only and never persisted.
type Details struct {
	FacilityName string
	OwnerName    string
	OwnerEmail   string
	ApproverName string
}

// Booking is the aggregate root for a facility reservation.
type Booking struct {
	id          uuid.UUID
	facilityID  uuid.UUID
	ownerID     uuid.UUID
	bookingDate time.Time
	interval    slot.Interval
	status      BookingStatus
	purpose     string
	notes       string
	adminNotes  string
	approvedBy  *uuid.UUID
	approvedAt  *time.Time

	details Details

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// ValidateTimeRange checks start/end against each other and against the facility's
// operating hours, returning the interval to book.
func ValidateTimeRange(f *facility.Facility, start, end slot.TimeOfDay) (slot.Interval, error) {
	iv, err := slot.NewInterval(start, end)
	if err != nil {
		return slot.Interval{}, ErrInvalidTimeRange.WithDetails("start_time must be before end_time")
	}
	if !f.Admits(iv) {
		hours := f.OperatingHours()
		return slot.Interval{}, ErrInvalidTimeRange.WithDetails(
			"booking must be within operating hours " + hours.Start.String() + "-" + hours.End.String(),
		)
	}
	return iv, nil
}

// NewBooking creates a booking for the facility. The booking starts pending when the
// facility requires approval, otherwise it is approved by its own creator at now.
func NewBooking(
	f *facility.Facility,
	ownerID uuid.UUID,
	bookingDate time.Time,
	start, end slot.TimeOfDay,
	purpose, notes string,
	now time.Time,
) (*Booking, error) {
	if ownerID == uuid.Nil {
		return nil, apperror.NewValidationError("owner ID is required")
	}
	if f == nil || !f.IsActive() {
		return nil, facility.ErrNotFound
	}
	iv, err := ValidateTimeRange(f, start, end)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	b := &Booking{
		id:          uuid.New(),
		facilityID:  f.ID(),
		ownerID:     ownerID,
		bookingDate: slot.DateOf(bookingDate),
		interval:    iv,
		status:      StatusPending,
		purpose:     strings.TrimSpace(purpose),
		notes:       strings.TrimSpace(notes),
		details:     Details{FacilityName: f.Name()},
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}

	if !f.RequiresApproval() {
		approver := ownerID
		approvedAt := now
		b.status = StatusApproved
		b.approvedBy = &approver
		b.approvedAt = &approvedAt
	}
	return b, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, facilityID, ownerID uuid.UUID,
	bookingDate time.Time,
	start, end slot.TimeOfDay,
	status BookingStatus,
	purpose, notes, adminNotes string,
	approvedBy *uuid.UUID,
	approvedAt *time.Time,
	details Details,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		facilityID:  facilityID,
		ownerID:     ownerID,
		bookingDate: slot.DateOf(bookingDate),
		interval:    slot.Interval{Start: start, End: end},
		status:      status,
		purpose:     purpose,
		notes:       notes,
		adminNotes:  adminNotes,
		approvedBy:  approvedBy,
		approvedAt:  approvedAt,
		details:     details,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// FacilityID returns the booked facility.
func (b *Booking) FacilityID() uuid.UUID { return b.facilityID }

// OwnerID returns the requesting user.
func (b *Booking) OwnerID() uuid.UUID { return b.ownerID }

// BookingDate returns the calendar date as midnight UTC.
func (b *Booking) BookingDate() time.Time { return b.bookingDate }

// Interval returns the booked [start, end) range.
func (b *Booking) Interval() slot.Interval { return b.interval }

// StartTime returns the start of the booked range.
func (b *Booking) StartTime() slot.TimeOfDay { return b.interval.Start }

// EndTime returns the end of the booked range.
func (b *Booking) EndTime() slot.TimeOfDay { return b.interval.End }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Purpose returns the stated purpose.
func (b *Booking) Purpose() string { return b.purpose }

// Notes returns the requester's notes.
func (b *Booking) Notes() string { return b.notes }

// AdminNotes returns the reviewer's notes.
func (b *Booking) AdminNotes() string { return b.adminNotes }

// ApprovedBy returns the reviewer, or nil while pending.
func (b *Booking) ApprovedBy() *uuid.UUID { return b.approvedBy }

// ApprovedAt returns the review time, or nil while pending.
func (b *Booking) ApprovedAt() *time.Time { return b.approvedAt }

// Details returns resolved display names.
func (b *Booking) Details() Details { return b.details }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// StartsAt returns the instant the booking begins in loc.
func (b *Booking) StartsAt(loc *time.Location) time.Time {
	return b.interval.Start.On(b.bookingDate, loc)
}

// --- Behavior ---

// Decide records an approval review. Only pending bookings can be decided.
func (b *Booking) Decide(reviewerID uuid.UUID, decision BookingStatus, adminNotes string, now time.Time) error {
	if !decision.IsDecision() {
		return ErrInvalidDecision
	}
	if b.status != StatusPending {
		return ErrNotPending
	}
	if !b.status.CanTransitionTo(decision) {
		return apperror.NewInvalidStateError(string(b.status), string(decision))
	}

	now = now.UTC()
	b.status = decision
	b.approvedBy = &reviewerID
	b.approvedAt = &now
	if notes := strings.TrimSpace(adminNotes); notes != "" {
		b.adminNotes = notes
	}
	b.updatedAt = now
	return nil
}

// Cancel moves a pending or approved booking to cancelled, provided it has not
// started yet. Only the status changes.
func (b *Booking) Cancel(now time.Time, loc *time.Location) error {
	if b.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if !b.status.CanTransitionTo(StatusCancelled) {
		return ErrNotCancellable.WithMessage("cannot cancel a %s booking", b.status)
	}
	if b.StartsAt(loc).Before(now) {
		return ErrPastBooking
	}

	b.status = StatusCancelled
	b.updatedAt = now.UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// SetDetails attaches resolved display names.
func (b *Booking) SetDetails(d Details) {
	b.details = d
}
