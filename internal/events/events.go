package events

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies this service in emitted cloud events.
const Source = "service-facility"

// Event types published on the booking topic.
const (
	BookingCreated   = "booking.created"
	BookingApproved  = "booking.approved"
	BookingRejected  = "booking.rejected"
	BookingCancelled = "booking.cancelled"
)

// Event types published on the complaint topic.
const (
	ComplaintCreated       = "complaint.created"
	ComplaintStatusChanged = "complaint.status_changed"
)

// Event types consumed from the facility topic.
const (
	FacilityUpdated     = "facility.updated"
	FacilityDeactivated = "facility.deactivated"
)

// BookingEvent is the payload of every booking lifecycle event.
type BookingEvent struct {
	BookingID   uuid.UUID  `json:"booking_id"`
	FacilityID  uuid.UUID  `json:"facility_id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	ActorID     uuid.UUID  `json:"actor_id"`
	BookingDate string     `json:"booking_date"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Status      string     `json:"status"`
	ApprovedBy  *uuid.UUID `json:"approved_by,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// ComplaintEvent is the payload of complaint events.
type ComplaintEvent struct {
	ComplaintID uuid.UUID `json:"complaint_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	ActorID     uuid.UUID `json:"actor_id"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// FacilityChangedEvent is the payload of facility administration events.
type FacilityChangedEvent struct {
	FacilityID uuid.UUID `json:"facility_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
