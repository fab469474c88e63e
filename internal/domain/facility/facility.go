package facility

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/residenza/service-facility/internal/domain/slot"
	"github.com/residenza/service-facility/internal/platform/apperror"
)

// ErrNotFound is returned when no active facility matches an id.
var ErrNotFound = apperror.New(apperror.KindNotFound, "facility_not_found", "facility not found")

// Facility is a bookable communal resource with fixed operating hours.
type Facility struct {
	id               uuid.UUID
	name             string
	description      string
	location         string
	capacity         int
	requiresApproval bool
	operatingHours   slot.Interval
	isActive         bool
	createdAt        time.Time
	updatedAt        time.Time
}

// NewFacility creates an active facility after validating its invariants.
func NewFacility(
	name, description, location string,
	capacity int,
	requiresApproval bool,
	opensAt, closesAt slot.TimeOfDay,
) (*Facility, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewValidationError("facility name is required")
	}
	if capacity <= 0 {
		return nil, apperror.NewValidationError("facility capacity must be positive")
	}
	hours, err := slot.NewInterval(opensAt, closesAt)
	if err != nil {
		return nil, apperror.NewValidationError("invalid operating hours", err.Error())
	}

	now := time.Now().UTC()
	return &Facility{
		id:               uuid.New(),
		name:             name,
		description:      description,
		location:         location,
		capacity:         capacity,
		requiresApproval: requiresApproval,
		operatingHours:   hours,
		isActive:         true,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructFacility rebuilds a Facility from persistence data (no validation).
func ReconstructFacility(
	id uuid.UUID,
	name, description, location string,
	capacity int,
	requiresApproval bool,
	opensAt, closesAt slot.TimeOfDay,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Facility {
	return &Facility{
		id:               id,
		name:             name,
		description:      description,
		location:         location,
		capacity:         capacity,
		requiresApproval: requiresApproval,
		operatingHours:   slot.Interval{Start: opensAt, End: closesAt},
		isActive:         isActive,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (f *Facility) ID() uuid.UUID                 { return f.id }
func (f *Facility) Name() string                  { return f.name }
func (f *Facility) Description() string           { return f.description }
func (f *Facility) Location() string              { return f.location }
func (f *Facility) Capacity() int                 { return f.capacity }
func (f *Facility) RequiresApproval() bool        { return f.requiresApproval }
func (f *Facility) OperatingHours() slot.Interval { return f.operatingHours }
func (f *Facility) IsActive() bool                { return f.isActive }
func (f *Facility) CreatedAt() time.Time          { return f.createdAt }
func (f *Facility) UpdatedAt() time.Time          { return f.updatedAt }

// Admits reports whether the interval lies inside the operating hours.
func (f *Facility) Admits(iv slot.Interval) bool {
	return iv.Within(f.operatingHours)
}

// Deactivate takes the facility out of the bookable set.
func (f *Facility) Deactivate() {
	f.isActive = false
	f.updatedAt = time.Now().UTC()
}
