package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/residenza/service-facility/internal/domain/facility"
	"github.com/residenza/service-facility/internal/domain/slot"
)

// FacilityDTO is the API response representation of a facility.
type FacilityDTO struct {
	ID                  uuid.UUID      `json:"id"`
	Name                string         `json:"name"`
	Description         string         `json:"description,omitempty"`
	Location            string         `json:"location,omitempty"`
	Capacity            int            `json:"capacity"`
	RequiresApproval    bool           `json:"requires_approval"`
	OperatingHoursStart slot.TimeOfDay `json:"operating_hours_start"`
	OperatingHoursEnd   slot.TimeOfDay `json:"operating_hours_end"`
	IsActive            bool           `json:"is_active"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// FacilityService exposes the facility registry read path.
type FacilityService struct {
	registry facility.Registry
	logger   *zap.Logger
}

// NewFacilityService creates a new FacilityService.
func NewFacilityService(registry facility.Registry, logger *zap.Logger) *FacilityService {
	return &FacilityService{registry: registry, logger: logger}
}

// ListFacilities returns all active facilities.
func (s *FacilityService) ListFacilities(ctx context.Context) ([]*FacilityDTO, error) {
	facilities, err := s.registry.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*FacilityDTO, len(facilities))
	for i, f := range facilities {
		dtos[i] = toFacilityDTO(f)
	}
	return dtos, nil
}

// GetFacility returns one active facility.
func (s *FacilityService) GetFacility(ctx context.Context, id uuid.UUID) (*FacilityDTO, error) {
	f, err := s.registry.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}
	return toFacilityDTO(f), nil
}

func toFacilityDTO(f *facility.Facility) *FacilityDTO {
	hours := f.OperatingHours()
	return &FacilityDTO{
		ID:                  f.ID(),
		Name:                f.Name(),
		Description:         f.Description(),
		Location:            f.Location(),
		Capacity:            f.Capacity(),
		RequiresApproval:    f.RequiresApproval(),
		OperatingHoursStart: hours.Start,
		OperatingHoursEnd:   hours.End,
		IsActive:            f.IsActive(),
		CreatedAt:           f.CreatedAt(),
		UpdatedAt:           f.UpdatedAt(),
	}
}
