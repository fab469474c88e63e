package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	facilityDomain "github.com/residenza/service-facility/internal/domain/facility"
	"github.com/residenza/service-facility/internal/domain/slot"
	"github.com/residenza/service-facility/internal/platform/apperror"
)

// FacilityModel is the GORM model for the facilities table.
type FacilityModel struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name                string         `gorm:"size:255;not null;uniqueIndex"`
	Description         string         `gorm:"type:text;not null;default:''"`
	Location            string         `gorm:"size:255;not null;default:''"`
	Capacity            int            `gorm:"not null"`
	RequiresApproval    bool           `gorm:"not null;default:false"`
	OperatingHoursStart slot.TimeOfDay `gorm:"type:time;not null"`
	OperatingHoursEnd   slot.TimeOfDay `gorm:"type:time;not null"`
	IsActive            bool           `gorm:"not null;default:true"`
	CreatedAt           time.Time      `gorm:"not null"`
	UpdatedAt           time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (FacilityModel) TableName() string { return "facilities" }

// GormFacilityRepository is the GORM-based facility registry.
type GormFacilityRepository struct {
	db *gorm.DB
}

// NewGormFacilityRepository creates a new GormFacilityRepository.
func NewGormFacilityRepository(db *gorm.DB) *GormFacilityRepository {
	return &GormFacilityRepository{db: db}
}

// GetActive retrieves an active facility by id.
func (r *GormFacilityRepository) GetActive(ctx context.Context, id uuid.UUID) (*facilityDomain.Facility, error) {
	var model FacilityModel
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, facilityDomain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find facility: %w", err)
	}
	return toDomainFacility(&model), nil
}

// ListActive returns every active facility ordered by name.
func (r *GormFacilityRepository) ListActive(ctx context.Context) ([]*facilityDomain.Facility, error) {
	var models []FacilityModel
	if err := r.db.WithContext(ctx).Where("is_active").Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}

	facilities := make([]*facilityDomain.Facility, len(models))
	for i := range models {
		facilities[i] = toDomainFacility(&models[i])
	}
	return facilities, nil
}

// Save inserts a facility. Facility administration lives outside this service; Save
// exists for seeding.
func (r *GormFacilityRepository) Save(ctx context.Context, f *facilityDomain.Facility) error {
	model := toFacilityModel(f)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperror.NewConflictError("facility name already exists")
		}
		return fmt.Errorf("failed to save facility: %w", err)
	}
	return nil
}

func toFacilityModel(f *facilityDomain.Facility) FacilityModel {
	hours := f.OperatingHours()
	return FacilityModel{
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

func toDomainFacility(m *FacilityModel) *facilityDomain.Facility {
	return facilityDomain.ReconstructFacility(
		m.ID,
		m.Name,
		m.Description,
		m.Location,
		m.Capacity,
		m.RequiresApproval,
		m.OperatingHoursStart,
		m.OperatingHoursEnd,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
