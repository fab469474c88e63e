package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/residenza/service-facility/internal/domain/booking"
	"github.com/residenza/service-facility/internal/domain/slot"
	"github.com/residenza/service-facility/internal/platform/apperror"
	"github.com/residenza/service-facility/internal/platform/pagination"
)

// BookingModel is the GORM model for the facility_bookings table.
type BookingModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	FacilityID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_facility_bookings_facility_date"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	BookingDate time.Time      `gorm:"type:date;not null;index:idx_facility_bookings_facility_date"`
	StartTime   slot.TimeOfDay `gorm:"type:time;not null"`
	EndTime     slot.TimeOfDay `gorm:"type:time;not null"`
	Status      string         `gorm:"size:20;not null;index"`
	Purpose     string         `gorm:"type:text;not null;default:''"`
	Notes       string         `gorm:"type:text;not null;default:''"`
	AdminNotes  string         `gorm:"type:text;not null;default:''"`
	ApprovedBy  *uuid.UUID     `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	Version     int64     `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "facility_bookings"
}

// bookingRow is a booking joined with its facility name.
type bookingRow struct {
	BookingModel `gorm:"embedded"`
	FacilityName string
}

const bookingSelect = "facility_bookings.*, facilities.name AS facility_name"

var activeStatuses = []string{string(bookingDomain.StatusPending), string(bookingDomain.StatusApproved)}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) joined(db *gorm.DB) *gorm.DB {
	return db.Table("facility_bookings").
		Select(bookingSelect).
		Joins("JOIN facilities ON facilities.id = facility_bookings.facility_id")
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var rows []bookingRow
	if err := r.joined(r.db.WithContext(ctx)).
		Where("facility_bookings.id = ?", id).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	if len(rows) == 0 {
		return nil, bookingDomain.ErrNotFound
	}
	return toDomainBooking(&rows[0]), nil
}

// FindActiveOn returns pending and approved bookings of a facility on a date.
func (r *GormBookingRepository) FindActiveOn(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]*bookingDomain.Booking, error) {
	return r.findActiveOn(r.db.WithContext(ctx), facilityID, date)
}

func (r *GormBookingRepository) findActiveOn(db *gorm.DB, facilityID uuid.UUID, date time.Time) ([]*bookingDomain.Booking, error) {
	var rows []bookingRow
	if err := r.joined(db).
		Where("facility_bookings.facility_id = ? AND facility_bookings.booking_date = ?", facilityID, slot.FormatDate(date)).
		Where("facility_bookings.status IN ?", activeStatuses).
		Order("facility_bookings.start_time ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find active bookings: %w", err)
	}
	return toDomainBookings(rows), nil
}

// List retrieves bookings matching filter with pagination.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.FacilityID != nil {
			db = db.Where("facility_bookings.facility_id = ?", *filter.FacilityID)
		}
		if filter.OwnerID != nil {
			db = db.Where("facility_bookings.user_id = ?", *filter.OwnerID)
		}
		if filter.VisibleTo != nil {
			db = db.Where("(facility_bookings.status = ? OR facility_bookings.user_id = ?)",
				string(bookingDomain.StatusApproved), *filter.VisibleTo)
		}
		if filter.Status != nil {
			db = db.Where("facility_bookings.status = ?", string(*filter.Status))
		}
		if filter.Date != nil {
			db = db.Where("facility_bookings.booking_date = ?", slot.FormatDate(*filter.Date))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	order := "facility_bookings.booking_date ASC, facility_bookings.start_time ASC"
	if filter.Descending {
		order = "facility_bookings.booking_date DESC, facility_bookings.start_time DESC"
	}

	var rows []bookingRow
	if err := r.joined(r.db.WithContext(ctx)).
		Scopes(scope).
		Order(order).
		Offset(pagination.Params{Page: page, Limit: limit}.Offset()).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(rows), total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Create inserts bk after re-checking for overlaps inside a transaction that holds
// an advisory lock on (facility, date). Creators of the same facility and date are
// serialized; the facility_bookings_no_overlap constraint backs this up.
func (r *GormBookingRepository) Create(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", bookingLockKey(bk.FacilityID(), bk.BookingDate())).Error; err != nil {
			return fmt.Errorf("failed to acquire booking lock: %w", err)
		}

		existing, err := r.findActiveOn(tx, bk.FacilityID(), bk.BookingDate())
		if err != nil {
			return err
		}
		if bk.Status().IsActive() && bookingDomain.FindConflict(existing, bk.Interval(), nil) != nil {
			return bookingDomain.ErrConflict
		}

		return tx.Create(&model).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, bookingDomain.ErrConflict), isPgError(err, pgExclusionViolation):
		return bookingDomain.ErrConflict
	case isPgError(err, pgForeignKeyViolation):
		return apperror.NewValidationError("unknown facility or user")
	default:
		return fmt.Errorf("failed to create booking: %w", err)
	}
}

// ApplyDecision writes an approval review only while the stored row is pending.
func (r *GormBookingRepository) ApplyDecision(ctx context.Context, bk *bookingDomain.Booking) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", bk.ID(), string(bookingDomain.StatusPending)).
		Updates(map[string]interface{}{
			"status":      string(bk.Status()),
			"admin_notes": bk.AdminNotes(),
			"approved_by": bk.ApprovedBy(),
			"approved_at": bk.ApprovedAt(),
			"version":     gorm.Expr("version + 1"),
			"updated_at":  bk.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to apply booking decision: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return bookingDomain.ErrNotFound
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	// IncrementVersion has already been applied to bk.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", bk.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":      string(bk.Status()),
			"admin_notes": bk.AdminNotes(),
			"approved_by": bk.ApprovedBy(),
			"approved_at": bk.ApprovedAt(),
			"version":     bk.Version(),
			"updated_at":  bk.UpdatedAt(),
		})
	if result.Error != nil {
		if isPgError(result.Error, pgExclusionViolation) {
			return bookingDomain.ErrConflict
		}
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return bookingDomain.ErrStaleBooking
	}
	return nil
}

// bookingLockKey derives the advisory lock key for a facility and date.
func bookingLockKey(facilityID uuid.UUID, date time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write(facilityID[:])
	_, _ = h.Write([]byte(slot.FormatDate(date)))
	return int64(h.Sum64())
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) BookingModel {
	return BookingModel{
		ID:          bk.ID(),
		FacilityID:  bk.FacilityID(),
		UserID:      bk.OwnerID(),
		BookingDate: bk.BookingDate(),
		StartTime:   bk.StartTime(),
		EndTime:     bk.EndTime(),
		Status:      string(bk.Status()),
		Purpose:     bk.Purpose(),
		Notes:       bk.Notes(),
		AdminNotes:  bk.AdminNotes(),
		ApprovedBy:  bk.ApprovedBy(),
		ApprovedAt:  bk.ApprovedAt(),
		Version:     bk.Version(),
		CreatedAt:   bk.CreatedAt(),
		UpdatedAt:   bk.UpdatedAt(),
	}
}

func toDomainBooking(row *bookingRow) *bookingDomain.Booking {
	m := row.BookingModel
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.FacilityID,
		m.UserID,
		m.BookingDate,
		m.StartTime,
		m.EndTime,
		bookingDomain.BookingStatus(m.Status),
		m.Purpose,
		m.Notes,
		m.AdminNotes,
		m.ApprovedBy,
		m.ApprovedAt,
		bookingDomain.Details{FacilityName: row.FacilityName},
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(rows []bookingRow) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(rows))
	for i := range rows {
		bookings[i] = toDomainBooking(&rows[i])
	}
	return bookings
}
