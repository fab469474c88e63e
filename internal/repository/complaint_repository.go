package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	complaintDomain "github.com/residenza/service-facility/internal/domain/complaint"
	"github.com/residenza/service-facility/internal/platform/pagination"
)

// ComplaintModel is the GORM model for the complaints table.
type ComplaintModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text;not null"`
	Category    string    `gorm:"size:20;not null"`
	Priority    string    `gorm:"size:10;not null"`
	Status      string    `gorm:"size:20;not null;index"`
	AdminNotes  string    `gorm:"type:text;not null;default:''"`
	ResolvedAt  *time.Time
	Version     int64     `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ComplaintModel) TableName() string { return "complaints" }

// GormComplaintRepository is the GORM-based implementation of ComplaintRepository.
type GormComplaintRepository struct {
	db *gorm.DB
}

// NewGormComplaintRepository creates a new GormComplaintRepository.
func NewGormComplaintRepository(db *gorm.DB) *GormComplaintRepository {
	return &GormComplaintRepository{db: db}
}

// FindByID retrieves a complaint by id.
func (r *GormComplaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*complaintDomain.Complaint, error) {
	var model ComplaintModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, complaintDomain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find complaint: %w", err)
	}
	return toDomainComplaint(&model), nil
}

// List retrieves complaints matching filter, newest first.
func (r *GormComplaintRepository) List(ctx context.Context, filter complaintDomain.ListFilter, page, limit int) ([]*complaintDomain.Complaint, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.OwnerID != nil {
			db = db.Where("user_id = ?", *filter.OwnerID)
		}
		if filter.Status != nil {
			db = db.Where("status = ?", string(*filter.Status))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&ComplaintModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count complaints: %w", err)
	}

	var models []ComplaintModel
	if err := r.db.WithContext(ctx).Scopes(scope).
		Order("created_at DESC").
		Offset(pagination.Params{Page: page, Limit: limit}.Offset()).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list complaints: %w", err)
	}

	complaints := make([]*complaintDomain.Complaint, len(models))
	for i := range models {
		complaints[i] = toDomainComplaint(&models[i])
	}
	return complaints, total, nil
}

// Save persists a new complaint.
func (r *GormComplaintRepository) Save(ctx context.Context, c *complaintDomain.Complaint) error {
	model := toComplaintModel(c)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save complaint: %w", err)
	}
	return nil
}

// Update persists status changes with optimistic locking.
func (r *GormComplaintRepository) Update(ctx context.Context, c *complaintDomain.Complaint) error {
	expectedVersion := c.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ComplaintModel{}).
		Where("id = ? AND version = ?", c.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":      string(c.Status()),
			"admin_notes": c.AdminNotes(),
			"resolved_at": c.ResolvedAt(),
			"version":     c.Version(),
			"updated_at":  c.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update complaint: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return complaintDomain.ErrStale
	}
	return nil
}

func toComplaintModel(c *complaintDomain.Complaint) ComplaintModel {
	return ComplaintModel{
		ID:          c.ID(),
		UserID:      c.OwnerID(),
		Title:       c.Title(),
		Description: c.Description(),
		Category:    string(c.Category()),
		Priority:    string(c.Priority()),
		Status:      string(c.Status()),
		AdminNotes:  c.AdminNotes(),
		ResolvedAt:  c.ResolvedAt(),
		Version:     c.Version(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

func toDomainComplaint(m *ComplaintModel) *complaintDomain.Complaint {
	return complaintDomain.Reconstruct(
		m.ID,
		m.UserID,
		m.Title,
		m.Description,
		complaintDomain.Category(m.Category),
		complaintDomain.Priority(m.Priority),
		complaintDomain.Status(m.Status),
		m.AdminNotes,
		m.ResolvedAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
