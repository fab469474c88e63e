package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	complaintDomain "github.com/residenza/service-facility/internal/domain/complaint"
)

// AttachmentModel is the GORM model for the complaint_attachments table.
type AttachmentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ComplaintID uuid.UUID `gorm:"type:uuid;not null;index"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null"`
	FileName    string    `gorm:"size:255;not null;default:''"`
	ContentType string    `gorm:"size:50;not null"`
	SizeBytes   int64     `gorm:"not null"`
	URL         string    `gorm:"column:url;type:text;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (AttachmentModel) TableName() string { return "complaint_attachments" }

// GormAttachmentRepository implements AttachmentRepository using GORM.
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewGormAttachmentRepository creates a new GormAttachmentRepository.
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// Save persists a new attachment.
func (r *GormAttachmentRepository) Save(ctx context.Context, a *complaintDomain.Attachment) error {
	model := toAttachmentModel(a)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save attachment: %w", err)
	}
	return nil
}

// FindByComplaintID returns all attachments of a complaint in upload order.
func (r *GormAttachmentRepository) FindByComplaintID(ctx context.Context, complaintID uuid.UUID) ([]*complaintDomain.Attachment, error) {
	var models []AttachmentModel
	if err := r.db.WithContext(ctx).Where("complaint_id = ?", complaintID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find attachments: %w", err)
	}

	attachments := make([]*complaintDomain.Attachment, len(models))
	for i, m := range models {
		attachments[i] = toAttachmentDomain(&m)
	}
	return attachments, nil
}

func toAttachmentModel(a *complaintDomain.Attachment) AttachmentModel {
	return AttachmentModel{
		ID:          a.ID(),
		ComplaintID: a.ComplaintID(),
		UploadedBy:  a.UploadedBy(),
		FileName:    a.FileName(),
		ContentType: a.ContentType(),
		SizeBytes:   a.SizeBytes(),
		URL:         a.URL(),
		CreatedAt:   a.CreatedAt(),
	}
}

func toAttachmentDomain(m *AttachmentModel) *complaintDomain.Attachment {
	return complaintDomain.ReconstructAttachment(
		m.ID, m.ComplaintID, m.UploadedBy, m.FileName, m.ContentType, m.SizeBytes, m.URL, m.CreatedAt,
	)
}
