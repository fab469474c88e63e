package complaint

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a complaint listing.
type ListFilter struct {
	OwnerID *uuid.UUID
	Status  *Status
}

// ComplaintRepository defines persistence operations for complaints.
type ComplaintRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error)
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*Complaint, int64, error)
	Save(ctx context.Context, complaint *Complaint) error
	// Update persists changes guarded by the complaint version; ErrStale on mismatch.
	Update(ctx context.Context, complaint *Complaint) error
}

// AttachmentRepository defines persistence operations for complaint attachments.
type AttachmentRepository interface {
	Save(ctx context.Context, attachment *Attachment) error
	FindByComplaintID(ctx context.Context, complaintID uuid.UUID) ([]*Attachment, error)
}
