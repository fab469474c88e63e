package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/residenza/service-facility/internal/domain/complaint"
	"github.com/residenza/service-facility/internal/domain/user"
	"github.com/residenza/service-facility/internal/events"
	"github.com/residenza/service-facility/internal/platform/apperror"
	"github.com/residenza/service-facility/internal/platform/auth"
	"github.com/residenza/service-facility/internal/platform/blob"
	"github.com/residenza/service-facility/internal/platform/kafka"
	"github.com/residenza/service-facility/internal/platform/pagination"
)

// CreateComplaintRequest holds the data to open a complaint.
type CreateComplaintRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required,max=5000"`
	Category    string `json:"category" binding:"required,oneof=maintenance noise cleanliness security other"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// UpdateComplaintStatusRequest holds an administrator's status change.
type UpdateComplaintStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=open in_progress resolved closed"`
	AdminNotes string `json:"admin_notes" binding:"max=1000"`
}

// AttachmentUpload describes an uploaded file.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ComplaintDTO is the API response representation of a complaint.
type ComplaintDTO struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	UserName    string     `json:"user_name,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	AdminNotes  string     `json:"admin_notes,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AttachmentDTO is the API response representation of a complaint attachment.
type AttachmentDTO struct {
	ID          uuid.UUID `json:"id"`
	ComplaintID uuid.UUID `json:"complaint_id"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

// ComplaintService handles complaint ticketing use cases.
type ComplaintService struct {
	repo        complaint.ComplaintRepository
	attachments complaint.AttachmentRepository
	blobs       blob.Store
	users       user.Directory
	events      eventPublisher
	now         func() time.Time
	logger      *zap.Logger
}

// NewComplaintService creates a new ComplaintService. blobs may be nil, in which
// case uploads fail.
func NewComplaintService(
	repo complaint.ComplaintRepository,
	attachments complaint.AttachmentRepository,
	blobs blob.Store,
	users user.Directory,
	producer kafka.Publisher,
	topic string,
	logger *zap.Logger,
) *ComplaintService {
	return &ComplaintService{
		repo:        repo,
		attachments: attachments,
		blobs:       blobs,
		users:       users,
		events:      newEventPublisher(producer, topic, logger),
		now:         time.Now,
		logger:      logger,
	}
}

// CreateComplaint opens a complaint owned by the actor.
func (s *ComplaintService) CreateComplaint(ctx context.Context, actor auth.Identity, req CreateComplaintRequest) (*ComplaintDTO, error) {
	c, err := complaint.NewComplaint(
		actor.UserID,
		req.Title,
		req.Description,
		complaint.Category(req.Category),
		complaint.Priority(req.Priority),
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("complaint created",
		zap.String("complaint_id", c.ID().String()),
		zap.String("category", string(c.Category())),
	)
	s.publish(ctx, events.ComplaintCreated, c, actor)

	return s.toDTOs(ctx, []*complaint.Complaint{c})[0], nil
}

// GetComplaint returns a complaint visible to the actor.
func (s *ComplaintService) GetComplaint(ctx context.Context, actor auth.Identity, id uuid.UUID) (*ComplaintDTO, error) {
	c, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, []*complaint.Complaint{c})[0], nil
}

// ListMyComplaints lists the actor's complaints, newest first.
func (s *ComplaintService) ListMyComplaints(ctx context.Context, actor auth.Identity, page, limit int) (pagination.Result[*ComplaintDTO], error) {
	return s.list(ctx, complaint.ListFilter{OwnerID: &actor.UserID}, page, limit)
}

// ListComplaints lists all complaints, optionally by status (admin).
func (s *ComplaintService) ListComplaints(ctx context.Context, status string, page, limit int) (pagination.Result[*ComplaintDTO], error) {
	var filter complaint.ListFilter
	if status != "" {
		st, err := complaint.ParseStatus(status)
		if err != nil {
			return pagination.Result[*ComplaintDTO]{}, err
		}
		filter.Status = &st
	}
	return s.list(ctx, filter, page, limit)
}

// UpdateStatus moves a complaint along its workflow (admin).
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor auth.Identity, id uuid.UUID, req UpdateComplaintStatusRequest) (*ComplaintDTO, error) {
	if !actor.IsAdmin() {
		return nil, complaint.ErrForbidden.WithMessage("only administrators can change complaint status")
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.ChangeStatus(complaint.Status(req.Status), req.AdminNotes, s.now()); err != nil {
		return nil, err
	}

	c.IncrementVersion()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("complaint status changed",
		zap.String("complaint_id", c.ID().String()),
		zap.String("status", string(c.Status())),
		zap.String("actor_id", actor.UserID.String()),
	)
	s.publish(ctx, events.ComplaintStatusChanged, c, actor)

	return s.toDTOs(ctx, []*complaint.Complaint{c})[0], nil
}

// AddAttachment stores an image for a complaint the actor can see.
func (s *ComplaintService) AddAttachment(ctx context.Context, actor auth.Identity, complaintID uuid.UUID, upload AttachmentUpload) (*AttachmentDTO, error) {
	c, err := s.findVisible(ctx, actor, complaintID)
	if err != nil {
		return nil, err
	}

	ext, ok := complaint.ExtensionFor(upload.ContentType)
	if !ok {
		return nil, apperror.NewValidationError("unsupported attachment type",
			fmt.Sprintf("content type %q is not one of image/jpeg, image/png, image/webp", upload.ContentType))
	}
	if upload.Size <= 0 || upload.Size > complaint.MaxAttachmentSize {
		return nil, apperror.NewValidationError("invalid attachment size",
			fmt.Sprintf("attachment must be between 1 byte and %d bytes", complaint.MaxAttachmentSize))
	}
	if s.blobs == nil {
		return nil, apperror.Internal(errors.New("attachment storage is not configured"))
	}

	key := fmt.Sprintf("complaints/%s/%s%s", c.ID(), uuid.NewString(), ext)
	url, err := s.blobs.Put(ctx, key, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		return nil, err
	}

	a, err := complaint.NewAttachment(c.ID(), actor.UserID, upload.FileName, upload.ContentType, upload.Size, url)
	if err == nil {
		err = s.attachments.Save(ctx, a)
	}
	if err != nil {
		s.discardObject(ctx, key, err)
		return nil, err
	}

	s.logger.Info("complaint attachment uploaded",
		zap.String("complaint_id", c.ID().String()),
		zap.String("attachment_id", a.ID().String()),
		zap.Int64("size", a.SizeBytes()),
	)
	return toAttachmentDTO(a), nil
}

// discardObject removes an uploaded object whose attachment record was not saved.
func (s *ComplaintService) discardObject(ctx context.Context, key string, cause error) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Error("orphaned attachment object",
			zap.String("key", key),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("discarded attachment object after failed save",
		zap.String("key", key),
		zap.Error(cause),
	)
}

// ListAttachments returns the attachments of a complaint the actor can see.
func (s *ComplaintService) ListAttachments(ctx context.Context, actor auth.Identity, complaintID uuid.UUID) ([]*AttachmentDTO, error) {
	if _, err := s.findVisible(ctx, actor, complaintID); err != nil {
		return nil, err
	}

	attachments, err := s.attachments.FindByComplaintID(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*AttachmentDTO, len(attachments))
	for i, a := range attachments {
		dtos[i] = toAttachmentDTO(a)
	}
	return dtos, nil
}

// findVisible loads a complaint, hiding other residents' complaints as not found.
func (s *ComplaintService) findVisible(ctx context.Context, actor auth.Identity, id uuid.UUID) (*complaint.Complaint, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !c.IsOwnedBy(actor.UserID) {
		return nil, complaint.ErrNotFound
	}
	return c, nil
}

func (s *ComplaintService) list(ctx context.Context, filter complaint.ListFilter, page, limit int) (pagination.Result[*ComplaintDTO], error) {
	p := pagination.Normalize(page, limit)
	complaints, total, err := s.repo.List(ctx, filter, p.Page, p.Limit)
	if err != nil {
		return pagination.Result[*ComplaintDTO]{}, err
	}
	return pagination.NewResult(s.toDTOs(ctx, complaints), total, p.Page, p.Limit), nil
}

func (s *ComplaintService) publish(ctx context.Context, eventType string, c *complaint.Complaint, actor auth.Identity) {
	s.events.publish(ctx, eventType, c.ID().String(), events.ComplaintEvent{
		ComplaintID: c.ID(),
		OwnerID:     c.OwnerID(),
		ActorID:     actor.UserID,
		Category:    string(c.Category()),
		Priority:    string(c.Priority()),
		Status:      string(c.Status()),
		OccurredAt:  s.now().UTC(),
	})
}

func (s *ComplaintService) toDTOs(ctx context.Context, complaints []*complaint.Complaint) []*ComplaintDTO {
	var users map[uuid.UUID]*user.User
	if s.users != nil && len(complaints) > 0 {
		ids := make([]uuid.UUID, 0, len(complaints))
		for _, c := range complaints {
			ids = append(ids, c.OwnerID())
		}
		found, err := s.users.FindByIDs(ctx, ids)
		if err != nil {
			s.logger.Warn("failed to resolve complaint owner names", zap.Error(err))
		}
		users = found
	}

	dtos := make([]*ComplaintDTO, len(complaints))
	for i, c := range complaints {
		ownerID := c.OwnerID()
		dtos[i] = &ComplaintDTO{
			ID:          c.ID(),
			UserID:      ownerID,
			UserName:    user.NameOf(users, &ownerID),
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
	return dtos
}

func toAttachmentDTO(a *complaint.Attachment) *AttachmentDTO {
	return &AttachmentDTO{
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
