package complaint

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/residenza/service-facility/internal/platform/apperror"
)

// MaxAttachmentSize is the largest accepted upload in bytes.
const MaxAttachmentSize = 5 << 20

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ExtensionFor returns the file extension stored for contentType, or false when
// the type is not accepted.
func ExtensionFor(contentType string) (string, bool) {
	ext, ok := allowedContentTypes[strings.ToLower(contentType)]
	return ext, ok
}

// Attachment is an image uploaded as evidence for a complaint.
type Attachment struct {
	id          uuid.UUID
	complaintID uuid.UUID
	uploadedBy  uuid.UUID
	fileName    string
	contentType string
	sizeBytes   int64
	url         string
	createdAt   time.Time
}

// NewAttachment validates and creates an attachment record for a stored object.
func NewAttachment(complaintID, uploadedBy uuid.UUID, fileName, contentType string, sizeBytes int64, url string) (*Attachment, error) {
	if _, ok := ExtensionFor(contentType); !ok {
		return nil, apperror.NewValidationError("unsupported attachment type",
			fmt.Sprintf("content type %q is not one of image/jpeg, image/png, image/webp", contentType))
	}
	if sizeBytes <= 0 || sizeBytes > MaxAttachmentSize {
		return nil, apperror.NewValidationError("invalid attachment size",
			fmt.Sprintf("attachment must be between 1 byte and %d bytes", MaxAttachmentSize))
	}
	if url == "" {
		return nil, apperror.NewValidationError("attachment URL is required")
	}

	return &Attachment{
		id:          uuid.New(),
		complaintID: complaintID,
		uploadedBy:  uploadedBy,
		fileName:    fileName,
		contentType: strings.ToLower(contentType),
		sizeBytes:   sizeBytes,
		url:         url,
		createdAt:   time.Now().UTC(),
	}, nil
}

// ReconstructAttachment rebuilds an Attachment from persistence.
func ReconstructAttachment(id, complaintID, uploadedBy uuid.UUID, fileName, contentType string, sizeBytes int64, url string, createdAt time.Time) *Attachment {
	return &Attachment{
		id:          id,
		complaintID: complaintID,
		uploadedBy:  uploadedBy,
		fileName:    fileName,
		contentType: contentType,
		sizeBytes:   sizeBytes,
		url:         url,
		createdAt:   createdAt,
	}
}

// Getters.
func (a *Attachment) ID() uuid.UUID          { return a.id }
func (a *Attachment) ComplaintID() uuid.UUID { return a.complaintID }
func (a *Attachment) UploadedBy() uuid.UUID  { return a.uploadedBy }
func (a *Attachment) FileName() string       { return a.fileName }
func (a *Attachment) ContentType() string    { return a.contentType }
func (a *Attachment) SizeBytes() int64       { return a.sizeBytes }
func (a *Attachment) URL() string            { return a.url }
func (a *Attachment) CreatedAt() time.Time   { return a.createdAt }
