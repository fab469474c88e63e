package complaint

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/residenza/service-facility/internal/platform/apperror"
)

var (
	ErrNotFound      = apperror.New(apperror.KindNotFound, "complaint_not_found", "complaint not found")
	ErrForbidden     = apperror.New(apperror.KindForbidden, "complaint_forbidden", "not allowed to access this complaint")
	ErrStale         = apperror.New(apperror.KindConflict, "complaint_modified", "complaint was modified by another request")
	ErrInvalidStatus = apperror.New(apperror.KindValidation, "invalid_complaint_status", "invalid complaint status")
)

// Category classifies what a complaint is about.
type Category string

const (
	CategoryMaintenance Category = "maintenance"
	CategoryNoise       Category = "noise"
	CategoryCleanliness Category = "cleanliness"
	CategorySecurity    Category = "security"
	CategoryOther       Category = "other"
)

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	switch c {
	case CategoryMaintenance, CategoryNoise, CategoryCleanliness, CategorySecurity, CategoryOther:
		return true
	}
	return false
}

// Priority ranks complaint urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid returns true if the priority is recognized.
func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Status represents the ticket workflow state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

var validTransitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusResolved, StatusClosed},
	StatusInProgress: {StatusResolved, StatusClosed},
	StatusResolved:   {StatusClosed, StatusOpen},
	StatusClosed:     {},
}

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo checks whether moving to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ParseStatus parses a status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus.WithDetails(fmt.Sprintf("unknown status %q", s))
	}
	return st, nil
}

// Complaint is the aggregate root for a resident's ticket.
type Complaint struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	title       string
	description string
	category    Category
	priority    Priority
	status      Status
	adminNotes  string
	resolvedAt  *time.Time
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewComplaint opens a new complaint. An empty priority defaults to medium.
func NewComplaint(ownerID uuid.UUID, title, description string, category Category, priority Priority) (*Complaint, error) {
	var details []string
	if ownerID == uuid.Nil {
		details = append(details, "owner ID is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		details = append(details, "title is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		details = append(details, "description is required")
	}
	if !category.IsValid() {
		details = append(details, fmt.Sprintf("invalid category %q", category))
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		details = append(details, fmt.Sprintf("invalid priority %q", priority))
	}
	if len(details) > 0 {
		return nil, apperror.NewValidationError("invalid complaint", details...)
	}

	now := time.Now().UTC()
	return &Complaint{
		id:          uuid.New(),
		ownerID:     ownerID,
		title:       title,
		description: description,
		category:    category,
		priority:    priority,
		status:      StatusOpen,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a Complaint from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	title, description string,
	category Category,
	priority Priority,
	status Status,
	adminNotes string,
	resolvedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Complaint {
	return &Complaint{
		id:          id,
		ownerID:     ownerID,
		title:       title,
		description: description,
		category:    category,
		priority:    priority,
		status:      status,
		adminNotes:  adminNotes,
		resolvedAt:  resolvedAt,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (c *Complaint) ID() uuid.UUID          { return c.id }
func (c *Complaint) OwnerID() uuid.UUID     { return c.ownerID }
func (c *Complaint) Title() string          { return c.title }
func (c *Complaint) Description() string    { return c.description }
func (c *Complaint) Category() Category     { return c.category }
func (c *Complaint) Priority() Priority     { return c.priority }
func (c *Complaint) Status() Status         { return c.status }
func (c *Complaint) AdminNotes() string     { return c.adminNotes }
func (c *Complaint) ResolvedAt() *time.Time { return c.resolvedAt }
func (c *Complaint) Version() int64         { return c.version }
func (c *Complaint) CreatedAt() time.Time   { return c.createdAt }
func (c *Complaint) UpdatedAt() time.Time   { return c.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the complaint was filed by userID.
func (c *Complaint) IsOwnedBy(userID uuid.UUID) bool {
	return c.ownerID == userID
}

// ChangeStatus moves the complaint along its workflow. Reaching resolved stamps
// resolvedAt; reopening clears it.
func (c *Complaint) ChangeStatus(target Status, adminNotes string, now time.Time) error {
	if !target.IsValid() {
		return ErrInvalidStatus.WithDetails(fmt.Sprintf("unknown status %q", target))
	}
	if !c.status.CanTransitionTo(target) {
		return apperror.NewInvalidStateError(string(c.status), string(target))
	}

	now = now.UTC()
	c.status = target
	switch target {
	case StatusResolved:
		c.resolvedAt = &now
	case StatusOpen:
		c.resolvedAt = nil
	}
	if notes := strings.TrimSpace(adminNotes); notes != "" {
		c.adminNotes = notes
	}
	c.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (c *Complaint) IncrementVersion() {
	c.version++
	c.updatedAt = time.Now().UTC()
}
