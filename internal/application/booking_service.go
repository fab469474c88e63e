package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/residenza/service-facility/internal/domain/booking"
	"github.com/residenza/service-facility/internal/domain/facility"
	"github.com/residenza/service-facility/internal/domain/slot"
	"github.com/residenza/service-facility/internal/domain/user"
	"github.com/residenza/service-facility/internal/events"
	"github.com/residenza/service-facility/internal/platform/apperror"
	"github.com/residenza/service-facility/internal/platform/auth"
	"github.com/residenza/service-facility/internal/platform/kafka"
	"github.com/residenza/service-facility/internal/platform/pagination"
)

// CreateBookingRequest holds the data needed to book a facility. FacilityID is
// optional; when present it must match the facility in the path.
type CreateBookingRequest struct {
	FacilityID  string `json:"facility_id" binding:"omitempty,uuid"`
	BookingDate string `json:"booking_date" binding:"required,isodate"`
	StartTime   string `json:"start_time" binding:"required,hhmm"`
	EndTime     string `json:"end_time" binding:"required,hhmm"`
	Purpose     string `json:"purpose" binding:"max=500"`
	Notes       string `json:"notes" binding:"max=1000"`
}

// DecideBookingRequest holds an administrator's review.
type DecideBookingRequest struct {
	Status     string `json:"status" binding:"required,oneof=approved rejected"`
	AdminNotes string `json:"admin_notes" binding:"max=1000"`
}

// ListBookingsQuery holds listing filters from the query string.
type ListBookingsQuery struct {
	Status string
	Date   string
	Page   int
	Limit  int
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID           uuid.UUID      `json:"id"`
	FacilityID   uuid.UUID      `json:"facility_id"`
	FacilityName string         `json:"facility_name,omitempty"`
	UserID       uuid.UUID      `json:"user_id"`
	UserName     string         `json:"user_name,omitempty"`
	UserEmail    string         `json:"user_email,omitempty"`
	BookingDate  string         `json:"booking_date"`
	StartTime    slot.TimeOfDay `json:"start_time"`
	EndTime      slot.TimeOfDay `json:"end_time"`
	Status       string         `json:"status"`
	Purpose      string         `json:"purpose,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	AdminNotes   string         `json:"admin_notes,omitempty"`
	ApprovedBy   *uuid.UUID     `json:"approved_by,omitempty"`
	ApproverName string         `json:"approver_name,omitempty"`
	ApprovedAt   *time.Time     `json:"approved_at,omitempty"`
	Version      int64          `json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// BookingStatsDTO summarises bookings by status.
type BookingStatsDTO struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// BookingService is the booking lifecycle engine.
type BookingService struct {
	repo     booking.BookingRepository
	registry facility.Registry
	users    user.Directory
	detector *booking.ConflictDetector
	events   eventPublisher
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService. Booking dates and start times
// are interpreted in loc.
func NewBookingService(
	repo booking.BookingRepository,
	registry facility.Registry,
	users user.Directory,
	producer kafka.Publisher,
	topic string,
	loc *time.Location,
	logger *zap.Logger,
) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		repo:     repo,
		registry: registry,
		users:    users,
		detector: booking.NewConflictDetector(repo),
		events:   newEventPublisher(producer, topic, logger),
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// today returns the current calendar date in the service timezone.
func (s *BookingService) today() time.Time {
	return slot.DateOf(s.now().In(s.loc))
}

// CreateBooking books a facility for the actor.
func (s *BookingService) CreateBooking(ctx context.Context, actor auth.Identity, facilityID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if req.FacilityID != "" && req.FacilityID != facilityID.String() {
		return nil, apperror.NewValidationError("facility_id does not match the requested facility")
	}

	f, err := s.registry.GetActive(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	date, start, end, err := parseSlot(req)
	if err != nil {
		return nil, err
	}
	iv, err := booking.ValidateTimeRange(f, start, end)
	if err != nil {
		return nil, err
	}
	if date.Before(s.today()) {
		return nil, booking.ErrDateInPast
	}

	conflict, err := s.detector.HasConflict(ctx, f.ID(), date, iv, nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, booking.ErrConflict
	}

	bk, err := booking.NewBooking(f, actor.UserID, date, start, end, req.Purpose, req.Notes, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("facility_id", f.ID().String()),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("status", bk.Status().String()),
	)
	s.publish(ctx, events.BookingCreated, bk, actor)

	return s.toDTO(ctx, bk), nil
}

// DecideBooking approves or rejects a pending booking. A booking that is absent or
// no longer pending is reported as not found.
func (s *BookingService) DecideBooking(ctx context.Context, actor auth.Identity, bookingID uuid.UUID, req DecideBookingRequest) (*BookingDTO, error) {
	if !booking.CanApprove(actor) {
		return nil, booking.ErrForbidden.WithMessage("only administrators can approve or reject bookings")
	}
	decision, err := booking.ParseBookingStatus(req.Status)
	if err != nil || !decision.IsDecision() {
		return nil, booking.ErrInvalidDecision
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bk.Decide(actor.UserID, decision, req.AdminNotes, s.now()); err != nil {
		if errors.Is(err, booking.ErrNotPending) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	if err := s.repo.ApplyDecision(ctx, bk); err != nil {
		return nil, err
	}
	bk.IncrementVersion()

	s.logger.Info("booking decided",
		zap.String("booking_id", bk.ID().String()),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("status", bk.Status().String()),
	)
	eventType := events.BookingApproved
	if decision == booking.StatusRejected {
		eventType = events.BookingRejected
	}
	s.publish(ctx, eventType, bk, actor)

	return s.toDTO(ctx, bk), nil
}

// CancelBooking cancels a pending or approved booking that has not started.
func (s *BookingService) CancelBooking(ctx context.Context, actor auth.Identity, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.CanCancel(actor, bk) {
		return nil, booking.ErrForbidden
	}
	if err := bk.Cancel(s.now(), s.loc); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", bk.ID().String()),
		zap.String("actor_id", actor.UserID.String()),
	)
	s.publish(ctx, events.BookingCancelled, bk, actor)

	return s.toDTO(ctx, bk), nil
}

// GetBooking returns a booking the actor may view. Bookings the actor may not
// view are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, actor auth.Identity, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.CanView(actor, bk) {
		return nil, booking.ErrNotFound
	}
	return s.toDTO(ctx, bk), nil
}

// ListFacilityBookings lists bookings of a facility. Residents see approved bookings
// plus their own.
func (s *BookingService) ListFacilityBookings(ctx context.Context, actor auth.Identity, facilityID uuid.UUID, q ListBookingsQuery) (pagination.Result[*BookingDTO], error) {
	filter := booking.ListFilter{FacilityID: &facilityID}
	if !actor.IsAdmin() {
		filter.VisibleTo = &actor.UserID
	}
	return s.list(ctx, filter, q)
}

// ListMyBookings lists the actor's own bookings, newest first.
func (s *BookingService) ListMyBookings(ctx context.Context, actor auth.Identity, q ListBookingsQuery) (pagination.Result[*BookingDTO], error) {
	filter := booking.ListFilter{OwnerID: &actor.UserID, Descending: true}
	return s.list(ctx, filter, q)
}

// Stats counts bookings per status (admin).
func (s *BookingService) Stats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &BookingStatsDTO{ByStatus: make(map[string]int64)}
	for _, st := range []booking.BookingStatus{booking.StatusPending, booking.StatusApproved, booking.StatusRejected, booking.StatusCancelled} {
		stats.ByStatus[st.String()] = counts[st.String()]
		stats.Total += counts[st.String()]
	}
	return stats, nil
}

func (s *BookingService) list(ctx context.Context, filter booking.ListFilter, q ListBookingsQuery) (pagination.Result[*BookingDTO], error) {
	if q.Status != "" {
		st, err := booking.ParseBookingStatus(q.Status)
		if err != nil {
			return pagination.Result[*BookingDTO]{}, apperror.NewValidationError("invalid status filter", err.Error())
		}
		filter.Status = &st
	}
	if q.Date != "" {
		d, err := slot.ParseDate(q.Date)
		if err != nil {
			return pagination.Result[*BookingDTO]{}, apperror.NewValidationError("invalid date filter", "date must be a YYYY-MM-DD date")
		}
		filter.Date = &d
	}

	p := pagination.Normalize(q.Page, q.Limit)
	bookings, total, err := s.repo.List(ctx, filter, p.Page, p.Limit)
	if err != nil {
		return pagination.Result[*BookingDTO]{}, err
	}
	return pagination.NewResult(s.toDTOs(ctx, bookings), total, p.Page, p.Limit), nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, bk *booking.Booking, actor auth.Identity) {
	s.events.publish(ctx, eventType, bk.ID().String(), events.BookingEvent{
		BookingID:   bk.ID(),
		FacilityID:  bk.FacilityID(),
		OwnerID:     bk.OwnerID(),
		ActorID:     actor.UserID,
		BookingDate: slot.FormatDate(bk.BookingDate()),
		StartTime:   bk.StartTime().String(),
		EndTime:     bk.EndTime().String(),
		Status:      bk.Status().String(),
		ApprovedBy:  bk.ApprovedBy(),
		OccurredAt:  s.now().UTC(),
	})
}

func parseSlot(req CreateBookingRequest) (date time.Time, start, end slot.TimeOfDay, err error) {
	var details []string
	if date, err = slot.ParseDate(req.BookingDate); err != nil {
		details = append(details, "booking_date must be a YYYY-MM-DD date")
	}
	if start, err = slot.ParseTimeOfDay(req.StartTime); err != nil {
		details = append(details, "start_time must be a HH:MM time")
	}
	if end, err = slot.ParseTimeOfDay(req.EndTime); err != nil {
		details = append(details, "end_time must be a HH:MM time")
	}
	if len(details) > 0 {
		return time.Time{}, 0, 0, apperror.NewValidationError("invalid booking request", details...)
	}
	return date, start, end, nil
}

// toDTO resolves user names for bk. Name lookup failures leave the names empty.
func (s *BookingService) toDTO(ctx context.Context, bk *booking.Booking) *BookingDTO {
	return s.toDTOs(ctx, []*booking.Booking{bk})[0]
}

func (s *BookingService) toDTOs(ctx context.Context, bookings []*booking.Booking) []*BookingDTO {
	users := s.resolveUsers(ctx, bookings)

	dtos := make([]*BookingDTO, len(bookings))
	for i, bk := range bookings {
		details := bk.Details()
		ownerID := bk.OwnerID()
		if owner, ok := users[ownerID]; ok {
			details.OwnerName = owner.FullName
			details.OwnerEmail = owner.Email
		}
		details.ApproverName = user.NameOf(users, bk.ApprovedBy())
		bk.SetDetails(details)
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) resolveUsers(ctx context.Context, bookings []*booking.Booking) map[uuid.UUID]*user.User {
	if s.users == nil || len(bookings) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, bk := range bookings {
		add(bk.OwnerID())
		if bk.ApprovedBy() != nil {
			add(*bk.ApprovedBy())
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve booking user names", zap.Error(err))
		return nil
	}
	return users
}

func toBookingDTO(bk *booking.Booking) *BookingDTO {
	d := bk.Details()
	return &BookingDTO{
		ID:           bk.ID(),
		FacilityID:   bk.FacilityID(),
		FacilityName: d.FacilityName,
		UserID:       bk.OwnerID(),
		UserName:     d.OwnerName,
		UserEmail:    d.OwnerEmail,
		BookingDate:  slot.FormatDate(bk.BookingDate()),
		StartTime:    bk.StartTime(),
		EndTime:      bk.EndTime(),
		Status:       bk.Status().String(),
		Purpose:      bk.Purpose(),
		Notes:        bk.Notes(),
		AdminNotes:   bk.AdminNotes(),
		ApprovedBy:   bk.ApprovedBy(),
		ApproverName: d.ApproverName,
		ApprovedAt:   bk.ApprovedAt(),
		Version:      bk.Version(),
		CreatedAt:    bk.CreatedAt(),
		UpdatedAt:    bk.UpdatedAt(),
	}
}
