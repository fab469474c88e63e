package handler

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/residenza/service-facility/internal/domain/booking"
	"github.com/residenza/service-facility/internal/domain/complaint"
	"github.com/residenza/service-facility/internal/domain/facility"
	"github.com/residenza/service-facility/internal/domain/slot"
)

type stubRegistry map[uuid.UUID]*facility.Facility

func (r stubRegistry) GetActive(_ context.Context, id uuid.UUID) (*facility.Facility, error) {
	f, ok := r[id]
	if !ok || !f.IsActive() {
		return nil, facility.ErrNotFound
	}
	return f, nil
}

func (r stubRegistry) ListActive(context.Context) ([]*facility.Facility, error) {
	var out []*facility.Facility
	for _, f := range r {
		out = append(out, f)
	}
	return out, nil
}

// ledger keeps bookings in insertion order. Listing ignores ordering and paging.
type ledger struct {
	mu       sync.Mutex
	bookings []*booking.Booking
}

func (l *ledger) find(id uuid.UUID) int {
	for i, b := range l.bookings {
		if b.ID() == id {
			return i
		}
	}
	return -1
}

func (l *ledger) FindActiveOn(_ context.Context, facilityID uuid.UUID, date time.Time) ([]*booking.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*booking.Booking
	for _, b := range l.bookings {
		if b.FacilityID() == facilityID && b.BookingDate().Equal(slot.DateOf(date)) && b.Status().IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *ledger) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.find(id)
	if i < 0 {
		return nil, booking.ErrNotFound
	}
	b := l.bookings[i]
	return booking.ReconstructBooking(
		b.ID(), b.FacilityID(), b.OwnerID(), b.BookingDate(), b.StartTime(), b.EndTime(),
		b.Status(), b.Purpose(), b.Notes(), b.AdminNotes(), b.ApprovedBy(), b.ApprovedAt(),
		b.Details(), b.Version(), b.CreatedAt(), b.UpdatedAt(),
	), nil
}

func (l *ledger) List(_ context.Context, f booking.ListFilter, _, _ int) ([]*booking.Booking, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*booking.Booking
	for _, b := range l.bookings {
		if f.FacilityID != nil && b.FacilityID() != *f.FacilityID {
			continue
		}
		if f.OwnerID != nil && b.OwnerID() != *f.OwnerID {
			continue
		}
		if f.VisibleTo != nil && b.Status() != booking.StatusApproved && b.OwnerID() != *f.VisibleTo {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (l *ledger) CountByStatus(context.Context) (map[string]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range l.bookings {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (l *ledger) Create(ctx context.Context, b *booking.Booking) error {
	active, _ := l.FindActiveOn(ctx, b.FacilityID(), b.BookingDate())
	if booking.FindConflict(active, b.Interval(), nil) != nil {
		return booking.ErrConflict
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bookings = append(l.bookings, b)
	return nil
}

func (l *ledger) ApplyDecision(_ context.Context, b *booking.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.find(b.ID())
	if i < 0 || l.bookings[i].Status() != booking.StatusPending {
		return booking.ErrNotFound
	}
	l.bookings[i] = b
	return nil
}

func (l *ledger) Update(_ context.Context, b *booking.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.find(b.ID())
	if i < 0 {
		return booking.ErrStaleBooking
	}
	l.bookings[i] = b
	return nil
}

type complaintStore struct {
	mu          sync.Mutex
	complaints  map[uuid.UUID]*complaint.Complaint
	attachments []*complaint.Attachment
	objects     map[string]int
}

func newComplaintStore() *complaintStore {
	return &complaintStore{
		complaints: make(map[uuid.UUID]*complaint.Complaint),
		objects:    make(map[string]int),
	}
}

func (s *complaintStore) FindByID(_ context.Context, id uuid.UUID) (*complaint.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, complaint.ErrNotFound
	}
	return c, nil
}

func (s *complaintStore) List(_ context.Context, f complaint.ListFilter, _, _ int) ([]*complaint.Complaint, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*complaint.Complaint
	for _, c := range s.complaints {
		if f.OwnerID != nil && c.OwnerID() != *f.OwnerID {
			continue
		}
		if f.Status != nil && c.Status() != *f.Status {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (s *complaintStore) Save(_ context.Context, c *complaint.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints[c.ID()] = c
	return nil
}

func (s *complaintStore) Update(ctx context.Context, c *complaint.Complaint) error {
	return s.Save(ctx, c)
}

// attachmentStore adapts complaintStore to the attachment repository.
type attachmentStore struct{ *complaintStore }

func (s attachmentStore) Save(_ context.Context, a *complaint.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = append(s.attachments, a)
	return nil
}

func (s attachmentStore) FindByComplaintID(_ context.Context, id uuid.UUID) ([]*complaint.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*complaint.Attachment
	for _, a := range s.attachments {
		if a.ComplaintID() == id {
			out = append(out, a)
		}
	}
	return out, nil
}

// blobStore adapts complaintStore to blob.Store, recording object sizes.
type blobStore struct{ *complaintStore }

func (s blobStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = int(n)
	return "https://blob.test/" + key, nil
}

func (s blobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}
