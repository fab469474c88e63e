package application

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/residenza/service-facility/internal/domain/booking"
	"github.com/residenza/service-facility/internal/domain/complaint"
	"github.com/residenza/service-facility/internal/domain/facility"
	"github.com/residenza/service-facility/internal/domain/slot"
	"github.com/residenza/service-facility/internal/domain/user"
	"github.com/residenza/service-facility/internal/platform/kafka"
)

// --- facilities ---

type memoryRegistry struct {
	mu         sync.Mutex
	facilities map[uuid.UUID]*facility.Facility
}

func newMemoryRegistry(fs ...*facility.Facility) *memoryRegistry {
	r := &memoryRegistry{facilities: make(map[uuid.UUID]*facility.Facility)}
	for _, f := range fs {
		r.facilities[f.ID()] = f
	}
	return r
}

func (r *memoryRegistry) GetActive(_ context.Context, id uuid.UUID) (*facility.Facility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.facilities[id]
	if !ok || !f.IsActive() {
		return nil, facility.ErrNotFound
	}
	return f, nil
}

func (r *memoryRegistry) ListActive(context.Context) ([]*facility.Facility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*facility.Facility
	for _, f := range r.facilities {
		if f.IsActive() {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// --- bookings ---

type memoryBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking.Booking
	names    map[uuid.UUID]string
}

func newMemoryBookingRepo(fs ...*facility.Facility) *memoryBookingRepo {
	r := &memoryBookingRepo{bookings: make(map[uuid.UUID]*booking.Booking), names: make(map[uuid.UUID]string)}
	for _, f := range fs {
		r.names[f.ID()] = f.Name()
	}
	return r
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	return booking.ReconstructBooking(
		b.ID(), b.FacilityID(), b.OwnerID(), b.BookingDate(), b.StartTime(), b.EndTime(),
		b.Status(), b.Purpose(), b.Notes(), b.AdminNotes(), b.ApprovedBy(), b.ApprovedAt(),
		b.Details(), b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func (r *memoryBookingRepo) load(b *booking.Booking) *booking.Booking {
	c := cloneBooking(b)
	c.SetDetails(booking.Details{FacilityName: r.names[b.FacilityID()]})
	return c
}

func (r *memoryBookingRepo) activeOn(facilityID uuid.UUID, date time.Time) []*booking.Booking {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.FacilityID() == facilityID && b.BookingDate().Equal(slot.DateOf(date)) && b.Status().IsActive() {
			out = append(out, r.load(b))
		}
	}
	return out
}

func (r *memoryBookingRepo) FindActiveOn(_ context.Context, facilityID uuid.UUID, date time.Time) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeOn(facilityID, date), nil
}

func (r *memoryBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return r.load(b), nil
}

func (r *memoryBookingRepo) List(_ context.Context, f booking.ListFilter, page, limit int) ([]*booking.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*booking.Booking
	for _, b := range r.bookings {
		if f.FacilityID != nil && b.FacilityID() != *f.FacilityID {
			continue
		}
		if f.OwnerID != nil && b.OwnerID() != *f.OwnerID {
			continue
		}
		if f.VisibleTo != nil && b.Status() != booking.StatusApproved && b.OwnerID() != *f.VisibleTo {
			continue
		}
		if f.Status != nil && b.Status() != *f.Status {
			continue
		}
		if f.Date != nil && !b.BookingDate().Equal(*f.Date) {
			continue
		}
		out = append(out, r.load(b))
	}

	earlier := func(a, b *booking.Booking) bool {
		if !a.BookingDate().Equal(b.BookingDate()) {
			return a.BookingDate().Before(b.BookingDate())
		}
		return a.StartTime() < b.StartTime()
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Descending {
			return earlier(out[j], out[i])
		}
		return earlier(out[i], out[j])
	})

	total := int64(len(out))
	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *memoryBookingRepo) CountByStatus(context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (r *memoryBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.FindConflict(r.activeOn(b.FacilityID(), b.BookingDate()), b.Interval(), nil) != nil {
		return booking.ErrConflict
	}
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *memoryBookingRepo) ApplyDecision(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID()]
	if !ok || stored.Status() != booking.StatusPending {
		return booking.ErrNotFound
	}
	c := cloneBooking(b)
	c.IncrementVersion()
	r.bookings[b.ID()] = c
	return nil
}

func (r *memoryBookingRepo) Update(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID()]
	if !ok || stored.Version() != b.Version()-1 {
		return booking.ErrStaleBooking
	}
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

// put stores b directly, bypassing conflict checks.
func (r *memoryBookingRepo) put(b *booking.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = cloneBooking(b)
}

// --- users ---

type memoryDirectory struct {
	users map[uuid.UUID]*user.User
	err   error
}

func newMemoryDirectory(us ...*user.User) *memoryDirectory {
	d := &memoryDirectory{users: make(map[uuid.UUID]*user.User)}
	for _, u := range us {
		d.users[u.ID] = u
	}
	return d
}

func (d *memoryDirectory) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*user.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := make(map[uuid.UUID]*user.User)
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// --- events ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	topics []string
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// --- complaints ---

type memoryComplaintRepo struct {
	mu         sync.Mutex
	complaints map[uuid.UUID]*complaint.Complaint
	order      []uuid.UUID
}

func newMemoryComplaintRepo() *memoryComplaintRepo {
	return &memoryComplaintRepo{complaints: make(map[uuid.UUID]*complaint.Complaint)}
}

func cloneComplaint(c *complaint.Complaint) *complaint.Complaint {
	return complaint.Reconstruct(
		c.ID(), c.OwnerID(), c.Title(), c.Description(), c.Category(), c.Priority(), c.Status(),
		c.AdminNotes(), c.ResolvedAt(), c.Version(), c.CreatedAt(), c.UpdatedAt(),
	)
}

func (r *memoryComplaintRepo) FindByID(_ context.Context, id uuid.UUID) (*complaint.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.complaints[id]
	if !ok {
		return nil, complaint.ErrNotFound
	}
	return cloneComplaint(c), nil
}

func (r *memoryComplaintRepo) List(_ context.Context, f complaint.ListFilter, page, limit int) ([]*complaint.Complaint, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*complaint.Complaint
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.complaints[r.order[i]]
		if f.OwnerID != nil && c.OwnerID() != *f.OwnerID {
			continue
		}
		if f.Status != nil && c.Status() != *f.Status {
			continue
		}
		out = append(out, cloneComplaint(c))
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *memoryComplaintRepo) Save(_ context.Context, c *complaint.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complaints[c.ID()] = cloneComplaint(c)
	r.order = append(r.order, c.ID())
	return nil
}

func (r *memoryComplaintRepo) Update(_ context.Context, c *complaint.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.complaints[c.ID()]
	if !ok || stored.Version() != c.Version()-1 {
		return complaint.ErrStale
	}
	r.complaints[c.ID()] = cloneComplaint(c)
	return nil
}

type memoryAttachmentRepo struct {
	mu          sync.Mutex
	attachments []*complaint.Attachment
	saveErr     error
}

func (r *memoryAttachmentRepo) Save(_ context.Context, a *complaint.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.attachments = append(r.attachments, a)
	return nil
}

func (r *memoryAttachmentRepo) FindByComplaintID(_ context.Context, id uuid.UUID) ([]*complaint.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*complaint.Attachment
	for _, a := range r.attachments {
		if a.ComplaintID() == id {
			out = append(out, a)
		}
	}
	return out, nil
}

type memoryBlobStore struct {
	objects map[string][]byte
}

func (s *memoryBlobStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = data
	return "https://blob.test/" + key, nil
}

func (s *memoryBlobStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}
