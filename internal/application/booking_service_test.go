package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/residenza/service-facility/internal/domain/booking"
	"github.com/residenza/service-facility/internal/domain/facility"
	"github.com/residenza/service-facility/internal/domain/slot"
	"github.com/residenza/service-facility/internal/domain/user"
	"github.com/residenza/service-facility/internal/events"
	"github.com/residenza/service-facility/internal/platform/apperror"
	"github.com/residenza/service-facility/internal/platform/auth"
)

var fixedNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

const (
	today    = "2026-05-10"
	tomorrow = "2026-05-11"
)

type bookingFixture struct {
	svc       *BookingService
	repo      *memoryBookingRepo
	publisher *recordingPublisher
	open      *facility.Facility // no approval needed
	reviewed  *facility.Facility // requires approval
	alice     auth.Identity
	bob       auth.Identity
	admin     auth.Identity
}

func mustFacility(t *testing.T, name string, requiresApproval bool) *facility.Facility {
	t.Helper()
	f, err := facility.NewFacility(name, "", "Tower A", 20, requiresApproval,
		slot.MustTimeOfDay("08:00"), slot.MustTimeOfDay("20:00"))
	require.NoError(t, err)
	return f
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	fx := &bookingFixture{
		open:      mustFacility(t, "Facility X", false),
		reviewed:  mustFacility(t, "Facility Y", true),
		alice:     auth.Identity{UserID: uuid.New(), Role: auth.RoleResident},
		bob:       auth.Identity{UserID: uuid.New(), Role: auth.RoleResident},
		admin:     auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin},
		publisher: &recordingPublisher{},
	}
	fx.repo = newMemoryBookingRepo(fx.open, fx.reviewed)
	users := newMemoryDirectory(
		&user.User{ID: fx.alice.UserID, FullName: "Alice Tan", Email: "alice@example.com", Role: auth.RoleResident},
		&user.User{ID: fx.bob.UserID, FullName: "Bob Lim", Email: "bob@example.com", Role: auth.RoleResident},
		&user.User{ID: fx.admin.UserID, FullName: "Admin", Email: "admin@example.com", Role: auth.RoleAdmin},
	)
	fx.svc = NewBookingService(fx.repo, newMemoryRegistry(fx.open, fx.reviewed), users, fx.publisher,
		"facility.booking.events", time.UTC, zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })
	return fx
}

func (fx *bookingFixture) create(actor auth.Identity, f *facility.Facility, date, start, end string) (*BookingDTO, error) {
	return fx.svc.CreateBooking(context.Background(), actor, f.ID(), CreateBookingRequest{
		BookingDate: date, StartTime: start, EndTime: end, Purpose: "gathering",
	})
}

func (fx *bookingFixture) mustCreate(t *testing.T, actor auth.Identity, f *facility.Facility, date, start, end string) *BookingDTO {
	t.Helper()
	dto, err := fx.create(actor, f, date, start, end)
	require.NoError(t, err)
	return dto
}

func TestCreateBooking_AutoApprovedScenario(t *testing.T) {
	fx := newBookingFixture(t)

	first := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "12:00")
	assert.Equal(t, "approved", first.Status)
	require.NotNil(t, first.ApprovedBy)
	assert.Equal(t, fx.alice.UserID, *first.ApprovedBy)
	assert.Equal(t, first.CreatedAt, *first.ApprovedAt)
	assert.Equal(t, "Facility X", first.FacilityName)
	assert.Equal(t, "Alice Tan", first.UserName)
	assert.Equal(t, "alice@example.com", first.UserEmail)
	assert.Equal(t, "Alice Tan", first.ApproverName)

	_, err := fx.create(fx.bob, fx.open, tomorrow, "11:00", "13:00")
	assert.ErrorIs(t, err, booking.ErrConflict)
	assert.Equal(t, 409, apperror.As(err).Kind.HTTPStatus())

	third := fx.mustCreate(t, fx.bob, fx.open, tomorrow, "12:00", "13:00")
	assert.Equal(t, "approved", third.Status)
}

func TestCreateBooking_PendingConflictsToo(t *testing.T) {
	fx := newBookingFixture(t)

	fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "10:00", "12:00")
	_, err := fx.create(fx.bob, fx.reviewed, tomorrow, "09:00", "10:30")
	assert.ErrorIs(t, err, booking.ErrConflict)

	_, err = fx.create(fx.bob, fx.reviewed, tomorrow, "08:00", "10:00")
	assert.NoError(t, err)
}

func TestCreateBooking_OutsideHoursBeatsConflict(t *testing.T) {
	fx := newBookingFixture(t)
	fx.mustCreate(t, fx.alice, fx.open, tomorrow, "18:00", "20:00")

	_, err := fx.create(fx.bob, fx.open, tomorrow, "19:00", "21:00")
	assert.ErrorIs(t, err, booking.ErrInvalidTimeRange)
	assert.Equal(t, 400, apperror.As(err).Kind.HTTPStatus())
	assert.NotEmpty(t, apperror.As(err).Details)

	_, err = fx.create(fx.bob, fx.open, tomorrow, "07:00", "09:00")
	assert.ErrorIs(t, err, booking.ErrInvalidTimeRange)

	_, err = fx.create(fx.bob, fx.open, tomorrow, "12:00", "12:00")
	assert.ErrorIs(t, err, booking.ErrInvalidTimeRange)
}

func TestCreateBooking_FacilityNotFound(t *testing.T) {
	fx := newBookingFixture(t)

	_, err := fx.svc.CreateBooking(context.Background(), fx.alice, uuid.New(), CreateBookingRequest{
		BookingDate: tomorrow, StartTime: "10:00", EndTime: "11:00",
	})
	assert.ErrorIs(t, err, facility.ErrNotFound)

	fx.open.Deactivate()
	_, err = fx.create(fx.alice, fx.open, tomorrow, "10:00", "11:00")
	assert.ErrorIs(t, err, facility.ErrNotFound)
}

func TestCreateBooking_Dates(t *testing.T) {
	fx := newBookingFixture(t)

	_, err := fx.create(fx.alice, fx.open, "2026-05-09", "10:00", "11:00")
	assert.ErrorIs(t, err, booking.ErrDateInPast)

	_, err = fx.create(fx.alice, fx.open, today, "10:00", "11:00")
	assert.NoError(t, err)

	_, err = fx.create(fx.alice, fx.open, "10/05/2026", "10:00", "11:00")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCreateBooking_TodayFollowsServiceTimezone(t *testing.T) {
	fx := newBookingFixture(t)
	// 12:00 UTC on the 10th is already the 11th in UTC+14.
	loc := time.FixedZone("UTC+14", 14*3600)
	fx.svc.loc = loc
	fx.svc.now = func() time.Time { return time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC) }

	_, err := fx.create(fx.alice, fx.open, today, "10:00", "11:00")
	assert.ErrorIs(t, err, booking.ErrDateInPast)
}

func TestCreateBooking_FacilityIDMismatch(t *testing.T) {
	fx := newBookingFixture(t)

	_, err := fx.svc.CreateBooking(context.Background(), fx.alice, fx.open.ID(), CreateBookingRequest{
		FacilityID: fx.reviewed.ID().String(), BookingDate: tomorrow, StartTime: "10:00", EndTime: "11:00",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = fx.svc.CreateBooking(context.Background(), fx.alice, fx.open.ID(), CreateBookingRequest{
		FacilityID: fx.open.ID().String(), BookingDate: tomorrow, StartTime: "10:00", EndTime: "11:00",
	})
	assert.NoError(t, err)
}

func TestCreateBooking_ConcurrentCreatorsGetOneSlot(t *testing.T) {
	fx := newBookingFixture(t)

	const workers = 12
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			actor := auth.Identity{UserID: uuid.New(), Role: auth.RoleResident}
			_, err := fx.create(actor, fx.open, tomorrow, "14:00", "16:00")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, booking.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
}

func TestDecideBooking_ApprovalScenario(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	created := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "10:00", "12:00")
	assert.Equal(t, "pending", created.Status)
	assert.Nil(t, created.ApprovedBy)
	assert.Nil(t, created.ApprovedAt)

	_, err := fx.svc.DecideBooking(ctx, fx.alice, created.ID, DecideBookingRequest{Status: "approved"})
	assert.ErrorIs(t, err, booking.ErrForbidden)
	assert.Equal(t, 403, apperror.As(err).Kind.HTTPStatus())

	approved, err := fx.svc.DecideBooking(ctx, fx.admin, created.ID, DecideBookingRequest{Status: "approved", AdminNotes: "enjoy"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, fx.admin.UserID, *approved.ApprovedBy)
	assert.Equal(t, "Admin", approved.ApproverName)
	assert.Equal(t, "enjoy", approved.AdminNotes)
	assert.Equal(t, fixedNow, *approved.ApprovedAt)

	_, err = fx.svc.DecideBooking(ctx, fx.admin, created.ID, DecideBookingRequest{Status: "rejected"})
	assert.ErrorIs(t, err, booking.ErrNotFound)
	assert.Equal(t, 404, apperror.As(err).Kind.HTTPStatus())

	stored, err := fx.svc.GetBooking(ctx, fx.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Status)
}

func TestDecideBooking_RejectFreesSlot(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	created := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "10:00", "12:00")
	rejected, err := fx.svc.DecideBooking(ctx, fx.admin, created.ID, DecideBookingRequest{Status: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)

	_, err = fx.create(fx.bob, fx.reviewed, tomorrow, "10:00", "12:00")
	assert.NoError(t, err)
}

func TestDecideBooking_Errors(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	_, err := fx.svc.DecideBooking(ctx, fx.admin, uuid.New(), DecideBookingRequest{Status: "approved"})
	assert.ErrorIs(t, err, booking.ErrNotFound)

	created := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "10:00", "12:00")
	_, err = fx.svc.DecideBooking(ctx, fx.admin, created.ID, DecideBookingRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, booking.ErrInvalidDecision)

	auto := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "12:00")
	_, err = fx.svc.DecideBooking(ctx, fx.admin, auto.ID, DecideBookingRequest{Status: "approved"})
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels future pending", func(t *testing.T) {
		fx := newBookingFixture(t)
		created := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "10:00", "12:00")

		cancelled, err := fx.svc.CancelBooking(ctx, fx.alice, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", cancelled.Status)
		assert.Equal(t, created.Purpose, cancelled.Purpose)

		_, err = fx.create(fx.bob, fx.reviewed, tomorrow, "10:00", "12:00")
		assert.NoError(t, err)
	})

	t.Run("owner cancels future approved", func(t *testing.T) {
		fx := newBookingFixture(t)
		created := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "12:00")

		cancelled, err := fx.svc.CancelBooking(ctx, fx.alice, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", cancelled.Status)
		assert.Equal(t, created.ApprovedBy, cancelled.ApprovedBy)
	})

	t.Run("admin override", func(t *testing.T) {
		fx := newBookingFixture(t)
		created := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "12:00")
		_, err := fx.svc.CancelBooking(ctx, fx.admin, created.ID)
		assert.NoError(t, err)
	})

	t.Run("other resident forbidden", func(t *testing.T) {
		fx := newBookingFixture(t)
		created := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "12:00")
		_, err := fx.svc.CancelBooking(ctx, fx.bob, created.ID)
		assert.ErrorIs(t, err, booking.ErrForbidden)
	})

	t.Run("already cancelled", func(t *testing.T) {
		fx := newBookingFixture(t)
		created := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "12:00")
		_, err := fx.svc.CancelBooking(ctx, fx.alice, created.ID)
		require.NoError(t, err)

		_, err = fx.svc.CancelBooking(ctx, fx.alice, created.ID)
		assert.ErrorIs(t, err, booking.ErrAlreadyCancelled)
		assert.Equal(t, 400, apperror.As(err).Kind.HTTPStatus())
	})

	t.Run("already started", func(t *testing.T) {
		fx := newBookingFixture(t)
		created := fx.mustCreate(t, fx.alice, fx.open, today, "08:30", "10:00")

		_, err := fx.svc.CancelBooking(ctx, fx.alice, created.ID)
		assert.ErrorIs(t, err, booking.ErrPastBooking)
	})

	t.Run("past date", func(t *testing.T) {
		fx := newBookingFixture(t)
		past, err := booking.NewBooking(fx.open, fx.alice.UserID, fixedNow.AddDate(0, 0, -3),
			slot.MustTimeOfDay("10:00"), slot.MustTimeOfDay("11:00"), "", "", fixedNow.AddDate(0, 0, -5))
		require.NoError(t, err)
		fx.repo.put(past)

		_, err = fx.svc.CancelBooking(ctx, fx.alice, past.ID())
		assert.ErrorIs(t, err, booking.ErrPastBooking)
	})

	t.Run("rejected", func(t *testing.T) {
		fx := newBookingFixture(t)
		created := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "10:00", "12:00")
		_, err := fx.svc.DecideBooking(ctx, fx.admin, created.ID, DecideBookingRequest{Status: "rejected"})
		require.NoError(t, err)

		_, err = fx.svc.CancelBooking(ctx, fx.alice, created.ID)
		assert.ErrorIs(t, err, booking.ErrNotCancellable)
	})

	t.Run("missing", func(t *testing.T) {
		fx := newBookingFixture(t)
		_, err := fx.svc.CancelBooking(ctx, fx.alice, uuid.New())
		assert.ErrorIs(t, err, booking.ErrNotFound)
	})
}

func TestListFacilityBookings_Visibility(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	bobApproved := fx.mustCreate(t, fx.bob, fx.reviewed, tomorrow, "08:00", "09:00")
	_, err := fx.svc.DecideBooking(ctx, fx.admin, bobApproved.ID, DecideBookingRequest{Status: "approved"})
	require.NoError(t, err)
	bobPending := fx.mustCreate(t, fx.bob, fx.reviewed, tomorrow, "09:00", "10:00")
	bobRejected := fx.mustCreate(t, fx.bob, fx.reviewed, tomorrow, "10:00", "11:00")
	_, err = fx.svc.DecideBooking(ctx, fx.admin, bobRejected.ID, DecideBookingRequest{Status: "rejected"})
	require.NoError(t, err)
	bobCancelled := fx.mustCreate(t, fx.bob, fx.reviewed, tomorrow, "11:00", "12:00")
	_, err = fx.svc.CancelBooking(ctx, fx.bob, bobCancelled.ID)
	require.NoError(t, err)
	alicePending := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "12:00", "13:00")
	aliceCancelled := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "13:00", "14:00")
	_, err = fx.svc.CancelBooking(ctx, fx.alice, aliceCancelled.ID)
	require.NoError(t, err)

	ids := func(items []*BookingDTO) []uuid.UUID {
		out := make([]uuid.UUID, len(items))
		for i, it := range items {
			out[i] = it.ID
		}
		return out
	}

	asAlice, err := fx.svc.ListFacilityBookings(ctx, fx.alice, fx.reviewed.ID(), ListBookingsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bobApproved.ID, alicePending.ID, aliceCancelled.ID}, ids(asAlice.Items))
	assert.Equal(t, int64(3), asAlice.Total)
	for _, item := range asAlice.Items {
		if item.UserID != fx.alice.UserID {
			assert.Equal(t, "approved", item.Status)
		}
	}
	assert.NotContains(t, ids(asAlice.Items), bobPending.ID)

	asAdmin, err := fx.svc.ListFacilityBookings(ctx, fx.admin, fx.reviewed.ID(), ListBookingsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(6), asAdmin.Total)

	pendingOnly, err := fx.svc.ListFacilityBookings(ctx, fx.admin, fx.reviewed.ID(), ListBookingsQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bobPending.ID, alicePending.ID}, ids(pendingOnly.Items))

	paged, err := fx.svc.ListFacilityBookings(ctx, fx.admin, fx.reviewed.ID(), ListBookingsQuery{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 2)
	assert.Equal(t, 2, paged.TotalPages)
	assert.Equal(t, 2, paged.Page)

	_, err = fx.svc.ListFacilityBookings(ctx, fx.admin, fx.reviewed.ID(), ListBookingsQuery{Status: "confirmed"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestListFacilityBookings_DateFilter(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "11:00")
	later := fx.mustCreate(t, fx.alice, fx.open, "2026-05-12", "10:00", "11:00")

	res, err := fx.svc.ListFacilityBookings(ctx, fx.alice, fx.open.ID(), ListBookingsQuery{Date: "2026-05-12"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, later.ID, res.Items[0].ID)

	_, err = fx.svc.ListFacilityBookings(ctx, fx.alice, fx.open.ID(), ListBookingsQuery{Date: "tomorrow"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestListMyBookings_NewestFirst(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	early := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "08:00", "09:00")
	late := fx.mustCreate(t, fx.alice, fx.reviewed, "2026-05-12", "08:00", "09:00")
	mid := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "15:00", "16:00")
	fx.mustCreate(t, fx.bob, fx.open, tomorrow, "10:00", "11:00")

	res, err := fx.svc.ListMyBookings(ctx, fx.alice, ListBookingsQuery{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, late.ID, res.Items[0].ID)
	assert.Equal(t, mid.ID, res.Items[1].ID)
	assert.Equal(t, early.ID, res.Items[2].ID)
	assert.Equal(t, 1, res.TotalPages)

	pending, err := fx.svc.ListMyBookings(ctx, fx.alice, ListBookingsQuery{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, late.ID, pending.Items[0].ID)
}

func TestGetBooking_Visibility(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	pending := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "10:00", "11:00")
	approved := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "11:00")

	_, err := fx.svc.GetBooking(ctx, fx.bob, pending.ID)
	assert.ErrorIs(t, err, booking.ErrNotFound)

	got, err := fx.svc.GetBooking(ctx, fx.bob, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.ID, got.ID)

	_, err = fx.svc.GetBooking(ctx, fx.alice, pending.ID)
	assert.NoError(t, err)
	_, err = fx.svc.GetBooking(ctx, fx.admin, pending.ID)
	assert.NoError(t, err)
}

func TestBookingEvents(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	a := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "10:00", "11:00")
	_, err := fx.svc.DecideBooking(ctx, fx.admin, a.ID, DecideBookingRequest{Status: "approved"})
	require.NoError(t, err)
	b := fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "11:00", "12:00")
	_, err = fx.svc.DecideBooking(ctx, fx.admin, b.ID, DecideBookingRequest{Status: "rejected"})
	require.NoError(t, err)
	_, err = fx.svc.CancelBooking(ctx, fx.alice, a.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.BookingCreated, events.BookingApproved,
		events.BookingCreated, events.BookingRejected,
		events.BookingCancelled,
	}, fx.publisher.types())
	for _, topic := range fx.publisher.topics {
		assert.Equal(t, "facility.booking.events", topic)
	}

	var payload events.BookingEvent
	require.NoError(t, fx.publisher.events[0].ParseData(&payload))
	assert.Equal(t, a.ID, payload.BookingID)
	assert.Equal(t, tomorrow, payload.BookingDate)
	assert.Equal(t, "10:00", payload.StartTime)
	assert.Equal(t, "pending", payload.Status)
	assert.Equal(t, a.ID.String(), fx.publisher.events[0].Subject)
}

func TestBookingEvents_PublishFailureIgnored(t *testing.T) {
	fx := newBookingFixture(t)
	fx.publisher.err = errors.New("broker down")

	_, err := fx.create(fx.alice, fx.open, tomorrow, "10:00", "11:00")
	assert.NoError(t, err)
}

func TestBookingNames_LookupFailureIgnored(t *testing.T) {
	fx := newBookingFixture(t)
	fx.svc.users = &memoryDirectory{err: errors.New("db down")}

	dto := fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "11:00")
	assert.Empty(t, dto.UserName)
	assert.Equal(t, "Facility X", dto.FacilityName)
}

func TestStats(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	fx.mustCreate(t, fx.alice, fx.open, tomorrow, "10:00", "11:00")
	fx.mustCreate(t, fx.alice, fx.reviewed, tomorrow, "10:00", "11:00")
	c := fx.mustCreate(t, fx.bob, fx.open, tomorrow, "12:00", "13:00")
	_, err := fx.svc.CancelBooking(ctx, fx.bob, c.ID)
	require.NoError(t, err)

	stats, err := fx.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, map[string]int64{"pending": 1, "approved": 1, "rejected": 0, "cancelled": 1}, stats.ByStatus)
}
