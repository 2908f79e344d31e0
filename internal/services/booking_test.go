package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"eventticketing/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type bookingFixture struct {
	events   *fakeEventRepo
	bookings *fakeBookingRepo
	users    *fakeUserRepo
	notifier *fakeNotifier
	emails   *fakeEmailService
	svc      domain.BookingService
}

func newBookingFixture() *bookingFixture {
	events := newFakeEventRepo()
	bookings := newFakeBookingRepo(events)
	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	emails := &fakeEmailService{}
	svc := NewBookingService(bookings, events, users, notifier, emails, testLogger())
	return &bookingFixture{
		events:   events,
		bookings: bookings,
		users:    users,
		notifier: notifier,
		emails:   emails,
		svc:      svc,
	}
}

func (fx *bookingFixture) seedEvent(id, organizerID string, capacity *int, isPaid bool, price float64) *domain.Event {
	var avail *int
	if capacity != nil {
		seats := *capacity
		avail = &seats
	}
	e := &domain.Event{
		ID:             id,
		OrganizerID:    organizerID,
		Title:          "Test Event " + id,
		Category:       "Other",
		StartsAt:       time.Now().Add(24 * time.Hour),
		Capacity:       capacity,
		AvailableSeats: avail,
		IsPaid:         isPaid,
		Price:          price,
	}
	fx.events.seed(e)
	return e
}

func (fx *bookingFixture) availableSeats(t *testing.T, eventID string) int {
	t.Helper()
	e, err := fx.events.GetByID(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, e.AvailableSeats)
	return *e.AvailableSeats
}

func intPtr(n int) *int { return &n }

func contact(n int) domain.BookingContact {
	return domain.BookingContact{
		Name:  fmt.Sprintf("Guest %d", n),
		Email: fmt.Sprintf("guest%d@example.com", n),
		Phone: "555-0100",
	}
}

func TestBookingService_Create_FreeEventConfirmsImmediately(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(10), false, 0)

	b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 2)
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.Equal(t, float64(0), b.TotalPrice)
	assert.Equal(t, 8, fx.availableSeats(t, "ev-1"))
	assert.True(t, fx.users.hasBookedEvent("u-1", "ev-1"))
}

func TestBookingService_Create_PaidEventStartsPending(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(10), true, 25)

	b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 3)
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusPending, b.Status)
	assert.Equal(t, float64(75), b.TotalPrice)
	// Pending bookings hold seats from the moment of creation.
	assert.Equal(t, 7, fx.availableSeats(t, "ev-1"))
	assert.False(t, fx.users.hasBookedEvent("u-1", "ev-1"))
}

func TestBookingService_Create_CapacityBoundary(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(3), false, 0)

	for i := 0; i < 3; i++ {
		_, err := fx.svc.Create(context.Background(), "ev-1", fmt.Sprintf("u-%d", i), contact(i), 1)
		require.NoError(t, err, "booking %d within capacity should succeed", i)
	}
	assert.Equal(t, 0, fx.availableSeats(t, "ev-1"))

	_, err := fx.svc.Create(context.Background(), "ev-1", "u-over", contact(9), 1)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestBookingService_Create_FreeEventFillsUp(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(2), false, 0)

	a, err := fx.svc.Create(context.Background(), "ev-1", "u-a", contact(1), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, a.Status)
	assert.Equal(t, 1, fx.availableSeats(t, "ev-1"))

	b, err := fx.svc.Create(context.Background(), "ev-1", "u-b", contact(2), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.Equal(t, 0, fx.availableSeats(t, "ev-1"))

	_, err = fx.svc.Create(context.Background(), "ev-1", "u-c", contact(3), 1)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestBookingService_Create_UnlimitedCapacity(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", nil, false, 0)

	for i := 0; i < 50; i++ {
		_, err := fx.svc.Create(context.Background(), "ev-1", fmt.Sprintf("u-%d", i), contact(i), 4)
		require.NoError(t, err)
	}
}

func TestBookingService_Create_Validation(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(10), false, 0)

	tests := []struct {
		name    string
		eventID string
		userID  string
		contact domain.BookingContact
		seats   int
		wantErr error
	}{
		{"zero seats", "ev-1", "u-1", contact(1), 0, domain.ErrInvalidInput},
		{"missing name", "ev-1", "u-1", domain.BookingContact{Email: "a@b.c"}, 1, domain.ErrInvalidInput},
		{"missing email", "ev-1", "u-1", domain.BookingContact{Name: "A"}, 1, domain.ErrInvalidInput},
		{"unknown event", "ev-404", "u-1", contact(1), 1, domain.ErrNotFound},
		{"organizer books own event", "ev-1", "org-1", contact(1), 1, domain.ErrForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Create(context.Background(), tc.eventID, tc.userID, tc.contact, tc.seats)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestBookingService_Create_SecondActiveBookingRejected(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(10), false, 0)

	_, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
	require.NoError(t, err)

	_, err = fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyBooked)
	assert.Equal(t, 9, fx.availableSeats(t, "ev-1"))
}

func TestBookingService_Create_RebookAfterRejectedDeleted(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(5), true, 10)

	b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 2)
	require.NoError(t, err)
	require.NoError(t, fx.svc.Reject(context.Background(), b.ID, "org-1"))
	assert.Equal(t, 5, fx.availableSeats(t, "ev-1"))

	// The rejected booking blocks nothing once removed.
	require.NoError(t, fx.svc.Cancel(context.Background(), b.ID, "u-1", domain.RoleUser))

	_, err = fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, fx.availableSeats(t, "ev-1"))
}

func TestBookingService_Create_ConcurrentLastSeat(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(1), false, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Create(context.Background(), "ev-1", fmt.Sprintf("u-%d", i), contact(i), 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one of two racing bookings wins the last seat")
	assert.Equal(t, 0, fx.availableSeats(t, "ev-1"))
}

func TestBookingService_Cancel(t *testing.T) {
	t.Run("owner cancels confirmed booking and seats return", func(t *testing.T) {
		fx := newBookingFixture()
		fx.seedEvent("ev-1", "org-1", intPtr(10), false, 0)
		b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 3)
		require.NoError(t, err)
		require.Equal(t, 7, fx.availableSeats(t, "ev-1"))

		require.NoError(t, fx.svc.Cancel(context.Background(), b.ID, "u-1", domain.RoleUser))
		assert.Equal(t, 10, fx.availableSeats(t, "ev-1"))
		assert.False(t, fx.users.hasBookedEvent("u-1", "ev-1"))
	})

	t.Run("organizer may cancel a booking on their event", func(t *testing.T) {
		fx := newBookingFixture()
		fx.seedEvent("ev-1", "org-1", intPtr(10), true, 5)
		b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
		require.NoError(t, err)

		require.NoError(t, fx.svc.Cancel(context.Background(), b.ID, "org-1", domain.RoleOrganizer))
		assert.Equal(t, 10, fx.availableSeats(t, "ev-1"))
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		fx := newBookingFixture()
		fx.seedEvent("ev-1", "org-1", intPtr(10), false, 0)
		b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
		require.NoError(t, err)

		err = fx.svc.Cancel(context.Background(), b.ID, "u-other", domain.RoleUser)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown booking", func(t *testing.T) {
		fx := newBookingFixture()
		err := fx.svc.Cancel(context.Background(), "bk-404", "u-1", domain.RoleUser)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_Approve(t *testing.T) {
	t.Run("pending to confirmed with notification and email", func(t *testing.T) {
		fx := newBookingFixture()
		fx.seedEvent("ev-1", "org-1", intPtr(10), true, 15)
		b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 2)
		require.NoError(t, err)

		require.NoError(t, fx.svc.Approve(context.Background(), b.ID, "org-1"))

		got, err := fx.bookings.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
		// Approval does not touch the seat counter; it was reserved at creation.
		assert.Equal(t, 8, fx.availableSeats(t, "ev-1"))
		assert.True(t, fx.users.hasBookedEvent("u-1", "ev-1"))

		require.Len(t, fx.notifier.sent, 1)
		assert.Equal(t, "u-1", fx.notifier.sent[0].RecipientID)
		assert.Equal(t, domain.NotificationTypeReservation, fx.notifier.sent[0].Type)
		require.Len(t, fx.emails.approved, 1)
		assert.Equal(t, "guest1@example.com", fx.emails.approved[0].Email)
	})

	t.Run("double approve returns invalid transition", func(t *testing.T) {
		fx := newBookingFixture()
		fx.seedEvent("ev-1", "org-1", intPtr(10), true, 15)
		b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
		require.NoError(t, err)

		require.NoError(t, fx.svc.Approve(context.Background(), b.ID, "org-1"))
		err = fx.svc.Approve(context.Background(), b.ID, "org-1")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		// Seats unchanged by the failed second approval.
		assert.Equal(t, 9, fx.availableSeats(t, "ev-1"))
	})

	t.Run("only the event organizer may approve", func(t *testing.T) {
		fx := newBookingFixture()
		fx.seedEvent("ev-1", "org-1", intPtr(10), true, 15)
		b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
		require.NoError(t, err)

		err = fx.svc.Approve(context.Background(), b.ID, "org-other")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("notifier failure does not fail the approval", func(t *testing.T) {
		fx := newBookingFixture()
		fx.notifier.err = fmt.Errorf("redis down")
		fx.emails.err = fmt.Errorf("ses down")
		fx.seedEvent("ev-1", "org-1", intPtr(10), true, 15)
		b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
		require.NoError(t, err)

		require.NoError(t, fx.svc.Approve(context.Background(), b.ID, "org-1"))
	})
}

func TestBookingService_Reject(t *testing.T) {
	t.Run("pending to rejected releases seats", func(t *testing.T) {
		fx := newBookingFixture()
		fx.seedEvent("ev-1", "org-1", intPtr(10), true, 15)
		b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 4)
		require.NoError(t, err)
		require.Equal(t, 6, fx.availableSeats(t, "ev-1"))

		require.NoError(t, fx.svc.Reject(context.Background(), b.ID, "org-1"))

		got, err := fx.bookings.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusRejected, got.Status)
		assert.Equal(t, 10, fx.availableSeats(t, "ev-1"))
		assert.False(t, fx.users.hasBookedEvent("u-1", "ev-1"))

		require.Len(t, fx.notifier.sent, 1)
		assert.Equal(t, domain.NotificationTypeCancellation, fx.notifier.sent[0].Type)
		require.Len(t, fx.emails.rejected, 1)
	})

	t.Run("rejecting a confirmed booking is invalid", func(t *testing.T) {
		fx := newBookingFixture()
		fx.seedEvent("ev-1", "org-1", intPtr(10), false, 0)
		b, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
		require.NoError(t, err)

		err = fx.svc.Reject(context.Background(), b.ID, "org-1")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestBookingService_ListMine(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(10), false, 0)
	fx.seedEvent("ev-2", "org-1", nil, true, 20)

	b1, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
	require.NoError(t, err)
	_, err = fx.svc.Create(context.Background(), "ev-2", "u-1", contact(1), 2)
	require.NoError(t, err)
	_, err = fx.svc.Create(context.Background(), "ev-1", "u-2", contact(2), 1)
	require.NoError(t, err)

	out, err := fx.svc.ListMine(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, bwe := range out {
		require.NotNil(t, bwe.Event)
		assert.Equal(t, bwe.Booking.EventID, bwe.Event.ID)
	}

	// A booking whose event disappeared is skipped, not an error.
	fx.events.mu.Lock()
	delete(fx.events.byID, "ev-2")
	fx.events.mu.Unlock()

	out, err = fx.svc.ListMine(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b1.ID, out[0].Booking.ID)
}

func TestBookingService_ListRequests(t *testing.T) {
	fx := newBookingFixture()
	fx.seedEvent("ev-1", "org-1", intPtr(10), true, 10)
	fx.seedEvent("ev-2", "org-1", intPtr(10), true, 10)
	fx.seedEvent("ev-3", "org-2", intPtr(10), true, 10)

	_, err := fx.svc.Create(context.Background(), "ev-1", "u-1", contact(1), 1)
	require.NoError(t, err)
	_, err = fx.svc.Create(context.Background(), "ev-2", "u-2", contact(2), 1)
	require.NoError(t, err)
	_, err = fx.svc.Create(context.Background(), "ev-3", "u-3", contact(3), 1)
	require.NoError(t, err)

	t.Run("all pending requests across the organizer's events", func(t *testing.T) {
		out, err := fx.svc.ListRequests(context.Background(), "org-1", "")
		require.NoError(t, err)
		assert.Len(t, out, 2)
		for _, req := range out {
			assert.Equal(t, domain.BookingStatusPending, req.Booking.Status)
			assert.NotEmpty(t, req.EventTitle)
		}
	})

	t.Run("filtered to one event", func(t *testing.T) {
		out, err := fx.svc.ListRequests(context.Background(), "org-1", "ev-2")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "ev-2", out[0].Booking.EventID)
	})

	t.Run("filtering to someone else's event is forbidden", func(t *testing.T) {
		_, err := fx.svc.ListRequests(context.Background(), "org-1", "ev-3")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("organizer with no events gets an empty list", func(t *testing.T) {
		out, err := fx.svc.ListRequests(context.Background(), "org-none", "")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
