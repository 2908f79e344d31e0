package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventticketing/internal/domain"
)

type bookingService struct {
	bookingRepo domain.BookingRepository
	eventRepo   domain.EventRepository
	userRepo    domain.UserRepository
	notifier    domain.Notifier
	emails      domain.EmailService
	logger      *slog.Logger
}

// NewBookingService creates the reservation workflow service. The notifier
// and email service are best-effort side channels; pass nil to disable them.
func NewBookingService(
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	notifier domain.Notifier,
	emails domain.EmailService,
	logger *slog.Logger,
) domain.BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		emails:      emails,
		logger:      logger,
	}
}

func (s *bookingService) Create(ctx context.Context, eventID, userID string, contact domain.BookingContact, seats int) (*domain.Booking, error) {
	if seats < 1 {
		return nil, fmt.Errorf("%w: seats must be at least 1", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(contact.Name) == "" || strings.TrimSpace(contact.Email) == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID == userID {
		return nil, fmt.Errorf("%w: organizers cannot book their own event", domain.ErrForbidden)
	}

	// Paid events wait for the organizer's decision; free events confirm
	// immediately. Both hold seats from the moment of creation.
	status := domain.BookingStatusConfirmed
	if event.IsPaid {
		status = domain.BookingStatusPending
	}

	now := time.Now()
	booking := &domain.Booking{
		UserID:     userID,
		EventID:    eventID,
		Seats:      seats,
		TotalPrice: float64(seats) * event.Price,
		Status:     status,
		Name:       strings.TrimSpace(contact.Name),
		Email:      strings.TrimSpace(contact.Email),
		Phone:      strings.TrimSpace(contact.Phone),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.bookingRepo.CreateWithReservation(ctx, booking); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrAlreadyBooked),
			errors.Is(err, domain.ErrCapacityExceeded):
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if booking.Status == domain.BookingStatusConfirmed {
		if err := s.userRepo.AddBookedEvent(ctx, userID, eventID); err != nil {
			return nil, fmt.Errorf("record booked event: %w", err)
		}
	}
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, bookingID, requesterID, requesterRole string) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get booking: %w", err)
	}

	if booking.UserID != requesterID && requesterRole != domain.RoleAdmin {
		event, err := s.eventRepo.GetByID(ctx, booking.EventID)
		if err != nil || event.OrganizerID != requesterID {
			return domain.ErrForbidden
		}
	}

	// Only an active booking still holds seats; a rejected or cancelled one
	// already gave them back.
	if err := s.bookingRepo.DeleteWithRelease(ctx, booking, booking.IsActive()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete booking: %w", err)
	}

	if booking.Status == domain.BookingStatusConfirmed {
		if err := s.userRepo.RemoveBookedEvent(ctx, booking.UserID, booking.EventID); err != nil {
			s.logger.Error("remove booked event", "user_id", booking.UserID, "event_id", booking.EventID, "error", err)
		}
	}
	return nil
}

func (s *bookingService) ListMine(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	bookings, err := s.bookingRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	out := make([]*domain.BookingWithEvent, 0, len(bookings))
	for _, b := range bookings {
		event, err := s.eventRepo.GetByID(ctx, b.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Event removed out from under the booking; skip rather
				// than fail the whole listing.
				s.logger.Warn("booking references missing event", "booking_id", b.ID, "event_id", b.EventID)
				continue
			}
			return nil, fmt.Errorf("get event for booking: %w", err)
		}
		out = append(out, &domain.BookingWithEvent{Booking: b, Event: event})
	}
	return out, nil
}

func (s *bookingService) ListRequests(ctx context.Context, organizerID, eventID string) ([]*domain.BookingRequest, error) {
	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list organizer events: %w", err)
	}

	titles := make(map[string]string, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if eventID != "" && e.ID != eventID {
			continue
		}
		titles[e.ID] = e.Title
		ids = append(ids, e.ID)
	}
	if eventID != "" && len(ids) == 0 {
		return nil, domain.ErrForbidden
	}
	if len(ids) == 0 {
		return []*domain.BookingRequest{}, nil
	}

	pending, err := s.bookingRepo.ListPendingByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list pending bookings: %w", err)
	}

	out := make([]*domain.BookingRequest, 0, len(pending))
	for _, b := range pending {
		out = append(out, &domain.BookingRequest{Booking: b, EventTitle: titles[b.EventID]})
	}
	return out, nil
}

func (s *bookingService) Approve(ctx context.Context, bookingID, organizerID string) error {
	booking, event, err := s.bookingForDecision(ctx, bookingID, organizerID)
	if err != nil {
		return err
	}

	// Seats were reserved at creation, so approval only flips the status.
	if err := s.bookingRepo.TransitionStatus(ctx, booking, domain.BookingStatusPending, domain.BookingStatusConfirmed, false); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return domain.ErrInvalidTransition
		}
		return fmt.Errorf("confirm booking: %w", err)
	}

	if err := s.userRepo.AddBookedEvent(ctx, booking.UserID, booking.EventID); err != nil {
		return fmt.Errorf("record booked event: %w", err)
	}

	s.notify(ctx, &domain.Notification{
		RecipientID:       booking.UserID,
		SenderID:          organizerID,
		Type:              domain.NotificationTypeReservation,
		Message:           fmt.Sprintf("Your booking for %q has been approved.", event.Title),
		RelatedEntityID:   event.ID,
		RelatedEntityType: domain.RelatedEntityEvent,
	})
	s.sendDecisionEmail(ctx, booking, event, true)
	return nil
}

func (s *bookingService) Reject(ctx context.Context, bookingID, organizerID string) error {
	booking, event, err := s.bookingForDecision(ctx, bookingID, organizerID)
	if err != nil {
		return err
	}

	// A pending booking holds seats; rejection returns them to the pool.
	if err := s.bookingRepo.TransitionStatus(ctx, booking, domain.BookingStatusPending, domain.BookingStatusRejected, true); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return domain.ErrInvalidTransition
		}
		return fmt.Errorf("reject booking: %w", err)
	}

	s.notify(ctx, &domain.Notification{
		RecipientID:       booking.UserID,
		SenderID:          organizerID,
		Type:              domain.NotificationTypeCancellation,
		Message:           fmt.Sprintf("Your booking for %q has been declined.", event.Title),
		RelatedEntityID:   event.ID,
		RelatedEntityType: domain.RelatedEntityEvent,
	})
	s.sendDecisionEmail(ctx, booking, event, false)
	return nil
}

// bookingForDecision loads the booking and its event and checks that the
// caller is the event's organizer.
func (s *bookingService) bookingForDecision(ctx context.Context, bookingID, organizerID string) (*domain.Booking, *domain.Event, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get booking: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, nil, domain.ErrForbidden
	}
	return booking, event, nil
}

func (s *bookingService) notify(ctx context.Context, n *domain.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("notify user", "recipient_id", n.RecipientID, "type", n.Type, "error", err)
	}
}

func (s *bookingService) sendDecisionEmail(ctx context.Context, booking *domain.Booking, event *domain.Event, approved bool) {
	if s.emails == nil || booking.Email == "" {
		return
	}
	data := &domain.BookingDecisionEmailData{
		Email:      booking.Email,
		Name:       booking.Name,
		EventTitle: event.Title,
	}
	var err error
	if approved {
		err = s.emails.SendBookingApproved(ctx, data)
	} else {
		err = s.emails.SendBookingRejected(ctx, data)
	}
	if err != nil {
		s.logger.Error("send booking decision email", "booking_id", booking.ID, "error", err)
	}
}
