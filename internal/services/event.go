package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventticketing/internal/domain"
)

type eventService struct {
	eventRepo  domain.EventRepository
	reviewRepo domain.ReviewRepository
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(eventRepo domain.EventRepository, reviewRepo domain.ReviewRepository) domain.EventService {
	return &eventService{
		eventRepo:  eventRepo,
		reviewRepo: reviewRepo,
	}
}

func (s *eventService) Create(ctx context.Context, organizerID string, update *domain.EventUpdate) (*domain.Event, error) {
	if err := validateEventUpdate(update); err != nil {
		return nil, err
	}

	now := time.Now()
	event := &domain.Event{
		OrganizerID: organizerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyEventUpdate(event, update)
	// A fresh event has all its seats available.
	if update.Capacity != nil {
		seats := *update.Capacity
		event.AvailableSeats = &seats
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) ListMine(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	return events, nil
}

func (s *eventService) Update(ctx context.Context, eventID, requesterID, requesterRole string, update *domain.EventUpdate) (*domain.Event, error) {
	if err := validateEventUpdate(update); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != requesterID && requesterRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	// Re-derive the seat cache before the field copy overwrites capacity.
	newAvailable := rederiveAvailableSeats(event.Capacity, event.AvailableSeats, update.Capacity)

	applyEventUpdate(event, update)
	event.AvailableSeats = newAvailable
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, eventID, requesterID, requesterRole string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != requesterID && requesterRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) Rate(ctx context.Context, eventID, userID string, rating int) (*domain.Event, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID == userID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	review := &domain.Review{
		UserID:    userID,
		EventID:   eventID,
		Rating:    rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviewRepo.Upsert(ctx, review); err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}

	// Re-read for the refreshed aggregates.
	event, err = s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}
	return event, nil
}

// rederiveAvailableSeats recomputes the cached seat counter on a capacity
// edit: seats already consumed stay consumed, the remainder of the new
// capacity becomes available. Removing the capacity removes the counter.
func rederiveAvailableSeats(oldCapacity, oldAvailable, newCapacity *int) *int {
	if newCapacity == nil {
		return nil
	}
	usedSeats := 0
	if oldCapacity != nil {
		oldAvail := 0
		if oldAvailable != nil {
			oldAvail = *oldAvailable
		}
		usedSeats = *oldCapacity - oldAvail
		if usedSeats < 0 {
			usedSeats = 0
		}
	}
	newAvail := *newCapacity - usedSeats
	if newAvail < 0 {
		newAvail = 0
	}
	return &newAvail
}

func validateEventUpdate(update *domain.EventUpdate) error {
	if strings.TrimSpace(update.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if update.StartsAt.IsZero() {
		return fmt.Errorf("%w: starts_at is required", domain.ErrInvalidInput)
	}
	if update.EndsAt != nil && update.EndsAt.Before(update.StartsAt) {
		return fmt.Errorf("%w: ends_at must be after starts_at", domain.ErrInvalidInput)
	}
	if update.Capacity != nil && *update.Capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", domain.ErrInvalidInput)
	}
	if update.IsPaid && update.Price <= 0 {
		return fmt.Errorf("%w: paid events need a positive price", domain.ErrInvalidInput)
	}
	return nil
}

func applyEventUpdate(event *domain.Event, update *domain.EventUpdate) {
	event.Title = strings.TrimSpace(update.Title)
	event.Description = update.Description
	event.Category = update.Category
	if event.Category == "" {
		event.Category = "Other"
	}
	event.IsOnline = update.IsOnline
	if update.IsOnline {
		event.Location = "Online"
		event.MeetingLink = update.MeetingLink
	} else {
		event.Location = update.Location
		event.MeetingLink = ""
	}
	event.StartsAt = update.StartsAt
	event.EndsAt = update.EndsAt
	event.CoverImageURL = update.CoverImageURL
	event.CoverImageFileID = update.CoverImageFileID
	event.Capacity = update.Capacity
	event.IsPaid = update.IsPaid
	if update.IsPaid {
		event.Price = update.Price
	} else {
		event.Price = 0
	}
}
