package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/domain"
)

// EventRequest is the request body for POST /events and PUT /events/{eventID}.
// Updates replace the whole event; omitted optional fields are cleared.
type EventRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	IsOnline         bool       `json:"is_online"`
	MeetingLink      string     `json:"meeting_link"`
	Location         string     `json:"location"`
	StartsAt         time.Time  `json:"starts_at"`
	EndsAt           *time.Time `json:"ends_at"`
	CoverImageURL    string     `json:"cover_image_url"`
	CoverImageFileID string     `json:"cover_image_file_id"`
	Capacity         *int       `json:"capacity"`
	IsPaid           bool       `json:"is_paid"`
	Price            float64    `json:"price"`
}

// Validate implements Validator.
func (e EventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, "title is required")
	}
	if e.StartsAt.IsZero() {
		errs = append(errs, "starts_at is required")
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		errs = append(errs, "ends_at must be after starts_at")
	}
	if e.Capacity != nil && *e.Capacity < 0 {
		errs = append(errs, "capacity cannot be negative")
	}
	if e.IsOnline && strings.TrimSpace(e.MeetingLink) == "" {
		errs = append(errs, "meeting_link is required for online events")
	}
	if e.IsPaid && e.Price <= 0 {
		errs = append(errs, "price must be positive for paid events")
	}
	return errs
}

func (e EventRequest) toUpdate() *domain.EventUpdate {
	return &domain.EventUpdate{
		Title:            e.Title,
		Description:      e.Description,
		Category:         e.Category,
		IsOnline:         e.IsOnline,
		MeetingLink:      e.MeetingLink,
		Location:         e.Location,
		StartsAt:         e.StartsAt,
		EndsAt:           e.EndsAt,
		CoverImageURL:    e.CoverImageURL,
		CoverImageFileID: e.CoverImageFileID,
		Capacity:         e.Capacity,
		IsPaid:           e.IsPaid,
		Price:            e.Price,
	}
}

// RateEventRequest is the request body for POST /events/{eventID}/ratings.
type RateEventRequest struct {
	Rating int `json:"rating"`
}

// Validate implements Validator.
func (r RateEventRequest) Validate() []string {
	if r.Rating < 1 || r.Rating > 5 {
		return []string{"rating must be between 1 and 5"}
	}
	return nil
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a new event
// @Description Create an event owned by the authenticated organizer. Capacity omitted or null means unlimited seats.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.Create(r.Context(), userID, req.toUpdate())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "create event failed", "path", r.URL.Path, "err", err)
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetByID godoc
// @Summary Get an event by ID
// @Description Returns the event, including remaining seats and rating aggregates. Public.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetByID(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Service.GetByID(r.Context(), eventID)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// List godoc
// @Summary List events
// @Description Returns a page of events, newest first. Public.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.PaginatedResponse "data contains the page of events"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	events, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list events failed", "path", r.URL.Path, "err", err)
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONPaginated(w, events, h.NewPaginationMeta(params, total))
}

// ListMine godoc
// @Summary List my events
// @Description Returns all events owned by the authenticated organizer.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the organizer's events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/mine [get]
func (c *EventController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list my events failed", "path", r.URL.Path, "err", err)
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// Update godoc
// @Summary Update an event
// @Description Replaces the event's editable fields. Changing capacity re-derives the available seat counter; seats already booked stay booked. Owner or admin only.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body EventRequest true "Event data"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req EventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.RoleFromContext(r.Context())
	event, err := c.Service.Update(r.Context(), eventID, userID, role, req.toUpdate())
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Deletes the event together with its bookings, reviews, and comments. Owner or admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.RoleFromContext(r.Context())
	if err := c.Service.Delete(r.Context(), eventID, userID, role); err != nil {
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// Rate godoc
// @Summary Rate an event
// @Description Records the authenticated user's 1..5 rating. Re-rating replaces the previous value. Organizers cannot rate their own event.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body RateEventRequest true "Rating"
// @Success 200 {object} helpers.APIResponse "data contains the event with refreshed aggregates"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (own event)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/ratings [post]
func (c *EventController) Rate(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req RateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.Rate(r.Context(), eventID, userID, req.Rating)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}
