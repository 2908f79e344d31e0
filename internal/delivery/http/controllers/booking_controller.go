package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/domain"
)

// CreateBookingRequest is the request body for POST /bookings.
type CreateBookingRequest struct {
	EventID string `json:"event_id"`
	Seats   int    `json:"seats"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// Validate implements Validator.
func (b CreateBookingRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(b.EventID) == "" {
		errs = append(errs, "event_id is required")
	}
	if b.Seats < 1 {
		errs = append(errs, "seats must be at least 1")
	}
	if strings.TrimSpace(b.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(b.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Book seats on an event
// @Description Reserves seats for the authenticated user. Free events confirm immediately; paid events start pending until the organizer decides. Seats are held either way.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBookingRequest true "Booking data"
// @Success 201 {object} helpers.APIResponse "data contains the created booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (validation, capacity, duplicate booking)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (own event)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [post]
func (c *BookingController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	contact := domain.BookingContact{Name: req.Name, Email: req.Email, Phone: req.Phone}
	booking, err := c.Service.Create(r.Context(), req.EventID, userID, contact, req.Seats)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "create booking failed", "path", r.URL.Path, "err", err)
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// ListMine godoc
// @Summary List my bookings
// @Description Returns the authenticated user's bookings, each bundled with its event.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains bookings with their events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [get]
func (c *BookingController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	bookings, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list bookings failed", "path", r.URL.Path, "err", err)
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, bookings)
}

// Cancel godoc
// @Summary Cancel a booking
// @Description Deletes the booking. Seats held by a pending or confirmed booking return to the event's pool. Booking owner, event organizer, or admin.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID} [delete]
func (c *BookingController) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing bookingID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.RoleFromContext(r.Context())
	if err := c.Service.Cancel(r.Context(), bookingID, userID, role); err != nil {
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "booking cancelled"})
}

// ListRequests godoc
// @Summary List pending booking requests
// @Description Returns pending bookings across the authenticated organizer's events, optionally filtered to one event via the event_id query parameter.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param event_id query string false "Restrict to a single event"
// @Success 200 {object} helpers.APIResponse "data contains pending requests with event titles"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not your event)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests [get]
func (c *BookingController) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	requests, err := c.Service.ListRequests(r.Context(), userID, r.URL.Query().Get("event_id"))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list requests failed", "path", r.URL.Path, "err", err)
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, requests)
}

// Approve godoc
// @Summary Approve a booking request
// @Description Confirms a pending booking. The attendee is notified and emailed. Event organizer only.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not pending)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/{bookingID}/approve [post]
func (c *BookingController) Approve(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.Service.Approve, "booking approved")
}

// Reject godoc
// @Summary Reject a booking request
// @Description Rejects a pending booking and returns its held seats to the event's pool. The attendee is notified and emailed. Event organizer only.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not pending)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/{bookingID}/reject [post]
func (c *BookingController) Reject(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.Service.Reject, "booking rejected")
}

type decisionFunc func(ctx context.Context, bookingID, organizerID string) error

func (c *BookingController) decide(w http.ResponseWriter, r *http.Request, decision decisionFunc, message string) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing bookingID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := decision(r.Context(), bookingID, userID); err != nil {
		c.Logger.ErrorContext(r.Context(), "booking decision failed", "path", r.URL.Path, "err", err)
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": message})
}
