package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/domain"
)

// CreateCommentRequest is the request body for POST /events/{eventID}/comments.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// Validate implements Validator.
func (c CreateCommentRequest) Validate() []string {
	if strings.TrimSpace(c.Body) == "" {
		return []string{"body is required"}
	}
	return nil
}

type CommentController struct {
	Logger  *slog.Logger
	Service domain.CommentService
}

func NewCommentController(logger *slog.Logger, svc domain.CommentService) *CommentController {
	return &CommentController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Comment on an event
// @Description Posts a comment on the event page as the authenticated user.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body CreateCommentRequest true "Comment body"
// @Success 201 {object} helpers.APIResponse "data contains the created comment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/comments [post]
func (c *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req CreateCommentRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	comment, err := c.Service.Create(r.Context(), eventID, userID, req.Body)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// ListByEvent godoc
// @Summary List event comments
// @Description Returns a page of the event's comments, newest first. Public.
// @Tags comments
// @Produce json
// @Param eventID path string true "Event ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.PaginatedResponse "data contains the page of comments"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/comments [get]
func (c *CommentController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	params := h.ParsePagination(r)
	comments, total, err := c.Service.ListByEvent(r.Context(), eventID, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list comments failed", "path", r.URL.Path, "err", err)
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONPaginated(w, comments, h.NewPaginationMeta(params, total))
}

// Delete godoc
// @Summary Delete a comment
// @Description Deletes the comment. Comment author, event organizer, or admin.
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentID path string true "Comment ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /comments/{commentID} [delete]
func (c *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	commentID := r.PathValue("commentID")
	if commentID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing commentID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	role, _ := middleware.RoleFromContext(r.Context())
	if err := c.Service.Delete(r.Context(), commentID, userID, role); err != nil {
		h.WriteDomainError(w, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
