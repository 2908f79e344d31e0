package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventticketing/internal/domain"

	"github.com/stretchr/testify/assert"
)

// fakeCommentService implements domain.CommentService for handler tests.
type fakeCommentService struct {
	created   *domain.Comment
	createErr error
	deleteErr error
}

func (f *fakeCommentService) Create(ctx context.Context, eventID, userID, body string) (*domain.Comment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &domain.Comment{ID: "cm-1", EventID: eventID, UserID: userID, Body: body}
	return f.created, nil
}

func (f *fakeCommentService) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Comment, int, error) {
	return nil, 0, nil
}

func (f *fakeCommentService) Delete(ctx context.Context, commentID, requesterID, requesterRole string) error {
	return f.deleteErr
}

func TestCommentController_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"created", `{"body":"great lineup"}`, nil, http.StatusCreated},
		{"blank body", `{"body":"  "}`, nil, http.StatusBadRequest},
		{"unknown event", `{"body":"hi"}`, domain.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewCommentController(testLogger(), &fakeCommentService{createErr: tt.serviceErr})
			req := authedRequest(http.MethodPost, "http://test/events/ev-1/comments", []byte(tt.body), "u-1", domain.RoleUser)
			req.SetPathValue("eventID", "ev-1")
			rr := httptest.NewRecorder()

			ctrl.Create(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestCommentController_Delete(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"deleted", nil, http.StatusOK},
		{"not allowed", domain.ErrForbidden, http.StatusForbidden},
		{"unknown comment", domain.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewCommentController(testLogger(), &fakeCommentService{deleteErr: tt.serviceErr})
			req := authedRequest(http.MethodDelete, "http://test/comments/cm-1", nil, "u-2", domain.RoleUser)
			req.SetPathValue("commentID", "cm-1")
			rr := httptest.NewRecorder()

			ctrl.Delete(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
