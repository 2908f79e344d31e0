package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotificationService implements domain.NotificationService for handler tests.
type fakeNotificationService struct {
	notifications []*domain.Notification
	total         int
	listErr       error
	markReadErr   error
}

func (f *fakeNotificationService) Notify(ctx context.Context, n *domain.Notification) error {
	return nil
}

func (f *fakeNotificationService) ListMine(ctx context.Context, recipientID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.notifications, f.total, nil
}

func (f *fakeNotificationService) MarkRead(ctx context.Context, notificationID, requesterID string) error {
	return f.markReadErr
}

func TestNotificationController_ListMine(t *testing.T) {
	fake := &fakeNotificationService{
		notifications: []*domain.Notification{
			{ID: "nt-1", RecipientID: "u-1", Type: domain.NotificationTypeReservation},
		},
		total: 1,
	}
	ctrl := NewNotificationController(testLogger(), fake)

	t.Run("returns page", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "http://test/notifications", nil, "u-1", domain.RoleUser)
		rr := httptest.NewRecorder()

		ctrl.ListMine(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.PaginatedResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		assert.Equal(t, 1, envelope.Meta.Total)
	})

	t.Run("no identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://test/notifications", nil)
		rr := httptest.NewRecorder()
		ctrl.ListMine(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestNotificationController_MarkRead(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"marked", nil, http.StatusOK},
		{"not recipient", domain.ErrForbidden, http.StatusForbidden},
		{"unknown notification", domain.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewNotificationController(testLogger(), &fakeNotificationService{markReadErr: tt.serviceErr})
			req := authedRequest(http.MethodPost, "http://test/notifications/nt-1/read", nil, "u-1", domain.RoleUser)
			req.SetPathValue("notificationID", "nt-1")
			rr := httptest.NewRecorder()

			ctrl.MarkRead(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
