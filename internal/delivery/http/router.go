package http

import (
	"net/http"

	"eventticketing/internal/delivery/http/controllers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers bundles everything NewRouter needs to wire the routes.
type Controllers struct {
	Auth         *controllers.AuthController
	Event        *controllers.EventController
	Booking      *controllers.BookingController
	Notification *controllers.NotificationController
	Comment      *controllers.CommentController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	organizerOnly := middleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Events
	mux.HandleFunc("GET /events", c.Event.List)
	mux.HandleFunc("GET /events/mine", auth(organizerOnly(c.Event.ListMine)))
	mux.HandleFunc("GET /events/{eventID}", c.Event.GetByID)
	mux.HandleFunc("POST /events", auth(organizerOnly(c.Event.Create)))
	mux.HandleFunc("PUT /events/{eventID}", auth(c.Event.Update))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.Delete))
	mux.HandleFunc("POST /events/{eventID}/ratings", auth(c.Event.Rate))

	// Bookings
	mux.HandleFunc("POST /bookings", auth(c.Booking.Create))
	mux.HandleFunc("GET /bookings", auth(c.Booking.ListMine))
	mux.HandleFunc("DELETE /bookings/{bookingID}", auth(c.Booking.Cancel))

	// Organizer booking requests
	mux.HandleFunc("GET /requests", auth(organizerOnly(c.Booking.ListRequests)))
	mux.HandleFunc("POST /requests/{bookingID}/approve", auth(organizerOnly(c.Booking.Approve)))
	mux.HandleFunc("POST /requests/{bookingID}/reject", auth(organizerOnly(c.Booking.Reject)))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(c.Notification.ListMine))
	mux.HandleFunc("POST /notifications/{notificationID}/read", auth(c.Notification.MarkRead))

	// Comments
	mux.HandleFunc("GET /events/{eventID}/comments", c.Comment.ListByEvent)
	mux.HandleFunc("POST /events/{eventID}/comments", auth(c.Comment.Create))
	mux.HandleFunc("DELETE /comments/{commentID}", auth(c.Comment.Delete))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
