package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// BookingDecisionEmailData holds data for the booking approved/rejected emails.
type BookingDecisionEmailData struct {
	Email      string
	Name       string
	EventTitle string
}

// EmailService defines the contract for sending domain-level emails.
// All sends are best-effort from the caller's point of view.
type EmailService interface {
	SendBookingApproved(ctx context.Context, data *BookingDecisionEmailData) error
	SendBookingRejected(ctx context.Context, data *BookingDecisionEmailData) error
}
