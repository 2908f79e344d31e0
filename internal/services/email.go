package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventticketing/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendBookingApproved sends the approval email using the "booking_approved" template.
func (s *emailService) SendBookingApproved(ctx context.Context, data *domain.BookingDecisionEmailData) error {
	return s.sendDecision(ctx, "booking_approved", data)
}

// SendBookingRejected sends the decline email using the "booking_rejected" template.
func (s *emailService) SendBookingRejected(ctx context.Context, data *domain.BookingDecisionEmailData) error {
	return s.sendDecision(ctx, "booking_rejected", data)
}

func (s *emailService) sendDecision(_ context.Context, template string, data *domain.BookingDecisionEmailData) error {
	if data == nil {
		return fmt.Errorf("booking decision email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.Info("booking decision email sent", "template", template, "to", data.Email)
	return nil
}
