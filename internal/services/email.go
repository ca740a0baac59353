package services

import (
	"context"
	"fmt"
	"log"

	"campusevents/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	return s.send("welcome", data.Email, data)
}

func (s *emailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationConfirmedEmailData) error {
	if data == nil {
		return fmt.Errorf("registration confirmed data is nil")
	}
	return s.send("registration_confirmed", data.Email, data)
}

func (s *emailService) SendCheckInConfirmed(ctx context.Context, data *domain.CheckInConfirmedEmailData) error {
	if data == nil {
		return fmt.Errorf("check-in confirmed data is nil")
	}
	return s.send("checkin_confirmed", data.Email, data)
}

func (s *emailService) send(templateName, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s email: %w", templateName, err)
	}
	log.Printf("[EMAIL] %s sent to %s", templateName, to)
	return nil
}
