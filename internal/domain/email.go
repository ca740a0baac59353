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

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email string
	Name  string
}

// RegistrationConfirmedEmailData holds data for the registration receipt email.
type RegistrationConfirmedEmailData struct {
	Email      string
	Name       string
	EventTitle string
	EventVenue string
	StartsAt   string
	// QRPayload is the encoded credential the attendee presents at the door.
	QRPayload string
}

// CheckInConfirmedEmailData holds data for the check-in receipt email.
type CheckInConfirmedEmailData struct {
	Email      string
	Name       string
	EventTitle string
	CheckedIn  string
}

// EmailService defines the contract for sending domain-level emails.
// Delivery is best-effort: callers log failures and never roll back.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendRegistrationConfirmed(ctx context.Context, data *RegistrationConfirmedEmailData) error
	SendCheckInConfirmed(ctx context.Context, data *CheckInConfirmedEmailData) error
}
