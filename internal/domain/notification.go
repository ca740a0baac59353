package domain

import "context"

// RegistrationConfirmedEvent is published when a registration commits. It
// carries enough for downstream consumers to render a receipt without reading
// the primary database.
type RegistrationConfirmedEvent struct {
	RegistrationID string `json:"registration_id"`
	EventID        string `json:"event_id"`
	EventTitle     string `json:"event_title"`
	UserID         string `json:"user_id"`
	UserEmail      string `json:"user_email"`
	RegisteredAt   string `json:"registered_at"`
}

// CheckInConfirmedEvent is published when a scan confirms attendance.
type CheckInConfirmedEvent struct {
	RegistrationID string `json:"registration_id"`
	EventID        string `json:"event_id"`
	EventTitle     string `json:"event_title"`
	UserID         string `json:"user_id"`
	ScannedBy      string `json:"scanned_by"`
	AttendedAt     string `json:"attended_at"`
}

// NotificationPublisher delivers confirmation events to the message broker.
// Publishing is best-effort: an error never rolls back or blocks the core
// operation that produced the event.
type NotificationPublisher interface {
	PublishRegistrationConfirmed(ctx context.Context, ev *RegistrationConfirmedEvent) error
	PublishCheckInConfirmed(ctx context.Context, ev *CheckInConfirmedEvent) error
}
