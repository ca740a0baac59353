package domain

import (
	"context"
	"errors"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "pending"
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
)

// Sentinel errors for registration lifecycle operations.
var (
	// ErrAlreadyRegistered is returned when a non-cancelled registration
	// already exists for the (event, user) pair. Mapped from the storage
	// layer's unique-constraint violation, not from an application pre-check.
	ErrAlreadyRegistered = errors.New("already registered for this event")
	// ErrRegistrationCancelled is returned when an operation targets a
	// cancelled registration.
	ErrRegistrationCancelled = errors.New("registration is cancelled")
	// ErrEventStarted is returned when a cancellation arrives after the
	// event's start time.
	ErrEventStarted = errors.New("event has already started")
	// ErrAlreadyAttended is returned when a cancellation targets a
	// registration that has already been checked in. Attended registrations
	// are final; cancelling one would push the event's registration count
	// below its attendance count.
	ErrAlreadyAttended = errors.New("registration has already been checked in")
)

// Registration represents a student's registration for an event.
//
// Token is the single-use QR credential bound to this registration at
// creation time. It is never serialized in API responses; attendees fetch
// their QR payload through a dedicated endpoint.
// swagger:model Registration
type Registration struct {
	ID         string             `json:"id"`
	EventID    string             `json:"event_id"`
	UserID     string             `json:"user_id"`
	Status     RegistrationStatus `json:"status"`
	Token      string             `json:"-"`
	Note       string             `json:"note,omitempty"`
	IsAttended bool               `json:"is_attended"`
	AttendedAt *time.Time         `json:"attended_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// NewRegistration returns a confirmed Registration carrying the issued
// credential. ID is set by the repository on create.
func NewRegistration(eventID, userID, token, note string, now time.Time) *Registration {
	return &Registration{
		EventID:   eventID,
		UserID:    userID,
		Status:    RegistrationStatusConfirmed,
		Token:     token,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationRepository is the authoritative registration ledger.
//
// Create, Cancel and ConfirmAttendance are transactional: each one couples
// the registration row change with the matching atomic delta on the event's
// counter so the two can never drift apart.
type RegistrationRepository interface {
	// Create inserts the registration and increments the event's
	// registration_count as a single transaction. The capacity check is part
	// of the increment statement; the (event_id, user_id) uniqueness is a
	// storage constraint. Returns ErrEventFull, ErrDeadlinePassed,
	// ErrEventUnavailable, ErrAlreadyRegistered or ErrNotFound.
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
	// Cancel marks the registration cancelled and decrements the event's
	// registration_count in one transaction. Returns ErrRegistrationCancelled
	// if it was already cancelled, ErrAlreadyAttended if it has been checked
	// in, and ErrNotFound if it does not exist.
	Cancel(ctx context.Context, id string, now time.Time) error
	// ConfirmAttendance atomically flips is_attended from false to true,
	// appends an attendance-log row and increments the event's
	// attendance_count, all in one transaction. The reported boolean is true
	// only for the call that performed the transition; concurrent duplicates
	// observe false. A registration cancelled between the scan's read and
	// this write surfaces as ErrRegistrationCancelled.
	ConfirmAttendance(ctx context.Context, registrationID, eventID, userID, scannedBy string, at time.Time) (bool, error)
}

// RegistrationService defines attendee-facing registration operations.
type RegistrationService interface {
	// Register admits the user to the event, enforcing approval, deadline,
	// capacity and uniqueness in that order.
	Register(ctx context.Context, eventID, userID, note string) (*Registration, error)
	// Cancel cancels the caller's own registration before the event starts.
	Cancel(ctx context.Context, registrationID, userID string) error
	ListMyRegistrations(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	// QRPayload returns the encoded credential payload for the caller's own
	// registration.
	QRPayload(ctx context.Context, registrationID, userID string) (string, error)
}
