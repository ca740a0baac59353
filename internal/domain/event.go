package domain

import (
	"context"
	"errors"
	"time"
)

// EventStatus is the admin-review state of an event. Only approved events
// accept registrations.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// Sentinel errors for registration admission gating.
var (
	// ErrEventUnavailable is returned when the event does not accept
	// registrations (not approved).
	ErrEventUnavailable = errors.New("event is not open for registration")
	// ErrDeadlinePassed is returned when the registration deadline is over.
	ErrDeadlinePassed = errors.New("registration deadline has passed")
	// ErrEventFull is returned when the event has no remaining capacity.
	ErrEventFull = errors.New("event is full")
)

// Event represents a college event submitted by a host.
//
// RegistrationCount and AttendanceCount are authoritative columns maintained
// by the registration ledger via atomic SQL deltas. They are never computed
// in application memory.
// swagger:model Event
type Event struct {
	ID                   string      `json:"id"`
	HostID               string      `json:"host_id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	Venue                string      `json:"venue"`
	StartsAt             time.Time   `json:"starts_at"`
	RegistrationDeadline time.Time   `json:"registration_deadline"`
	MaxParticipants      int         `json:"max_participants"`
	RegistrationCount    int         `json:"registration_count"`
	AttendanceCount      int         `json:"attendance_count"`
	Status               EventStatus `json:"status"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// NewEvent returns a new pending Event. ID is set by the repository on create.
func NewEvent(hostID, title, description, venue string, startsAt, deadline time.Time, maxParticipants int, now time.Time) *Event {
	return &Event{
		HostID:               hostID,
		Title:                title,
		Description:          description,
		Venue:                venue,
		StartsAt:             startsAt,
		RegistrationDeadline: deadline,
		MaxParticipants:      maxParticipants,
		Status:               EventStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// OpenForRegistration reports whether the event admits new registrations at
// the given instant, ignoring capacity (capacity is checked atomically by the
// ledger, not here).
func (e *Event) OpenForRegistration(now time.Time) error {
	if e.Status != EventStatusApproved {
		return ErrEventUnavailable
	}
	if !now.Before(e.RegistrationDeadline) {
		return ErrDeadlinePassed
	}
	return nil
}

// EventRepository defines the interface for event storage.
// Counter columns are mutated only by the registration repository's
// transactional operations, never through this interface.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListApprovedUpcoming(ctx context.Context, now time.Time, p PaginationParams) ([]*Event, int, error)
	ListByHostID(ctx context.Context, hostID string) ([]*Event, error)
	SetStatus(ctx context.Context, id string, status EventStatus) error
}

// EventService defines host- and admin-facing event workflow operations.
type EventService interface {
	CreateEvent(ctx context.Context, hostID string, params CreateEventParams) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListApprovedUpcoming(ctx context.Context, p PaginationParams) ([]*Event, int, error)
	ListMyEvents(ctx context.Context, hostID string) ([]*Event, error)
	// ReviewEvent approves or rejects a pending event. Admin only; the
	// caller's role is enforced at the delivery layer.
	ReviewEvent(ctx context.Context, eventID string, approve bool) (*Event, error)
}

// CreateEventParams holds the host-supplied fields for a new event.
type CreateEventParams struct {
	Title                string
	Description          string
	Venue                string
	StartsAt             time.Time
	RegistrationDeadline time.Time
	MaxParticipants      int
}
