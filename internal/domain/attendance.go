package domain

import (
	"context"
	"errors"
	"time"
)

// ErrScanUnauthorized is returned when the scanning actor is neither the
// event's host nor an admin.
var ErrScanUnauthorized = errors.New("not authorized to scan for this event")

// AttendanceRecord is an append-only audit entry written when a scan confirms
// attendance. The authoritative attended flag lives on the registration; this
// log exists for audit and export.
type AttendanceRecord struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	RegistrationID string    `json:"registration_id"`
	UserID         string    `json:"user_id"`
	ScannedBy      string    `json:"scanned_by"`
	ScannedAt      time.Time `json:"scanned_at"`
}

// AttendanceRepository reads the attendance audit log. Rows are appended only
// inside RegistrationRepository.ConfirmAttendance's transaction.
type AttendanceRepository interface {
	ListByEventID(ctx context.Context, eventID string) ([]*AttendanceRecord, error)
}

// ScanOutcome classifies a successful scan.
type ScanOutcome string

const (
	// ScanConfirmed means this call performed the one-way transition to
	// attended.
	ScanConfirmed ScanOutcome = "confirmed"
	// ScanAlreadyCheckedIn means the registration was already attended.
	// Duplicate scans of the same badge are normal at a door, so this is a
	// distinct expected outcome, not an error.
	ScanAlreadyCheckedIn ScanOutcome = "already_checked_in"
)

// ScanResult is returned to the scanning client for door-side display.
type ScanResult struct {
	Outcome        ScanOutcome `json:"outcome"`
	RegistrationID string      `json:"registration_id"`
	EventID        string      `json:"event_id"`
	AttendeeID     string      `json:"attendee_id"`
	AttendeeName   string      `json:"attendee_name"`
	AttendedAt     time.Time   `json:"attended_at"`
}

// CheckInService processes door-side scans exactly once per registration.
type CheckInService interface {
	// Scan validates the payload against the ledger and applies the
	// attendance transition. Concurrent scans of the same payload yield
	// exactly one ScanConfirmed; the rest see ScanAlreadyCheckedIn.
	Scan(ctx context.Context, payload, actorID string) (*ScanResult, error)
	// ListAttendance returns the event's audit log; host or admin only.
	ListAttendance(ctx context.Context, eventID, actorID string) ([]*AttendanceRecord, error)
	// ListEventRegistrations returns the event's registration roster,
	// cancelled rows included; host or admin only.
	ListEventRegistrations(ctx context.Context, eventID, actorID string) ([]*Registration, error)
}
