package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

// uniqueViolation is the Postgres error code raised when the partial unique
// index on (event_id, user_id) WHERE status <> 'cancelled' is hit.
const uniqueViolation = "23505"

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

const registrationColumns = `id, event_id, user_id, status, token, note, is_attended, attended_at, created_at, updated_at`

func scanRegistration(row interface{ Scan(...any) error }) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var attendedAt sql.NullTime
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.Token, &reg.Note,
		&reg.IsAttended, &attendedAt, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if attendedAt.Valid {
		reg.AttendedAt = &attendedAt.Time
	}
	return reg, nil
}

// Create admits a registration in a single transaction.
//
// The capacity check and the registration_count increment are one conditional
// UPDATE; two concurrent callers racing for the last seat cannot both pass.
// The uniqueness of (event_id, user_id) is enforced by the database index: a
// duplicate insert aborts the transaction, rolling the increment back with it.
func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE events
		SET registration_count = registration_count + 1, updated_at = $2
		WHERE id = $1
		  AND status = 'approved'
		  AND registration_deadline > $2
		  AND registration_count < max_participants
	`, reg.EventID, reg.CreatedAt)
	if err != nil {
		return fmt.Errorf("reserve capacity: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve capacity: %w", err)
	}
	if rows == 0 {
		err = r.classifyRejection(ctx, tx, reg.EventID, reg.CreatedAt)
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (event_id, user_id, status, token, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, reg.EventID, reg.UserID, reg.Status, reg.Token, reg.Note, reg.CreatedAt, reg.UpdatedAt).Scan(&reg.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			err = domain.ErrAlreadyRegistered
			return err
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// classifyRejection decides which admission precondition failed when the
// conditional increment matched no row. Read within the same transaction so
// the answer reflects the state the increment saw.
func (r *registrationRepository) classifyRejection(ctx context.Context, tx *sql.Tx, eventID string, now time.Time) error {
	var status domain.EventStatus
	var deadline time.Time
	err := tx.QueryRowContext(ctx, `
		SELECT status, registration_deadline
		FROM events
		WHERE id = $1
	`, eventID).Scan(&status, &deadline)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("classify rejection: %w", err)
	}
	if status != domain.EventStatusApproved {
		return domain.ErrEventUnavailable
	}
	if !now.Before(deadline) {
		return domain.ErrDeadlinePassed
	}
	return domain.ErrEventFull
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND user_id = $2 AND status <> 'cancelled'
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, eventID)
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *registrationRepository) list(ctx context.Context, query string, arg any) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// Cancel flips the registration to cancelled and releases its seat in one
// transaction. The status change is conditional so a doubly-submitted cancel
// decrements the counter only once, and an attended registration is refused
// outright: releasing its seat would drop registration_count below
// attendance_count.
func (r *registrationRepository) Cancel(ctx context.Context, id string, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var eventID string
	err = tx.QueryRowContext(ctx, `
		UPDATE registrations
		SET status = 'cancelled', updated_at = $2
		WHERE id = $1 AND status <> 'cancelled' AND is_attended = FALSE
		RETURNING event_id
	`, id, now).Scan(&eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = r.classifyCancelRejection(ctx, tx, id)
			return err
		}
		return fmt.Errorf("cancel registration: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET registration_count = registration_count - 1, updated_at = $2
		WHERE id = $1 AND registration_count > 0
	`, eventID, now)
	if err != nil {
		return fmt.Errorf("release capacity: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *registrationRepository) classifyCancelRejection(ctx context.Context, tx *sql.Tx, id string) error {
	var (
		status   string
		attended bool
	)
	err := tx.QueryRowContext(ctx, `SELECT status, is_attended FROM registrations WHERE id = $1`, id).Scan(&status, &attended)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("classify cancel rejection: %w", err)
	}
	if status == string(domain.RegistrationStatusCancelled) {
		return domain.ErrRegistrationCancelled
	}
	return domain.ErrAlreadyAttended
}

// classifyAttendRejection tells a benign duplicate scan (nil) apart from a
// registration cancelled under the scanner's feet or one that vanished.
func (r *registrationRepository) classifyAttendRejection(ctx context.Context, tx *sql.Tx, id string) error {
	var (
		status   string
		attended bool
	)
	err := tx.QueryRowContext(ctx, `SELECT status, is_attended FROM registrations WHERE id = $1`, id).Scan(&status, &attended)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("classify attendance rejection: %w", err)
	}
	if status == string(domain.RegistrationStatusCancelled) {
		return domain.ErrRegistrationCancelled
	}
	return nil
}

// ConfirmAttendance performs the one-way attended transition exactly once.
//
// The conditional UPDATE's affected-row count is the sole arbiter: under
// concurrent scans of the same payload only one transaction matches the
// is_attended = FALSE predicate, and only that transaction appends the audit
// row and increments attendance_count. The others report false untouched.
// The predicate also excludes cancelled rows, so a scan racing a cancel is
// rejected rather than resurrecting a released seat.
func (r *registrationRepository) ConfirmAttendance(ctx context.Context, registrationID, eventID, userID, scannedBy string, at time.Time) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE registrations
		SET is_attended = TRUE, attended_at = $2, updated_at = $2
		WHERE id = $1 AND is_attended = FALSE AND status <> 'cancelled'
	`, registrationID, at)
	if err != nil {
		return false, fmt.Errorf("mark attended: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark attended: %w", err)
	}
	if rows == 0 {
		if err = r.classifyAttendRejection(ctx, tx, registrationID); err != nil {
			return false, err
		}
		// Already attended: the duplicate scan is benign.
		_ = tx.Rollback()
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance_log (event_id, registration_id, user_id, scanned_by, scanned_at)
		VALUES ($1, $2, $3, $4, $5)
	`, eventID, registrationID, userID, scannedBy, at)
	if err != nil {
		return false, fmt.Errorf("append attendance log: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET attendance_count = attendance_count + 1, updated_at = $2
		WHERE id = $1
	`, eventID, at)
	if err != nil {
		return false, fmt.Errorf("increment attendance count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}
