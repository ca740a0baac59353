package postgres

import (
	"context"
	"database/sql"

	"campusevents/internal/domain"
)

type attendanceRepository struct {
	DB *sql.DB
}

func NewAttendanceRepository(db *sql.DB) domain.AttendanceRepository {
	return &attendanceRepository{
		DB: db,
	}
}

func (r *attendanceRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.AttendanceRecord, error) {
	query := `
		SELECT id, event_id, registration_id, user_id, scanned_by, scanned_at
		FROM attendance_log
		WHERE event_id = $1
		ORDER BY scanned_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.AttendanceRecord, 0)
	for rows.Next() {
		rec := &domain.AttendanceRecord{}
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.RegistrationID, &rec.UserID, &rec.ScannedBy, &rec.ScannedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
