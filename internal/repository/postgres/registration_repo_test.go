package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"campusevents/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestRegistrationRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	futureDeadline := now.Add(24 * time.Hour)
	pastDeadline := now.Add(-time.Hour)

	newReg := func() *domain.Registration {
		return &domain.Registration{
			EventID:   "ev-1",
			UserID:    "user-1",
			Status:    domain.RegistrationStatusConfirmed,
			Token:     "tok-1",
			Note:      "",
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1", now).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WithArgs("ev-1", "user-1", domain.RegistrationStatusConfirmed, "tok-1", "", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))
				mock.ExpectCommit()
			},
			wantID: "reg-1",
		},
		{
			name: "event full",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1", now).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT status, registration_deadline`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"status", "registration_deadline"}).
						AddRow(domain.EventStatusApproved, futureDeadline))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrEventFull,
		},
		{
			name: "deadline passed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1", now).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT status, registration_deadline`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"status", "registration_deadline"}).
						AddRow(domain.EventStatusApproved, pastDeadline))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrDeadlinePassed,
		},
		{
			name: "event not approved",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1", now).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT status, registration_deadline`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"status", "registration_deadline"}).
						AddRow(domain.EventStatusPending, futureDeadline))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrEventUnavailable,
		},
		{
			name: "event missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1", now).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT status, registration_deadline`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "duplicate registration rolls back the reserved seat",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1", now).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WithArgs("ev-1", "user-1", domain.RegistrationStatusConfirmed, "tok-1", "", now, now).
					WillReturnError(&pq.Error{Code: uniqueViolation})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			reg := newReg()
			err = repo.Create(ctx, reg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, reg.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	attended := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Registration
		wantErr error
	}{
		{
			name: "success with attended_at",
			id:   "reg-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, user_id, status, token, note, is_attended, attended_at, created_at, updated_at`).
					WithArgs("reg-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "status", "token", "note", "is_attended", "attended_at", "created_at", "updated_at"}).
						AddRow("reg-1", "ev-1", "user-1", domain.RegistrationStatusConfirmed, "tok-1", "wheelchair seat", true, attended, created, attended))
			},
			want: &domain.Registration{
				ID:         "reg-1",
				EventID:    "ev-1",
				UserID:     "user-1",
				Status:     domain.RegistrationStatusConfirmed,
				Token:      "tok-1",
				Note:       "wheelchair seat",
				IsAttended: true,
				AttendedAt: &attended,
				CreatedAt:  created,
				UpdatedAt:  attended,
			},
		},
		{
			name: "success without attended_at",
			id:   "reg-2",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, user_id, status, token, note, is_attended, attended_at, created_at, updated_at`).
					WithArgs("reg-2").
					WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "status", "token", "note", "is_attended", "attended_at", "created_at", "updated_at"}).
						AddRow("reg-2", "ev-1", "user-2", domain.RegistrationStatusConfirmed, "tok-2", "", false, nil, created, created))
			},
			want: &domain.Registration{
				ID:        "reg-2",
				EventID:   "ev-1",
				UserID:    "user-2",
				Status:    domain.RegistrationStatusConfirmed,
				Token:     "tok-2",
				CreatedAt: created,
				UpdatedAt: created,
			},
		},
		{
			name: "not found",
			id:   "reg-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, user_id, status, token, note, is_attended, attended_at, created_at, updated_at`).
					WithArgs("reg-missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_Cancel(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success releases the seat",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`UPDATE registrations`).
					WithArgs("reg-1", now).
					WillReturnRows(sqlmock.NewRows([]string{"event_id"}).AddRow("ev-1"))
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1", now).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "already cancelled",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`UPDATE registrations`).
					WithArgs("reg-1", now).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`SELECT status, is_attended`).
					WithArgs("reg-1").
					WillReturnRows(sqlmock.NewRows([]string{"status", "is_attended"}).AddRow("cancelled", false))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrRegistrationCancelled,
		},
		{
			name: "already checked in",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`UPDATE registrations`).
					WithArgs("reg-1", now).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`SELECT status, is_attended`).
					WithArgs("reg-1").
					WillReturnRows(sqlmock.NewRows([]string{"status", "is_attended"}).AddRow("confirmed", true))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrAlreadyAttended,
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`UPDATE registrations`).
					WithArgs("reg-1", now).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`SELECT status, is_attended`).
					WithArgs("reg-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`UPDATE registrations`).
					WithArgs("reg-1", now).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			err = repo.Cancel(ctx, "reg-1", now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_ConfirmAttendance(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	t.Run("first scan confirms and logs", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE registrations`).
			WithArgs("reg-1", at).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO attendance_log`).
			WithArgs("ev-1", "reg-1", "user-1", "host-1", at).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE events`).
			WithArgs("ev-1", at).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewRegistrationRepository(db)
		confirmed, err := repo.ConfirmAttendance(ctx, "reg-1", "ev-1", "user-1", "host-1", at)
		require.NoError(t, err)
		require.True(t, confirmed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeat scan touches nothing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE registrations`).
			WithArgs("reg-1", at).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status, is_attended`).
			WithArgs("reg-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "is_attended"}).AddRow("confirmed", true))
		mock.ExpectRollback()

		repo := NewRegistrationRepository(db)
		confirmed, err := repo.ConfirmAttendance(ctx, "reg-1", "ev-1", "user-1", "host-1", at)
		require.NoError(t, err)
		require.False(t, confirmed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelled before the transition is rejected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE registrations`).
			WithArgs("reg-1", at).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status, is_attended`).
			WithArgs("reg-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "is_attended"}).AddRow("cancelled", false))
		mock.ExpectRollback()

		repo := NewRegistrationRepository(db)
		confirmed, err := repo.ConfirmAttendance(ctx, "reg-1", "ev-1", "user-1", "host-1", at)
		require.ErrorIs(t, err, domain.ErrRegistrationCancelled)
		require.False(t, confirmed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("registration vanished", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE registrations`).
			WithArgs("reg-1", at).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status, is_attended`).
			WithArgs("reg-1").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		repo := NewRegistrationRepository(db)
		confirmed, err := repo.ConfirmAttendance(ctx, "reg-1", "ev-1", "user-1", "host-1", at)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.False(t, confirmed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("audit insert failure aborts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE registrations`).
			WithArgs("reg-1", at).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO attendance_log`).
			WithArgs("ev-1", "reg-1", "user-1", "host-1", at).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewRegistrationRepository(db)
		confirmed, err := repo.ConfirmAttendance(ctx, "reg-1", "ev-1", "user-1", "host-1", at)
		require.Error(t, err)
		require.False(t, confirmed)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRegistrationRepository_ListByUserID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, user_id, status, token, note, is_attended, attended_at, created_at, updated_at`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "status", "token", "note", "is_attended", "attended_at", "created_at", "updated_at"}).
			AddRow("reg-2", "ev-2", "user-1", domain.RegistrationStatusConfirmed, "tok-2", "", false, nil, created.Add(time.Hour), created.Add(time.Hour)).
			AddRow("reg-1", "ev-1", "user-1", domain.RegistrationStatusCancelled, "tok-1", "", false, nil, created, created))

	repo := NewRegistrationRepository(db)
	got, err := repo.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "reg-2", got[0].ID)
	require.Equal(t, domain.RegistrationStatusCancelled, got[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
