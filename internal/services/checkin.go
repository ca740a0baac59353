package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusevents/internal/domain"
	"campusevents/internal/metrics"
)

type checkInService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.RegistrationRepository
	userRepo       domain.UserRepository
	roleRepo       domain.RoleRepository
	attendanceRepo domain.AttendanceRepository
	publisher      domain.NotificationPublisher
	emails         domain.EmailService
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewCheckInService creates the door-side scan processor.
func NewCheckInService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	attendanceRepo domain.AttendanceRepository,
	publisher domain.NotificationPublisher,
	emails domain.EmailService,
	m *metrics.Metrics,
	logger *slog.Logger,
) domain.CheckInService {
	return &checkInService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		attendanceRepo: attendanceRepo,
		publisher:      publisher,
		emails:         emails,
		metrics:        m,
		logger:         logger,
	}
}

// Scan processes one presented payload. Validation order: payload shape,
// registration lookup, token match, scanner authorization, lifecycle status.
// The attended transition itself is delegated to the ledger's conditional
// update, whose affected-row count decides between Confirmed and
// AlreadyCheckedIn under concurrent duplicates.
func (s *checkInService) Scan(ctx context.Context, payload, actorID string) (*domain.ScanResult, error) {
	p, err := domain.DecodeQRPayload(payload)
	if err != nil {
		s.metrics.ScansRejected.WithLabelValues("payload").Inc()
		return nil, domain.ErrInvalidPayload
	}

	reg, err := s.regRepo.GetByID(ctx, p.RegistrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.ScansRejected.WithLabelValues("not_found").Inc()
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}

	// The credential is valid only for the exact registration it was issued
	// to. Compare in constant time; a mismatched event binding is the same
	// class of failure as a wrong token.
	if reg.EventID != p.EventID ||
		subtle.ConstantTimeCompare([]byte(reg.Token), []byte(p.Token)) != 1 {
		s.metrics.ScansRejected.WithLabelValues("token").Inc()
		return nil, domain.ErrInvalidToken
	}

	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.authorizeScanner(ctx, event, actorID); err != nil {
		s.metrics.ScansRejected.WithLabelValues("unauthorized").Inc()
		return nil, err
	}

	if reg.Status == domain.RegistrationStatusCancelled {
		s.metrics.ScansRejected.WithLabelValues("cancelled").Inc()
		return nil, domain.ErrRegistrationCancelled
	}

	attendeeName := ""
	if attendee, err := s.userRepo.GetByID(ctx, reg.UserID); err == nil {
		attendeeName = attendee.Name
	}

	now := time.Now()
	confirmed, err := s.regRepo.ConfirmAttendance(ctx, reg.ID, reg.EventID, reg.UserID, actorID, now)
	if err != nil {
		// The registration can be cancelled between the read above and the
		// attended transition; report it the same as a pre-cancelled scan.
		if errors.Is(err, domain.ErrRegistrationCancelled) {
			s.metrics.ScansRejected.WithLabelValues("cancelled").Inc()
			return nil, domain.ErrRegistrationCancelled
		}
		return nil, fmt.Errorf("confirm attendance: %w", err)
	}

	result := &domain.ScanResult{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		AttendeeID:     reg.UserID,
		AttendeeName:   attendeeName,
	}

	if !confirmed {
		// Someone beat us to the transition; report the original timestamp.
		fresh, err := s.regRepo.GetByID(ctx, reg.ID)
		if err != nil {
			return nil, fmt.Errorf("get registration after duplicate scan: %w", err)
		}
		result.Outcome = domain.ScanAlreadyCheckedIn
		if fresh.AttendedAt != nil {
			result.AttendedAt = *fresh.AttendedAt
		}
		s.metrics.DuplicateScansTotal.Inc()
		return result, nil
	}

	result.Outcome = domain.ScanConfirmed
	result.AttendedAt = now
	s.metrics.CheckInsTotal.Inc()
	s.notifyCheckedIn(ctx, event, reg, actorID, now)
	return result, nil
}

func (s *checkInService) authorizeScanner(ctx context.Context, event *domain.Event, actorID string) error {
	if event.HostID == actorID {
		return nil
	}
	roles, err := s.roleRepo.ListByUserID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("list actor roles: %w", err)
	}
	for _, r := range roles {
		if r.Code == domain.RoleAdmin {
			return nil
		}
	}
	return domain.ErrScanUnauthorized
}

func (s *checkInService) notifyCheckedIn(ctx context.Context, event *domain.Event, reg *domain.Registration, actorID string, at time.Time) {
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.publisher.PublishCheckInConfirmed(bg, &domain.CheckInConfirmedEvent{
			RegistrationID: reg.ID,
			EventID:        event.ID,
			EventTitle:     event.Title,
			UserID:         reg.UserID,
			ScannedBy:      actorID,
			AttendedAt:     at.UTC().Format(time.RFC3339),
		}); err != nil {
			s.logger.Warn("check-in notification: publish failed", "registration_id", reg.ID, "err", err)
		}
		user, err := s.userRepo.GetByID(bg, reg.UserID)
		if err != nil {
			s.logger.Warn("check-in notification: load user failed", "registration_id", reg.ID, "err", err)
			return
		}
		if err := s.emails.SendCheckInConfirmed(bg, &domain.CheckInConfirmedEmailData{
			Email:      user.Email,
			Name:       user.Name,
			EventTitle: event.Title,
			CheckedIn:  at.Format(time.RFC1123),
		}); err != nil {
			s.logger.Warn("check-in notification: email failed", "registration_id", reg.ID, "err", err)
		}
	}()
}

func (s *checkInService) ListAttendance(ctx context.Context, eventID, actorID string) ([]*domain.AttendanceRecord, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.authorizeScanner(ctx, event, actorID); err != nil {
		return nil, err
	}
	records, err := s.attendanceRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

func (s *checkInService) ListEventRegistrations(ctx context.Context, eventID, actorID string) ([]*domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.authorizeScanner(ctx, event, actorID); err != nil {
		return nil, err
	}
	regs, err := s.regRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}
