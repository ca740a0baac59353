package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusevents/internal/domain"
	"campusevents/internal/metrics"
)

type registrationService struct {
	eventRepo domain.EventRepository
	regRepo   domain.RegistrationRepository
	userRepo  domain.UserRepository
	issuer    domain.CredentialIssuer
	publisher domain.NotificationPublisher
	emails    domain.EmailService
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewRegistrationService creates the registration ledger service.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	issuer domain.CredentialIssuer,
	publisher domain.NotificationPublisher,
	emails domain.EmailService,
	m *metrics.Metrics,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		eventRepo: eventRepo,
		regRepo:   regRepo,
		userRepo:  userRepo,
		issuer:    issuer,
		publisher: publisher,
		emails:    emails,
		metrics:   m,
		logger:    logger,
	}
}

// Register admits the user to the event. The pre-checks here give the caller
// an accurate rejection before any write; the repository re-enforces
// everything atomically at commit time, so a race between the pre-check and
// the insert can only tighten the outcome, never loosen it.
func (s *registrationService) Register(ctx context.Context, eventID, userID, note string) (*domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := event.OpenForRegistration(time.Now()); err != nil {
		s.countRejection(err)
		return nil, err
	}

	token, err := s.issuer.Issue()
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	now := time.Now()
	reg := domain.NewRegistration(eventID, userID, token, note, now)
	if err := s.regRepo.Create(ctx, reg); err != nil {
		s.countRejection(err)
		if isAdmissionError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}
	s.metrics.RegistrationsTotal.Inc()

	s.notifyRegistered(ctx, event, reg)
	return reg, nil
}

func isAdmissionError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrEventUnavailable) ||
		errors.Is(err, domain.ErrDeadlinePassed) ||
		errors.Is(err, domain.ErrEventFull) ||
		errors.Is(err, domain.ErrAlreadyRegistered)
}

func (s *registrationService) countRejection(err error) {
	switch {
	case errors.Is(err, domain.ErrEventUnavailable):
		s.metrics.RegistrationsRejected.WithLabelValues("unavailable").Inc()
	case errors.Is(err, domain.ErrDeadlinePassed):
		s.metrics.RegistrationsRejected.WithLabelValues("deadline").Inc()
	case errors.Is(err, domain.ErrEventFull):
		s.metrics.RegistrationsRejected.WithLabelValues("full").Inc()
	case errors.Is(err, domain.ErrAlreadyRegistered):
		s.metrics.RegistrationsRejected.WithLabelValues("duplicate").Inc()
	}
}

// notifyRegistered delivers the confirmation receipt in the background.
// Failures are logged only; the registration is already committed.
func (s *registrationService) notifyRegistered(ctx context.Context, event *domain.Event, reg *domain.Registration) {
	bg := context.WithoutCancel(ctx)
	go func() {
		user, err := s.userRepo.GetByID(bg, reg.UserID)
		if err != nil {
			s.logger.Warn("registration notification: load user failed", "registration_id", reg.ID, "err", err)
			return
		}
		if err := s.publisher.PublishRegistrationConfirmed(bg, &domain.RegistrationConfirmedEvent{
			RegistrationID: reg.ID,
			EventID:        event.ID,
			EventTitle:     event.Title,
			UserID:         user.ID,
			UserEmail:      user.Email,
			RegisteredAt:   reg.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			s.logger.Warn("registration notification: publish failed", "registration_id", reg.ID, "err", err)
		}
		payload := domain.QRPayload{RegistrationID: reg.ID, EventID: event.ID, Token: reg.Token}
		if err := s.emails.SendRegistrationConfirmed(bg, &domain.RegistrationConfirmedEmailData{
			Email:      user.Email,
			Name:       user.Name,
			EventTitle: event.Title,
			EventVenue: event.Venue,
			StartsAt:   event.StartsAt.Format(time.RFC1123),
			QRPayload:  payload.Encode(),
		}); err != nil {
			s.logger.Warn("registration notification: email failed", "registration_id", reg.ID, "err", err)
		}
	}()
}

func (s *registrationService) Cancel(ctx context.Context, registrationID, userID string) error {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != userID {
		return domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if !time.Now().Before(event.StartsAt) {
		return domain.ErrEventStarted
	}

	if err := s.regRepo.Cancel(ctx, registrationID, time.Now()); err != nil {
		if errors.Is(err, domain.ErrRegistrationCancelled) || errors.Is(err, domain.ErrAlreadyAttended) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("cancel registration: %w", err)
	}
	s.metrics.CancellationsTotal.Inc()
	return nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	regs, err := s.regRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	eventsByID := make(map[string]*domain.Event)
	result := make([]*domain.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		result = append(result, &domain.RegistrationWithEvent{
			Registration: reg,
			Event:        ev,
		})
	}
	return result, nil
}

// QRPayload re-encodes the stored credential for the owning user. Cancelled
// registrations have no presentable credential.
func (s *registrationService) QRPayload(ctx context.Context, registrationID, userID string) (string, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != userID {
		return "", domain.ErrForbidden
	}
	if reg.Status == domain.RegistrationStatusCancelled {
		return "", domain.ErrRegistrationCancelled
	}
	payload := domain.QRPayload{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		Token:          reg.Token,
	}
	return payload.Encode(), nil
}
