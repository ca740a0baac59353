package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/domain"
)

type eventService struct {
	eventRepo domain.EventRepository
}

// NewEventService creates the host/admin event workflow service.
func NewEventService(eventRepo domain.EventRepository) domain.EventService {
	return &eventService{eventRepo: eventRepo}
}

func (s *eventService) CreateEvent(ctx context.Context, hostID string, params domain.CreateEventParams) (*domain.Event, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if params.MaxParticipants <= 0 {
		return nil, fmt.Errorf("%w: max_participants must be positive", domain.ErrInvalidInput)
	}
	now := time.Now()
	if !params.StartsAt.After(now) {
		return nil, fmt.Errorf("%w: starts_at must be in the future", domain.ErrInvalidInput)
	}
	if !params.RegistrationDeadline.Before(params.StartsAt) {
		return nil, fmt.Errorf("%w: registration_deadline must be before starts_at", domain.ErrInvalidInput)
	}

	event := domain.NewEvent(
		hostID, title, strings.TrimSpace(params.Description), strings.TrimSpace(params.Venue),
		params.StartsAt, params.RegistrationDeadline, params.MaxParticipants, now,
	)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListApprovedUpcoming(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	events, total, err := s.eventRepo.ListApprovedUpcoming(ctx, time.Now(), p)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, hostID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByHostID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("list host events: %w", err)
	}
	return events, nil
}

func (s *eventService) ReviewEvent(ctx context.Context, eventID string, approve bool) (*domain.Event, error) {
	status := domain.EventStatusRejected
	if approve {
		status = domain.EventStatusApproved
	}
	if err := s.eventRepo.SetStatus(ctx, eventID, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set event status: %w", err)
	}
	return s.eventRepo.GetByID(ctx, eventID)
}
