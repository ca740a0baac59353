package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

type mockEventService struct {
	event  *domain.Event
	events []*domain.Event
	total  int
	err    error

	gotHostID  string
	gotParams  domain.CreateEventParams
	gotApprove bool
}

func (m *mockEventService) CreateEvent(_ context.Context, hostID string, params domain.CreateEventParams) (*domain.Event, error) {
	m.gotHostID = hostID
	m.gotParams = params
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) GetEvent(_ context.Context, _ string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) ListApprovedUpcoming(_ context.Context, _ domain.PaginationParams) ([]*domain.Event, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.events, m.total, nil
}

func (m *mockEventService) ListMyEvents(_ context.Context, _ string) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func (m *mockEventService) ReviewEvent(_ context.Context, _ string, approve bool) (*domain.Event, error) {
	m.gotApprove = approve
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func eventBody(t *testing.T) string {
	t.Helper()
	starts := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	deadline := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	return `{"title":"Robotics Demo Night","venue":"Engineering Hall","starts_at":"` + starts +
		`","registration_deadline":"` + deadline + `","max_participants":100}`
}

func TestEventController_CreateEvent(t *testing.T) {
	svc := &mockEventService{event: &domain.Event{ID: testEventID, Title: "Robotics Demo Night", Status: domain.EventStatusPending}}
	ctrl := NewEventController(discardLogger(), svc)

	req := httptest.NewRequest(http.MethodPost, "/host/events", strings.NewReader(eventBody(t)))
	req = withUser(req, "host-1", "host")
	rr := httptest.NewRecorder()

	ctrl.CreateEvent(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if svc.gotHostID != "host-1" {
		t.Fatalf("hostID = %q, want host-1", svc.gotHostID)
	}
	if svc.gotParams.MaxParticipants != 100 {
		t.Fatalf("max participants = %d, want 100", svc.gotParams.MaxParticipants)
	}
}

func TestEventController_CreateEvent_validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"venue":"Hall","starts_at":"2030-01-01T10:00:00Z","registration_deadline":"2029-12-31T10:00:00Z","max_participants":10}`},
		{"non-positive capacity", `{"title":"T","starts_at":"2030-01-01T10:00:00Z","registration_deadline":"2029-12-31T10:00:00Z","max_participants":0}`},
		{"missing starts_at", `{"title":"T","registration_deadline":"2029-12-31T10:00:00Z","max_participants":10}`},
		{"malformed json", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{}
			ctrl := NewEventController(discardLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/host/events", strings.NewReader(tt.body))
			req = withUser(req, "host-1", "host")
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestEventController_CreateEvent_serviceRejects(t *testing.T) {
	svc := &mockEventService{err: domain.ErrInvalidInput}
	ctrl := NewEventController(discardLogger(), svc)

	req := httptest.NewRequest(http.MethodPost, "/host/events", strings.NewReader(eventBody(t)))
	req = withUser(req, "host-1", "host")
	rr := httptest.NewRecorder()

	ctrl.CreateEvent(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestEventController_ListEvents(t *testing.T) {
	svc := &mockEventService{
		events: []*domain.Event{{ID: testEventID, Title: "Robotics Demo Night"}},
		total:  42,
	}
	ctrl := NewEventController(discardLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/events?page=2&page_size=10", nil)
	rr := httptest.NewRecorder()

	ctrl.ListEvents(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var envelope struct {
		Data EventListResponse `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(envelope.Data.Events))
	}
	if envelope.Data.Pagination.Total != 42 {
		t.Fatalf("total = %d, want 42", envelope.Data.Pagination.Total)
	}
	if envelope.Data.Pagination.Page != 2 {
		t.Fatalf("page = %d, want 2", envelope.Data.Pagination.Page)
	}
}

func TestEventController_GetEvent(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		svcErr     error
		wantStatus int
	}{
		{"found", testEventID, nil, http.StatusOK},
		{"not found", testEventID, domain.ErrNotFound, http.StatusNotFound},
		{"invalid id", "not-a-uuid", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{event: &domain.Event{ID: testEventID}, err: tt.svcErr}
			ctrl := NewEventController(discardLogger(), svc)

			req := httptest.NewRequest(http.MethodGet, "/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			ctrl.GetEvent(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestEventController_ReviewEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"approve", `{"approve":true}`, nil, http.StatusOK, ""},
		{"reject", `{"approve":false}`, nil, http.StatusOK, ""},
		{"not found", `{"approve":true}`, domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{event: &domain.Event{ID: testEventID, Status: domain.EventStatusApproved}, err: tt.svcErr}
			ctrl := NewEventController(discardLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/admin/events/"+testEventID+"/review", strings.NewReader(tt.body))
			req.SetPathValue("eventID", testEventID)
			req = withUser(req, "admin-1", "admin")
			rr := httptest.NewRecorder()

			ctrl.ReviewEvent(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				var envelope helpers.APIResponse
				if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if envelope.Error == nil || envelope.Error.Code != tt.wantCode {
					t.Fatalf("error code = %v, want %s", envelope.Error, tt.wantCode)
				}
			}
		})
	}
}

func TestEventController_ListMyEvents(t *testing.T) {
	svc := &mockEventService{events: []*domain.Event{{ID: testEventID}, {ID: "other"}}}
	ctrl := NewEventController(discardLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/host/events", nil)
	req = withUser(req, "host-1", "host")
	rr := httptest.NewRecorder()

	ctrl.ListMyEvents(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var envelope struct {
		Data []*domain.Event `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("events = %d, want 2", len(envelope.Data))
	}
}
