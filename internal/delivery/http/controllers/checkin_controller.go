package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

type CheckInController struct {
	Logger  *slog.Logger
	Service domain.CheckInService
}

func NewCheckInController(logger *slog.Logger, svc domain.CheckInService) *CheckInController {
	return &CheckInController{
		Logger:  logger,
		Service: svc,
	}
}

// ScanRequest is the request body for POST /host/scan.
type ScanRequest struct {
	Payload string `json:"payload"`
}

// Validate implements helpers.Validator.
func (r *ScanRequest) Validate() []string {
	if strings.TrimSpace(r.Payload) == "" {
		return []string{"payload is required"}
	}
	return nil
}

// Scan godoc
// @Summary Process a door-side QR scan
// @Description Verifies the scanned credential and marks attendance exactly once. A repeat scan returns outcome "already_checked_in" with the original check-in time; that is an expected outcome, not an error.
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ScanRequest true "Scanned QR payload"
// @Success 200 {object} helpers.APIResponse "outcome: confirmed | already_checked_in"
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_payload"
// @Failure 401 {object} helpers.APIResponse "error.code: invalid_token"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: registration_cancelled"
// @Router /host/scan [post]
func (c *CheckInController) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.Scan(r.Context(), req.Payload, actorID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPayload):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidPayload, "malformed qr payload")
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
		case errors.Is(err, domain.ErrInvalidToken):
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeInvalidToken, "invalid credential token")
		case errors.Is(err, domain.ErrScanUnauthorized):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not authorized to scan for this event")
		case errors.Is(err, domain.ErrRegistrationCancelled):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeRegistrationCancelled, "registration is cancelled")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListAttendance godoc
// @Summary List the attendance log for an event
// @Description Returns the append-only scan audit log. Host of the event or admin only.
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /host/events/{eventID}/attendance [get]
func (c *CheckInController) ListAttendance(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	records, err := c.Service.ListAttendance(r.Context(), eventID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrScanUnauthorized):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not authorized for this event")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, records)
}

// ListEventRegistrations godoc
// @Summary List registrations for an event
// @Description Returns the event's full registration roster, cancelled rows included. Host of the event or admin only.
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /host/events/{eventID}/registrations [get]
func (c *CheckInController) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	regs, err := c.Service.ListEventRegistrations(r.Context(), eventID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrScanUnauthorized):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not authorized for this event")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}
