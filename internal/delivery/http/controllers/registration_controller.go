package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// RegisterRequest is the optional request body for POST /attendee/events/{eventID}/registrations.
type RegisterRequest struct {
	Note string `json:"note"`
}

// Register godoc
// @Summary Register the current user for an event
// @Description Admits the authenticated user while the event is approved, before its deadline, and below capacity. Each precondition failure returns its own error code.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.RegisterRequest false "Supplemental form data"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_unavailable | deadline_passed | event_full | already_registered"
// @Router /attendee/events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	var req RegisterRequest
	if r.ContentLength > 0 && !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	reg, err := c.Service.Register(r.Context(), eventID, userID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrEventUnavailable):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventUnavailable, "event is not open for registration")
		case errors.Is(err, domain.ErrDeadlinePassed):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeDeadlinePassed, "registration deadline has passed")
		case errors.Is(err, domain.ErrEventFull):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventFull, "event is full")
		case errors.Is(err, domain.ErrAlreadyRegistered):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyRegistered, "already registered for this event")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Cancel godoc
// @Summary Cancel the current user's registration
// @Description Cancels the caller's own registration before the event starts and releases the seat.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: registration_cancelled | already_checked_in | event_started"
// @Router /attendee/registrations/{registrationID} [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if !uuidRegex.MatchString(registrationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid registrationID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Cancel(r.Context(), registrationID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not your registration")
		case errors.Is(err, domain.ErrRegistrationCancelled):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeRegistrationCancelled, "registration is already cancelled")
		case errors.Is(err, domain.ErrAlreadyAttended):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyCheckedIn, "registration has already been checked in")
		case errors.Is(err, domain.ErrEventStarted):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventStarted, "event has already started")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ListMyRegistrations godoc
// @Summary List the current user's registrations with their events
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /attendee/registrations [get]
func (c *RegistrationController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Service.ListMyRegistrations(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// QRCodeResponse is the payload for GET /attendee/registrations/{registrationID}/qr.
type QRCodeResponse struct {
	Payload string `json:"payload"`
}

// QRCode godoc
// @Summary Fetch the QR payload for one of the current user's registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: registration_cancelled"
// @Router /attendee/registrations/{registrationID}/qr [get]
func (c *RegistrationController) QRCode(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if !uuidRegex.MatchString(registrationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid registrationID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	payload, err := c.Service.QRPayload(r.Context(), registrationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not your registration")
		case errors.Is(err, domain.ErrRegistrationCancelled):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeRegistrationCancelled, "registration is cancelled")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, QRCodeResponse{Payload: payload})
}
