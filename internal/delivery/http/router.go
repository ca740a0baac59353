package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// RouterDeps carries everything the router needs to wire routes to handlers.
type RouterDeps struct {
	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	CheckIn       *controllers.CheckInController
	Verifier      domain.TokenVerifier
	Redis         *redis.Client
	ScanRateLimit int
	Logger        *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(deps.Verifier)
	host := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireRole(domain.RoleHost)(h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireRole(domain.RoleAdmin)(h))
	}
	// Admins may operate the scanner and inspect any event's rosters; the
	// check-in service narrows hosts to their own events.
	scanner := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireAnyRole(domain.RoleHost, domain.RoleAdmin)(h))
	}
	scanLimited := middleware.RateLimit(deps.Redis, deps.ScanRateLimit, deps.Logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", deps.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", deps.Auth.Login)

	// Public event catalog
	mux.HandleFunc("GET /events", deps.Events.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", deps.Events.GetEvent)

	// Attendee
	mux.HandleFunc("POST /attendee/events/{eventID}/registrations", authed(deps.Registrations.Register))
	mux.HandleFunc("GET /attendee/registrations", authed(deps.Registrations.ListMyRegistrations))
	mux.HandleFunc("DELETE /attendee/registrations/{registrationID}", authed(deps.Registrations.Cancel))
	mux.HandleFunc("GET /attendee/registrations/{registrationID}/qr", authed(deps.Registrations.QRCode))

	// Host
	mux.HandleFunc("POST /host/events", host(deps.Events.CreateEvent))
	mux.HandleFunc("GET /host/events", host(deps.Events.ListMyEvents))
	mux.HandleFunc("GET /host/events/{eventID}/registrations", scanner(deps.CheckIn.ListEventRegistrations))
	mux.HandleFunc("GET /host/events/{eventID}/attendance", scanner(deps.CheckIn.ListAttendance))
	mux.HandleFunc("POST /host/scan", scanner(scanLimited(deps.CheckIn.Scan)))

	// Admin
	mux.HandleFunc("POST /admin/events/{eventID}/review", admin(deps.Events.ReviewEvent))

	// Operational
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
