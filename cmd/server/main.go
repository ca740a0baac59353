package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"campusevents/config"
	_ "campusevents/docs"
	"campusevents/internal/adapters/amqp"
	"campusevents/internal/adapters/auth"
	"campusevents/internal/adapters/credential"
	"campusevents/internal/adapters/email"
	deliveryhttp "campusevents/internal/delivery/http"
	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/metrics"
	"campusevents/internal/repository/postgres"
	"campusevents/internal/services"
)

// @title Campus Events API
// @version 1.0
// @description Registration and attendance verification backend for campus events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting disabled", "addr", cfg.RedisAddr, "err", err)
			rdb = nil
		}
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mailer.SESRegion,
			AccessKeyID:     cfg.Mailer.SESAccessKeyID,
			SecretAccessKey: cfg.Mailer.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()
	publisher := amqp.NewPublisher(cfg.AMQPUrl, logger)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(0)
	credIssuer := credential.NewRandomIssuer()
	m := metrics.New(prometheus.DefaultRegisterer)

	// Services
	emailSvc := services.NewEmailService(mailer, renderer)
	authSvc := services.NewAuthService(userRepo, roleRepo, hasher, tokenIssuer, emailSvc, cfg.JWTExpiry, logger)
	eventSvc := services.NewEventService(eventRepo)
	regSvc := services.NewRegistrationService(eventRepo, regRepo, userRepo, credIssuer, publisher, emailSvc, m, logger)
	checkInSvc := services.NewCheckInService(eventRepo, regRepo, userRepo, roleRepo, attendanceRepo, publisher, emailSvc, m, logger)

	// HTTP
	mux := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Auth:          controllers.NewAuthController(logger, authSvc),
		Events:        controllers.NewEventController(logger, eventSvc),
		Registrations: controllers.NewRegistrationController(logger, regSvc),
		CheckIn:       controllers.NewCheckInController(logger, checkInSvc),
		Verifier:      tokenVerifier,
		Redis:         rdb,
		ScanRateLimit: cfg.ScanRateLimit,
		Logger:        logger,
	})

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.Logging(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
