package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medibook/booking-api/internal/config"
	"github.com/medibook/booking-api/internal/email"
	appointmenthandler "github.com/medibook/booking-api/internal/handler/appointment"
	authhandler "github.com/medibook/booking-api/internal/handler/auth"
	healthhandler "github.com/medibook/booking-api/internal/handler/health"
	notificationhandler "github.com/medibook/booking-api/internal/handler/notification"
	practitionerhandler "github.com/medibook/booking-api/internal/handler/practitioner"
	specialtyhandler "github.com/medibook/booking-api/internal/handler/specialty"
	userhandler "github.com/medibook/booking-api/internal/handler/user"
	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/repository/postgres"
	"github.com/medibook/booking-api/internal/router"
	appointmentservice "github.com/medibook/booking-api/internal/service/appointment"
	authservice "github.com/medibook/booking-api/internal/service/auth"
	availabilityservice "github.com/medibook/booking-api/internal/service/availability"
	notificationservice "github.com/medibook/booking-api/internal/service/notification"
	practitionerservice "github.com/medibook/booking-api/internal/service/practitioner"
	specialtyservice "github.com/medibook/booking-api/internal/service/specialty"
	userservice "github.com/medibook/booking-api/internal/service/user"
	"github.com/medibook/booking-api/pkg/auth"
	"github.com/medibook/booking-api/pkg/clock"
	"github.com/medibook/booking-api/pkg/logger"
	"github.com/medibook/booking-api/pkg/metrics"
	"github.com/medibook/booking-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	if err := validator.RegisterCustomValidations(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validations")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	specialtyRepo := postgres.NewSpecialtyRepository(db)
	practitionerRepo := postgres.NewPractitionerRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	emailSvc := email.NewSMTPService(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	appMetrics := metrics.NewMetrics("medibook", "api")
	systemClock := clock.System()

	notificationSvc := notificationservice.NewService(notificationRepo, outboxRepo, userRepo, emailSvc, appLogger)
	authSvc := authservice.NewService(userRepo, jwtSvc, emailSvc, appLogger, cfg.JWT.Expiry())
	specialtySvc := specialtyservice.NewService(specialtyRepo)
	userSvc := userservice.NewService(userRepo)
	practitionerSvc := practitionerservice.NewService(practitionerRepo, availabilityRepo)
	availabilitySvc := availabilityservice.NewService(practitionerRepo, availabilityRepo, appointmentRepo, systemClock)
	appointmentSvc := appointmentservice.NewService(appointmentRepo, practitionerRepo, notificationSvc, systemClock, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	}

	r := router.NewRouter(authMiddleware, router.Handlers{
		Health:       healthhandler.NewHandler(db),
		Auth:         authhandler.NewHandler(authSvc),
		Appointment:  appointmenthandler.NewHandler(appointmentSvc, appMetrics),
		Practitioner: practitionerhandler.NewHandler(practitionerSvc, availabilitySvc, systemClock, appMetrics),
		Specialty:    specialtyhandler.NewHandler(specialtySvc),
		Notification: notificationhandler.NewHandler(notificationSvc),
		User:         userhandler.NewHandler(userSvc),
	}, router.Config{
		RateLimit:  rate.Limit(cfg.RateLimit.RPS),
		RateBurst:  cfg.RateLimit.Burst,
		Timeout:    cfg.Server.Timeout(),
		CORSConfig: corsConfig,
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
