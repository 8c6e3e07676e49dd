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

	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/handler"
	appointmentHandler "github.com/jwalitptl/hms-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/hms-api/internal/handler/auth"
	billingHandler "github.com/jwalitptl/hms-api/internal/handler/billing"
	deliveryHandler "github.com/jwalitptl/hms-api/internal/handler/delivery"
	hospitalHandler "github.com/jwalitptl/hms-api/internal/handler/hospital"
	pharmacyHandler "github.com/jwalitptl/hms-api/internal/handler/pharmacy"
	prescriptionHandler "github.com/jwalitptl/hms-api/internal/handler/prescription"
	userHandler "github.com/jwalitptl/hms-api/internal/handler/user"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/repository/postgres"
	"github.com/jwalitptl/hms-api/internal/router"
	appointmentService "github.com/jwalitptl/hms-api/internal/service/appointment"
	authService "github.com/jwalitptl/hms-api/internal/service/auth"
	billingService "github.com/jwalitptl/hms-api/internal/service/billing"
	deliveryService "github.com/jwalitptl/hms-api/internal/service/delivery"
	hospitalService "github.com/jwalitptl/hms-api/internal/service/hospital"
	pharmacyService "github.com/jwalitptl/hms-api/internal/service/pharmacy"
	userService "github.com/jwalitptl/hms-api/internal/service/user"
	workflowService "github.com/jwalitptl/hms-api/internal/service/workflow"
	"github.com/jwalitptl/hms-api/pkg/auth"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging/redis"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/security"
	"github.com/jwalitptl/hms-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	hospitalRepo := postgres.NewHospitalRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	billRepo := postgres.NewBillRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	notifRepo := postgres.NewPharmacyNotificationRepository(db)
	deliveryRepo := postgres.NewDeliveryTaskRepository(db)
	nurseRepo := postgres.NewNurseRequestRepository(db)
	workflowRepo := postgres.NewWorkflowRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Shared infrastructure
	appMetrics := metrics.NewMetrics("hms", "api")
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(auth.JWTConfig{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	emailSvc := email.NewEmailService(email.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}, appLogger)

	// Services
	authSvc := authService.NewService(userRepo, hasher, jwtSvc)
	userSvc := userService.NewService(userRepo, hasher)
	hospitalSvc := hospitalService.NewService(hospitalRepo)
	workflowSvc := workflowService.NewService(workflowRepo, userRepo, hospitalRepo, emailSvc, appMetrics, appLogger)
	appointmentSvc := appointmentService.NewService(appointmentRepo)
	pharmacySvc := pharmacyService.NewService(notifRepo, prescriptionRepo, deliveryRepo, nurseRepo, userRepo, workflowRepo, appMetrics)
	billingSvc := billingService.NewService(billRepo, userRepo, outboxRepo, emailSvc, appMetrics, appLogger)
	deliverySvc := deliveryService.NewService(deliveryRepo, userRepo)

	// Handlers
	authMW := middleware.NewAuthMiddleware(jwtSvc)
	h := handler.NewHandler(db)
	r := router.NewRouter(
		authMW,
		authHandler.NewHandler(authSvc),
		userHandler.NewHandler(userSvc),
		hospitalHandler.NewHandler(hospitalSvc),
		appointmentHandler.NewHandler(workflowSvc, appointmentSvc),
		prescriptionHandler.NewHandler(workflowSvc, pharmacySvc),
		pharmacyHandler.NewHandler(pharmacySvc),
		billingHandler.NewHandler(billingSvc),
		deliveryHandler.NewHandler(deliverySvc),
		h,
		router.Config{
			RateLimitRPS:   float64(cfg.Server.RateLimitRPS),
			RateLimitBurst: cfg.Server.RateLimitBurst,
			Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORS:           middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Outbox processor publishes workflow events to Redis.
	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL}, &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.Interval(),
		RetryAttempts: cfg.Outbox.MaxRetries,
	}, appLogger, appMetrics)
	go processor.Start(ctx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
