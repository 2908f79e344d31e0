package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventticketing/config"
	"eventticketing/internal/adapters/auth"
	"eventticketing/internal/adapters/email"
	"eventticketing/internal/adapters/realtime"
	httpdelivery "eventticketing/internal/delivery/http"
	"eventticketing/internal/delivery/http/controllers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/domain"
	"eventticketing/internal/repository/postgres"
	"eventticketing/internal/services"

	_ "eventticketing/docs"
)

// @title Event Ticketing API
// @version 1.0
// @description Event booking and capacity reservation service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := postgres.Migrate(migrateCtx, db); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	commentRepo := postgres.NewCommentRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(0)
	issuer, verifier := auth.NewJWTCodec(cfg.JWTSecret)

	var publisher domain.NotificationPublisher = realtime.NoopPublisher{}
	if cfg.RedisAddr != "" {
		redisPublisher := realtime.NewPublisher(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisPublisher.Close()
		publisher = redisPublisher
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailerProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "error", err)
		os.Exit(1)
	}

	// Services
	authSvc := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry)
	eventSvc := services.NewEventService(eventRepo, reviewRepo)
	notificationSvc := services.NewNotificationService(notificationRepo, publisher, logger)
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	bookingSvc := services.NewBookingService(bookingRepo, eventRepo, userRepo, notificationSvc, emailSvc, logger)
	commentSvc := services.NewCommentService(commentRepo, eventRepo)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:         controllers.NewAuthController(logger, authSvc),
		Event:        controllers.NewEventController(logger, eventSvc),
		Booking:      controllers.NewBookingController(logger, bookingSvc),
		Notification: controllers.NewNotificationController(logger, notificationSvc),
		Comment:      controllers.NewCommentController(logger, commentSvc),
	}, verifier)

	handler := middleware.Logging(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
