package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"registrationdesk/config"
	_ "registrationdesk/docs"
	"registrationdesk/internal/adapters/auth"
	"registrationdesk/internal/adapters/badge"
	"registrationdesk/internal/adapters/email"
	"registrationdesk/internal/adapters/qr"
	"registrationdesk/internal/adapters/tabular"
	deliveryhttp "registrationdesk/internal/delivery/http"
	"registrationdesk/internal/delivery/http/controllers"
	"registrationdesk/internal/repository/postgres"
	"registrationdesk/internal/services"
)

const (
	qrImageSize     = 200
	shutdownTimeout = 15 * time.Second
)

// @title Registration Desk API
// @version 1.0
// @description Event registration administration: contacts, imports, email campaigns, public registration and badges.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"email_provider", cfg.Email.Provider,
		"db_max_open_conns", cfg.DBMaxOpenConns,
	)

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.DBUrl, cfg.DBMaxOpenConns)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	contactRepo := postgres.NewContactRepository(db)
	logRepo := postgres.NewEmailLogRepository(db)
	templateRepo := postgres.NewEmailTemplateRepository(db)
	userRepo := postgres.NewUserRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	campaignRepo := postgres.NewCampaignRepository(db)
	badgeTemplateRepo := postgres.NewBadgeTemplateRepository(db)
	badgeRepo := postgres.NewBadgeRepository(db)
	snapshots := postgres.NewSnapshotReader(db)

	// Adapters
	sessions := auth.NewJWTSessions(cfg.JWTSecret, cfg.JWTExpiry)
	hasher := auth.NewBcryptHasher(auth.DefaultCost)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}
	badgeRenderer, err := badge.NewRenderer()
	if err != nil {
		logger.Error("failed to parse badge template", "error", err)
		os.Exit(1)
	}
	templateRenderer := email.NewTemplateRenderer()

	// Services
	authSvc := services.NewAuthService(userRepo, hasher, sessions)
	eventSvc := services.NewEventService(eventRepo, cfg.RequestTimeout)
	contactSvc := services.NewContactService(eventRepo, contactRepo, logRepo, snapshots, cfg.RequestTimeout)
	importSvc := services.NewImportService(eventRepo, contactRepo, tabular.NewParser(), cfg.UploadMaxFileSize, logger)
	templateSvc := services.NewEmailTemplateService(templateRepo, cfg.RequestTimeout)
	campaignSvc := services.NewCampaignService(campaignRepo, templateRepo, logRepo, cfg.RequestTimeout)
	registrationSvc := services.NewRegistrationService(eventRepo, contactRepo, registrationRepo, cfg.RequestTimeout)
	statisticsSvc := services.NewStatisticsService(snapshots)
	dispatcher := services.NewEmailDispatcher(services.DispatcherDeps{
		Events:    eventRepo,
		Contacts:  contactRepo,
		Templates: templateRepo,
		Campaigns: campaignRepo,
		Logs:      logRepo,
		Mailer:    mailer,
		Renderer:  templateRenderer,
	}, cfg.AppURL, logger)
	badgeSvc := services.NewBadgeService(services.BadgeDeps{
		Events:        eventRepo,
		Registrations: registrationRepo,
		Templates:     badgeTemplateRepo,
		Badges:        badgeRepo,
		QR:            qr.NewEncoder(qrImageSize),
		Renderer:      badgeRenderer,
		Mailer:        mailer,
	}, cfg.AppURL, logger)

	if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		logger.Error("failed to provision admin account", "error", err)
		os.Exit(1)
	}

	// Controllers
	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Auth:          controllers.NewAuthController(logger, authSvc, cfg.JWTExpiry, cfg.Environment == "production"),
		Events:        controllers.NewEventController(logger, eventSvc, statisticsSvc),
		Contacts:      controllers.NewContactController(logger, contactSvc, importSvc, cfg.UploadMaxFileSize),
		Attendees:     controllers.NewAttendeeController(logger, contactSvc, dispatcher),
		Emails:        controllers.NewEmailController(logger, templateSvc, campaignSvc, dispatcher),
		Registrations: controllers.NewRegistrationController(logger, registrationSvc),
		Badges:        controllers.NewBadgeController(logger, badgeSvc),
	}, deliveryhttp.RouterConfig{
		Logger:         logger,
		Verifier:       sessions,
		DB:             db,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
