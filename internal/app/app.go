package app

import (
	"context"

	"github.com/Gkimbo/cleaningCompany-sub025/config"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/database"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/handlers/middleware"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/jobs"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/repositories"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	authController "github.com/Gkimbo/cleaningCompany-sub025/internal/controllers/auth"
	guestNotLeftController "github.com/Gkimbo/cleaningCompany-sub025/internal/controllers/guestnotleft"
	invitationController "github.com/Gkimbo/cleaningCompany-sub025/internal/controllers/invitations"

	logger "github.com/Bparsons0904/goLogger"
)

type Controllers struct {
	Auth         *authController.AuthController
	Invitations  *invitationController.InvitationController
	GuestNotLeft *guestNotLeftController.GuestNotLeftController
}

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Config     config.Config

	// Services
	TransactionService  *services.TransactionService
	TokenService        *services.TokenService
	SessionService      *services.SessionService
	NotificationService *services.NotificationService
	SchedulerService    *services.SchedulerService

	// Repositories
	Repos repositories.Repository

	// Controllers
	Controllers Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	// Initialize services
	transactionService := services.NewTransactionService(db)
	tokenService, err := services.NewTokenService(config)
	if err != nil {
		return &App{}, log.Err("failed to create token service", err)
	}
	sessionService := services.NewSessionService(db.Cache.Session)
	notificationService := services.NewNotificationService(services.NewLogSender())
	schedulerService := services.NewSchedulerService(config.GuestNotLeftSweepMin)

	// Initialize repositories
	repos := repositories.New(db)

	// Initialize controllers with repositories and services
	middleware := middleware.New(db, config, repos, sessionService)
	authController := authController.New(repos.User, tokenService)
	invitationController := invitationController.New(
		repos.CleanerClient,
		repos.User,
		repos.Home,
		repos.Appointment,
		transactionService,
	)
	guestNotLeftController := guestNotLeftController.New(repos.GuestNotLeft, notificationService)

	// Register jobs with scheduler if enabled
	if config.SchedulerEnabled {
		expiryJob := jobs.NewGuestNotLeftExpiryJob(guestNotLeftController, services.EveryFewMinutes)
		if err := schedulerService.AddJob(expiryJob); err != nil {
			return &App{}, log.Err("failed to register guest-not-left expiry job", err)
		}
		log.Info("Registered guest-not-left expiry job with scheduler")
	}

	app := &App{
		Database:            db,
		Config:              config,
		Middleware:          middleware,
		TransactionService:  transactionService,
		TokenService:        tokenService,
		SessionService:      sessionService,
		NotificationService: notificationService,
		SchedulerService:    schedulerService,
		Repos:               repos,
		Controllers: Controllers{
			Auth:         authController,
			Invitations:  invitationController,
			GuestNotLeft: guestNotLeftController,
		},
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.TransactionService,
		a.TokenService,
		a.SessionService,
		a.NotificationService,
		a.SchedulerService,
		a.Controllers.Auth,
		a.Controllers.Invitations,
		a.Controllers.GuestNotLeft,
		a.Repos.User,
		a.Repos.CleanerClient,
		a.Repos.Home,
		a.Repos.Appointment,
		a.Repos.GuestNotLeft,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.SchedulerService != nil {
		if closeErr := a.SchedulerService.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
