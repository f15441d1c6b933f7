package middleware

import (
	"github.com/Gkimbo/cleaningCompany-sub025/config"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/database"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/repositories"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type Middleware struct {
	DB       database.DB
	userRepo repositories.UserRepository
	sessions *services.SessionService
	Config   config.Config
	log      logger.Logger
}

func New(
	db database.DB,
	config config.Config,
	repos repositories.Repository,
	sessions *services.SessionService,
) Middleware {
	log := logger.New("middleware")

	return Middleware{
		DB:       db,
		userRepo: repos.User,
		sessions: sessions,
		Config:   config,
		log:      log,
	}
}
