package handlers

import (
	"github.com/Gkimbo/cleaningCompany-sub025/internal/app"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()

	v1 := api.Group("/v1")
	NewCleanerClientsHandler(*app, v1).Register()
	NewGuestNotLeftHandler(*app, v1).Register()

	return nil
}
