package handlers

import (
	"errors"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/app"
	authController "github.com/Gkimbo/cleaningCompany-sub025/internal/controllers/auth"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/handlers/middleware"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController *authController.AuthController
	tokenService   *services.TokenService
	sessions       *services.SessionService
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		authController: app.Controllers.Auth,
		tokenService:   app.TokenService,
		sessions:       app.SessionService,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	// Public endpoints
	auth.Post("/login", h.login)
	auth.Get("/account-types", h.getAccountTypes)

	// Protected endpoints
	protected := auth.Group("/", h.middleware.RequireAuth(h.tokenService))
	protected.Get("/me", h.getCurrentUser)
	protected.Post("/logout", h.logout)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("auth_handler").Function("login")

	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Login == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	result, err := h.authController.Login(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authController.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		case errors.Is(err, authController.ErrAccountInactive):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Account is deactivated",
			})
		case errors.Is(err, authController.ErrInvalidAccountType):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid account type",
			})
		}
		_ = log.Err("Login failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	return c.JSON(result)
}

func (h *AuthHandler) getAccountTypes(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("auth_handler").Function("getAccountTypes")

	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email parameter is required",
		})
	}

	types, err := h.authController.AccountTypes(c.Context(), email)
	if err != nil {
		_ = log.Err("Failed to list account types", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list account types",
		})
	}

	return c.JSON(fiber.Map{
		"accountTypes": types,
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("auth_handler").Function("logout")

	claims := middleware.GetClaims(c)
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if err := h.sessions.RevokeToken(c.UserContext(), claims.ID, claims.ExpiresAt.Time); err != nil {
		_ = log.Err("Failed to revoke token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log out",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

func (h *AuthHandler) getCurrentUser(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	profile := user.ToProfile()
	return c.JSON(fiber.Map{
		"user": profile,
	})
}
