package handlers

import (
	"errors"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/app"
	guestNotLeftController "github.com/Gkimbo/cleaningCompany-sub025/internal/controllers/guestnotleft"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/handlers/middleware"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type GuestNotLeftHandler struct {
	Handler
	guestNotLeft *guestNotLeftController.GuestNotLeftController
	tokenService *services.TokenService
}

func NewGuestNotLeftHandler(app app.App, router fiber.Router) *GuestNotLeftHandler {
	log := logger.New("handlers").File("guest_not_left_handler")
	return &GuestNotLeftHandler{
		guestNotLeft: app.Controllers.GuestNotLeft,
		tokenService: app.TokenService,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *GuestNotLeftHandler) Register() {
	guestNotLeft := h.router.Group(
		"/guest-not-left",
		h.middleware.RequireAuth(h.tokenService),
		h.middleware.RequireAccountType(models.AccountTypeCleaner),
	)

	guestNotLeft.Post("/:assignmentId/report", h.reportGuestNotLeft)
	guestNotLeft.Post("/:assignmentId/clear", h.clearGuestNotLeftFlag)
}

type reportGuestNotLeftRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

func (h *GuestNotLeftHandler) reportGuestNotLeft(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("guest_not_left_handler").Function("reportGuestNotLeft")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	assignmentID, err := uuid.Parse(c.Params("assignmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid assignment ID",
		})
	}

	var req reportGuestNotLeftRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.guestNotLeft.ReportGuestNotLeft(
		c.Context(),
		assignmentID,
		user.ID,
		guestNotLeftController.Location{Latitude: req.Latitude, Longitude: req.Longitude},
		req.Notes,
	)
	if err != nil {
		switch {
		case errors.Is(err, guestNotLeftController.ErrEmployeeNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Employee record not found",
			})
		case errors.Is(err, guestNotLeftController.ErrAssignmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Assignment not found or job already started",
			})
		case errors.Is(err, guestNotLeftController.ErrNotAssigned):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Not assigned to this job",
			})
		}
		_ = log.Err("Failed to record guest-not-left report", err, "assignmentID", assignmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *GuestNotLeftHandler) clearGuestNotLeftFlag(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("guest_not_left_handler").Function("clearGuestNotLeftFlag")

	assignmentID, err := uuid.Parse(c.Params("assignmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid assignment ID",
		})
	}

	if err := h.guestNotLeft.ClearGuestNotLeftFlag(c.Context(), assignmentID); err != nil {
		if errors.Is(err, guestNotLeftController.ErrAssignmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Assignment not found",
			})
		}
		_ = log.Err("Failed to clear guest-not-left flag", err, "assignmentID", assignmentID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear flag",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Guest-not-left flag cleared",
	})
}
