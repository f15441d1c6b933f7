package handlers

import (
	"encoding/json"
	"errors"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/app"
	authController "github.com/Gkimbo/cleaningCompany-sub025/internal/controllers/auth"
	invitationController "github.com/Gkimbo/cleaningCompany-sub025/internal/controllers/invitations"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/handlers/middleware"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// authPasswordHasher is the production hasher for invite acceptance.
var authPasswordHasher invitationController.HashFunc = authController.HashPassword

type CleanerClientsHandler struct {
	Handler
	invitations  *invitationController.InvitationController
	tokenService *services.TokenService
}

func NewCleanerClientsHandler(app app.App, router fiber.Router) *CleanerClientsHandler {
	log := logger.New("handlers").File("cleaner_clients_handler")
	return &CleanerClientsHandler{
		invitations:  app.Controllers.Invitations,
		tokenService: app.TokenService,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CleanerClientsHandler) Register() {
	// Public token endpoints, reached from the invite email before the
	// visitor has an account.
	invitations := h.router.Group("/invitations")
	invitations.Get("/:token", h.validateToken)
	invitations.Post("/:token/accept", h.acceptInvitation)
	invitations.Post("/:token/decline", h.declineInvitation)

	clients := h.router.Group(
		"/cleaner-clients",
		h.middleware.RequireAuth(h.tokenService),
		h.middleware.RequireAccountType(models.AccountTypeCleaner),
	)
	clients.Post("", h.createInvitation)
	clients.Get("", h.getCleanerClients)
	clients.Post("/:id/resend", h.resendInvitation)
	clients.Delete("/:id", h.cancelOrDeactivate)
}

// invitationPreview is the public projection of an invitation. The token
// grants access to the snapshot but never to the relationship internals.
type invitationPreview struct {
	CleanerName  string          `json:"cleanerName"`
	InvitedEmail string          `json:"invitedEmail"`
	InvitedName  string          `json:"invitedName"`
	InvitedPhone *string         `json:"invitedPhone,omitempty"`
	Address      *models.Address `json:"address,omitempty"`
	Beds         *int            `json:"beds,omitempty"`
	Baths        *int            `json:"baths,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
}

func previewOf(cc *models.CleanerClient) invitationPreview {
	preview := invitationPreview{
		InvitedEmail: cc.InvitedEmail,
		InvitedName:  cc.InvitedName,
		InvitedPhone: cc.InvitedPhone,
		Beds:         cc.InvitedBeds,
		Baths:        cc.InvitedBaths,
		Notes:        cc.InvitedNotes,
	}

	if cc.Cleaner != nil {
		preview.CleanerName = cc.Cleaner.FullName
	}

	if len(cc.InvitedAddress) > 0 {
		var address models.Address
		if err := json.Unmarshal(cc.InvitedAddress, &address); err == nil {
			preview.Address = &address
		}
	}

	return preview
}

func (h *CleanerClientsHandler) validateToken(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("cleaner_clients_handler").Function("validateToken")

	validation, err := h.invitations.ValidateInviteToken(c.Context(), c.Params("token"))
	if err != nil {
		_ = log.Err("Failed to validate invite token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to validate invitation",
		})
	}

	if validation == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"valid": false,
			"error": "Invitation not found",
		})
	}

	if validation.IsAlreadyAccepted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"valid": false,
			"error": "Invitation has already been accepted",
		})
	}

	if validation.IsExpired {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"valid": false,
			"error": "Invitation has been declined",
		})
	}

	// Cancelled invitations still read as valid: the visitor may create
	// an account, it just will not link back to the cleaner.
	return c.JSON(fiber.Map{
		"valid":       true,
		"isCancelled": validation.IsCancelled,
		"invitation":  previewOf(validation.CleanerClient),
	})
}

func (h *CleanerClientsHandler) acceptInvitation(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("cleaner_clients_handler").Function("acceptInvitation")

	var req invitationController.AcceptInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Password is required",
		})
	}

	result, err := h.invitations.AcceptInvitation(
		c.Context(), c.Params("token"), req, authPasswordHasher,
	)
	if err != nil {
		switch {
		case errors.Is(err, invitationController.ErrInvalidToken):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invitation not found",
			})
		case errors.Is(err, invitationController.ErrAlreadyAccepted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Invitation has already been accepted",
			})
		case errors.Is(err, invitationController.ErrDeclined):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invitation has been declined",
			})
		case errors.Is(err, invitationController.ErrAccountExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "An account already exists for this email, log in instead",
			})
		}
		_ = log.Err("Failed to accept invitation", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to accept invitation",
		})
	}

	token, err := h.tokenService.Generate(result.User)
	if err != nil {
		// The account exists; the client can still sign in normally.
		_ = log.Err("Failed to issue token after acceptance", err, "userID", result.User.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":         token,
		"user":          result.User,
		"home":          result.Home,
		"cleanerClient": result.CleanerClient,
	})
}

func (h *CleanerClientsHandler) declineInvitation(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("cleaner_clients_handler").Function("declineInvitation")

	err := h.invitations.DeclineInvitation(c.Context(), c.Params("token"))
	if err != nil {
		if errors.Is(err, invitationController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invitation not found or already processed",
			})
		}
		_ = log.Err("Failed to decline invitation", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to decline invitation",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Invitation declined",
	})
}

func (h *CleanerClientsHandler) createInvitation(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("cleaner_clients_handler").Function("createInvitation")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var params invitationController.CreateInvitationParams
	if err := c.BodyParser(&params); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if params.Email == "" || params.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and name are required",
		})
	}

	params.CleanerID = user.ID

	invitation, err := h.invitations.CreateInvitation(c.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, invitationController.ErrAlreadyLinked):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Client is already linked to this cleaner",
			})
		case errors.Is(err, invitationController.ErrDuplicateInvitation):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Invitation already sent to this email",
			})
		}
		_ = log.Err("Failed to create invitation", err, "cleanerID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create invitation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"cleanerClient": invitation,
	})
}

func (h *CleanerClientsHandler) getCleanerClients(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("cleaner_clients_handler").Function("getCleanerClients")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var status *models.CleanerClientStatus
	if raw := c.Query("status"); raw != "" {
		parsed := models.CleanerClientStatus(raw)
		if !parsed.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid status filter",
			})
		}
		status = &parsed
	}

	clients, err := h.invitations.GetCleanerClients(c.Context(), user.ID, status)
	if err != nil {
		_ = log.Err("Failed to list cleaner clients", err, "cleanerID", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list clients",
		})
	}

	return c.JSON(fiber.Map{
		"cleanerClients": clients,
	})
}

func (h *CleanerClientsHandler) resendInvitation(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("cleaner_clients_handler").Function("resendInvitation")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid invitation ID",
		})
	}

	invitation, err := h.invitations.ResendInvitation(c.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, invitationController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invitation not found",
			})
		}
		_ = log.Err("Failed to resend invitation", err, "invitationID", id)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resend invitation",
		})
	}

	return c.JSON(fiber.Map{
		"message":       "Invitation resent",
		"cleanerClient": invitation,
	})
}

func (h *CleanerClientsHandler) cancelOrDeactivate(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("cleaner_clients_handler").Function("cancelOrDeactivate")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid invitation ID",
		})
	}

	result, err := h.invitations.CancelOrDeactivate(c.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, invitationController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invitation not found",
			})
		}
		_ = log.Err("Failed to cancel invitation", err, "invitationID", id)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel invitation",
		})
	}

	return c.JSON(result)
}
