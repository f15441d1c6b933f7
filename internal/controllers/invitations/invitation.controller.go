package invitationController

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/repositories"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Error kinds surfaced to the HTTP boundary. Handlers map these to status
// codes with errors.Is; nothing matches on message text.
var (
	ErrInvalidToken        = errors.New("invitation not found")
	ErrAlreadyAccepted     = errors.New("invitation has already been accepted")
	ErrDeclined            = errors.New("invitation has been declined")
	ErrDuplicateInvitation = errors.New("invitation already sent to this email")
	ErrAlreadyLinked       = errors.New("client is already linked to this cleaner")
	ErrAccountExists       = errors.New("an account already exists for this email, log in instead")
	ErrNotFound            = errors.New("invitation not found or already processed")
	ErrTokenGeneration     = errors.New("could not generate a unique invite token")
)

const tokenGenerationAttempts = 10

// HashFunc hashes a plaintext password. Injected so the acceptance flow
// stays testable without a real KDF.
type HashFunc func(password string) (string, error)

// TxExecutor runs a function inside a database transaction.
type TxExecutor interface {
	Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error
}

type InvitationController struct {
	cleanerClientRepo repositories.CleanerClientRepository
	userRepo          repositories.UserRepository
	homeRepo          repositories.HomeRepository
	appointmentRepo   repositories.AppointmentRepository
	tx                TxExecutor
	log               logger.Logger
}

func New(
	cleanerClientRepo repositories.CleanerClientRepository,
	userRepo repositories.UserRepository,
	homeRepo repositories.HomeRepository,
	appointmentRepo repositories.AppointmentRepository,
	tx TxExecutor,
) *InvitationController {
	return &InvitationController{
		cleanerClientRepo: cleanerClientRepo,
		userRepo:          userRepo,
		homeRepo:          homeRepo,
		appointmentRepo:   appointmentRepo,
		tx:                tx,
		log:               logger.New("invitationController"),
	}
}

type CreateInvitationParams struct {
	CleanerID uuid.UUID       `json:"-"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Phone     *string         `json:"phone,omitempty"`
	Address   *models.Address `json:"address,omitempty"`
	Beds      *int            `json:"beds,omitempty"`
	Baths     *int            `json:"baths,omitempty"`
	Notes     *string         `json:"notes,omitempty"`
}

type AcceptInvitationRequest struct {
	Password           string          `json:"password"`
	Phone              *string         `json:"phone,omitempty"`
	AddressCorrections *models.Address `json:"addressCorrections,omitempty"`
}

type AcceptInvitationResult struct {
	User          *models.User          `json:"user"`
	Home          *models.UserHome      `json:"home,omitempty"`
	CleanerClient *models.CleanerClient `json:"cleanerClient"`
}

type CancelResult struct {
	Success               bool   `json:"success"`
	Message               string `json:"message"`
	CancelledAppointments int    `json:"cancelledAppointments"`
}

// generateInviteToken produces a random 32-character token, retrying
// against the uniqueness check. Exhaustion is practically impossible
// given the entropy, but the loop is bounded anyway.
func (c *InvitationController) generateInviteToken(ctx context.Context) (string, error) {
	log := c.log.Function("generateInviteToken")

	for range tokenGenerationAttempts {
		raw := make([]byte, models.InviteTokenLength/2)
		if _, err := rand.Read(raw); err != nil {
			return "", log.Err("failed to read random bytes", err)
		}
		token := hex.EncodeToString(raw)

		exists, err := c.cleanerClientRepo.TokenExists(ctx, token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}

	return "", ErrTokenGeneration
}

// ValidateInviteToken resolves a token to its invitation with
// annotations. Tokens of the wrong length short-circuit to not-found
// without a storage lookup. A nil result with nil error means not found.
func (c *InvitationController) ValidateInviteToken(
	ctx context.Context,
	token string,
) (*models.TokenValidation, error) {
	if len(token) != models.InviteTokenLength {
		return nil, nil
	}

	cc, err := c.cleanerClientRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	validation := &models.TokenValidation{CleanerClient: cc}
	switch cc.Status {
	case models.StatusPendingInvite:
		// eligible for acceptance, no annotations
	case models.StatusCancelled:
		// still redeemable for signup, but not auto-linked
		validation.IsCancelled = true
	case models.StatusActive, models.StatusInactive:
		validation.IsAlreadyAccepted = true
	case models.StatusDeclined:
		validation.IsExpired = true
	}

	return validation, nil
}

// CreateInvitation opens a new pending invitation. At most one live
// (pending or active) row may exist per cleaner/email pair.
func (c *InvitationController) CreateInvitation(
	ctx context.Context,
	params CreateInvitationParams,
) (*models.CleanerClient, error) {
	log := c.log.Function("CreateInvitation")

	email := models.NormalizeEmail(params.Email)

	existing, err := c.cleanerClientRepo.FindLive(ctx, params.CleanerID, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.StatusActive {
			return nil, ErrAlreadyLinked
		}
		return nil, ErrDuplicateInvitation
	}

	token, err := c.generateInviteToken(ctx)
	if err != nil {
		return nil, err
	}

	name, _ := utils.CleanUTF8(params.Name)

	var addressJSON datatypes.JSON
	if params.Address != nil {
		bytes, err := json.Marshal(params.Address)
		if err != nil {
			return nil, log.Err("failed to serialize invited address", err)
		}
		addressJSON = datatypes.JSON(bytes)
	}

	var notes *string
	if params.Notes != nil {
		cleaned, _ := utils.CleanUTF8(*params.Notes)
		notes = &cleaned
	}

	cc := &models.CleanerClient{
		CleanerID:           params.CleanerID,
		Status:              models.StatusPendingInvite,
		InviteToken:         token,
		InvitedEmail:        email,
		InvitedName:         name,
		InvitedPhone:        params.Phone,
		InvitedAddress:      addressJSON,
		InvitedBeds:         params.Beds,
		InvitedBaths:        params.Baths,
		InvitedNotes:        notes,
		InvitedAt:           time.Now().UTC(),
		AutoPayEnabled:      true,
		AutoScheduleEnabled: true,
	}

	if err := c.cleanerClientRepo.Create(ctx, cc); err != nil {
		return nil, err
	}

	log.Info("invitation created", "cleanerID", params.CleanerID, "invitationID", cc.ID)
	return cc, nil
}

// AcceptInvitation redeems a token into a homeowner account, a zero
// balance bill and, when the snapshot carries a usable address, a home
// record. A cancelled invitation still creates the account but is never
// re-linked to the cleaner who withdrew it.
func (c *InvitationController) AcceptInvitation(
	ctx context.Context,
	token string,
	req AcceptInvitationRequest,
	hashPassword HashFunc,
) (*AcceptInvitationResult, error) {
	log := c.log.Function("AcceptInvitation")

	validation, err := c.ValidateInviteToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if validation == nil {
		return nil, ErrInvalidToken
	}
	if validation.IsAlreadyAccepted {
		return nil, ErrAlreadyAccepted
	}
	if validation.IsExpired {
		return nil, ErrDeclined
	}

	cc := validation.CleanerClient

	exists, err := c.userRepo.ExistsByEmail(ctx, cc.InvitedEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountExists
	}

	firstName, lastName := models.SplitFullName(cc.InvitedName)

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return nil, log.Err("failed to hash password", err)
	}

	phone := req.Phone
	if phone == nil {
		phone = cc.InvitedPhone
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        cc.InvitedEmail,
		AccountType:  models.AccountTypeHomeowner,
		PasswordHash: passwordHash,
		Phone:        phone,
	}

	var home *models.UserHome
	now := time.Now().UTC()

	err = c.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}

		bill := &models.UserBill{UserID: user.ID, Balance: decimal.Zero}
		if err := c.homeRepo.CreateBill(ctx, tx, bill); err != nil {
			return err
		}

		address := c.mergedAddress(cc, req.AddressCorrections)
		if address.Usable() {
			home = &models.UserHome{
				UserID:          user.ID,
				Street:          address.Street,
				City:            address.City,
				State:           address.State,
				Zipcode:         address.Zipcode,
				Beds:            bedsOrDefault(cc.InvitedBeds),
				Baths:           bedsOrDefault(cc.InvitedBaths),
				IsSetupComplete: false,
			}
			if address.Unit != "" {
				unit := address.Unit
				home.Unit = &unit
			}
			if !validation.IsCancelled {
				cleanerID := cc.CleanerID
				home.PreferredCleanerID = &cleanerID
			}
			if err := c.homeRepo.CreateHome(ctx, tx, home); err != nil {
				return err
			}
		}

		if validation.IsCancelled {
			// The cleaner withdrew this invite; the token still creates
			// an account, but the relationship stays severed.
			return c.cleanerClientRepo.StampAccepted(ctx, tx, cc.ID, now)
		}

		updates := map[string]any{
			"client_id":   user.ID,
			"accepted_at": now,
		}
		if home != nil {
			updates["home_id"] = home.ID
		}

		ok, err := c.cleanerClientRepo.UpdateStatusCAS(
			ctx, tx, cc.ID,
			models.StatusPendingInvite, models.StatusActive,
			updates,
		)
		if err != nil {
			return err
		}
		if !ok {
			// another acceptance won the race
			return ErrAlreadyAccepted
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !validation.IsCancelled {
		clientID := user.ID
		cc.ClientID = &clientID
		cc.Status = models.StatusActive
		if home != nil {
			homeID := home.ID
			cc.HomeID = &homeID
		}
	}
	cc.AcceptedAt = &now

	log.Info("invitation accepted", "invitationID", cc.ID, "cancelled", validation.IsCancelled)
	return &AcceptInvitationResult{User: user, Home: home, CleanerClient: cc}, nil
}

// DeclineInvitation is only valid from pending_invite.
func (c *InvitationController) DeclineInvitation(ctx context.Context, token string) error {
	validation, err := c.ValidateInviteToken(ctx, token)
	if err != nil {
		return err
	}
	if validation == nil || validation.CleanerClient.Status != models.StatusPendingInvite {
		return ErrNotFound
	}

	ok, err := c.cleanerClientRepo.UpdateStatusCAS(
		ctx, nil, validation.CleanerClient.ID,
		models.StatusPendingInvite, models.StatusDeclined,
		nil,
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	return nil
}

// ResendInvitation stamps a reminder on a still-pending invitation owned
// by the given cleaner.
func (c *InvitationController) ResendInvitation(
	ctx context.Context,
	cleanerClientID, cleanerID uuid.UUID,
) (*models.CleanerClient, error) {
	cc, err := c.cleanerClientRepo.GetByID(ctx, cleanerClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if cc.CleanerID != cleanerID || cc.Status != models.StatusPendingInvite {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	cc.LastInviteReminderAt = &now
	if err := c.cleanerClientRepo.Save(ctx, cc); err != nil {
		return nil, err
	}

	return cc, nil
}

// GetCleanerClients lists a cleaner's invitations and relationships,
// active first, then newest.
func (c *InvitationController) GetCleanerClients(
	ctx context.Context,
	cleanerID uuid.UUID,
	status *models.CleanerClientStatus,
) ([]models.CleanerClient, error) {
	return c.cleanerClientRepo.ListByCleaner(ctx, cleanerID, status)
}

// CancelOrDeactivate withdraws a pending invitation or winds down an
// active relationship: schedules deactivated, future appointments removed
// with their payout and assignment rows, and the client's bill credited
// for the cancelled work. Foreign ownership reads as not-found so
// existence never leaks across cleaner accounts.
func (c *InvitationController) CancelOrDeactivate(
	ctx context.Context,
	cleanerClientID, cleanerID uuid.UUID,
) (*CancelResult, error) {
	log := c.log.Function("CancelOrDeactivate")

	cc, err := c.cleanerClientRepo.GetByID(ctx, cleanerClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if cc.CleanerID != cleanerID {
		return nil, ErrNotFound
	}

	switch cc.Status {
	case models.StatusPendingInvite:
		ok, err := c.cleanerClientRepo.UpdateStatusCAS(
			ctx, nil, cc.ID,
			models.StatusPendingInvite, models.StatusCancelled,
			nil,
		)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotFound
		}
		return &CancelResult{Success: true, Message: "Invitation cancelled"}, nil

	case models.StatusActive:
		var cancelled int
		err := c.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
			ok, err := c.cleanerClientRepo.UpdateStatusCAS(
				ctx, tx, cc.ID,
				models.StatusActive, models.StatusInactive,
				nil,
			)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotFound
			}

			if _, err := c.appointmentRepo.DeactivateSchedules(ctx, tx, cc.ID); err != nil {
				return err
			}

			appointments, err := c.appointmentRepo.ListFutureAppointments(
				ctx, tx, cc.ID, time.Now().UTC(),
			)
			if err != nil {
				return err
			}

			if len(appointments) == 0 {
				return nil
			}

			ids := make([]uuid.UUID, 0, len(appointments))
			total := decimal.Zero
			for _, appointment := range appointments {
				ids = append(ids, appointment.ID)
				total = total.Add(appointment.Price)
			}

			if err := c.appointmentRepo.DeleteAppointmentsCascade(ctx, tx, ids); err != nil {
				return err
			}

			if cc.ClientID != nil && total.IsPositive() {
				if err := c.homeRepo.AdjustBillBalance(ctx, tx, *cc.ClientID, total.Neg()); err != nil {
					return err
				}
			}

			cancelled = len(appointments)
			return nil
		})
		if err != nil {
			return nil, err
		}

		log.Info(
			"relationship deactivated",
			"invitationID", cc.ID,
			"cancelledAppointments", cancelled,
		)
		return &CancelResult{
			Success:               true,
			Message:               "Client relationship deactivated",
			CancelledAppointments: cancelled,
		}, nil
	}

	return nil, ErrNotFound
}

func (c *InvitationController) mergedAddress(
	cc *models.CleanerClient,
	corrections *models.Address,
) models.Address {
	var address models.Address
	if len(cc.InvitedAddress) > 0 {
		if err := json.Unmarshal(cc.InvitedAddress, &address); err != nil {
			c.log.Function("mergedAddress").
				Warn("failed to parse invited address", "invitationID", cc.ID, "error", err)
		}
	}
	return address.Merge(corrections)
}

func bedsOrDefault(count *int) int {
	if count == nil || *count <= 0 {
		return 1
	}
	return *count
}
