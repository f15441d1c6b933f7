package authController

import (
	"context"
	"errors"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/repositories"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrInvalidAccountType = errors.New("invalid account type")
)

// LoginResult either carries a token or asks the client to pick an
// account type when the email maps to more than one account.
type LoginResult struct {
	Token                    string               `json:"token,omitempty"`
	User                     *models.UserProfile  `json:"user,omitempty"`
	RequiresAccountSelection bool                 `json:"requiresAccountSelection,omitempty"`
	AccountTypes             []models.AccountType `json:"accountTypes,omitempty"`
}

type AuthController struct {
	userRepo     repositories.UserRepository
	tokenService *services.TokenService
	log          logger.Logger
}

func New(userRepo repositories.UserRepository, tokenService *services.TokenService) *AuthController {
	return &AuthController{
		userRepo:     userRepo,
		tokenService: tokenService,
		log:          logger.New("authController"),
	}
}

// Login authenticates by email and password. When the email is tied to
// multiple account types and none was specified, the caller gets a
// selection prompt instead of a token; credentials are not checked until
// the account is unambiguous.
func (c *AuthController) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	log := c.log.Function("Login")

	var user *models.User

	if req.AccountType != "" {
		if !req.AccountType.Valid() {
			return nil, ErrInvalidAccountType
		}

		found, err := c.userRepo.GetByEmailAndType(ctx, req.Login, req.AccountType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		user = found
	} else {
		users, err := c.userRepo.ListByEmail(ctx, req.Login)
		if err != nil {
			return nil, err
		}

		switch len(users) {
		case 0:
			return nil, ErrInvalidCredentials
		case 1:
			user = &users[0]
		default:
			types := make([]models.AccountType, 0, len(users))
			for _, u := range users {
				types = append(types, u.AccountType)
			}
			return &LoginResult{
				RequiresAccountSelection: true,
				AccountTypes:             types,
			}, nil
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := c.userRepo.Update(ctx, user); err != nil {
		log.Warn("failed to record login time", "userID", user.ID, "error", err)
	}

	token, err := c.tokenService.Generate(user)
	if err != nil {
		return nil, err
	}

	profile := user.ToProfile()
	log.Info("user logged in", "userID", user.ID, "accountType", user.AccountType)

	return &LoginResult{Token: token, User: &profile}, nil
}

// AccountTypes lists the account types registered for an email. Backs the
// sign-in form's debounced pre-flight lookup.
func (c *AuthController) AccountTypes(ctx context.Context, email string) ([]models.AccountType, error) {
	users, err := c.userRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	types := make([]models.AccountType, 0, len(users))
	for _, u := range users {
		types = append(types, u.AccountType)
	}
	return types, nil
}

// HashPassword is the bcrypt hasher injected into the invitation
// acceptance flow.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
