package services

import (
	"fmt"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/config"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims are the JWT claims carried by every bearer token.
type TokenClaims struct {
	AccountType models.AccountType `json:"accountType"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the HS256 bearer tokens used by the
// auth middleware.
type TokenService struct {
	secret []byte
	expiry time.Duration
	log    logger.Logger
}

func NewTokenService(config config.Config) (*TokenService, error) {
	log := logger.New("tokenService")

	if config.JWTSecret == "" {
		return nil, log.Error("JWT secret is not configured")
	}

	expiry := time.Duration(config.JWTExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 72 * time.Hour
	}

	return &TokenService{
		secret: []byte(config.JWTSecret),
		expiry: expiry,
		log:    log,
	}, nil
}

func (s *TokenService) Generate(user *models.User) (string, error) {
	log := s.log.Function("Generate")

	now := time.Now()
	claims := TokenClaims{
		AccountType: user.AccountType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", log.Err("failed to sign token", err, "userID", user.ID)
	}

	return signed, nil
}

func (s *TokenService) Validate(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	return claims, nil
}
