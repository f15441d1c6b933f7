package services

import (
	"context"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/database"

	logger "github.com/Bparsons0904/goLogger"
)

const revokedTokenKeyPrefix = "revoked:"

// SessionService tracks revoked bearer tokens in the session cache DB.
// A logged-out token's ID is held until the token itself expires, after
// which the entry lapses with it.
type SessionService struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewSessionService(cache database.CacheClient) *SessionService {
	return &SessionService{
		cache: cache,
		log:   logger.New("sessionService"),
	}
}

// RevokeToken marks a token ID as revoked until the token's own expiry.
// Tokens already past expiry need no entry.
func (s *SessionService) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	log := s.log.Function("RevokeToken")

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := database.NewCacheBuilder(s.cache, revokedTokenKeyPrefix+tokenID).
		WithContext(ctx).
		WithValue("revoked").
		WithTTL(ttl).
		Set(); err != nil {
		return log.Err("failed to store token revocation", err, "tokenID", tokenID)
	}

	log.Info("token revoked", "tokenID", tokenID)
	return nil
}

// IsTokenRevoked reports whether the token ID has been revoked.
func (s *SessionService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return database.NewCacheBuilder(s.cache, revokedTokenKeyPrefix+tokenID).
		WithContext(ctx).
		Exists()
}
