package middleware

import (
	"context"
	"strings"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

// AuthContextKey is used to store auth info in context
type AuthContextKey string

const (
	UserKey        AuthContextKey = "user"
	UserKeyFiber   string         = "User"   // Fiber context key (string)
	ClaimsKeyFiber string         = "Claims" // Fiber context key for token claims
)

// RequireAuth validates bearer JWTs and loads the authenticated user.
func (m *Middleware) RequireAuth(tokenService *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.UserContext()).Function("RequireAuth")

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			log.Info("invalid authorization header format")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token := tokenParts[1]
		if token == "" {
			log.Info("empty token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token required",
			})
		}

		claims, err := tokenService.Validate(token)
		if err != nil {
			log.Info("token validation failed", "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		if claims.ID != "" {
			revoked, err := m.sessions.IsTokenRevoked(c.UserContext(), claims.ID)
			if err != nil {
				log.Warn("revocation check failed", "tokenID", claims.ID, "error", err.Error())
			}
			if revoked {
				log.Info("revoked token rejected", "tokenID", claims.ID)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Token has been revoked",
				})
			}
		}

		user, err := m.userRepo.GetByID(c.Context(), claims.Subject)
		if err != nil {
			log.Info("user not found in database", "userID", claims.Subject, "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		if !user.IsActive {
			log.Info("deactivated user attempted access", "userID", user.ID)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Account is deactivated",
			})
		}

		c.Locals(UserKeyFiber, user)
		c.Locals(ClaimsKeyFiber, claims)

		// Preserve trace ID from the TraceID middleware
		ctx := context.WithValue(c.UserContext(), UserKey, user)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequireAccountType gates a route to one account type. Runs after
// RequireAuth.
func (m *Middleware) RequireAccountType(accountType models.AccountType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if user.AccountType != accountType {
			m.log.Function("RequireAccountType").Info(
				"account type rejected",
				"userID", user.ID,
				"have", user.AccountType,
				"want", accountType,
			)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}

		return c.Next()
	}
}

// GetUser extracts user from Fiber context
func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetClaims extracts the bearer token claims stored by RequireAuth.
func GetClaims(c *fiber.Ctx) *services.TokenClaims {
	claims, ok := c.Locals(ClaimsKeyFiber).(*services.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
