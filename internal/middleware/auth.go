// Package middleware provides authentication, logging, tracing and rate limiting for the HTTP API.
package middleware

import (
	"context"
	"strings"

	"qawala/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// LocalUserID is the Fiber locals key holding the resolved identity (the provider UID).
const LocalUserID = "userID"

// Authenticator verifies identity-provider tokens. It never issues tokens.
type Authenticator struct {
	secret   []byte
	issuer   string
	audience string
	redis    *redis.Client
}

// NewAuthenticator builds an Authenticator. Empty issuer/audience skip those checks.
// A nil redis client disables the revocation lookup.
func NewAuthenticator(secret, issuer, audience string, rdb *redis.Client) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		redis:    rdb,
	}
}

// ParseToken validates a raw token and returns its subject.
func (a *Authenticator) ParseToken(ctx context.Context, tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", models.NewUnauthorizedError("Invalid or expired token")
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", models.NewUnauthorizedError("Invalid subject claim")
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" && a.redis != nil {
		revoked, err := a.redis.Exists(ctx, "blacklist:"+jti).Result()
		if err == nil && revoked > 0 {
			return "", models.NewUnauthorizedError("Token has been revoked")
		}
	}

	return sub, nil
}

// Required is a middleware that enforces authentication for protected routes.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authorization required"))
		}

		userID, err := a.ParseToken(c.UserContext(), tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		setUser(c, userID)
		return c.Next()
	}
}

// Optional lets requests without a bearer token through anonymously. A bearer
// token that fails verification is rejected with 401 so a stale session is not
// mistaken for a signed-out viewer.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}
		userID, err := a.ParseToken(c.UserContext(), tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		setUser(c, userID)
		return c.Next()
	}
}

// UserID returns the resolved identity for the request, or "" for anonymous viewers.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(LocalUserID).(string)
	return uid
}

func setUser(c *fiber.Ctx, userID string) {
	c.Locals(LocalUserID, userID)
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
