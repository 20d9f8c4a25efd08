package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// principalKey is the fiber locals key the authenticated user ID is stored
// under.
const principalKey = "principalID"

// SessionResolver maps a bearer token to a user ID. An empty user ID means
// the token is unknown or expired.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RequireSession returns a middleware that authenticates the request via
// its bearer token and stores the principal in locals. Requests without a
// valid session are rejected with 401; no downstream state is touched.
func RequireSession(sessions SessionResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		}

		userID, err := sessions.Resolve(c.Context(), token)
		if err != nil {
			return ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Session lookup failed")
		}
		if userID == "" {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session")
		}

		c.Locals(principalKey, userID)
		return c.Next()
	}
}

// PrincipalID returns the authenticated user ID set by RequireSession, or ""
// when the request is unauthenticated.
func PrincipalID(c fiber.Ctx) string {
	if v, ok := c.Locals(principalKey).(string); ok {
		return v
	}
	return ""
}

// bearerToken extracts the token from the Authorization header, falling
// back to X-Session-Token for clients that cannot set Authorization.
func bearerToken(c fiber.Ctx) string {
	auth := c.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(c.Get("X-Session-Token"))
}
