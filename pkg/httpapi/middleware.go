package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	localUserID    = "userID"
	localRequestID = "requestID"
)

// RequestID tags every request so log lines and alerts correlate.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// Identity resolves the caller from the bearer token. A missing or
// broken token is an authorization failure, never a crash.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fail(c, fiber.StatusUnauthorized, MsgNoAuthenticated)
		}
		userID, err := parseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, MsgNoAuthenticated)
		}
		c.Locals(localUserID, userID)
		return c.Next()
	}
}

func callerID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}
