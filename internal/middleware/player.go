package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// Locals keys set by this package.
const (
	localPlayerID   = "playerID"
	localWSGameID   = "wsGameID"
	localWSPlayerID = "wsPlayerID"
)

func reject(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// EnsurePlayerID identifies the caller by the X-Player-ID header, or the
// playerId query parameter for clients that cannot set headers (browser
// websockets). Requests without either are rejected with 401.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PlayerID(c) != "" {
			return c.Next()
		}

		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}
		if playerID == "" {
			return reject(c, fiber.StatusUnauthorized, "Player ID is required. Please ensure client is properly initialized.")
		}

		c.Locals(localPlayerID, playerID)
		return c.Next()
	}
}

// PlayerID returns the id stored by EnsurePlayerID, or "" when absent.
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(localPlayerID).(string)
	return id
}
