package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade admits only websocket handshakes from an identified player.
// With requireGame the :gameId route param must be set too. Both ids are
// copied into the locals the upgraded connection can read (see ConnIDs).
func WebSocketUpgrade(requireGame bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		playerID := PlayerID(c)
		if playerID == "" {
			return reject(c, fiber.StatusUnauthorized, "player ID is required")
		}
		gameID := c.Params("gameId")
		if requireGame && gameID == "" {
			return reject(c, fiber.StatusBadRequest, "game ID is required")
		}

		c.Locals(localWSGameID, gameID)
		c.Locals(localWSPlayerID, playerID)
		return c.Next()
	}
}

// ConnIDs returns the game and player ids WebSocketUpgrade stored for conn.
// The game id is "" on routes without one.
func ConnIDs(conn *websocket.Conn) (gameID, playerID string) {
	gameID, _ = conn.Locals(localWSGameID).(string)
	playerID, _ = conn.Locals(localWSPlayerID).(string)
	return gameID, playerID
}
