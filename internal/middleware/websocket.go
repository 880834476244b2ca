package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade passes only handshakes from an identified player; it must
// run after EnsurePlayerID. Plain HTTP requests get 426.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		id := PlayerID(c)
		if id == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrMissingPlayerID.Error(),
			})
		}
		log.Debugf("websocket handshake from %s on %s", id, c.Path())
		return c.Next()
	}
}
