package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// PlayerIDKey is the Locals key EnsurePlayerID stores the caller under. The
// websocket upgrade copies Locals onto the connection, so handlers on either
// side read the same key.
const PlayerIDKey = "playerID"

var ErrMissingPlayerID = errors.New("player ID is required")

// PlayerID returns the caller identified by EnsurePlayerID, or "".
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(PlayerIDKey).(string)
	return id
}

// EnsurePlayerID identifies the caller from the X-Player-ID header, falling
// back to the playerId query parameter used by browser websocket clients
// that cannot set headers.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PlayerID(c) != "" {
			return c.Next()
		}

		id := strings.TrimSpace(c.Get("X-Player-ID"))
		if id == "" {
			id = strings.TrimSpace(c.Query("playerId"))
		}
		if id == "" {
			log.Debugf("rejecting %s %s: %v", c.Method(), c.Path(), ErrMissingPlayerID)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrMissingPlayerID.Error(),
			})
		}

		c.Locals(PlayerIDKey, id)
		return c.Next()
	}
}
