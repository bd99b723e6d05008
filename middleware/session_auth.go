package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/studiocast/rundown/config"
)

// SessionStore should be initialized in main.go and set via SetSessionStore
var SessionStore *session.Store

// SetSessionStore sets the session store for the middleware
func SetSessionStore(store *session.Store) {
	SessionStore = store
}

// SessionAuthRequired ensures that the user is authenticated via session;
// it gates the rendered pages, not the JSON API.
func SessionAuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if SessionStore == nil {
			config.Log.Error("Session store is not initialized")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}

		sess, err := SessionStore.Get(c)
		if err != nil {
			config.Log.WithError(err).Error("Error retrieving session")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}

		userID := sess.Get("user_id")
		if userID == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		return c.Next()
	}
}
