package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studiocast/rundown/config"
	"github.com/studiocast/rundown/database"
	"github.com/studiocast/rundown/models"
)

// Dashboard renders the signed-in user's rundown list: their own episodes
// plus, for reviewers, everything waiting in the submitted queue.
func Dashboard(c *fiber.Ctx) error {
	sess, err := store.Get(c)
	if err != nil {
		config.Log.WithError(err).Error("Error retrieving session")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	userID, ok := sess.Get("user_id").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		config.Log.WithError(err).Error("Error fetching user")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	rundowns, err := svc.ListRundowns(user.Actor())
	if err != nil {
		config.Log.WithError(err).Error("Error listing rundowns")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	return c.Render("dashboard", fiber.Map{
		"Name":     user.Name,
		"Email":    user.Email,
		"Picture":  user.Picture,
		"Role":     user.Role,
		"Rundowns": rundowns,
	})
}
