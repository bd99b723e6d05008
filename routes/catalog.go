package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studiocast/rundown/database"
	"github.com/studiocast/rundown/models"
)

// ListCatalogStories returns the approved stories available for linking.
// The catalog itself is curated upstream; this endpoint is read-only.
func ListCatalogStories(c *fiber.Ctx) error {
	var stories []models.CatalogStory
	err := database.DB.
		Where("status = ?", models.CatalogStatusApproved).
		Order("title ASC").
		Find(&stories).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}
	return c.JSON(stories)
}
