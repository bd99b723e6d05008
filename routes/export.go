package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studiocast/rundown/config"
	"github.com/studiocast/rundown/export"
	"github.com/studiocast/rundown/models"
)

// ExportRundown archives an approved rundown's script to R2. Owner or
// admin only; drafts and in-review rundowns cannot be exported.
func ExportRundown(c *fiber.Ctx) error {
	a, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	r, err := svc.GetRundown(a, id)
	if err != nil {
		return respondError(c, err)
	}
	if a.ID != r.CreatedBy && !a.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the owner or an admin may export a rundown",
		})
	}
	if r.Status != models.StatusApproved {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Only approved rundowns can be exported",
		})
	}

	key, err := export.Archive(c.Context(), r)
	if err != nil {
		config.Log.WithError(err).Error("Failed to archive rundown script")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export rundown",
		})
	}
	return c.JSON(fiber.Map{"key": key})
}
