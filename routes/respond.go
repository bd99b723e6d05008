package routes

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/studiocast/rundown/rundown"
)

var validate = validator.New()

// respondError maps a core error kind to an HTTP status so clients can
// render a message without parsing free text. Anything that is not a
// *rundown.Error is an internal failure.
func respondError(c *fiber.Ctx, err error) error {
	var opErr *rundown.Error
	if !errors.As(err, &opErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}

	status := fiber.StatusBadRequest
	switch opErr.Kind {
	case rundown.KindNotFound:
		status = fiber.StatusNotFound
	case rundown.KindPermissionDenied, rundown.KindSelfApproval:
		status = fiber.StatusForbidden
	case rundown.KindCapacityExceeded, rundown.KindDuplicateName,
		rundown.KindAlreadyLinked, rundown.KindProtectedSegment:
		status = fiber.StatusConflict
	case rundown.KindEmptyRundown:
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{
		"error": opErr.Message,
		"kind":  string(opErr.Kind),
	})
}

// validationErrors flattens validator/v10 failures into readable strings.
func validationErrors(err error) []string {
	var out []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			msg := fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
			}
			out = append(out, msg)
		}
	}
	return out
}

func respondInvalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Invalid request body",
		"details": validationErrors(err),
	})
}
