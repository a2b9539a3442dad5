// handlers/respond.go - Shared request parsing and error translation
package handlers

import (
	"strconv"
	"worktrack/database"
	"worktrack/models"
	"worktrack/services"

	"github.com/gofiber/fiber/v2"
)

// fail translates a service error into the JSON error body.
func fail(c *fiber.Ctx, err error) error {
	if serr, ok := services.AsError(err); ok {
		return c.Status(serr.Status).JSON(fiber.Map{"message": serr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}

// paramID parses a numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, services.Invalid("Invalid %s", name)
	}
	return uint(id), nil
}

// queryUint parses an optional numeric query parameter.
func queryUint(c *fiber.Ctx, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	v := uint(id)
	return &v
}

// currentUser resolves an explicit caller id into its account.
func currentUser(id *uint) (*models.User, error) {
	if id == nil {
		return nil, services.Invalid("Missing user_id")
	}
	var user models.User
	if err := database.GetDB().First(&user, *id).Error; err != nil {
		return nil, services.NotFound("User not found")
	}
	return &user, nil
}
