// handlers/auth.go - Registration, login, and password management
package handlers

import (
	"worktrack/database"
	"worktrack/models"
	"worktrack/services"
	"worktrack/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	userService *services.UserService
	validate    = validator.New()
)

// InitAuthHandlers initializes the user service
func InitAuthHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitAuthHandlers")
	}
	userService = services.NewUserService(db)
}

// Register creates a new account with an auto-generated employee code
// POST /api/auth/register
func Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Missing required fields: name, email, password"})
	}

	result, serr := userService.Register(req)
	if serr != nil {
		return fail(c, serr)
	}

	user := result.User
	return c.Status(201).JSON(fiber.Map{
		"message": "User registered successfully",
		"user": fiber.Map{
			"id":            user.ID,
			"name":          user.Name,
			"email":         user.Email,
			"role":          user.Role,
			"employee_code": user.EmployeeCode,
			"group_id":      user.GroupID,
		},
		"next_step": result.NextStep,
	})
}

// Login verifies credentials
// POST /api/auth/login
func Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, serr := userService.Login(req.Email, req.Password)
	if serr != nil {
		return fail(c, serr)
	}

	var groupInfo interface{}
	if user.GroupID != nil {
		var group models.Group
		if err := database.GetDB().First(&group, *user.GroupID).Error; err == nil {
			groupInfo = fiber.Map{
				"id":          group.ID,
				"name":        group.Name,
				"description": group.Description,
			}
		}
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user": fiber.Map{
			"id":            user.ID,
			"name":          user.Name,
			"email":         user.Email,
			"role":          user.Role,
			"employee_code": user.EmployeeCode,
			"group":         groupInfo,
			"is_active":     user.IsActive,
			"created_at":    utils.FormatTime(user.CreatedAt),
		},
	})
}

// Logout is a stateless placeholder
// POST /api/auth/logout
func Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

// ChangePassword verifies the current password before updating
// POST /api/auth/change-password
func ChangePassword(c *fiber.Ctx) error {
	var req struct {
		UserID          *uint  `json:"user_id"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.UserID == nil {
		return c.Status(400).JSON(fiber.Map{"message": "Missing required fields"})
	}

	if serr := userService.ChangePassword(*req.UserID, req.CurrentPassword, req.NewPassword); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// ForgotPassword acknowledges a reset request
// POST /api/auth/forgot-password
func ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	if serr := userService.ForgotPassword(req.Email); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{
		"message": "Password reset instructions sent to your email",
		"note":    "Email service not implemented yet",
	})
}

// ValidateSession is a liveness placeholder
// GET /api/auth/validate
func ValidateSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Session valid"})
}
