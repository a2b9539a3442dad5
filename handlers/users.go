// handlers/users.go - User administration and profiles
package handlers

import (
	"worktrack/services"

	"github.com/gofiber/fiber/v2"
)

// GetAllUsers lists users with optional filters
// GET /api/users/all
func GetAllUsers(c *fiber.Ctx) error {
	filters := services.UserListFilters{
		Role:         c.Query("role"),
		GroupID:      queryUint(c, "group_id"),
		EmployeeCode: c.Query("employee_code"),
		Name:         c.Query("name"),
	}

	users, serr := userService.List(filters)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(users)
}

// PromoteUser raises a user to leader
// PUT /api/users/promote/:id
func PromoteUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		AdminID *uint `json:"admin_id"`
	}
	c.BodyParser(&req)

	msg, serr := userService.Promote(req.AdminID, userID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// DemoteUser lowers a leader to employee
// PUT /api/users/demote/:id
func DemoteUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		AdminID *uint `json:"admin_id"`
	}
	c.BodyParser(&req)

	msg, serr := userService.Demote(req.AdminID, userID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// UpdateUser applies a partial profile update
// PUT /api/users/:id
func UpdateUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req services.UserUpdateInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	if serr := userService.Update(userID, req); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

// CreateUser provisions an account directly
// POST /api/users/create
func CreateUser(c *fiber.Ctx) error {
	var req services.AdminCreateInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, serr := userService.AdminCreate(req)
	if serr != nil {
		return fail(c, serr)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "User created successfully",
		"user": fiber.Map{
			"id":            user.ID,
			"name":          user.Name,
			"email":         user.Email,
			"role":          user.Role,
			"employee_code": user.EmployeeCode,
			"group_id":      user.GroupID,
		},
	})
}

// DeleteUser removes an account
// DELETE /api/users/:id
func DeleteUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		AdminID *uint `json:"admin_id"`
	}
	c.BodyParser(&req)

	msg, serr := userService.Delete(req.AdminID, userID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// GetSystemStats returns the system-wide overview
// GET /api/users/system-stats
func GetSystemStats(c *fiber.Ctx) error {
	stats, err := userService.SystemStatsOverview()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// GetEmployees lists assignable employees
// GET /api/users/employees
func GetEmployees(c *fiber.Ctx) error {
	employees, err := userService.Employees()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(employees)
}

// GetAvailableLeaders lists leaders and admins with leadership state
// GET /api/users/available-leaders
func GetAvailableLeaders(c *fiber.Ctx) error {
	leaders, err := userService.AvailableLeaders()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(leaders)
}

// GetLeaders lists leaders with activity counters
// GET /api/users/leaders
func GetLeaders(c *fiber.Ctx) error {
	leaders, err := userService.Leaders()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(leaders)
}

// GetUserDetail returns one user with statistics
// GET /api/users/:id
func GetUserDetail(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	detail, serr := userService.Detail(userID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(detail)
}

// GetUserProfile returns the full profile with recent tasks
// GET /api/users/profile/:id
func GetUserProfile(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	profile, serr := userService.Profile(userID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(profile)
}
