// handlers/groups.go - Group membership and join requests
package handlers

import (
	"worktrack/database"
	"worktrack/services"

	"github.com/gofiber/fiber/v2"
)

var groupService *services.GroupService

// InitGroupHandlers initializes the group service
func InitGroupHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitGroupHandlers")
	}
	groupService = services.NewGroupService(db)
}

// CreateGroup creates a group, optionally with an initial leader
// POST /api/groups/create
func CreateGroup(c *fiber.Ctx) error {
	var req struct {
		AdminID     *uint  `json:"admin_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		LeaderID    *uint  `json:"leader_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	caller, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	group, serr := groupService.Create(caller, req.Name, req.Description, req.LeaderID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "Group created successfully",
		"group": fiber.Map{
			"id":          group.ID,
			"name":        group.Name,
			"description": group.Description,
			"leader_id":   group.LeaderID,
		},
	})
}

// GetAllGroups lists groups with membership statistics
// GET /api/groups/all
func GetAllGroups(c *fiber.Ctx) error {
	groups, err := groupService.List()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(groups)
}

// AssignLeader sets a group's leader
// POST /api/groups/assign-leader
func AssignLeader(c *fiber.Ctx) error {
	var req struct {
		AdminID  *uint `json:"admin_id"`
		GroupID  uint  `json:"group_id"`
		LeaderID uint  `json:"leader_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	caller, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	msg, serr := groupService.AssignLeader(caller, req.GroupID, req.LeaderID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// JoinGroup puts an employee directly into a group
// POST /api/groups/join
func JoinGroup(c *fiber.Ctx) error {
	var req struct {
		UserID  *uint `json:"user_id"`
		GroupID uint  `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, err := currentUser(req.UserID)
	if err != nil {
		return fail(c, err)
	}

	msg, serr := groupService.Join(user, req.GroupID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// LeaveGroup removes the caller from their group
// POST /api/groups/leave
func LeaveGroup(c *fiber.Ctx) error {
	var req struct {
		UserID *uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, err := currentUser(req.UserID)
	if err != nil {
		return fail(c, err)
	}

	msg, serr := groupService.Leave(user)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// AddMember places an employee into a group
// POST /api/groups/add-member
func AddMember(c *fiber.Ctx) error {
	var req struct {
		AdminID *uint `json:"admin_id"`
		GroupID uint  `json:"group_id"`
		UserID  uint  `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	caller, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	msg, serr := groupService.AddMember(caller, req.GroupID, req.UserID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// RemoveMember takes a user out of their group
// POST /api/groups/remove-member
func RemoveMember(c *fiber.Ctx) error {
	var req struct {
		AdminID *uint `json:"admin_id"`
		UserID  uint  `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	caller, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	msg, serr := groupService.RemoveMember(caller, req.UserID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// GetGroupDetail returns a group with members and statistics
// GET /api/groups/:id
func GetGroupDetail(c *fiber.Ctx) error {
	groupID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	detail, serr := groupService.Detail(groupID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(detail)
}

// UpdateGroup edits a group's fields and leadership
// PUT /api/groups/:id
func UpdateGroup(c *fiber.Ctx) error {
	groupID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		AdminID     *uint   `json:"admin_id"`
		Name        *string `json:"name"`
		Description *string `json:"description"`
		LeaderID    *uint   `json:"leader_id"`
		ClearLeader bool    `json:"clear_leader"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	caller, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	input := services.GroupUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		LeaderID:    req.LeaderID,
		ClearLeader: req.ClearLeader,
	}
	if serr := groupService.Update(caller, groupID, input); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": "Group updated successfully"})
}

// DeleteGroup removes an empty group
// DELETE /api/groups/:id
func DeleteGroup(c *fiber.Ctx) error {
	groupID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		AdminID *uint `json:"admin_id"`
	}
	c.BodyParser(&req)

	caller, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	msg, serr := groupService.Delete(caller, groupID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// GetAvailableGroups lists groups open to joining
// GET /api/groups/available
func GetAvailableGroups(c *fiber.Ctx) error {
	groups, err := groupService.Available()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(groups)
}

// PromoteMember raises a member to lead their group
// POST /api/groups/promote-member
func PromoteMember(c *fiber.Ctx) error {
	var req struct {
		AdminID *uint `json:"admin_id"`
		UserID  uint  `json:"user_id"`
		GroupID uint  `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	caller, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	msg, serr := groupService.PromoteMember(caller, req.UserID, req.GroupID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// TransferMember moves a member between groups
// POST /api/groups/transfer-member
func TransferMember(c *fiber.Ctx) error {
	var req struct {
		AdminID       *uint `json:"admin_id"`
		UserID        uint  `json:"user_id"`
		TargetGroupID uint  `json:"target_group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	caller, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	msg, serr := groupService.TransferMember(caller, req.UserID, req.TargetGroupID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// GetTransferOptions lists destination groups for a transfer
// GET /api/groups/transfer-options/:id
func GetTransferOptions(c *fiber.Ctx) error {
	currentGroupID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	options, serr := groupService.TransferOptions(currentGroupID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(options)
}

// CreateJoinRequest submits a pending membership request
// POST /api/groups/join-request
func CreateJoinRequest(c *fiber.Ctx) error {
	var req struct {
		UserID  *uint  `json:"user_id"`
		GroupID uint   `json:"group_id"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, err := currentUser(req.UserID)
	if err != nil {
		return fail(c, err)
	}

	view, serr := groupService.CreateJoinRequest(user, req.GroupID, req.Message)
	if serr != nil {
		return fail(c, serr)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "Join request submitted successfully",
		"request": view,
	})
}

// GetJoinRequests lists requests visible to the caller
// GET /api/groups/join-requests
func GetJoinRequests(c *fiber.Ctx) error {
	caller, err := currentUser(queryUint(c, "user_id"))
	if err != nil {
		return fail(c, err)
	}

	requests, serr := groupService.ListJoinRequests(caller, queryUint(c, "group_id"), c.Query("status"))
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(requests)
}

// ApproveJoinRequest accepts a pending request
// POST /api/groups/join-requests/:id/approve
func ApproveJoinRequest(c *fiber.Ctx) error {
	requestID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		UserID       *uint  `json:"user_id"`
		AdminMessage string `json:"admin_message"`
	}
	c.BodyParser(&req)

	caller, err := currentUser(req.UserID)
	if err != nil {
		return fail(c, err)
	}

	view, serr := groupService.ApproveJoinRequest(caller, requestID, req.AdminMessage)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{
		"message": "Join request approved successfully",
		"request": view,
	})
}

// RejectJoinRequest declines a pending request
// POST /api/groups/join-requests/:id/reject
func RejectJoinRequest(c *fiber.Ctx) error {
	requestID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		UserID       *uint  `json:"user_id"`
		AdminMessage string `json:"admin_message"`
	}
	c.BodyParser(&req)

	caller, err := currentUser(req.UserID)
	if err != nil {
		return fail(c, err)
	}

	view, serr := groupService.RejectJoinRequest(caller, requestID, req.AdminMessage)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{
		"message": "Join request rejected",
		"request": view,
	})
}

// GetMyJoinRequests lists the caller's own requests
// GET /api/groups/my-join-requests
func GetMyJoinRequests(c *fiber.Ctx) error {
	caller, err := currentUser(queryUint(c, "user_id"))
	if err != nil {
		return fail(c, err)
	}

	requests, serr := groupService.MyJoinRequests(caller.ID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(requests)
}
