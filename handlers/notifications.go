// handlers/notifications.go - Notification inbox
package handlers

import (
	"fmt"
	"strconv"
	"worktrack/database"
	"worktrack/models"
	"worktrack/services"
	"worktrack/utils"

	"github.com/gofiber/fiber/v2"
)

var notificationService *services.NotificationService

// InitNotificationHandlers initializes the notification service
func InitNotificationHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitNotificationHandlers")
	}
	notificationService = services.NewNotificationService(db)
}

func notificationView(n *models.Notification) fiber.Map {
	return fiber.Map{
		"id":           n.ID,
		"title":        n.Title,
		"message":      n.Message,
		"type":         n.Type,
		"is_read":      n.IsRead,
		"is_important": n.IsImportant,
		"created_at":   utils.FormatTime(n.CreatedAt),
		"read_at":      utils.FormatTimePtr(n.ReadAt),
		"task_id":      n.TaskID,
		"group_id":     n.GroupID,
		"report_id":    n.ReportID,
	}
}

// GetNotifications pages through a user's inbox
// GET /api/notifications/list
func GetNotifications(c *fiber.Ctx) error {
	userID := queryUint(c, "user_id")
	if userID == nil {
		return c.Status(400).JSON(fiber.Map{"message": "Missing user_id"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	unreadOnly := c.QueryBool("unread_only", false)

	notifications, total, unread, err := notificationService.List(*userID, limit, offset, unreadOnly)
	if err != nil {
		return fail(c, err)
	}

	views := make([]fiber.Map, 0, len(notifications))
	for i := range notifications {
		views = append(views, notificationView(&notifications[i]))
	}
	return c.JSON(fiber.Map{
		"notifications": views,
		"total":         total,
		"unread_count":  unread,
	})
}

// MarkNotificationRead marks one notification read
// PUT /api/notifications/mark-read/:id
func MarkNotificationRead(c *fiber.Ctx) error {
	notificationID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if serr := notificationService.MarkRead(notificationID); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead marks the user's whole inbox read
// PUT /api/notifications/mark-all-read
func MarkAllNotificationsRead(c *fiber.Ctx) error {
	var req struct {
		UserID *uint `json:"user_id"`
	}
	c.BodyParser(&req)
	if req.UserID == nil {
		return c.Status(400).JSON(fiber.Map{"message": "Missing user_id"})
	}

	count, serr := notificationService.MarkAllRead(*req.UserID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("%d notifications marked as read", count)})
}

// DeleteNotification removes one notification
// DELETE /api/notifications/delete/:id
func DeleteNotification(c *fiber.Ctx) error {
	notificationID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if serr := notificationService.Delete(notificationID); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": "Notification deleted"})
}

// ClearAllNotifications empties the user's inbox
// DELETE /api/notifications/clear-all
func ClearAllNotifications(c *fiber.Ctx) error {
	var req struct {
		UserID *uint `json:"user_id"`
	}
	c.BodyParser(&req)
	if req.UserID == nil {
		return c.Status(400).JSON(fiber.Map{"message": "Missing user_id"})
	}

	count, serr := notificationService.ClearAll(*req.UserID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("%d notifications cleared", count)})
}
