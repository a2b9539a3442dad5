// handlers/files.go - Attachment upload, download, and stats
package handlers

import (
	"io"
	"strconv"
	"worktrack/database"
	"worktrack/services"

	"github.com/gofiber/fiber/v2"
)

var fileService *services.FileService

// InitFileHandlers initializes the file service
func InitFileHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitFileHandlers")
	}
	fileService = services.NewFileService(db)
}

// UploadFile attaches a multipart upload to a task
// POST /api/files/upload
func UploadFile(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "No file part"})
	}

	taskIDRaw := c.FormValue("task_id")
	uploadedByRaw := c.FormValue("uploaded_by")
	if taskIDRaw == "" || uploadedByRaw == "" {
		return c.Status(400).JSON(fiber.Map{"message": "Missing task_id or uploaded_by"})
	}
	taskID, err := strconv.ParseUint(taskIDRaw, 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Missing task_id or uploaded_by"})
	}
	uploadedBy, err := strconv.ParseUint(uploadedByRaw, 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Missing task_id or uploaded_by"})
	}

	src, err := header.Open()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": "Error uploading file: " + err.Error()})
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": "Error uploading file: " + err.Error()})
	}

	view, serr := fileService.Upload(uint(taskID), uint(uploadedBy), services.StoredUpload{
		Filename: header.Filename,
		Content:  content,
	})
	if serr != nil {
		return fail(c, serr)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "File uploaded successfully",
		"file": fiber.Map{
			"id":          view.ID,
			"filename":    view.Filename,
			"task_id":     view.Task.ID,
			"uploaded_by": view.UploadedBy,
			"file_size":   view.FileSize,
			"upload_date": view.UploadDate,
		},
	})
}

// GetTaskFiles lists a task's attachments
// GET /api/files/task/:id
func GetTaskFiles(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	listing, serr := fileService.ByTask(taskID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(listing)
}

// DownloadFile sends an attachment payload
// GET /api/files/download/:id
func DownloadFile(c *fiber.Ctx) error {
	fileID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	path, name, serr := fileService.DownloadTarget(fileID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.Download(path, name)
}

// DeleteFile removes an attachment
// DELETE /api/files/:id
func DeleteFile(c *fiber.Ctx) error {
	fileID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		UserID *uint `json:"user_id"`
	}
	c.BodyParser(&req)

	if serr := fileService.Delete(req.UserID, fileID); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}

// GetFileDetail returns one attachment's metadata
// GET /api/files/:id
func GetFileDetail(c *fiber.Ctx) error {
	fileID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	detail, serr := fileService.Detail(fileID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(detail)
}

// GetAllFiles lists every attachment for admins and leaders
// GET /api/files/all
func GetAllFiles(c *fiber.Ctx) error {
	listing, serr := fileService.All(queryUint(c, "user_id"))
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(listing)
}

// GetUserFiles lists one user's uploads
// GET /api/files/user/:id
func GetUserFiles(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	files, serr := fileService.ByUser(userID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(files)
}

// GetFileStats aggregates storage usage
// GET /api/files/stats
func GetFileStats(c *fiber.Ctx) error {
	stats, serr := fileService.Stats(queryUint(c, "user_id"))
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(stats)
}
