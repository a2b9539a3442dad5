// handlers/reports.go - Weekly and summary report generation
package handlers

import (
	"worktrack/database"
	"worktrack/services"

	"github.com/gofiber/fiber/v2"
)

var reportService *services.ReportService

// InitReportHandlers initializes the report service
func InitReportHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitReportHandlers")
	}
	reportService = services.NewReportService(db)
}

// GenerateReport builds a per-employee weekly workbook
// POST /api/reports/generate
func GenerateReport(c *fiber.Ctx) error {
	var req struct {
		UserID *uint  `json:"user_id"`
		Week   string `json:"week"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.UserID == nil || req.Week == "" {
		return c.Status(400).JSON(fiber.Map{"message": "Missing user_id or week"})
	}

	info, serr := reportService.GenerateWeekly(*req.UserID, req.Week)
	if serr != nil {
		return fail(c, serr)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "Weekly report generated successfully",
		"report":  info,
	})
}

// GenerateReportPDF builds the PDF rendition of the weekly report
// POST /api/reports/generate-pdf
func GenerateReportPDF(c *fiber.Ctx) error {
	var req struct {
		UserID *uint  `json:"user_id"`
		Week   string `json:"week"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.UserID == nil || req.Week == "" {
		return c.Status(400).JSON(fiber.Map{"message": "Missing user_id or week"})
	}

	info, serr := reportService.GenerateWeeklyPDF(*req.UserID, req.Week)
	if serr != nil {
		return fail(c, serr)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "PDF report generated successfully",
		"report":  info,
	})
}

// GenerateSummaryReport builds the cross-group workbook
// POST /api/reports/summary
func GenerateSummaryReport(c *fiber.Ctx) error {
	var req struct {
		AdminID *uint  `json:"admin_id"`
		Week    string `json:"week"`
		GroupID *uint  `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.AdminID == nil || req.Week == "" {
		return c.Status(400).JSON(fiber.Map{"message": "Missing admin_id or week"})
	}

	admin, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	result, serr := reportService.GenerateSummary(admin, req.Week, req.GroupID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.Status(201).JSON(fiber.Map{
		"message":    "Summary report generated successfully",
		"report":     result.Report,
		"statistics": result.Statistics,
	})
}

// GenerateSummaryReportPDF builds the summary as a PDF
// POST /api/reports/summary-pdf
func GenerateSummaryReportPDF(c *fiber.Ctx) error {
	var req struct {
		AdminID *uint  `json:"admin_id"`
		Week    string `json:"week"`
		GroupID *uint  `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.AdminID == nil || req.Week == "" {
		return c.Status(400).JSON(fiber.Map{"message": "Missing admin_id or week"})
	}

	admin, err := currentUser(req.AdminID)
	if err != nil {
		return fail(c, err)
	}

	info, serr := reportService.GenerateSummaryPDF(admin, req.Week, req.GroupID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "Summary PDF generated successfully",
		"report":  info,
	})
}

// GetReports lists reports visible to the caller
// GET /api/reports/list
func GetReports(c *fiber.Ctx) error {
	caller, err := currentUser(queryUint(c, "user_id"))
	if err != nil {
		return fail(c, err)
	}

	reports, serr := reportService.List(caller)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(reports)
}

// DownloadReport sends the generated file
// GET /api/reports/download/:id
func DownloadReport(c *fiber.Ctx) error {
	reportID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	path, serr := reportService.DownloadPath(reportID)
	if serr != nil {
		return fail(c, serr)
	}
	return c.Download(path)
}

// DeleteReport removes a report and its file
// DELETE /api/reports/delete/:id
func DeleteReport(c *fiber.Ctx) error {
	reportID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		UserID *uint `json:"user_id"`
	}
	c.BodyParser(&req)

	caller, err := currentUser(req.UserID)
	if err != nil {
		return fail(c, err)
	}

	if serr := reportService.Delete(caller, reportID); serr != nil {
		return fail(c, serr)
	}
	return c.JSON(fiber.Map{"message": "Report deleted successfully"})
}

// GetReportStats counts the caller's visible reports
// GET /api/reports/stats
func GetReportStats(c *fiber.Ctx) error {
	caller, err := currentUser(queryUint(c, "user_id"))
	if err != nil {
		return fail(c, err)
	}

	stats, serr := reportService.Stats(caller)
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(stats)
}
