// services/report_service.go - Weekly and summary report generation
package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"worktrack/models"
	"worktrack/utils"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var weekLabelPattern = regexp.MustCompile(`(\d{4}-W\d{2})`)

type ReportService struct {
	db     *gorm.DB
	notify *NotificationService
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, notify: NewNotificationService(db)}
}

func reportsDir() (string, error) {
	base := os.Getenv("UPLOAD_FOLDER")
	if base == "" {
		base = "uploads"
	}
	dir := filepath.Join(base, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// ReportInfo is the generation result returned to the caller.
type ReportInfo struct {
	ID         uint   `json:"id"`
	Filename   string `json:"filename"`
	Week       string `json:"week"`
	TasksCount int    `json:"tasks_count,omitempty"`
	Format     string `json:"format,omitempty"`
	Scope      string `json:"scope,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func (s *ReportService) weekTasks(assigneeID uint, week string) ([]models.Task, *Error) {
	start, end, err := utils.WeekWindow(week)
	if err != nil {
		return nil, Invalid("Invalid week format. Use YYYY-WXX")
	}
	var tasks []models.Task
	if err := s.db.Where("assignee_id = ? AND created_at >= ? AND created_at <= ?",
		assigneeID, start, utils.WeekQueryEnd(end)).Find(&tasks).Error; err != nil {
		return nil, Internal("Error loading tasks: %v", err)
	}
	return tasks, nil
}

func countByStatus(tasks []models.Task, status models.TaskStatus) int64 {
	var n int64
	for i := range tasks {
		if tasks[i].Status == status {
			n++
		}
	}
	return n
}

func deadlineDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(utils.DateFormat)
}

// GenerateWeekly builds the per-employee weekly workbook: a Summary
// sheet with the status counters and a Tasks sheet with one row per
// task. An empty week still yields a report with a placeholder row.
func (s *ReportService) GenerateWeekly(userID uint, week string) (*ReportInfo, *Error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFound("User not found")
	}

	tasks, serr := s.weekTasks(userID, week)
	if serr != nil {
		return nil, serr
	}

	dir, err := reportsDir()
	if err != nil {
		return nil, Internal("Error creating reports folder: %v", err)
	}

	filename := fmt.Sprintf("weekly_report_%s_%s.xlsx", strings.ReplaceAll(user.Name, " ", "_"), week)
	filePath := filepath.Join(dir, filename)

	total := int64(len(tasks))
	completed := countByStatus(tasks, models.TaskStatusDone)
	inProgress := countByStatus(tasks, models.TaskStatusDoing)
	todo := countByStatus(tasks, models.TaskStatusTodo)

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Summary")
	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Tasks", total},
		{"Completed", completed},
		{"In Progress", inProgress},
		{"To Do", todo},
		{"Completion Rate", percent(completed, total)},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow("Summary", cell, &row)
	}

	f.NewSheet("Tasks")
	header := []interface{}{"Task ID", "Title", "Description", "Status", "Priority", "Deadline", "Assigner", "Created Date", "Updated Date"}
	f.SetSheetRow("Tasks", "A1", &header)

	if len(tasks) == 0 {
		placeholder := []interface{}{"N/A", "No tasks found for this week",
			fmt.Sprintf("No tasks assigned to %s for week %s", user.Name, week),
			"N/A", "N/A", "N/A", "N/A", "N/A", "N/A"}
		f.SetSheetRow("Tasks", "A2", &placeholder)
	}
	for i := range tasks {
		task := &tasks[i]
		assignerName := ""
		if task.AssignerID != nil {
			var assigner models.User
			if err := s.db.First(&assigner, *task.AssignerID).Error; err == nil {
				assignerName = assigner.Name
			}
		}
		row := []interface{}{task.ID, task.Title, task.Description, string(task.Status), string(task.Priority),
			deadlineDate(task.Deadline), assignerName,
			task.CreatedAt.Format(utils.DateFormat), task.UpdatedAt.Format(utils.DateFormat)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow("Tasks", cell, &row)
	}

	if err := f.SaveAs(filePath); err != nil {
		return nil, Internal("Error generating report: %v", err)
	}

	report := &models.Report{UserID: &user.ID, Week: week, FilePath: filePath}
	if err := s.db.Create(report).Error; err != nil {
		os.Remove(filePath)
		return nil, Internal("Error generating report: %v", err)
	}

	s.notify.Notify(user.ID, "Weekly report generated",
		fmt.Sprintf("Your weekly report for %s has been generated successfully", week),
		models.NotificationReportGenerated, NotifyOptions{ReportID: &report.ID})

	return &ReportInfo{
		ID:         report.ID,
		Filename:   filename,
		Week:       week,
		TasksCount: len(tasks),
		CreatedAt:  utils.FormatTime(report.CreatedAt),
	}, nil
}

// GenerateWeeklyPDF is the PDF rendition of the weekly report. The
// stored week label carries a PDF_ prefix so listings can tell the
// formats apart.
func (s *ReportService) GenerateWeeklyPDF(userID uint, week string) (*ReportInfo, *Error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFound("User not found")
	}

	tasks, serr := s.weekTasks(userID, week)
	if serr != nil {
		return nil, serr
	}

	dir, err := reportsDir()
	if err != nil {
		return nil, Internal("Error creating reports folder: %v", err)
	}

	filename := fmt.Sprintf("weekly_report_%s_%s.pdf", strings.ReplaceAll(user.Name, " ", "_"), week)
	filePath := filepath.Join(dir, filename)

	total := int64(len(tasks))
	completed := countByStatus(tasks, models.TaskStatusDone)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, fmt.Sprintf("Weekly Report - %s", week), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Employee: %s", user.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Email: %s", user.Email), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writePDFStats(pdf, [][2]string{
		{"Total Tasks", fmt.Sprintf("%d", total)},
		{"Completed", fmt.Sprintf("%d", completed)},
		{"Completion Rate", percent(completed, total)},
	})
	pdf.Ln(4)

	if len(tasks) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, "No tasks found for this week", "1", 1, "C", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "B", 10)
		widths := []float64{15, 70, 25, 25, 40}
		headers := []string{"ID", "Title", "Status", "Priority", "Deadline"}
		for i, h := range headers {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for i := range tasks {
			task := &tasks[i]
			title := task.Title
			if len(title) > 25 {
				title = title[:25] + "..."
			}
			deadline := deadlineDate(task.Deadline)
			if deadline == "" {
				deadline = "N/A"
			}
			cells := []string{fmt.Sprintf("%d", task.ID), title, string(task.Status), string(task.Priority), deadline}
			for j, c := range cells {
				pdf.CellFormat(widths[j], 8, c, "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return nil, Internal("Error generating PDF: %v", err)
	}

	report := &models.Report{UserID: &user.ID, Week: "PDF_" + week, FilePath: filePath}
	if err := s.db.Create(report).Error; err != nil {
		os.Remove(filePath)
		return nil, Internal("Error generating PDF: %v", err)
	}

	s.notify.Notify(user.ID, "Weekly report generated",
		fmt.Sprintf("Your weekly report for %s has been generated successfully", week),
		models.NotificationReportGenerated, NotifyOptions{ReportID: &report.ID})

	return &ReportInfo{
		ID:        report.ID,
		Filename:  filename,
		Week:      week,
		Format:    "PDF",
		CreatedAt: utils.FormatTime(report.CreatedAt),
	}, nil
}

func writePDFStats(pdf *fpdf.Fpdf, rows [][2]string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(75, 8, "Metric", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 8, "Value", "1", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(75, 8, row[0], "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 8, row[1], "1", 1, "C", false, 0, "")
	}
}

// summaryScope resolves the tasks and the human-readable scope label
// for a summary report. Leaders are pinned to their own group; admins
// may pick a group or cover everything.
func (s *ReportService) summaryScope(admin *models.User, week string, groupID *uint) ([]models.Task, string, *Error) {
	start, end, err := utils.WeekWindow(week)
	if err != nil {
		return nil, "", Invalid("Invalid week format")
	}

	query := s.db.Where("created_at >= ? AND created_at <= ?", start, utils.WeekQueryEnd(end))

	var tasks []models.Task
	var scope string

	switch admin.Role {
	case models.RoleLeader:
		if admin.GroupID == nil {
			return nil, fmt.Sprintf("Leader %s (No group assigned)", admin.Name), nil
		}
		var memberIDs []uint
		s.db.Model(&models.User{}).Where("group_id = ?", *admin.GroupID).Pluck("id", &memberIDs)
		if len(memberIDs) > 0 {
			if err := query.Where("assignee_id IN ?", memberIDs).Find(&tasks).Error; err != nil {
				return nil, "", Internal("Error loading tasks: %v", err)
			}
		}
		var group models.Group
		groupName := fmt.Sprintf("Group %d", *admin.GroupID)
		if err := s.db.First(&group, *admin.GroupID).Error; err == nil {
			groupName = group.Name
		}
		scope = fmt.Sprintf("Group: %s", groupName)

	default: // admin
		if groupID != nil {
			var group models.Group
			if err := s.db.First(&group, *groupID).Error; err != nil {
				return nil, "", NotFound("Group not found")
			}
			var memberIDs []uint
			s.db.Model(&models.User{}).Where("group_id = ?", *groupID).Pluck("id", &memberIDs)
			if len(memberIDs) > 0 {
				if err := query.Where("assignee_id IN ?", memberIDs).Find(&tasks).Error; err != nil {
					return nil, "", Internal("Error loading tasks: %v", err)
				}
			}
			scope = fmt.Sprintf("Group: %s", group.Name)
		} else {
			if err := query.Find(&tasks).Error; err != nil {
				return nil, "", Internal("Error loading tasks: %v", err)
			}
			scope = "All Groups"
		}
	}

	return tasks, scope, nil
}

// SummaryResult wraps the generated report with its aggregate counts.
type SummaryResult struct {
	Report     ReportInfo       `json:"report"`
	Statistics map[string]int64 `json:"statistics"`
}

var sheetNamePattern = regexp.MustCompile(`[^\w\s-]`)

// GenerateSummary builds the admin/leader cross-group workbook with a
// Statistics sheet, an All Tasks sheet, and one sheet per assignee.
func (s *ReportService) GenerateSummary(admin *models.User, week string, groupID *uint) (*SummaryResult, *Error) {
	if admin.Role != models.RoleAdmin && admin.Role != models.RoleLeader {
		return nil, Forbidden("Access denied. Only admin/leader can generate summary reports")
	}

	tasks, scope, serr := s.summaryScope(admin, week, groupID)
	if serr != nil {
		return nil, serr
	}

	dir, err := reportsDir()
	if err != nil {
		return nil, Internal("Error creating reports folder: %v", err)
	}

	rolePrefix := "L"
	if admin.Role == models.RoleAdmin {
		rolePrefix = "A"
	}
	groupSuffix := ""
	if groupID != nil {
		groupSuffix = fmt.Sprintf("_group_%d", *groupID)
	}
	filename := fmt.Sprintf("%s_summary_%s%s.xlsx", strings.ToLower(rolePrefix), week, groupSuffix)
	filePath := filepath.Join(dir, filename)

	start, end, _ := utils.WeekWindow(week)
	total := int64(len(tasks))
	completed := countByStatus(tasks, models.TaskStatusDone)
	inProgress := countByStatus(tasks, models.TaskStatusDoing)
	todo := countByStatus(tasks, models.TaskStatusTodo)

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Statistics")
	statsRows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Tasks", total},
		{"Completed", completed},
		{"In Progress", inProgress},
		{"To Do", todo},
		{"Completion Rate", percent(completed, total)},
		{"Report Scope", scope},
		{"Generated By", fmt.Sprintf("%s (%s)", admin.Name, admin.Role)},
		{"Week Period", fmt.Sprintf("%s to %s", start.Format(utils.DateFormat), end.Format(utils.DateFormat))},
	}
	for i, row := range statsRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow("Statistics", cell, &row)
	}

	f.NewSheet("All Tasks")
	header := []interface{}{"Task ID", "Title", "Status", "Priority", "Assignee", "Assignee Email", "Assignee Code", "Assigner", "Group", "Created Date", "Deadline"}
	f.SetSheetRow("All Tasks", "A1", &header)

	if len(tasks) == 0 {
		placeholder := []interface{}{"N/A", "No tasks found for this week", "N/A", "N/A", "N/A", "N/A", "N/A", "N/A", scope, "N/A", "N/A"}
		f.SetSheetRow("All Tasks", "A2", &placeholder)
	}

	userCache := map[uint]*models.User{}
	lookupUser := func(id uint) *models.User {
		if u, ok := userCache[id]; ok {
			return u
		}
		var u models.User
		if err := s.db.First(&u, id).Error; err != nil {
			userCache[id] = nil
			return nil
		}
		userCache[id] = &u
		return &u
	}

	byAssignee := map[uint][]*models.Task{}
	for i := range tasks {
		task := &tasks[i]
		assigneeName, assigneeEmail, assigneeCode := "Unassigned", "", ""
		if task.AssigneeID != nil {
			if assignee := lookupUser(*task.AssigneeID); assignee != nil {
				assigneeName, assigneeEmail, assigneeCode = assignee.Name, assignee.Email, assignee.EmployeeCode
			}
			byAssignee[*task.AssigneeID] = append(byAssignee[*task.AssigneeID], task)
		}
		assignerName := ""
		if task.AssignerID != nil {
			if assigner := lookupUser(*task.AssignerID); assigner != nil {
				assignerName = assigner.Name
			}
		}
		groupName := "No Group"
		if task.GroupID != nil {
			var group models.Group
			if err := s.db.First(&group, *task.GroupID).Error; err == nil {
				groupName = group.Name
			}
		}
		row := []interface{}{task.ID, task.Title, string(task.Status), string(task.Priority),
			assigneeName, assigneeEmail, assigneeCode, assignerName, groupName,
			task.CreatedAt.Format(utils.DateFormat), deadlineDate(task.Deadline)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow("All Tasks", cell, &row)
	}

	for assigneeID, userTasks := range byAssignee {
		assignee := lookupUser(assigneeID)
		if assignee == nil {
			continue
		}
		sheetName := sheetNamePattern.ReplaceAllString(assignee.Name, "")
		if len(sheetName) > 30 {
			sheetName = sheetName[:30]
		}
		if _, err := f.NewSheet(sheetName); err != nil {
			continue
		}
		userHeader := []interface{}{"Task ID", "Title", "Status", "Priority", "Deadline"}
		f.SetSheetRow(sheetName, "A1", &userHeader)
		for i, task := range userTasks {
			row := []interface{}{task.ID, task.Title, string(task.Status), string(task.Priority), deadlineDate(task.Deadline)}
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			f.SetSheetRow(sheetName, cell, &row)
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return nil, Internal("Error generating summary: %v", err)
	}

	report := &models.Report{UserID: &admin.ID, Week: fmt.Sprintf("%s_SUM_%s", rolePrefix, week), FilePath: filePath}
	if err := s.db.Create(report).Error; err != nil {
		os.Remove(filePath)
		return nil, Internal("Error generating summary: %v", err)
	}

	return &SummaryResult{
		Report: ReportInfo{
			ID:        report.ID,
			Filename:  filename,
			Week:      week,
			Scope:     scope,
			CreatedAt: utils.FormatTime(report.CreatedAt),
		},
		Statistics: map[string]int64{
			"total_tasks": total,
			"completed":   completed,
			"in_progress": inProgress,
			"todo":        todo,
		},
	}, nil
}

// GenerateSummaryPDF renders the summary as a PDF with one section per
// assignee.
func (s *ReportService) GenerateSummaryPDF(admin *models.User, week string, groupID *uint) (*ReportInfo, *Error) {
	if admin.Role != models.RoleAdmin && admin.Role != models.RoleLeader {
		return nil, Forbidden("Access denied")
	}

	tasks, scope, serr := s.summaryScope(admin, week, groupID)
	if serr != nil {
		return nil, serr
	}

	dir, err := reportsDir()
	if err != nil {
		return nil, Internal("Error creating reports folder: %v", err)
	}

	rolePrefix := "L"
	if admin.Role == models.RoleAdmin {
		rolePrefix = "A"
	}
	groupSuffix := ""
	if groupID != nil {
		groupSuffix = fmt.Sprintf("_group_%d", *groupID)
	}
	filename := fmt.Sprintf("%s_summary_%s%s.pdf", strings.ToLower(rolePrefix), week, groupSuffix)
	filePath := filepath.Join(dir, filename)

	total := int64(len(tasks))
	completed := countByStatus(tasks, models.TaskStatusDone)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, fmt.Sprintf("Summary Report - %s", week), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated by: %s (%s)", admin.Name, admin.Role), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Scope: %s", scope), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writePDFStats(pdf, [][2]string{
		{"Total Tasks", fmt.Sprintf("%d", total)},
		{"Completed", fmt.Sprintf("%d", completed)},
		{"Completion Rate", percent(completed, total)},
	})
	pdf.Ln(4)

	byAssignee := map[uint][]*models.Task{}
	for i := range tasks {
		if tasks[i].AssigneeID != nil {
			byAssignee[*tasks[i].AssigneeID] = append(byAssignee[*tasks[i].AssigneeID], &tasks[i])
		}
	}

	switch {
	case len(tasks) == 0:
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, fmt.Sprintf("No tasks found for %s in week %s", scope, week), "", 1, "L", false, 0, "")
	case len(byAssignee) == 0:
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, "No assigned tasks found", "", 1, "L", false, 0, "")
	default:
		for assigneeID, userTasks := range byAssignee {
			var assignee models.User
			if err := s.db.First(&assignee, assigneeID).Error; err != nil {
				continue
			}
			pdf.SetFont("Helvetica", "B", 13)
			pdf.CellFormat(0, 10, fmt.Sprintf("Tasks for %s", assignee.Name), "", 1, "L", false, 0, "")

			pdf.SetFont("Helvetica", "B", 10)
			widths := []float64{15, 90, 30, 30}
			headers := []string{"ID", "Title", "Status", "Priority"}
			for i, h := range headers {
				pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont("Helvetica", "", 10)
			for _, task := range userTasks {
				title := task.Title
				if len(title) > 30 {
					title = title[:30] + "..."
				}
				cells := []string{fmt.Sprintf("%d", task.ID), title, string(task.Status), string(task.Priority)}
				for j, c := range cells {
					pdf.CellFormat(widths[j], 8, c, "1", 0, "C", false, 0, "")
				}
				pdf.Ln(-1)
			}
			pdf.Ln(4)
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return nil, Internal("Error generating PDF: %v", err)
	}

	report := &models.Report{UserID: &admin.ID, Week: fmt.Sprintf("PDF_%s_SUM_%s", rolePrefix, week), FilePath: filePath}
	if err := s.db.Create(report).Error; err != nil {
		os.Remove(filePath)
		return nil, Internal("Error generating PDF: %v", err)
	}

	return &ReportInfo{
		ID:        report.ID,
		Filename:  filename,
		Week:      week,
		Format:    "PDF",
		Scope:     scope,
		CreatedAt: utils.FormatTime(report.CreatedAt),
	}, nil
}

// ReportListItem is one row in the report listing.
type ReportListItem struct {
	ID         uint   `json:"id"`
	Filename   string `json:"filename"`
	ReportType string `json:"report_type"`
	Format     string `json:"format"`
	WeekPeriod string `json:"week_period"`
	FileSize   int64  `json:"file_size"`
	CreatedBy  string `json:"created_by"`
	CreatedAt  string `json:"created_at"`
}

func (s *ReportService) scopedReports(user *models.User) ([]models.Report, error) {
	var reports []models.Report
	query := s.db.Order("created_at DESC")

	switch user.Role {
	case models.RoleAdmin:
	case models.RoleLeader:
		if user.GroupID != nil {
			var memberIDs []uint
			s.db.Model(&models.User{}).Where("group_id = ?", *user.GroupID).Pluck("id", &memberIDs)
			query = query.Where("user_id IN ?", memberIDs)
		} else {
			query = query.Where("user_id = ?", user.ID)
		}
	default:
		query = query.Where("user_id = ?", user.ID)
	}

	err := query.Find(&reports).Error
	return reports, err
}

// List returns the reports visible to the user: own for employees,
// the led group's for leaders, everything for admins. Type and format
// are decoded from the stored week label.
func (s *ReportService) List(user *models.User) ([]ReportListItem, *Error) {
	reports, err := s.scopedReports(user)
	if err != nil {
		return nil, Internal("Error loading reports: %v", err)
	}

	items := make([]ReportListItem, 0, len(reports))
	for i := range reports {
		report := &reports[i]

		filename := "unknown.xlsx"
		var fileSize int64
		if report.FilePath != "" {
			filename = filepath.Base(report.FilePath)
			fileSize = utils.FileSize(report.FilePath)
		}

		reportType := "weekly"
		if strings.Contains(report.Week, "SUM") {
			reportType = "summary"
		}
		format := "excel"
		if strings.Contains(report.Week, "PDF") {
			format = "pdf"
		}
		weekPeriod := "Custom"
		if m := weekLabelPattern.FindString(report.Week); m != "" {
			weekPeriod = m
		}

		createdBy := "Unknown"
		if report.UserID != nil {
			var creator models.User
			if err := s.db.First(&creator, *report.UserID).Error; err == nil {
				createdBy = creator.Name
			}
		}

		items = append(items, ReportListItem{
			ID:         report.ID,
			Filename:   filename,
			ReportType: reportType,
			Format:     format,
			WeekPeriod: weekPeriod,
			FileSize:   fileSize,
			CreatedBy:  createdBy,
			CreatedAt:  utils.FormatTime(report.CreatedAt),
		})
	}
	return items, nil
}

// DownloadPath resolves a report to its on-disk file.
func (s *ReportService) DownloadPath(reportID uint) (string, *Error) {
	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		return "", NotFound("Report not found")
	}
	if report.FilePath == "" {
		return "", NotFound("File not found")
	}
	if _, err := os.Stat(report.FilePath); err != nil {
		return "", NotFound("File not found")
	}
	return report.FilePath, nil
}

// Delete removes a report row and its file. Employees may delete only
// their own, leaders their group members', admins anything.
func (s *ReportService) Delete(caller *models.User, reportID uint) *Error {
	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		return NotFound("Report not found")
	}

	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleLeader:
		if report.UserID == nil || *report.UserID != caller.ID {
			allowed := false
			if report.UserID != nil {
				var creator models.User
				if err := s.db.First(&creator, *report.UserID).Error; err == nil {
					if creator.GroupID != nil && caller.GroupID != nil && *creator.GroupID == *caller.GroupID {
						allowed = true
					}
				}
			}
			if !allowed {
				return Forbidden("Access denied")
			}
		}
	default:
		if report.UserID == nil || *report.UserID != caller.ID {
			return Forbidden("Access denied")
		}
	}

	if report.FilePath != "" {
		os.Remove(report.FilePath)
	}
	if err := s.db.Delete(&report).Error; err != nil {
		return Internal("Error deleting report: %v", err)
	}
	return nil
}

// ReportStats aggregates report counts for the caller's scope.
type ReportStats struct {
	Total     int64 `json:"total"`
	ThisWeek  int64 `json:"this_week"`
	ThisMonth int64 `json:"this_month"`
}

// Stats counts the caller's visible reports overall, since Monday, and
// since the start of the month.
func (s *ReportService) Stats(user *models.User) (*ReportStats, *Error) {
	reports, err := s.scopedReports(user)
	if err != nil {
		return nil, Internal("Error loading reports: %v", err)
	}

	now := time.Now().UTC()
	weekStart := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	weekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &ReportStats{}
	for i := range reports {
		stats.Total++
		if !reports[i].CreatedAt.Before(weekStart) {
			stats.ThisWeek++
		}
		if !reports[i].CreatedAt.Before(monthStart) {
			stats.ThisMonth++
		}
	}
	return stats, nil
}
