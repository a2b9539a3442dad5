// services/file_service.go - Task attachments
package services

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"worktrack/models"
	"worktrack/utils"

	"gorm.io/gorm"
)

// allowedExtensions are the accepted upload types, without the dot.
var allowedExtensions = []string{
	"txt", "pdf", "png", "jpg", "jpeg", "gif",
	"doc", "docx", "xls", "xlsx", "ppt", "pptx", "zip", "rar",
}

func extensionAllowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

type FileService struct {
	db *gorm.DB
}

func NewFileService(db *gorm.DB) *FileService {
	return &FileService{db: db}
}

func uploadDir() (string, error) {
	base := os.Getenv("UPLOAD_FOLDER")
	if base == "" {
		base = "uploads"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}
	return base, nil
}

// UploaderRef identifies who uploaded a file.
type UploaderRef struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	EmployeeCode string `json:"employee_code,omitempty"`
}

// TaskRef is the compact task reference embedded in file payloads.
type TaskRef struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// FileView is one attachment with its metadata resolved.
type FileView struct {
	ID         uint         `json:"id"`
	Filename   string       `json:"filename"`
	Filepath   string       `json:"filepath,omitempty"`
	Task       *TaskRef     `json:"task,omitempty"`
	UploadedBy *UploaderRef `json:"uploaded_by,omitempty"`
	FileSize   int64        `json:"file_size"`
	UploadDate interface{}  `json:"upload_date"`
}

// FileListing wraps a file set with its totals.
type FileListing struct {
	Files      []FileView `json:"files"`
	TotalFiles int        `json:"total_files"`
	TotalSize  int64      `json:"total_size"`
}

// StoredUpload points at a payload already written by the transport
// layer, or raw bytes when Content is set.
type StoredUpload struct {
	Filename string
	Content  []byte
}

// Upload validates the attachment and writes it under the upload
// folder, suffixing the name until it does not collide. Only the
// task's assignee or assigner may attach files.
func (s *FileService) Upload(taskID, uploadedBy uint, upload StoredUpload) (*FileView, *Error) {
	if upload.Filename == "" {
		return nil, Invalid("No selected file")
	}
	if !extensionAllowed(upload.Filename) {
		return nil, Invalid("File type not allowed. Allowed types: %s", strings.Join(allowedExtensions, ", "))
	}

	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		return nil, NotFound("Task with ID %d not found", taskID)
	}

	var user models.User
	if err := s.db.First(&user, uploadedBy).Error; err != nil {
		return nil, NotFound("User with ID %d not found", uploadedBy)
	}

	isAssignee := task.AssigneeID != nil && *task.AssigneeID == uploadedBy
	isAssigner := task.AssignerID != nil && *task.AssignerID == uploadedBy
	if !isAssignee && !isAssigner {
		return nil, Forbidden("You do not have permission to upload files to this task")
	}

	dir, err := uploadDir()
	if err != nil {
		return nil, Internal("Error uploading file: %v", err)
	}

	filename := utils.UniqueFilename(dir, utils.SanitizeFilename(upload.Filename))
	savePath := filepath.Join(dir, filename)
	if err := os.WriteFile(savePath, upload.Content, 0o644); err != nil {
		return nil, Internal("Error uploading file: %v", err)
	}

	record := &models.File{
		TaskID:     &task.ID,
		Filename:   filename,
		Filepath:   savePath,
		UploadedBy: &user.ID,
	}
	if err := s.db.Create(record).Error; err != nil {
		os.Remove(savePath)
		return nil, Internal("Error uploading file: %v", err)
	}

	return &FileView{
		ID:       record.ID,
		Filename: record.Filename,
		Task:     &TaskRef{ID: task.ID, Title: task.Title, Status: string(task.Status)},
		UploadedBy: &UploaderRef{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		FileSize:   utils.FileSize(savePath),
		UploadDate: utils.FormatTime(record.UploadDate),
	}, nil
}

func (s *FileService) uploaderRef(userID *uint, withEmail, withCode bool) *UploaderRef {
	if userID == nil {
		return nil
	}
	var user models.User
	if err := s.db.First(&user, *userID).Error; err != nil {
		return nil
	}
	ref := &UploaderRef{ID: user.ID, Name: user.Name}
	if withEmail {
		ref.Email = user.Email
	}
	if withCode {
		ref.EmployeeCode = user.EmployeeCode
	}
	return ref
}

func (s *FileService) taskRef(taskID *uint) *TaskRef {
	if taskID == nil {
		return nil
	}
	var task models.Task
	if err := s.db.First(&task, *taskID).Error; err != nil {
		return nil
	}
	return &TaskRef{ID: task.ID, Title: task.Title, Status: string(task.Status)}
}

// ByTask lists a task's attachments, newest first.
func (s *FileService) ByTask(taskID uint) (*FileListing, *Error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		return nil, NotFound("Task with ID %d not found", taskID)
	}

	var files []models.File
	if err := s.db.Where("task_id = ?", taskID).Order("upload_date DESC").Find(&files).Error; err != nil {
		return nil, Internal("Error loading files: %v", err)
	}

	listing := &FileListing{Files: make([]FileView, 0, len(files))}
	for i := range files {
		f := &files[i]
		size := utils.FileSize(f.Filepath)
		listing.TotalSize += size
		listing.Files = append(listing.Files, FileView{
			ID:         f.ID,
			Filename:   f.Filename,
			Filepath:   f.Filepath,
			UploadedBy: s.uploaderRef(f.UploadedBy, true, false),
			FileSize:   size,
			UploadDate: utils.FormatTime(f.UploadDate),
		})
	}
	listing.TotalFiles = len(listing.Files)
	return listing, nil
}

// DownloadTarget resolves a file record to its path and display name.
func (s *FileService) DownloadTarget(fileID uint) (path, name string, serr *Error) {
	var record models.File
	if err := s.db.First(&record, fileID).Error; err != nil {
		return "", "", NotFound("File not found")
	}
	if _, err := os.Stat(record.Filepath); err != nil {
		return "", "", NotFound("File does not exist on server")
	}
	return record.Filepath, record.Filename, nil
}

// Delete removes an attachment. The uploader may always delete their
// own; admins and leaders may delete any.
func (s *FileService) Delete(callerID *uint, fileID uint) *Error {
	var record models.File
	if err := s.db.First(&record, fileID).Error; err != nil {
		return NotFound("File not found")
	}

	if callerID != nil {
		var user models.User
		if err := s.db.First(&user, *callerID).Error; err != nil {
			return NotFound("User not found")
		}
		owns := record.UploadedBy != nil && *record.UploadedBy == *callerID
		if user.Role != models.RoleAdmin && user.Role != models.RoleLeader && !owns {
			return Forbidden("You do not have permission to delete this file")
		}
	}

	if _, err := os.Stat(record.Filepath); err == nil {
		os.Remove(record.Filepath)
	}
	if err := s.db.Delete(&record).Error; err != nil {
		return Internal("Error deleting file: %v", err)
	}
	return nil
}

// Detail loads one attachment with its task and uploader.
func (s *FileService) Detail(fileID uint) (*FileView, *Error) {
	var record models.File
	if err := s.db.First(&record, fileID).Error; err != nil {
		return nil, NotFound("File not found")
	}

	return &FileView{
		ID:         record.ID,
		Filename:   record.Filename,
		Filepath:   record.Filepath,
		FileSize:   utils.FileSize(record.Filepath),
		Task:       s.taskRef(record.TaskID),
		UploadedBy: s.uploaderRef(record.UploadedBy, true, true),
		UploadDate: utils.FormatTime(record.UploadDate),
	}, nil
}

// All lists every attachment; admins and leaders only.
func (s *FileService) All(callerID *uint) (*FileListing, *Error) {
	if callerID != nil {
		var user models.User
		if err := s.db.First(&user, *callerID).Error; err != nil || (user.Role != models.RoleAdmin && user.Role != models.RoleLeader) {
			return nil, Forbidden("Access denied. Only admins or leaders can view all files")
		}
	}

	var files []models.File
	if err := s.db.Order("upload_date DESC").Find(&files).Error; err != nil {
		return nil, Internal("Error loading files: %v", err)
	}

	listing := &FileListing{Files: make([]FileView, 0, len(files))}
	for i := range files {
		f := &files[i]
		size := utils.FileSize(f.Filepath)
		listing.TotalSize += size
		listing.Files = append(listing.Files, FileView{
			ID:         f.ID,
			Filename:   f.Filename,
			FileSize:   size,
			Task:       s.taskRef(f.TaskID),
			UploadedBy: s.uploaderRef(f.UploadedBy, false, true),
			UploadDate: utils.FormatTime(f.UploadDate),
		})
	}
	listing.TotalFiles = len(listing.Files)
	return listing, nil
}

// UserFiles wraps one user's uploads with their identity.
type UserFiles struct {
	User       UploaderRef `json:"user"`
	Files      []FileView  `json:"files"`
	TotalFiles int         `json:"total_files"`
	TotalSize  int64       `json:"total_size"`
}

// ByUser lists one user's uploads.
func (s *FileService) ByUser(userID uint) (*UserFiles, *Error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFound("User not found")
	}

	var files []models.File
	if err := s.db.Where("uploaded_by = ?", userID).Order("upload_date DESC").Find(&files).Error; err != nil {
		return nil, Internal("Error loading files: %v", err)
	}

	result := &UserFiles{
		User:  UploaderRef{ID: user.ID, Name: user.Name, EmployeeCode: user.EmployeeCode},
		Files: make([]FileView, 0, len(files)),
	}
	for i := range files {
		f := &files[i]
		size := utils.FileSize(f.Filepath)
		result.TotalSize += size
		result.Files = append(result.Files, FileView{
			ID:         f.ID,
			Filename:   f.Filename,
			FileSize:   size,
			Task:       s.taskRef(f.TaskID),
			UploadDate: utils.FormatTime(f.UploadDate),
		})
	}
	result.TotalFiles = len(result.Files)
	return result, nil
}

// FileStats aggregates storage usage for admins and leaders.
type FileStats struct {
	TotalFiles   int            `json:"total_files"`
	TotalSize    int64          `json:"total_size"`
	FileTypes    map[string]int `json:"file_types"`
	TopUploaders map[string]int `json:"top_uploaders"`
}

// Stats breaks down storage by extension and by uploader, keeping the
// ten busiest uploaders.
func (s *FileService) Stats(callerID *uint) (*FileStats, *Error) {
	if callerID != nil {
		var user models.User
		if err := s.db.First(&user, *callerID).Error; err != nil || (user.Role != models.RoleAdmin && user.Role != models.RoleLeader) {
			return nil, Forbidden("Access denied")
		}
	}

	var files []models.File
	if err := s.db.Find(&files).Error; err != nil {
		return nil, Internal("Error loading files: %v", err)
	}

	stats := &FileStats{
		FileTypes:    map[string]int{},
		TopUploaders: map[string]int{},
	}
	uploaderCounts := map[string]int{}
	for i := range files {
		f := &files[i]
		stats.TotalFiles++
		stats.TotalSize += utils.FileSize(f.Filepath)

		ext := "unknown"
		if idx := strings.LastIndex(f.Filename, "."); idx >= 0 {
			ext = strings.ToLower(f.Filename[idx+1:])
		}
		stats.FileTypes[ext]++

		if f.UploadedBy != nil {
			var user models.User
			if err := s.db.First(&user, *f.UploadedBy).Error; err == nil {
				uploaderCounts[user.Name]++
			}
		}
	}

	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(uploaderCounts))
	for name, count := range uploaderCounts {
		pairs = append(pairs, pair{name, count})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].count > pairs[j].count })
	if len(pairs) > 10 {
		pairs = pairs[:10]
	}
	for _, p := range pairs {
		stats.TopUploaders[p.name] = p.count
	}

	return stats, nil
}
