// services/user_service.go - Accounts, authentication, and user admin
package services

import (
	"fmt"
	"strings"
	"time"
	"worktrack/models"
	"worktrack/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// generateEmployeeCode builds the next code for a role: prefix, the
// current year, and a 3-digit sequence counting same-role users
// registered since January 1st.
func (s *UserService) generateEmployeeCode(role models.Role) string {
	year := time.Now().UTC().Year()
	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)

	var count int64
	s.db.Model(&models.User{}).Where("role = ? AND created_at >= ?", role, yearStart).Count(&count)

	code := fmt.Sprintf("%s%d%03d", role.CodePrefix(), year, count+1)

	// Suffix until unique; the sequence can collide after deletions.
	original := code
	for counter := 1; ; counter++ {
		var existing int64
		s.db.Model(&models.User{}).Where("employee_code = ?", code).Count(&existing)
		if existing == 0 {
			return code
		}
		code = fmt.Sprintf("%s_%d", original, counter)
	}
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
	AdminID  *uint  `json:"admin_id"`
}

// RegisterResult pairs the created user with the onboarding hint.
type RegisterResult struct {
	User     *models.User
	NextStep string
}

// Register creates an account with an auto-generated employee code.
// Creating admin or leader accounts requires an authorizing admin.
func (s *UserService) Register(input RegisterInput) (*RegisterResult, *Error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, Invalid("Missing required fields: name, email, password")
	}

	role := models.RoleEmployee
	if input.Role != "" {
		role = models.Role(input.Role)
		if !role.Valid() {
			return nil, Invalid("Invalid role. Must be employee, leader, or admin")
		}
	}

	if role == models.RoleAdmin || role == models.RoleLeader {
		if input.AdminID == nil {
			return nil, Forbidden("Admin authorization required to create admin/leader account")
		}
		var admin models.User
		if err := s.db.First(&admin, *input.AdminID).Error; err != nil || admin.Role != models.RoleAdmin {
			return nil, Forbidden("Only admins can create admin/leader accounts")
		}
	}

	var existing int64
	s.db.Model(&models.User{}).Where("email = ?", input.Email).Count(&existing)
	if existing > 0 {
		return nil, Invalid("Email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Internal("Error creating user: %v", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		EmployeeCode: s.generateEmployeeCode(role),
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, Internal("Error creating user: %v", err)
	}

	nextStep := "Contact admin to assign group"
	if role == models.RoleEmployee {
		nextStep = "Join a group using /api/groups/join"
	}
	return &RegisterResult{User: user, NextStep: nextStep}, nil
}

// Login verifies credentials and returns the user.
func (s *UserService) Login(email, password string) (*models.User, *Error) {
	if email == "" || password == "" {
		return nil, Invalid("Missing email or password")
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, NotFound("User not found")
	}
	if !user.IsActive {
		return nil, Forbidden("Account is deactivated. Please contact admin.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, Unauthorized("Invalid password")
	}
	return &user, nil
}

// ChangePassword verifies the current password before rehashing.
func (s *UserService) ChangePassword(userID uint, currentPassword, newPassword string) *Error {
	if currentPassword == "" || newPassword == "" {
		return Invalid("Missing required fields")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return NotFound("User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return Unauthorized("Current password is incorrect")
	}
	if len(newPassword) < 6 {
		return Invalid("New password must be at least 6 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return Internal("Error changing password: %v", err)
	}
	if err := s.db.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		return Internal("Error changing password: %v", err)
	}
	return nil
}

// ForgotPassword confirms the account exists; mail delivery is not
// wired up yet.
func (s *UserService) ForgotPassword(email string) *Error {
	if email == "" {
		return Invalid("Email is required")
	}
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return NotFound("User not found")
	}
	return nil
}

// GroupRef is the compact group reference embedded in user payloads.
type GroupRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (s *UserService) groupRef(groupID *uint) *GroupRef {
	if groupID == nil {
		return nil
	}
	var group models.Group
	if err := s.db.First(&group, *groupID).Error; err != nil {
		return nil
	}
	return &GroupRef{ID: group.ID, Name: group.Name}
}

// UserListFilters narrow the user listing.
type UserListFilters struct {
	Role         string
	GroupID      *uint
	EmployeeCode string
	Name         string
}

// UserSummary is one row of the user listing with task counters.
type UserSummary struct {
	ID             uint      `json:"id"`
	EmployeeCode   string    `json:"employee_code"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Group          *GroupRef `json:"group"`
	IsActive       bool      `json:"is_active"`
	TotalTasks     int64     `json:"total_tasks"`
	CompletedTasks int64     `json:"completed_tasks"`
	CompletionRate string    `json:"completion_rate"`
	CreatedAt      string    `json:"created_at"`
}

// List returns users matching the filters, each with its assignment
// statistics.
func (s *UserService) List(filters UserListFilters) ([]UserSummary, *Error) {
	query := s.db.Model(&models.User{})
	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}
	if filters.GroupID != nil {
		query = query.Where("group_id = ?", *filters.GroupID)
	}
	if filters.EmployeeCode != "" {
		query = query.Where("employee_code LIKE ?", "%"+filters.EmployeeCode+"%")
	}
	if filters.Name != "" {
		query = query.Where("name LIKE ?", "%"+filters.Name+"%")
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, Internal("Error loading users: %v", err)
	}

	result := make([]UserSummary, 0, len(users))
	for i := range users {
		user := &users[i]
		var total, completed int64
		s.db.Model(&models.Task{}).Where("assignee_id = ?", user.ID).Count(&total)
		s.db.Model(&models.Task{}).Where("assignee_id = ? AND status = ?", user.ID, models.TaskStatusDone).Count(&completed)

		result = append(result, UserSummary{
			ID:             user.ID,
			EmployeeCode:   user.EmployeeCode,
			Name:           user.Name,
			Email:          user.Email,
			Role:           string(user.Role),
			Group:          s.groupRef(user.GroupID),
			IsActive:       user.IsActive,
			TotalTasks:     total,
			CompletedTasks: completed,
			CompletionRate: percent(completed, total),
			CreatedAt:      utils.FormatTime(user.CreatedAt),
		})
	}
	return result, nil
}

func (s *UserService) requireAdmin(adminID *uint, deniedMsg string) *Error {
	if adminID == nil {
		return Forbidden("%s", deniedMsg)
	}
	var admin models.User
	if err := s.db.First(&admin, *adminID).Error; err != nil || admin.Role != models.RoleAdmin {
		return Forbidden("%s", deniedMsg)
	}
	return nil
}

// Promote raises a user to leader.
func (s *UserService) Promote(adminID *uint, userID uint) (string, *Error) {
	if serr := s.requireAdmin(adminID, "Access denied. Only admins can promote users"); serr != nil {
		return "", serr
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", NotFound("User not found")
	}
	if user.Role == models.RoleLeader {
		return "", Invalid("User is already a leader")
	}

	if err := s.db.Model(&user).Update("role", models.RoleLeader).Error; err != nil {
		return "", Internal("Error updating user: %v", err)
	}
	return fmt.Sprintf("User %s promoted to leader successfully", user.Name), nil
}

// Demote lowers a user back to employee.
func (s *UserService) Demote(adminID *uint, userID uint) (string, *Error) {
	if serr := s.requireAdmin(adminID, "Access denied. Only admins can demote users"); serr != nil {
		return "", serr
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", NotFound("User not found")
	}
	if user.Role == models.RoleEmployee {
		return "", Invalid("User is already an employee")
	}

	if err := s.db.Model(&user).Update("role", models.RoleEmployee).Error; err != nil {
		return "", Internal("Error updating user: %v", err)
	}
	return fmt.Sprintf("User %s demoted to employee successfully", user.Name), nil
}

// UserUpdateInput carries the optional profile fields.
type UserUpdateInput struct {
	AdminID      *uint   `json:"admin_id"`
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	EmployeeCode *string `json:"employee_code"`
	GroupID      *uint   `json:"group_id"`
	IsActive     *bool   `json:"is_active"`
	Role         *string `json:"role"`
	Password     *string `json:"password"`
}

// Update applies a partial profile update. Role changes take effect
// only when an admin other than the target performs them.
func (s *UserService) Update(userID uint, input UserUpdateInput) *Error {
	var acting *models.User
	if input.AdminID != nil {
		var admin models.User
		if err := s.db.First(&admin, *input.AdminID).Error; err != nil {
			return Forbidden("Access denied")
		}
		if admin.Role != models.RoleAdmin && admin.ID != userID {
			return Forbidden("Access denied")
		}
		acting = &admin
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return NotFound("User not found")
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.EmployeeCode != nil {
		user.EmployeeCode = *input.EmployeeCode
	}
	if input.GroupID != nil {
		user.GroupID = input.GroupID
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if input.Role != nil && acting != nil && acting.Role == models.RoleAdmin && acting.ID != userID {
		role := models.Role(*input.Role)
		if role.Valid() {
			user.Role = role
		}
	}

	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return Internal("Error updating user: %v", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.db.Save(&user).Error; err != nil {
		return Internal("Error updating user: %v", err)
	}
	return nil
}

// AdminCreateInput is the admin-create payload; the employee code may
// be supplied or falls back to a random EMP code.
type AdminCreateInput struct {
	AdminID      *uint  `json:"admin_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	EmployeeCode string `json:"employee_code"`
	GroupID      *uint  `json:"group_id"`
}

// AdminCreate inserts a user directly, for admin provisioning flows.
func (s *UserService) AdminCreate(input AdminCreateInput) (*models.User, *Error) {
	if serr := s.requireAdmin(input.AdminID, "Access denied. Only admins can create users"); serr != nil {
		return nil, serr
	}

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, Invalid("Missing required fields: name, email, password")
	}

	role := models.RoleEmployee
	if input.Role != "" {
		role = models.Role(input.Role)
		if !role.Valid() {
			return nil, Invalid("Invalid role. Must be employee, leader, or admin")
		}
	}

	code := input.EmployeeCode
	if code == "" {
		code = "EMP" + strings.ToUpper(uuid.New().String()[:8])
	}

	var existing int64
	s.db.Model(&models.User{}).Where("email = ?", input.Email).Count(&existing)
	if existing > 0 {
		return nil, Invalid("Email already exists")
	}
	s.db.Model(&models.User{}).Where("employee_code = ?", code).Count(&existing)
	if existing > 0 {
		return nil, Invalid("Employee code already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Internal("Error creating user: %v", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		EmployeeCode: code,
		GroupID:      input.GroupID,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, Internal("Error creating user: %v", err)
	}
	return user, nil
}

// Delete removes a user. Admins cannot delete themselves.
func (s *UserService) Delete(adminID *uint, userID uint) (string, *Error) {
	if serr := s.requireAdmin(adminID, "Access denied. Only admins can delete users"); serr != nil {
		return "", serr
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", NotFound("User not found")
	}
	if adminID != nil && *adminID == userID {
		return "", Invalid("Cannot delete yourself")
	}

	if err := s.db.Delete(&user).Error; err != nil {
		return "", Internal("Error deleting user: %v", err)
	}
	return fmt.Sprintf("User %s deleted successfully", user.Name), nil
}

// SystemStats is the system-wide overview for admins.
type SystemStats struct {
	Users struct {
		Total     int64 `json:"total"`
		Employees int64 `json:"employees"`
		Leaders   int64 `json:"leaders"`
		Admins    int64 `json:"admins"`
	} `json:"users"`
	Tasks struct {
		Total          int64  `json:"total"`
		Completed      int64  `json:"completed"`
		Active         int64  `json:"active"`
		CompletionRate string `json:"completion_rate"`
	} `json:"tasks"`
	Files struct {
		Total int64 `json:"total"`
	} `json:"files"`
	Reports struct {
		Total int64 `json:"total"`
	} `json:"reports"`
	Groups struct {
		Total int64 `json:"total"`
	} `json:"groups"`
}

// SystemStatsOverview counts every entity for the admin dashboard.
func (s *UserService) SystemStatsOverview() (*SystemStats, error) {
	var stats SystemStats

	s.db.Model(&models.User{}).Count(&stats.Users.Total)
	s.db.Model(&models.User{}).Where("role = ?", models.RoleEmployee).Count(&stats.Users.Employees)
	s.db.Model(&models.User{}).Where("role = ?", models.RoleLeader).Count(&stats.Users.Leaders)
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&stats.Users.Admins)

	s.db.Model(&models.Task{}).Count(&stats.Tasks.Total)
	s.db.Model(&models.Task{}).Where("status = ?", models.TaskStatusDone).Count(&stats.Tasks.Completed)
	s.db.Model(&models.Task{}).Where("status IN ?", []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusDoing}).Count(&stats.Tasks.Active)
	stats.Tasks.CompletionRate = percent(stats.Tasks.Completed, stats.Tasks.Total)

	s.db.Model(&models.File{}).Count(&stats.Files.Total)
	s.db.Model(&models.Report{}).Count(&stats.Reports.Total)
	s.db.Model(&models.Group{}).Count(&stats.Groups.Total)

	return &stats, nil
}

// EmployeeView is one row of the assignable-employee listing.
type EmployeeView struct {
	ID           uint      `json:"id"`
	EmployeeCode string    `json:"employee_code"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Group        *GroupRef `json:"group"`
	IsActive     bool      `json:"is_active"`
}

// Employees lists all employee accounts.
func (s *UserService) Employees() ([]EmployeeView, error) {
	var users []models.User
	if err := s.db.Where("role = ?", models.RoleEmployee).Find(&users).Error; err != nil {
		return nil, err
	}

	result := make([]EmployeeView, 0, len(users))
	for i := range users {
		user := &users[i]
		result = append(result, EmployeeView{
			ID:           user.ID,
			EmployeeCode: user.EmployeeCode,
			Name:         user.Name,
			Email:        user.Email,
			Group:        s.groupRef(user.GroupID),
			IsActive:     user.IsActive,
		})
	}
	return result, nil
}

// AvailableLeader describes a leader/admin and whether a new group can
// be assigned to them.
type AvailableLeader struct {
	ID           uint      `json:"id"`
	EmployeeCode string    `json:"employee_code"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsLeading    bool      `json:"is_leading"`
	LedGroup     *GroupRef `json:"led_group"`
	CurrentGroup *GroupRef `json:"current_group"`
	CanBeLeader  bool      `json:"can_be_leader"`
	IsActive     bool      `json:"is_active"`
}

// AvailableLeaders lists leader and admin accounts with their current
// leadership state. Only users not yet leading a group can take one.
func (s *UserService) AvailableLeaders() ([]AvailableLeader, error) {
	var users []models.User
	if err := s.db.Where("role IN ?", []models.Role{models.RoleLeader, models.RoleAdmin}).Find(&users).Error; err != nil {
		return nil, err
	}

	result := make([]AvailableLeader, 0, len(users))
	for i := range users {
		user := &users[i]

		var led models.Group
		var ledRef *GroupRef
		isLeading := false
		if err := s.db.Where("leader_id = ?", user.ID).First(&led).Error; err == nil {
			isLeading = true
			ledRef = &GroupRef{ID: led.ID, Name: led.Name}
		}

		result = append(result, AvailableLeader{
			ID:           user.ID,
			EmployeeCode: user.EmployeeCode,
			Name:         user.Name,
			Email:        user.Email,
			Role:         string(user.Role),
			IsLeading:    isLeading,
			LedGroup:     ledRef,
			CurrentGroup: s.groupRef(user.GroupID),
			CanBeLeader:  !isLeading,
			IsActive:     user.IsActive,
		})
	}
	return result, nil
}

// LeaderView is one row of the leader listing with activity counters.
type LeaderView struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	EmployeeCode   string `json:"employee_code"`
	TasksAssigned  int64  `json:"tasks_assigned"`
	ReportsCreated int64  `json:"reports_created"`
}

// Leaders lists leader accounts with how much they have assigned.
func (s *UserService) Leaders() ([]LeaderView, error) {
	var users []models.User
	if err := s.db.Where("role = ?", models.RoleLeader).Find(&users).Error; err != nil {
		return nil, err
	}

	result := make([]LeaderView, 0, len(users))
	for i := range users {
		user := &users[i]
		var tasksAssigned, reportsCreated int64
		s.db.Model(&models.Task{}).Where("assigner_id = ?", user.ID).Count(&tasksAssigned)
		s.db.Model(&models.Report{}).Where("user_id = ?", user.ID).Count(&reportsCreated)

		result = append(result, LeaderView{
			ID:             user.ID,
			Name:           user.Name,
			Email:          user.Email,
			EmployeeCode:   user.EmployeeCode,
			TasksAssigned:  tasksAssigned,
			ReportsCreated: reportsCreated,
		})
	}
	return result, nil
}

// UserStatistics is the per-user activity rollup.
type UserStatistics struct {
	TotalTasks      int64  `json:"total_tasks"`
	CompletedTasks  int64  `json:"completed_tasks"`
	InProgressTasks int64  `json:"in_progress_tasks"`
	TodoTasks       int64  `json:"todo_tasks"`
	UploadedFiles   int64  `json:"uploaded_files"`
	ReportsCreated  int64  `json:"reports_created"`
	CompletionRate  string `json:"completion_rate"`
}

func (s *UserService) statistics(userID uint) UserStatistics {
	var stats UserStatistics
	s.db.Model(&models.Task{}).Where("assignee_id = ?", userID).Count(&stats.TotalTasks)
	s.db.Model(&models.Task{}).Where("assignee_id = ? AND status = ?", userID, models.TaskStatusDone).Count(&stats.CompletedTasks)
	s.db.Model(&models.Task{}).Where("assignee_id = ? AND status = ?", userID, models.TaskStatusDoing).Count(&stats.InProgressTasks)
	s.db.Model(&models.Task{}).Where("assignee_id = ? AND status = ?", userID, models.TaskStatusTodo).Count(&stats.TodoTasks)
	s.db.Model(&models.File{}).Where("uploaded_by = ?", userID).Count(&stats.UploadedFiles)
	s.db.Model(&models.Report{}).Where("user_id = ?", userID).Count(&stats.ReportsCreated)
	stats.CompletionRate = percent(stats.CompletedTasks, stats.TotalTasks)
	return stats
}

// UserDetail is the single-user payload with statistics.
type UserDetail struct {
	ID           uint           `json:"id"`
	EmployeeCode string         `json:"employee_code"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	Group        interface{}    `json:"group"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    string         `json:"created_at"`
	Statistics   UserStatistics `json:"statistics"`
}

// Detail loads one user with their counters and group.
func (s *UserService) Detail(userID uint) (*UserDetail, *Error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFound("User not found")
	}

	var groupInfo interface{}
	if user.GroupID != nil {
		var group models.Group
		if err := s.db.First(&group, *user.GroupID).Error; err == nil {
			groupInfo = map[string]interface{}{
				"id":          group.ID,
				"name":        group.Name,
				"description": group.Description,
			}
		}
	}

	return &UserDetail{
		ID:           user.ID,
		EmployeeCode: user.EmployeeCode,
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		Group:        groupInfo,
		IsActive:     user.IsActive,
		CreatedAt:    utils.FormatTime(user.CreatedAt),
		Statistics:   s.statistics(user.ID),
	}, nil
}

// RecentTask is one of the profile's recent-activity entries.
type RecentTask struct {
	ID        uint        `json:"id"`
	Title     string      `json:"title"`
	Status    string      `json:"status"`
	Priority  string      `json:"priority"`
	UpdatedAt interface{} `json:"updated_at"`
	CreatedAt interface{} `json:"created_at"`
}

// UserProfile is the full profile payload including recent tasks and
// the group's leader.
type UserProfile struct {
	ID           uint           `json:"id"`
	EmployeeCode string         `json:"employee_code"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    string         `json:"created_at"`
	Group        interface{}    `json:"group"`
	Statistics   UserStatistics `json:"statistics"`
	RecentTasks  []RecentTask   `json:"recent_tasks"`
}

// Profile loads the user's full profile with the last 5 touched tasks.
func (s *UserService) Profile(userID uint) (*UserProfile, *Error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFound("User not found")
	}

	var recent []models.Task
	s.db.Where("assignee_id = ?", userID).Order("updated_at DESC").Limit(5).Find(&recent)
	recentTasks := make([]RecentTask, 0, len(recent))
	for i := range recent {
		task := &recent[i]
		recentTasks = append(recentTasks, RecentTask{
			ID:        task.ID,
			Title:     task.Title,
			Status:    string(task.Status),
			Priority:  string(task.Priority),
			UpdatedAt: utils.FormatTime(task.UpdatedAt),
			CreatedAt: utils.FormatTime(task.CreatedAt),
		})
	}

	var groupInfo interface{}
	if user.GroupID != nil {
		var group models.Group
		if err := s.db.First(&group, *user.GroupID).Error; err == nil {
			var leaderInfo interface{}
			if group.LeaderID != nil {
				var leader models.User
				if err := s.db.First(&leader, *group.LeaderID).Error; err == nil {
					leaderInfo = map[string]interface{}{
						"id":    leader.ID,
						"name":  leader.Name,
						"email": leader.Email,
					}
				}
			}
			var memberCount int64
			s.db.Model(&models.User{}).Where("group_id = ?", group.ID).Count(&memberCount)
			groupInfo = map[string]interface{}{
				"id":           group.ID,
				"name":         group.Name,
				"description":  group.Description,
				"leader":       leaderInfo,
				"member_count": memberCount,
			}
		}
	}

	return &UserProfile{
		ID:           user.ID,
		EmployeeCode: user.EmployeeCode,
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		IsActive:     user.IsActive,
		CreatedAt:    utils.FormatTime(user.CreatedAt),
		Group:        groupInfo,
		Statistics:   s.statistics(user.ID),
		RecentTasks:  recentTasks,
	}, nil
}

// Get loads the raw user record.
func (s *UserService) Get(userID uint) (*models.User, *Error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFound("User not found")
	}
	return &user, nil
}
