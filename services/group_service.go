// services/group_service.go - Group and membership workflow
package services

import (
	"errors"
	"fmt"
	"time"
	"worktrack/models"
	"worktrack/utils"

	"gorm.io/gorm"
)

type GroupService struct {
	db     *gorm.DB
	authz  *AuthzService
	notify *NotificationService
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{
		db:     db,
		authz:  NewAuthzService(db),
		notify: NewNotificationService(db),
	}
}

// GroupSummary is one row of the group listing.
type GroupSummary struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	LeaderName     string `json:"leader_name"`
	LeaderID       *uint  `json:"leader_id"`
	MemberCount    int64  `json:"member_count"`
	TotalTasks     int64  `json:"total_tasks"`
	CompletedTasks int64  `json:"completed_tasks"`
	CompletionRate string `json:"completion_rate"`
	CreatedAt      string `json:"created_at"`
}

// AvailableGroup is one row of the self-service join listing.
type AvailableGroup struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LeaderName  string `json:"leader_name"`
	MemberCount int64  `json:"member_count"`
	CanJoin     bool   `json:"can_join"`
}

// Create creates a group, optionally wiring up a leader. Admin only.
func (s *GroupService) Create(caller *models.User, name, description string, leaderID *uint) (*models.Group, *Error) {
	if serr := s.authz.Authorize(caller, ActionCreateGroup, nil); serr != nil {
		return nil, serr
	}
	if name == "" {
		return nil, Invalid("Group name is required")
	}

	var existing models.Group
	if err := s.db.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, Conflict("Group name already exists")
	}

	var leader *models.User
	if leaderID != nil {
		var u models.User
		if err := s.db.First(&u, *leaderID).Error; err != nil {
			return nil, NotFound("Leader not found")
		}
		leader = &u
		if leader.Role != models.RoleLeader && leader.Role != models.RoleAdmin {
			return nil, Invalid("Leader must have leader or admin role")
		}
		if serr := s.checkNotLeadingElsewhere(*leaderID, 0); serr != nil {
			return nil, serr
		}
		if leader.GroupID != nil {
			var current models.Group
			s.db.First(&current, *leader.GroupID)
			return nil, Conflict("User is currently a member of group %q. Remove from current group first.", current.Name)
		}
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		LeaderID:    leaderID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		if leader != nil {
			return tx.Model(leader).Update("group_id", group.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, Internal("Error creating group: %v", err)
	}

	return group, nil
}

// checkNotLeadingElsewhere enforces the one-group-per-leader rule.
// excludeGroupID skips the target group on re-assignment.
func (s *GroupService) checkNotLeadingElsewhere(userID, excludeGroupID uint) *Error {
	var led models.Group
	err := s.db.Where("leader_id = ?", userID).First(&led).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return Internal("Error checking leader assignment: %v", err)
	}
	if led.ID == excludeGroupID {
		return nil
	}
	return Conflict("User is already leading group %q. A user can only lead one group at a time.", led.Name)
}

// List returns all groups with membership and task statistics.
func (s *GroupService) List() ([]GroupSummary, error) {
	var groups []models.Group
	if err := s.db.Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}

	result := make([]GroupSummary, 0, len(groups))
	for _, group := range groups {
		leaderName := "No leader"
		if group.LeaderID != nil {
			var leader models.User
			if err := s.db.First(&leader, *group.LeaderID).Error; err == nil {
				leaderName = leader.Name
			}
		}

		var memberCount, totalTasks, completedTasks int64
		s.db.Model(&models.User{}).Where("group_id = ?", group.ID).Count(&memberCount)
		s.db.Model(&models.Task{}).Where("group_id = ?", group.ID).Count(&totalTasks)
		s.db.Model(&models.Task{}).Where("group_id = ? AND status = ?", group.ID, models.TaskStatusDone).Count(&completedTasks)

		result = append(result, GroupSummary{
			ID:             group.ID,
			Name:           group.Name,
			Description:    group.Description,
			LeaderName:     leaderName,
			LeaderID:       group.LeaderID,
			MemberCount:    memberCount,
			TotalTasks:     totalTasks,
			CompletedTasks: completedTasks,
			CompletionRate: percent(completedTasks, totalTasks),
			CreatedAt:      utils.FormatTime(group.CreatedAt),
		})
	}
	return result, nil
}

// AssignLeader points a group at a new leader and pulls the leader
// into the group. Admin only.
func (s *GroupService) AssignLeader(caller *models.User, groupID, leaderID uint) (string, *Error) {
	if serr := s.authz.Authorize(caller, ActionAssignLeader, nil); serr != nil {
		return "", serr
	}

	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		return "", NotFound("Group not found")
	}

	var leader models.User
	if err := s.db.First(&leader, leaderID).Error; err != nil {
		return "", NotFound("Leader not found")
	}
	if leader.Role != models.RoleLeader && leader.Role != models.RoleAdmin {
		return "", Invalid("User must have leader or admin role")
	}

	if serr := s.checkNotLeadingElsewhere(leaderID, groupID); serr != nil {
		return "", serr
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&group).Update("leader_id", leaderID).Error; err != nil {
			return err
		}
		if leader.GroupID == nil || *leader.GroupID != groupID {
			return tx.Model(&leader).Update("group_id", groupID).Error
		}
		return nil
	})
	if err != nil {
		return "", Internal("Error assigning leader: %v", err)
	}

	return fmt.Sprintf("Leader %s assigned to group %s successfully", leader.Name, group.Name), nil
}

// Join is employee self-service membership.
func (s *GroupService) Join(user *models.User, groupID uint) (string, *Error) {
	if user.Role != models.RoleEmployee {
		return "", Forbidden("Only employees can join groups")
	}

	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		return "", NotFound("Group not found")
	}

	if user.GroupID != nil {
		var current models.Group
		s.db.First(&current, *user.GroupID)
		return "", Conflict("You are already in group %q. Leave current group first.", current.Name)
	}

	if group.LeaderID == nil {
		return "", Invalid("This group has no leader. Cannot join.")
	}

	if err := s.db.Model(user).Update("group_id", groupID).Error; err != nil {
		return "", Internal("Error joining group: %v", err)
	}
	return fmt.Sprintf("Successfully joined group %s", group.Name), nil
}

// Leave detaches the user from their current group.
func (s *GroupService) Leave(user *models.User) (string, *Error) {
	if user.GroupID == nil {
		return "", Invalid("You are not in any group")
	}

	var old models.Group
	s.db.First(&old, *user.GroupID)

	if err := s.db.Model(user).Update("group_id", nil).Error; err != nil {
		return "", Internal("Error leaving group: %v", err)
	}
	return fmt.Sprintf("Successfully left group %s", old.Name), nil
}

// AddMember attaches an employee to a group on behalf of an
// admin/leader caller, notifying the member and the group's leader.
func (s *GroupService) AddMember(caller *models.User, groupID, userID uint) (string, *Error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if serr := s.authz.Authorize(caller, ActionAddMember, nil); serr != nil {
			return "", serr
		}
		return "", NotFound("Group not found")
	}

	if serr := s.authz.Authorize(caller, ActionAddMember, &group); serr != nil {
		return "", serr
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", NotFound("User not found")
	}
	if user.Role != models.RoleEmployee {
		return "", Invalid("Only employees can be added to groups")
	}

	if user.GroupID != nil {
		if *user.GroupID == groupID {
			return "", Conflict("User is already in this group")
		}
		var current models.Group
		s.db.First(&current, *user.GroupID)
		return "", Conflict("User is already in group %q", current.Name)
	}

	if err := s.db.Model(&user).Update("group_id", groupID).Error; err != nil {
		return "", Internal("Error adding user to group: %v", err)
	}

	s.notify.Notify(user.ID,
		fmt.Sprintf("Added to group: %s", group.Name),
		fmt.Sprintf("You have been added to the group '%s'", group.Name),
		models.NotificationGroupJoined,
		NotifyOptions{GroupID: &group.ID})

	if group.LeaderID != nil && *group.LeaderID != user.ID {
		s.notify.Notify(*group.LeaderID,
			fmt.Sprintf("New member joined: %s", group.Name),
			fmt.Sprintf("%s has joined your group '%s'", user.Name, group.Name),
			models.NotificationGroupJoined,
			NotifyOptions{GroupID: &group.ID})
	}

	return fmt.Sprintf("User %s added to group %s successfully", user.Name, group.Name), nil
}

// RemoveMember detaches a user from their group. Removing the current
// leader leaves the group leaderless rather than failing.
func (s *GroupService) RemoveMember(caller *models.User, userID uint) (string, *Error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if serr := s.authz.Authorize(caller, ActionRemoveMember, nil); serr != nil {
			return "", serr
		}
		return "", NotFound("User not found")
	}

	if user.GroupID == nil {
		if serr := s.authz.Authorize(caller, ActionRemoveMember, nil); serr != nil {
			return "", serr
		}
		return "", Invalid("User is not in any group")
	}

	var group models.Group
	if err := s.db.First(&group, *user.GroupID).Error; err != nil {
		return "", NotFound("Group not found")
	}

	if serr := s.authz.Authorize(caller, ActionRemoveMember, &group); serr != nil {
		return "", serr
	}
	if caller.Role == models.RoleLeader && caller.ID == userID {
		return "", Forbidden("You cannot remove yourself from the group")
	}

	wasLeader := group.LeaderID != nil && *group.LeaderID == userID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("group_id", nil).Error; err != nil {
			return err
		}
		if wasLeader {
			return tx.Model(&group).Update("leader_id", nil).Error
		}
		return nil
	})
	if err != nil {
		return "", Internal("Error removing member: %v", err)
	}

	s.notify.Notify(user.ID,
		fmt.Sprintf("Removed from group: %s", group.Name),
		fmt.Sprintf("You have been removed from the group '%s'", group.Name),
		models.NotificationGroupRemoved,
		NotifyOptions{GroupID: &group.ID})

	message := fmt.Sprintf("User %s removed from group %s successfully", user.Name, group.Name)
	if wasLeader {
		message += ". Group now has no leader."
	}
	return message, nil
}

// MemberStats is per-member task statistics in the group detail view.
type MemberStats struct {
	ID             uint        `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           models.Role `json:"role"`
	EmployeeCode   string      `json:"employee_code"`
	TasksAssigned  int64       `json:"tasks_assigned"`
	TasksCompleted int64       `json:"tasks_completed"`
	CompletionRate string      `json:"completion_rate"`
}

// GroupDetail is the full group view with statistics and members.
type GroupDetail struct {
	ID          uint                   `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Leader      map[string]interface{} `json:"leader"`
	CreatedAt   string                 `json:"created_at"`
	Statistics  map[string]interface{} `json:"statistics"`
	Members     []MemberStats          `json:"members"`
}

// Detail loads a group with per-member statistics.
func (s *GroupService) Detail(groupID uint) (*GroupDetail, *Error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		return nil, NotFound("Group not found")
	}

	var leaderInfo map[string]interface{}
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

	var members []models.User
	s.db.Where("group_id = ?", groupID).Find(&members)

	var totalTasks, completedTasks, inProgressTasks, todoTasks int64
	s.db.Model(&models.Task{}).Where("group_id = ?", groupID).Count(&totalTasks)
	s.db.Model(&models.Task{}).Where("group_id = ? AND status = ?", groupID, models.TaskStatusDone).Count(&completedTasks)
	s.db.Model(&models.Task{}).Where("group_id = ? AND status = ?", groupID, models.TaskStatusDoing).Count(&inProgressTasks)
	s.db.Model(&models.Task{}).Where("group_id = ? AND status = ?", groupID, models.TaskStatusTodo).Count(&todoTasks)

	memberList := make([]MemberStats, 0, len(members))
	for _, member := range members {
		var assigned, completed int64
		s.db.Model(&models.Task{}).Where("assignee_id = ? AND group_id = ?", member.ID, groupID).Count(&assigned)
		s.db.Model(&models.Task{}).Where("assignee_id = ? AND group_id = ? AND status = ?", member.ID, groupID, models.TaskStatusDone).Count(&completed)

		memberList = append(memberList, MemberStats{
			ID:             member.ID,
			Name:           member.Name,
			Email:          member.Email,
			Role:           member.Role,
			EmployeeCode:   member.EmployeeCode,
			TasksAssigned:  assigned,
			TasksCompleted: completed,
			CompletionRate: percent(completed, assigned),
		})
	}

	return &GroupDetail{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Leader:      leaderInfo,
		CreatedAt:   utils.FormatTime(group.CreatedAt),
		Statistics: map[string]interface{}{
			"total_members":     len(members),
			"total_tasks":       totalTasks,
			"completed_tasks":   completedTasks,
			"in_progress_tasks": inProgressTasks,
			"todo_tasks":        todoTasks,
			"completion_rate":   percent(completedTasks, totalTasks),
		},
		Members: memberList,
	}, nil
}

// GroupUpdateInput carries the optional group update fields. A non-nil
// LeaderID pointing at 0 clears the leader.
type GroupUpdateInput struct {
	Name        *string
	Description *string
	LeaderID    *uint
	ClearLeader bool
}

// Update edits a group; leader changes are admin only.
func (s *GroupService) Update(caller *models.User, groupID uint, input GroupUpdateInput) *Error {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if serr := s.authz.Authorize(caller, ActionUpdateGroup, nil); serr != nil {
			return serr
		}
		return NotFound("Group not found")
	}

	if serr := s.authz.Authorize(caller, ActionUpdateGroup, &group); serr != nil {
		return serr
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	var newLeader *models.User
	if caller.Role == models.RoleAdmin {
		if input.ClearLeader {
			updates["leader_id"] = nil
		} else if input.LeaderID != nil && (group.LeaderID == nil || *group.LeaderID != *input.LeaderID) {
			var u models.User
			if err := s.db.First(&u, *input.LeaderID).Error; err != nil {
				return NotFound("New leader not found")
			}
			if u.Role != models.RoleLeader && u.Role != models.RoleAdmin {
				return Invalid("New leader must have leader or admin role")
			}
			if serr := s.checkNotLeadingElsewhere(*input.LeaderID, groupID); serr != nil {
				return serr
			}
			updates["leader_id"] = *input.LeaderID
			if u.GroupID == nil || *u.GroupID != groupID {
				newLeader = &u
			}
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&group).Updates(updates).Error; err != nil {
				return err
			}
		}
		if newLeader != nil {
			return tx.Model(newLeader).Update("group_id", groupID).Error
		}
		return nil
	})
	if err != nil {
		return Internal("Error updating group: %v", err)
	}
	return nil
}

// Delete removes an empty group. Admin only; non-empty groups are
// rejected rather than cascaded.
func (s *GroupService) Delete(caller *models.User, groupID uint) (string, *Error) {
	if serr := s.authz.Authorize(caller, ActionDeleteGroup, nil); serr != nil {
		return "", serr
	}

	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		return "", NotFound("Group not found")
	}

	var memberCount int64
	s.db.Model(&models.User{}).Where("group_id = ?", groupID).Count(&memberCount)
	if memberCount > 0 {
		return "", Conflict("Cannot delete group. It has %d member(s). Remove all members first.", memberCount)
	}

	if err := s.db.Delete(&group).Error; err != nil {
		return "", Internal("Error deleting group: %v", err)
	}
	return fmt.Sprintf("Group %s deleted successfully", group.Name), nil
}

// Available lists groups for the employee join view. can_join requires
// a leader and spare capacity.
func (s *GroupService) Available() ([]AvailableGroup, error) {
	var groups []models.Group
	if err := s.db.Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}

	result := make([]AvailableGroup, 0, len(groups))
	for _, group := range groups {
		leaderName := "No leader"
		if group.LeaderID != nil {
			var leader models.User
			if err := s.db.First(&leader, *group.LeaderID).Error; err == nil {
				leaderName = leader.Name
			}
		}

		var memberCount int64
		s.db.Model(&models.User{}).Where("group_id = ?", group.ID).Count(&memberCount)

		result = append(result, AvailableGroup{
			ID:          group.ID,
			Name:        group.Name,
			Description: group.Description,
			LeaderName:  leaderName,
			MemberCount: memberCount,
			CanJoin:     memberCount < models.MaxGroupMembers && group.LeaderID != nil,
		})
	}
	return result, nil
}

// PromoteMember makes an existing member the group's leader, raising
// their role when needed. Admin only.
func (s *GroupService) PromoteMember(caller *models.User, userID, groupID uint) (string, *Error) {
	if serr := s.authz.Authorize(caller, ActionPromoteMember, nil); serr != nil {
		return "", serr
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", NotFound("User not found")
	}

	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		return "", NotFound("Group not found")
	}

	if user.GroupID == nil || *user.GroupID != groupID {
		return "", Invalid("User is not a member of this group")
	}

	if serr := s.checkNotLeadingElsewhere(userID, 0); serr != nil {
		return "", serr
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if user.Role == models.RoleEmployee {
			if err := tx.Model(&user).Update("role", models.RoleLeader).Error; err != nil {
				return err
			}
		}
		return tx.Model(&group).Update("leader_id", userID).Error
	})
	if err != nil {
		return "", Internal("Error promoting member: %v", err)
	}

	return fmt.Sprintf("User %s has been promoted to leader of group %s successfully", user.Name, group.Name), nil
}

// TransferMember moves a member to another group. Transferring the
// current leader is rejected.
func (s *GroupService) TransferMember(caller *models.User, userID, targetGroupID uint) (string, *Error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if serr := s.authz.Authorize(caller, ActionTransferMember, nil); serr != nil {
			return "", serr
		}
		return "", NotFound("User not found")
	}

	if user.GroupID == nil {
		if serr := s.authz.Authorize(caller, ActionTransferMember, nil); serr != nil {
			return "", serr
		}
		return "", Invalid("User is not in any group")
	}

	var current models.Group
	if err := s.db.First(&current, *user.GroupID).Error; err != nil {
		return "", NotFound("Group not found")
	}

	if serr := s.authz.Authorize(caller, ActionTransferMember, &current); serr != nil {
		return "", serr
	}
	if caller.Role == models.RoleLeader && caller.ID == userID {
		return "", Forbidden("You cannot transfer yourself")
	}

	var target models.Group
	if err := s.db.First(&target, targetGroupID).Error; err != nil {
		return "", NotFound("Target group not found")
	}

	if current.LeaderID != nil && *current.LeaderID == userID {
		return "", Conflict("Cannot transfer group leader. Remove as leader first or promote another member to leader.")
	}

	if err := s.db.Model(&user).Update("group_id", targetGroupID).Error; err != nil {
		return "", Internal("Error transferring member: %v", err)
	}

	return fmt.Sprintf("User %s transferred from %q to %q successfully", user.Name, current.Name, target.Name), nil
}

// TransferOptions lists every group other than the current one.
func (s *GroupService) TransferOptions(currentGroupID uint) ([]AvailableGroup, error) {
	var groups []models.Group
	if err := s.db.Where("id <> ?", currentGroupID).Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}

	result := make([]AvailableGroup, 0, len(groups))
	for _, group := range groups {
		leaderName := "No leader"
		if group.LeaderID != nil {
			var leader models.User
			if err := s.db.First(&leader, *group.LeaderID).Error; err == nil {
				leaderName = leader.Name
			}
		}

		var memberCount int64
		s.db.Model(&models.User{}).Where("group_id = ?", group.ID).Count(&memberCount)

		result = append(result, AvailableGroup{
			ID:          group.ID,
			Name:        group.Name,
			LeaderName:  leaderName,
			MemberCount: memberCount,
			CanJoin:     group.LeaderID != nil,
		})
	}
	return result, nil
}

// JoinRequestView is the serialized join request.
type JoinRequestView struct {
	ID           uint                   `json:"id"`
	User         map[string]interface{} `json:"user"`
	Group        map[string]interface{} `json:"group"`
	Status       models.JoinRequestStatus `json:"status"`
	Message      string                 `json:"message"`
	AdminMessage string                 `json:"admin_message"`
	ProcessedBy  map[string]interface{} `json:"processed_by"`
	ProcessedAt  interface{}            `json:"processed_at"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

func (s *GroupService) joinRequestView(req *models.JoinRequest) JoinRequestView {
	view := JoinRequestView{
		ID:           req.ID,
		Status:       req.Status,
		Message:      req.Message,
		AdminMessage: req.AdminMessage,
		ProcessedAt:  utils.FormatTimePtr(req.ProcessedAt),
		CreatedAt:    utils.FormatTime(req.CreatedAt),
		UpdatedAt:    utils.FormatTime(req.UpdatedAt),
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err == nil {
		view.User = map[string]interface{}{
			"id":            user.ID,
			"name":          user.Name,
			"email":         user.Email,
			"employee_code": user.EmployeeCode,
			"role":          user.Role,
		}
	}

	var group models.Group
	if err := s.db.First(&group, req.GroupID).Error; err == nil {
		view.Group = map[string]interface{}{
			"id":          group.ID,
			"name":        group.Name,
			"description": group.Description,
		}
	}

	if req.ProcessedByID != nil {
		var processor models.User
		if err := s.db.First(&processor, *req.ProcessedByID).Error; err == nil {
			view.ProcessedBy = map[string]interface{}{
				"id":   processor.ID,
				"name": processor.Name,
			}
		}
	}

	return view
}

// CreateJoinRequest opens a pending request and notifies the admins
// and the group's leader.
func (s *GroupService) CreateJoinRequest(user *models.User, groupID uint, message string) (*JoinRequestView, *Error) {
	if user.Role != models.RoleEmployee {
		return nil, Forbidden("Only employees can request to join groups")
	}

	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		return nil, NotFound("Group not found")
	}

	if user.GroupID != nil {
		var current models.Group
		s.db.First(&current, *user.GroupID)
		return nil, Conflict("You are already in group %q. Leave current group first.", current.Name)
	}

	var existing models.JoinRequest
	err := s.db.Where("user_id = ? AND group_id = ? AND status = ?", user.ID, groupID, models.JoinRequestPending).
		First(&existing).Error
	if err == nil {
		return nil, Conflict("You already have a pending request for this group")
	}

	if group.LeaderID == nil {
		return nil, Invalid("This group has no leader. Cannot submit join request.")
	}

	request := &models.JoinRequest{
		UserID:  user.ID,
		GroupID: groupID,
		Message: message,
		Status:  models.JoinRequestPending,
	}
	if err := s.db.Create(request).Error; err != nil {
		return nil, Internal("Error creating join request: %v", err)
	}

	// Admins always hear about new requests; the leader only when they
	// are not an admin themselves.
	var admins []models.User
	s.db.Where("role = ?", models.RoleAdmin).Find(&admins)
	for _, admin := range admins {
		s.notify.Notify(admin.ID,
			fmt.Sprintf("New join request: %s", group.Name),
			fmt.Sprintf("%s (%s) wants to join group '%s'", user.Name, user.EmployeeCode, group.Name),
			models.NotificationGroupJoinRequest,
			NotifyOptions{GroupID: &group.ID, Important: true})
	}

	if group.LeaderID != nil {
		var leader models.User
		if err := s.db.First(&leader, *group.LeaderID).Error; err == nil && leader.Role != models.RoleAdmin {
			s.notify.Notify(leader.ID,
				fmt.Sprintf("New join request: %s", group.Name),
				fmt.Sprintf("%s (%s) wants to join your group '%s'", user.Name, user.EmployeeCode, group.Name),
				models.NotificationGroupJoinRequest,
				NotifyOptions{GroupID: &group.ID, Important: true})
		}
	}

	view := s.joinRequestView(request)
	return &view, nil
}

// ListJoinRequests returns requests visible to the caller: all for
// admins, the led group's for leaders.
func (s *GroupService) ListJoinRequests(caller *models.User, groupID *uint, status string) ([]JoinRequestView, *Error) {
	query := s.db.Model(&models.JoinRequest{})

	switch caller.Role {
	case models.RoleAdmin:
		// unrestricted
	case models.RoleLeader:
		led, err := s.authz.LedGroup(caller.ID)
		if err != nil {
			return nil, Internal("Error checking permissions: %v", err)
		}
		if led == nil {
			return []JoinRequestView{}, nil
		}
		query = query.Where("group_id = ?", led.ID)
	default:
		return nil, Forbidden("Access denied. Only admin and leaders can view join requests")
	}

	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	if status != "all" {
		if status == "" {
			status = string(models.JoinRequestPending)
		}
		if !models.JoinRequestStatus(status).Valid() {
			return nil, Invalid("Invalid status filter: %s", status)
		}
		query = query.Where("status = ?", status)
	}

	var requests []models.JoinRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, Internal("Error loading join requests: %v", err)
	}

	result := make([]JoinRequestView, 0, len(requests))
	for i := range requests {
		result = append(result, s.joinRequestView(&requests[i]))
	}
	return result, nil
}

// ApproveJoinRequest transitions a pending request to approved and
// attaches the user to the group. The membership recheck guards the
// window between request creation and processing, but concurrent
// approvals for the same user can still race; there is no row locking
// here.
func (s *GroupService) ApproveJoinRequest(caller *models.User, requestID uint, adminMessage string) (*JoinRequestView, *Error) {
	var request models.JoinRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if serr := s.authz.Authorize(caller, ActionApproveJoinRequest, nil); serr != nil {
			return nil, serr
		}
		return nil, NotFound("Join request not found")
	}

	var group models.Group
	if err := s.db.First(&group, request.GroupID).Error; err != nil {
		return nil, NotFound("Group not found")
	}

	if serr := s.authz.Authorize(caller, ActionApproveJoinRequest, &group); serr != nil {
		return nil, serr
	}

	if request.Status != models.JoinRequestPending {
		return nil, Conflict("Request is no longer pending")
	}

	var user models.User
	if err := s.db.First(&user, request.UserID).Error; err != nil {
		return nil, NotFound("User not found")
	}
	if user.GroupID != nil {
		return nil, Conflict("User has already joined another group")
	}

	now := time.Now().UTC()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&request).Updates(map[string]interface{}{
			"status":          models.JoinRequestApproved,
			"admin_message":   adminMessage,
			"processed_by_id": caller.ID,
			"processed_at":    now,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("group_id", request.GroupID).Error
	})
	if err != nil {
		return nil, Internal("Error approving request: %v", err)
	}

	s.notify.Notify(user.ID,
		fmt.Sprintf("Join request approved: %s", group.Name),
		fmt.Sprintf("Your request to join '%s' has been approved by %s", group.Name, caller.Name),
		models.NotificationGroupJoined,
		NotifyOptions{GroupID: &group.ID, Important: true})

	view := s.joinRequestView(&request)
	return &view, nil
}

// RejectJoinRequest transitions a pending request to rejected.
func (s *GroupService) RejectJoinRequest(caller *models.User, requestID uint, adminMessage string) (*JoinRequestView, *Error) {
	var request models.JoinRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if serr := s.authz.Authorize(caller, ActionRejectJoinRequest, nil); serr != nil {
			return nil, serr
		}
		return nil, NotFound("Join request not found")
	}

	var group models.Group
	if err := s.db.First(&group, request.GroupID).Error; err != nil {
		return nil, NotFound("Group not found")
	}

	if serr := s.authz.Authorize(caller, ActionRejectJoinRequest, &group); serr != nil {
		return nil, serr
	}

	if request.Status != models.JoinRequestPending {
		return nil, Conflict("Request is no longer pending")
	}

	now := time.Now().UTC()
	if err := s.db.Model(&request).Updates(map[string]interface{}{
		"status":          models.JoinRequestRejected,
		"admin_message":   adminMessage,
		"processed_by_id": caller.ID,
		"processed_at":    now,
	}).Error; err != nil {
		return nil, Internal("Error rejecting request: %v", err)
	}

	s.notify.Notify(request.UserID,
		fmt.Sprintf("Join request rejected: %s", group.Name),
		fmt.Sprintf("Your request to join '%s' has been rejected by %s", group.Name, caller.Name),
		models.NotificationGroupJoinRejected,
		NotifyOptions{GroupID: &group.ID, Important: true})

	view := s.joinRequestView(&request)
	return &view, nil
}

// MyJoinRequests lists the user's own requests, newest first.
func (s *GroupService) MyJoinRequests(userID uint) ([]JoinRequestView, error) {
	var requests []models.JoinRequest
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}

	result := make([]JoinRequestView, 0, len(requests))
	for i := range requests {
		result = append(result, s.joinRequestView(&requests[i]))
	}
	return result, nil
}
