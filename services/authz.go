// services/authz.go - Centralized role/ownership checks
package services

import (
	"errors"
	"worktrack/models"

	"gorm.io/gorm"
)

// Action names a capability along with the denial messages its
// endpoints surface. AdminOnly actions never pass for leaders; the
// remaining actions pass for leaders only inside the group they lead.
type Action struct {
	Name      string
	AdminOnly bool

	deniedMsg  string // role check failed
	scopeMsg   string // leader acting outside the led group
	noGroupMsg string // leader leads no group (falls back to scopeMsg)
}

var (
	ActionCreateGroup = Action{Name: "group.create", AdminOnly: true,
		deniedMsg: "Access denied. Only admins can create groups"}
	ActionDeleteGroup = Action{Name: "group.delete", AdminOnly: true,
		deniedMsg: "Access denied. Only admins can delete groups"}
	ActionAssignLeader = Action{Name: "group.assign-leader", AdminOnly: true,
		deniedMsg: "Access denied. Only admins can assign leaders"}
	ActionPromoteMember = Action{Name: "group.promote-member", AdminOnly: true,
		deniedMsg: "Access denied. Only admins can promote members to leader"}

	ActionUpdateGroup = Action{Name: "group.update",
		deniedMsg: "Access denied. Only admins or leaders can update groups",
		scopeMsg:  "You can only update your own group"}
	ActionAddMember = Action{Name: "group.add-member",
		deniedMsg:  "Access denied. Only admins or leaders can add members",
		scopeMsg:   "You can only add members to your own group",
		noGroupMsg: "You are not leading any group"}
	ActionRemoveMember = Action{Name: "group.remove-member",
		deniedMsg: "Access denied. Only admins or leaders can remove members",
		scopeMsg:  "You can only remove members from your own group"}
	ActionTransferMember = Action{Name: "group.transfer-member",
		deniedMsg:  "Access denied. Only admins or leaders can transfer members",
		scopeMsg:   "You can only transfer members from your own group",
		noGroupMsg: "You are not leading any group"}

	ActionViewJoinRequests = Action{Name: "join-request.view",
		deniedMsg: "Access denied. Only admin and leaders can view join requests"}
	ActionApproveJoinRequest = Action{Name: "join-request.approve",
		deniedMsg: "Access denied. Only admin and leaders can approve requests",
		scopeMsg:  "You can only approve requests for your own group"}
	ActionRejectJoinRequest = Action{Name: "join-request.reject",
		deniedMsg: "Access denied. Only admin and leaders can reject requests",
		scopeMsg:  "You can only reject requests for your own group"}

	ActionPromoteUser = Action{Name: "user.promote", AdminOnly: true,
		deniedMsg: "Access denied. Only admins can promote users"}
	ActionDemoteUser = Action{Name: "user.demote", AdminOnly: true,
		deniedMsg: "Access denied. Only admins can demote users"}
	ActionCreateUser = Action{Name: "user.create", AdminOnly: true,
		deniedMsg: "Access denied. Only admins can create users"}
	ActionDeleteUser = Action{Name: "user.delete", AdminOnly: true,
		deniedMsg: "Access denied. Only admins can delete users"}

	ActionBulkAssignTasks = Action{Name: "task.bulk-create",
		deniedMsg:  "Only admin and leaders can assign tasks",
		scopeMsg:   "You can only assign tasks within your group",
		noGroupMsg: "You are not leading any group"}

	ActionViewAllFiles = Action{Name: "file.view-all",
		deniedMsg: "Access denied. Only admins or leaders can view all files"}
	ActionViewFileStats = Action{Name: "file.stats",
		deniedMsg: "Access denied"}

	ActionGenerateSummary = Action{Name: "report.summary",
		deniedMsg: "Access denied. Only admin/leader can generate summary reports"}
	ActionGenerateSummaryPDF = Action{Name: "report.summary-pdf",
		deniedMsg: "Access denied"}
)

type AuthzService struct {
	db *gorm.DB
}

func NewAuthzService(db *gorm.DB) *AuthzService {
	return &AuthzService{db: db}
}

// LedGroup returns the group the user currently leads, or nil.
func (s *AuthzService) LedGroup(userID uint) (*models.Group, error) {
	var group models.Group
	err := s.db.Where("leader_id = ?", userID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// Authorize checks caller against action. For leader-allowed actions,
// group scopes the check: a leader passes only when group is the one
// they lead. Admin passes everything; group may be nil when the action
// has no group scope.
func (s *AuthzService) Authorize(caller *models.User, action Action, group *models.Group) *Error {
	if caller == nil {
		return Forbidden("%s", action.deniedMsg)
	}
	if caller.Role == models.RoleAdmin {
		return nil
	}
	if action.AdminOnly || caller.Role != models.RoleLeader {
		return Forbidden("%s", action.deniedMsg)
	}

	led, err := s.LedGroup(caller.ID)
	if err != nil {
		return Internal("Error checking permissions: %v", err)
	}
	if led == nil {
		if action.noGroupMsg != "" {
			return Forbidden("%s", action.noGroupMsg)
		}
		if action.scopeMsg != "" {
			return Forbidden("%s", action.scopeMsg)
		}
		return nil
	}
	if group != nil && group.ID != led.ID {
		if action.scopeMsg != "" {
			return Forbidden("%s", action.scopeMsg)
		}
		return Forbidden("%s", action.deniedMsg)
	}
	return nil
}
