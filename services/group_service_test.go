package services

import (
	"strings"
	"testing"
	"worktrack/models"
)

func TestCreateGroupSingleLeaderInvariant(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)

	if _, serr := svc.Create(admin, "Alpha", "first team", &leader.ID); serr != nil {
		t.Fatalf("create Alpha: %v", serr)
	}

	_, serr := svc.Create(admin, "Beta", "second team", &leader.ID)
	if serr == nil {
		t.Fatal("expected rejection when leader already leads a group")
	}
	if !strings.Contains(serr.Message, `already leading group "Alpha"`) {
		t.Errorf("message = %q, want mention of group Alpha", serr.Message)
	}
}

func TestCreateGroupDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)

	if _, serr := svc.Create(admin, "Alpha", "", nil); serr != nil {
		t.Fatalf("create: %v", serr)
	}
	if _, serr := svc.Create(admin, "Alpha", "", nil); serr == nil || serr.Message != "Group name already exists" {
		t.Fatalf("expected duplicate name rejection, got %v", serr)
	}
}

func TestCreateGroupRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	emp := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	if _, serr := svc.Create(emp, "Alpha", "", nil); serr == nil || serr.Status != 403 {
		t.Fatalf("expected 403 for employee creating group, got %v", serr)
	}
}

func TestJoinRequestLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)
	group := createTestGroup(t, db, "Gamma", &leader.ID)
	emp := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	view, serr := svc.CreateJoinRequest(emp, group.ID, "let me in")
	if serr != nil {
		t.Fatalf("create join request: %v", serr)
	}
	if view.Status != models.JoinRequestPending {
		t.Fatalf("status = %q, want pending", view.Status)
	}

	// The same user cannot stack pending requests for one group.
	if _, serr := svc.CreateJoinRequest(emp, group.ID, "again"); serr == nil {
		t.Fatal("expected duplicate pending request rejection")
	}

	approved, serr := svc.ApproveJoinRequest(admin, view.ID, "welcome")
	if serr != nil {
		t.Fatalf("approve: %v", serr)
	}
	if approved.Status != models.JoinRequestApproved {
		t.Fatalf("status = %q after approval, want approved", approved.Status)
	}

	var member models.User
	db.First(&member, emp.ID)
	if member.GroupID == nil || *member.GroupID != group.ID {
		t.Fatal("approval should set the user's group")
	}

	// Processing is one-shot.
	if _, serr := svc.ApproveJoinRequest(admin, view.ID, "again"); serr == nil || serr.Message != "Request is no longer pending" {
		t.Fatalf("expected one-shot rejection, got %v", serr)
	}
}

func TestRejectJoinRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)
	group := createTestGroup(t, db, "Delta", &leader.ID)
	emp := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	view, serr := svc.CreateJoinRequest(emp, group.ID, "")
	if serr != nil {
		t.Fatalf("create join request: %v", serr)
	}

	rejected, serr := svc.RejectJoinRequest(admin, view.ID, "full up")
	if serr != nil {
		t.Fatalf("reject: %v", serr)
	}
	if rejected.Status != models.JoinRequestRejected {
		t.Fatalf("status = %q, want rejected", rejected.Status)
	}

	var member models.User
	db.First(&member, emp.ID)
	if member.GroupID != nil {
		t.Fatal("rejection must not place the user in the group")
	}
}

func TestJoinRequestRequiresLeader(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	group := createTestGroup(t, db, "Orphan", nil)
	emp := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	if _, serr := svc.CreateJoinRequest(emp, group.ID, ""); serr == nil {
		t.Fatal("expected rejection for leaderless group")
	}
}

func TestDeleteGroupWithMembers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)
	group := createTestGroup(t, db, "Epsilon", &leader.ID)
	createTestUser(t, db, "Worker", models.RoleEmployee, &group.ID)

	_, serr := svc.Delete(admin, group.ID)
	if serr == nil {
		t.Fatal("expected rejection deleting a non-empty group")
	}
	if !strings.Contains(serr.Message, "It has 2 member(s)") {
		t.Errorf("message = %q, want member count of 2", serr.Message)
	}
}

func TestAddMemberScope(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	leaderA := createTestUser(t, db, "LeadA", models.RoleLeader, nil)
	leaderB := createTestUser(t, db, "LeadB", models.RoleLeader, nil)
	groupA := createTestGroup(t, db, "TeamA", &leaderA.ID)
	createTestGroup(t, db, "TeamB", &leaderB.ID)
	emp := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	// Leader B cannot add to group A.
	if _, serr := svc.AddMember(leaderB, groupA.ID, emp.ID); serr == nil || serr.Status != 403 {
		t.Fatalf("expected 403 for out-of-scope add, got %v", serr)
	}

	if _, serr := svc.AddMember(leaderA, groupA.ID, emp.ID); serr != nil {
		t.Fatalf("add member: %v", serr)
	}

	var member models.User
	db.First(&member, emp.ID)
	if member.GroupID == nil || *member.GroupID != groupA.ID {
		t.Fatal("member should be in group A")
	}

	// A GROUP_JOINED notification lands in the member's inbox.
	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", emp.ID, models.NotificationGroupJoined).Count(&count)
	if count != 1 {
		t.Errorf("group_joined notifications = %d, want 1", count)
	}
}

func TestRemoveLeaderClearsLeadership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(db)
	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)
	group := createTestGroup(t, db, "Zeta", &leader.ID)

	msg, serr := svc.RemoveMember(admin, leader.ID)
	if serr != nil {
		t.Fatalf("remove leader: %v", serr)
	}
	if !strings.Contains(msg, "Group now has no leader.") {
		t.Errorf("message = %q, want leaderless suffix", msg)
	}

	var reloaded models.Group
	db.First(&reloaded, group.ID)
	if reloaded.LeaderID != nil {
		t.Fatal("leader_id should be cleared")
	}
}
