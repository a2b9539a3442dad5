package services

import (
	"testing"
	"worktrack/models"
)

func TestAuthorizeRoles(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthzService(db)

	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)
	group := createTestGroup(t, db, "Alpha", &leader.ID)
	other := createTestGroup(t, db, "Beta", nil)
	emp := createTestUser(t, db, "Worker", models.RoleEmployee, &group.ID)

	if serr := svc.Authorize(nil, ActionCreateGroup, nil); serr == nil || serr.Status != 403 {
		t.Fatalf("nil caller: got %v, want 403", serr)
	}
	if serr := svc.Authorize(admin, ActionCreateGroup, nil); serr != nil {
		t.Errorf("admin denied: %v", serr)
	}
	if serr := svc.Authorize(leader, ActionCreateGroup, nil); serr == nil ||
		serr.Message != "Access denied. Only admins can create groups" {
		t.Errorf("leader on admin-only action: got %v", serr)
	}
	if serr := svc.Authorize(emp, ActionAddMember, group); serr == nil || serr.Status != 403 {
		t.Errorf("employee add-member: got %v, want 403", serr)
	}

	if serr := svc.Authorize(leader, ActionAddMember, group); serr != nil {
		t.Errorf("leader in own group denied: %v", serr)
	}
	if serr := svc.Authorize(leader, ActionAddMember, other); serr == nil ||
		serr.Message != "You can only add members to your own group" {
		t.Errorf("leader outside own group: got %v", serr)
	}
}

func TestAuthorizeMessagesVerbatim(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthzService(db)

	// Denial text must reach the caller untouched, even when it
	// contains formatting verbs.
	action := Action{Name: "test.quota", AdminOnly: true,
		deniedMsg: "Access denied. Quota is at 100% for this role"}

	serr := svc.Authorize(nil, action, nil)
	if serr == nil || serr.Message != "Access denied. Quota is at 100% for this role" {
		t.Fatalf("denial message = %v", serr)
	}
}

func TestAuthorizeLeaderWithoutGroup(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthzService(db)
	leader := createTestUser(t, db, "Lead", models.RoleLeader, nil)

	serr := svc.Authorize(leader, ActionAddMember, nil)
	if serr == nil || serr.Message != "You are not leading any group" {
		t.Errorf("leader with no led group: got %v", serr)
	}
}
