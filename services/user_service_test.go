package services

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"
	"worktrack/models"
)

func TestRegisterGeneratesSequentialEmployeeCodes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	year := time.Now().UTC().Year()
	pattern := regexp.MustCompile(fmt.Sprintf(`^EMP%d\d{3}$`, year))

	first, serr := svc.Register(RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	if serr != nil {
		t.Fatalf("register: %v", serr)
	}
	if !pattern.MatchString(first.User.EmployeeCode) {
		t.Errorf("employee code %q does not match EMP<year><seq>", first.User.EmployeeCode)
	}
	if first.NextStep != "Join a group using /api/groups/join" {
		t.Errorf("unexpected next_step: %q", first.NextStep)
	}

	second, serr := svc.Register(RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret123"})
	if serr != nil {
		t.Fatalf("register second: %v", serr)
	}
	wantFirst := fmt.Sprintf("EMP%d001", year)
	wantSecond := fmt.Sprintf("EMP%d002", year)
	if first.User.EmployeeCode != wantFirst || second.User.EmployeeCode != wantSecond {
		t.Errorf("codes = %q, %q; want %q, %q",
			first.User.EmployeeCode, second.User.EmployeeCode, wantFirst, wantSecond)
	}
}

func TestRegisterLeaderRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	_, serr := svc.Register(RegisterInput{Name: "Lea", Email: "lea@example.com", Password: "secret123", Role: "leader"})
	if serr == nil || serr.Status != 403 {
		t.Fatalf("expected 403 without admin, got %v", serr)
	}

	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	result, serr := svc.Register(RegisterInput{
		Name: "Lea", Email: "lea@example.com", Password: "secret123",
		Role: "leader", AdminID: &admin.ID,
	})
	if serr != nil {
		t.Fatalf("register leader with admin: %v", serr)
	}
	if !strings.HasPrefix(result.User.EmployeeCode, "LDR") {
		t.Errorf("leader code %q should carry LDR prefix", result.User.EmployeeCode)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	if _, serr := svc.Register(RegisterInput{Name: "A", Email: "dup@example.com", Password: "secret123"}); serr != nil {
		t.Fatalf("first register: %v", serr)
	}
	_, serr := svc.Register(RegisterInput{Name: "B", Email: "dup@example.com", Password: "secret123"})
	if serr == nil || serr.Message != "Email already exists" {
		t.Fatalf("expected duplicate email rejection, got %v", serr)
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	result, serr := svc.Register(RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "secret123"})
	if serr != nil {
		t.Fatalf("register: %v", serr)
	}

	if _, serr := svc.Login("carol@example.com", "secret123"); serr != nil {
		t.Fatalf("login: %v", serr)
	}

	_, serr = svc.Login("carol@example.com", "wrong")
	if serr == nil || serr.Status != 401 || serr.Message != "Invalid password" {
		t.Fatalf("expected 401 Invalid password, got %v", serr)
	}

	_, serr = svc.Login("nobody@example.com", "secret123")
	if serr == nil || serr.Status != 404 {
		t.Fatalf("expected 404 for unknown email, got %v", serr)
	}

	db.Model(result.User).Update("is_active", false)
	_, serr = svc.Login("carol@example.com", "secret123")
	if serr == nil || serr.Status != 403 {
		t.Fatalf("expected 403 for deactivated account, got %v", serr)
	}
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	result, serr := svc.Register(RegisterInput{Name: "Dave", Email: "dave@example.com", Password: "secret123"})
	if serr != nil {
		t.Fatalf("register: %v", serr)
	}
	userID := result.User.ID

	if serr := svc.ChangePassword(userID, "wrong", "newsecret"); serr == nil || serr.Status != 401 {
		t.Fatalf("expected 401 for wrong current password, got %v", serr)
	}
	if serr := svc.ChangePassword(userID, "secret123", "short"); serr == nil || serr.Status != 400 {
		t.Fatalf("expected 400 for short password, got %v", serr)
	}
	if serr := svc.ChangePassword(userID, "secret123", "newsecret"); serr != nil {
		t.Fatalf("change password: %v", serr)
	}
	if _, serr := svc.Login("dave@example.com", "newsecret"); serr != nil {
		t.Fatalf("login with new password: %v", serr)
	}
}

func TestAdminCreateFallbackCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)

	user, serr := svc.AdminCreate(AdminCreateInput{
		AdminID: &admin.ID, Name: "Eve", Email: "eve@example.com", Password: "secret123",
	})
	if serr != nil {
		t.Fatalf("admin create: %v", serr)
	}
	if !regexp.MustCompile(`^EMP[0-9A-F]{8}$`).MatchString(user.EmployeeCode) {
		t.Errorf("fallback code %q should be EMP plus 8 uppercase hex chars", user.EmployeeCode)
	}
}

func TestDeleteSelfForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)

	_, serr := svc.Delete(&admin.ID, admin.ID)
	if serr == nil || serr.Message != "Cannot delete yourself" {
		t.Fatalf("expected self-delete rejection, got %v", serr)
	}
}

func TestPromoteDemote(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	admin := createTestUser(t, db, "Admin", models.RoleAdmin, nil)
	emp := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	if _, serr := svc.Promote(&admin.ID, emp.ID); serr != nil {
		t.Fatalf("promote: %v", serr)
	}
	var reloaded models.User
	db.First(&reloaded, emp.ID)
	if reloaded.Role != models.RoleLeader {
		t.Fatalf("role = %q after promote, want leader", reloaded.Role)
	}

	if _, serr := svc.Promote(&admin.ID, emp.ID); serr == nil {
		t.Fatal("expected rejection promoting an existing leader")
	}

	if _, serr := svc.Demote(&admin.ID, emp.ID); serr != nil {
		t.Fatalf("demote: %v", serr)
	}
	db.First(&reloaded, emp.ID)
	if reloaded.Role != models.RoleEmployee {
		t.Fatalf("role = %q after demote, want employee", reloaded.Role)
	}

	if _, serr := svc.Promote(&emp.ID, admin.ID); serr == nil || serr.Status != 403 {
		t.Fatalf("expected 403 when a non-admin promotes, got %v", serr)
	}
}

func TestAdminActionsRequireCaller(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	emp := createTestUser(t, db, "Worker", models.RoleEmployee, nil)

	if _, serr := svc.Promote(nil, emp.ID); serr == nil || serr.Status != 403 {
		t.Fatalf("promote without admin_id: got %v, want 403", serr)
	}
	var reloaded models.User
	db.First(&reloaded, emp.ID)
	if reloaded.Role != models.RoleEmployee {
		t.Errorf("role = %q after rejected promote, want employee", reloaded.Role)
	}

	if _, serr := svc.Demote(nil, emp.ID); serr == nil || serr.Status != 403 {
		t.Fatalf("demote without admin_id: got %v, want 403", serr)
	}
	if _, serr := svc.Delete(nil, emp.ID); serr == nil || serr.Status != 403 {
		t.Fatalf("delete without admin_id: got %v, want 403", serr)
	}
	if _, serr := svc.AdminCreate(AdminCreateInput{
		Name: "Ghost", Email: "ghost@example.com", Password: "secret123",
	}); serr == nil || serr.Status != 403 {
		t.Fatalf("admin create without admin_id: got %v, want 403", serr)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("users after rejected admin create = %d, want 1", count)
	}
}
