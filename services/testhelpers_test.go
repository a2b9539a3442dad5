package services

import (
	"fmt"
	"testing"
	"worktrack/database"
	"worktrack/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := database.MigrateModels(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, name string, role models.Role, groupID *uint) *models.User {
	t.Helper()
	testUserSeq++
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s%d@example.com", role, testUserSeq),
		PasswordHash: string(hash),
		Role:         role,
		EmployeeCode: fmt.Sprintf("T%s%04d", role.CodePrefix(), testUserSeq),
		GroupID:      groupID,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("creating test user %s: %v", name, err)
	}
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, name string, leaderID *uint) *models.Group {
	t.Helper()
	group := &models.Group{Name: name, LeaderID: leaderID}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("creating test group %s: %v", name, err)
	}
	if leaderID != nil {
		if err := db.Model(&models.User{}).Where("id = ?", *leaderID).
			Update("group_id", group.ID).Error; err != nil {
			t.Fatalf("attaching leader to group: %v", err)
		}
	}
	return group
}
