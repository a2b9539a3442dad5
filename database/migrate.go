// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"worktrack/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := MigrateModels(db); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes(db)

	log.Println("✅ All migrations completed successfully")
}

// MigrateModels auto-migrates the full schema onto db. Split out so
// tests can migrate an in-memory database directly.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Task{},
		&models.File{},
		&models.Report{},
		&models.Notification{},
		&models.JoinRequest{},
	)
}

// createIndexes creates indexes beyond what the struct tags declare
func createIndexes(db *gorm.DB) {
	log.Println("Creating indexes...")

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_created ON users(created_at)")

	// Task indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at DESC)")

	// Notification indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, is_read)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_type_created ON notifications(type, created_at)")

	// Join request indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_join_requests_status ON join_requests(status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_join_requests_user_group ON join_requests(user_id, group_id)")

	// Report indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at DESC)")

	log.Println("✅ Indexes created successfully")
}
