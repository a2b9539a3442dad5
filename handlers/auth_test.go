package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"worktrack/database"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthApp(t *testing.T) *fiber.App {
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
	database.SetDB(db)
	InitAuthHandlers()

	app := fiber.New()
	auth := app.Group("/api/auth")
	auth.Post("/register", Register)
	auth.Post("/login", Login)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encoding request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp.StatusCode, decoded
}

func TestRegisterAndLogin(t *testing.T) {
	app := setupAuthApp(t)

	status, body := postJSON(t, app, "/api/auth/register", map[string]interface{}{
		"name":     "Dana",
		"email":    "dana@example.com",
		"password": "secret123",
	})
	if status != 201 {
		t.Fatalf("register status = %d, body = %v", status, body)
	}
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("register body missing user: %v", body)
	}
	code, _ := user["employee_code"].(string)
	if len(code) < 6 || code[:3] != "EMP" {
		t.Errorf("employee_code = %q, want EMP prefix", code)
	}

	status, body = postJSON(t, app, "/api/auth/login", map[string]interface{}{
		"email":    "dana@example.com",
		"password": "secret123",
	})
	if status != 200 {
		t.Fatalf("login status = %d, body = %v", status, body)
	}

	status, body = postJSON(t, app, "/api/auth/login", map[string]interface{}{
		"email":    "dana@example.com",
		"password": "wrong",
	})
	if status != 401 {
		t.Fatalf("bad-password status = %d, want 401", status)
	}
	if body["message"] != "Invalid password" {
		t.Errorf("bad-password message = %v", body["message"])
	}
}

func TestRegisterMissingFields(t *testing.T) {
	app := setupAuthApp(t)

	status, body := postJSON(t, app, "/api/auth/register", map[string]interface{}{
		"name": "No Email",
	})
	if status != 400 {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["message"] != "Missing required fields: name, email, password" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestLoginUnknownUser(t *testing.T) {
	app := setupAuthApp(t)

	status, body := postJSON(t, app, "/api/auth/login", map[string]interface{}{
		"email":    "ghost@example.com",
		"password": "whatever",
	})
	if status != 404 {
		t.Fatalf("status = %d, want 404", status)
	}
	if body["message"] != "User not found" {
		t.Errorf("message = %v", body["message"])
	}
}
