package main

import (
	"log"
	"os"
	"time"
	"worktrack/database"
	"worktrack/handlers"
	"worktrack/middleware"
	"worktrack/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database
	database.InitDB()
	defer database.CloseDB()

	// Initialize handler services
	handlers.InitAuthHandlers()
	handlers.InitGroupHandlers()
	handlers.InitTaskHandlers()
	handlers.InitFileHandlers()
	handlers.InitReportHandlers()
	handlers.InitNotificationHandlers()

	// Background jobs: hourly deadline sweep, daily notification cleanup
	jobs := scheduler.New(database.GetDB())
	if err := jobs.Start(); err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}
	defer jobs.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    16 * 1024 * 1024, // 16MB, uploads included
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/logout", handlers.Logout)
	authGroup.Post("/change-password", handlers.ChangePassword)
	authGroup.Post("/forgot-password", handlers.ForgotPassword)
	authGroup.Get("/validate", handlers.ValidateSession)

	// User routes (static paths before :id)
	users := api.Group("/users")
	users.Get("/all", handlers.GetAllUsers)
	users.Get("/system-stats", handlers.GetSystemStats)
	users.Get("/employees", handlers.GetEmployees)
	users.Get("/available-leaders", handlers.GetAvailableLeaders)
	users.Get("/leaders", handlers.GetLeaders)
	users.Get("/profile/:id", handlers.GetUserProfile)
	users.Post("/create", handlers.CreateUser)
	users.Put("/promote/:id", handlers.PromoteUser)
	users.Put("/demote/:id", handlers.DemoteUser)
	users.Get("/:id", handlers.GetUserDetail)
	users.Put("/:id", handlers.UpdateUser)
	users.Delete("/:id", handlers.DeleteUser)

	// Group routes
	groups := api.Group("/groups")
	groups.Post("/create", handlers.CreateGroup)
	groups.Get("/all", handlers.GetAllGroups)
	groups.Get("/available", handlers.GetAvailableGroups)
	groups.Post("/assign-leader", handlers.AssignLeader)
	groups.Post("/join", handlers.JoinGroup)
	groups.Post("/leave", handlers.LeaveGroup)
	groups.Post("/add-member", handlers.AddMember)
	groups.Post("/remove-member", handlers.RemoveMember)
	groups.Post("/promote-member", handlers.PromoteMember)
	groups.Post("/transfer-member", handlers.TransferMember)
	groups.Get("/transfer-options/:id", handlers.GetTransferOptions)
	groups.Post("/join-request", handlers.CreateJoinRequest)
	groups.Get("/join-requests", handlers.GetJoinRequests)
	groups.Post("/join-requests/:id/approve", handlers.ApproveJoinRequest)
	groups.Post("/join-requests/:id/reject", handlers.RejectJoinRequest)
	groups.Get("/my-join-requests", handlers.GetMyJoinRequests)
	groups.Get("/:id", handlers.GetGroupDetail)
	groups.Put("/:id", handlers.UpdateGroup)
	groups.Delete("/:id", handlers.DeleteGroup)

	// Task routes (static paths before :id)
	tasks := api.Group("/tasks")
	tasks.Post("/create", handlers.CreateTask)
	tasks.Get("/search", handlers.SearchTasks)
	tasks.Get("/all", handlers.GetAllTasks)
	tasks.Get("/dashboard", handlers.GetDashboardStats)
	tasks.Post("/bulk-create", handlers.BulkCreateTasks)
	tasks.Get("/parent-options", handlers.GetParentTaskOptions)
	tasks.Get("/user/:id", handlers.GetTasksByUser)
	tasks.Get("/group/:id", handlers.GetTasksByGroup)
	tasks.Get("/:id/subtasks", handlers.GetSubtasks)
	tasks.Get("/:id", handlers.GetTaskDetail)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)

	// File routes
	files := api.Group("/files")
	files.Post("/upload", handlers.UploadFile)
	files.Get("/all", handlers.GetAllFiles)
	files.Get("/stats", handlers.GetFileStats)
	files.Get("/task/:id", handlers.GetTaskFiles)
	files.Get("/user/:id", handlers.GetUserFiles)
	files.Get("/download/:id", handlers.DownloadFile)
	files.Get("/:id", handlers.GetFileDetail)
	files.Delete("/:id", handlers.DeleteFile)

	// Report routes
	reports := api.Group("/reports")
	reports.Post("/generate", handlers.GenerateReport)
	reports.Post("/generate-pdf", handlers.GenerateReportPDF)
	reports.Post("/summary", handlers.GenerateSummaryReport)
	reports.Post("/summary-pdf", handlers.GenerateSummaryReportPDF)
	reports.Get("/list", handlers.GetReports)
	reports.Get("/stats", handlers.GetReportStats)
	reports.Get("/download/:id", handlers.DownloadReport)
	reports.Delete("/delete/:id", handlers.DeleteReport)

	// Notification routes
	notifications := api.Group("/notifications")
	notifications.Get("/list", handlers.GetNotifications)
	notifications.Put("/mark-read/:id", handlers.MarkNotificationRead)
	notifications.Put("/mark-all-read", handlers.MarkAllNotificationsRead)
	notifications.Delete("/delete/:id", handlers.DeleteNotification)
	notifications.Delete("/clear-all", handlers.ClearAllNotifications)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("📁 Upload folder: %s", getEnv("UPLOAD_FOLDER", "uploads"))

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	if os.Getenv("UPLOAD_FOLDER") == "" {
		os.Setenv("UPLOAD_FOLDER", "uploads")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"message": message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
