package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ambassador-platform/handlers"
	"ambassador-platform/middleware"
	"ambassador-platform/models"
	"ambassador-platform/services"
	"ambassador-platform/utils"
	"ambassador-platform/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // 50MB — logos, covers, report attachments
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Region{},
		&models.User{},
		&models.Club{},
		&models.ClubMembership{},
		&models.Session{},
		&models.SessionAttendance{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Task{},
		&models.TaskCompletion{},
		&models.PointGrant{},
		&models.Report{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	pointsService := services.NewPointsService(db)
	leaderboardService := services.NewLeaderboardService(db)
	reportService := services.NewReportService(db, pointsService)
	clubService := services.NewClubService(db)
	sessionService := services.NewSessionService(db, pointsService)
	eventService := services.NewEventService(db, pointsService)
	taskService := services.NewTaskService(db, pointsService)
	userService := services.NewUserService(db)

	// --- Exode learning platform integration ---
	exodeBaseURL := os.Getenv("EXODE_API_URL")
	if exodeBaseURL == "" {
		log.Fatal("EXODE_API_URL environment variable not set")
	}
	exodeAPIKey := os.Getenv("EXODE_API_KEY")
	if exodeAPIKey == "" {
		log.Fatal("EXODE_API_KEY environment variable not set")
	}
	exodeService := services.NewExodeService(db, services.NewExodeClient(exodeBaseURL, exodeAPIKey))

	// --- Profile mirror sync ---
	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("COMMUNITY_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("COMMUNITY_SERVICE_TOKEN environment variable not set")
	}
	syncWorker := workers.NewUserSyncWorker(db, syncServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Starting User Sync Worker...")
		syncWorker.Start(ctx)
	}()

	sessionService.StartSessionScheduler()
	exodeService.StartExodeSyncScheduler()

	// ✅ Routes — enforced Gateway auth globally
	handlers.SetupClubRoutes(app, clubService)
	handlers.SetupSessionRoutes(app, sessionService)
	handlers.SetupEventRoutes(app, eventService)
	handlers.SetupTaskRoutes(app, taskService)
	handlers.SetupPointsRoutes(app, pointsService, leaderboardService)
	handlers.SetupReportRoutes(app, reportService)
	handlers.SetupUserRoutes(app, userService, exodeService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ User Sync Worker running")
	log.Println("✅ Session scheduler running (every 1m)")
	log.Println("✅ Nightly Exode sync scheduled (03:00)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
