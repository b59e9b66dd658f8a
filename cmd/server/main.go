package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Omballaa/eni-sortir/internal/cache"
	"github.com/Omballaa/eni-sortir/internal/handlers"
	"github.com/Omballaa/eni-sortir/internal/middleware"
	"github.com/Omballaa/eni-sortir/internal/repository"
	"github.com/Omballaa/eni-sortir/internal/scheduler"
	"github.com/Omballaa/eni-sortir/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Sortir Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}
	notifCache := cache.NewNotificationCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	outingRepo := repository.NewOutingRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	readStatusRepo := repository.NewReadStatusRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	groupService := service.NewGroupService(groupRepo, membershipRepo, messageRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, membershipRepo, readStatusRepo)
	notificationService := service.NewNotificationService(notificationRepo, membershipRepo, readStatusRepo, notifCache)
	lifecycleService := service.NewLifecycleService(groupService, messageService)
	outingService := service.NewOutingService(outingRepo, userRepo, lifecycleService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService)
	messageHandler := handlers.NewMessageHandler(messageService, notificationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	outingHandler := handlers.NewOutingHandler(outingService)

	// Public routes
	api := app.Group("/api")
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired())
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Put("/users/me", userHandler.UpdateProfile)
	protected.Get("/users/search", userHandler.SearchUsers)

	// Outing routes
	protected.Post("/outings", outingHandler.CreateOuting)
	protected.Get("/outings/:id", outingHandler.GetOuting)
	protected.Post("/outings/:id/publish", outingHandler.PublishOuting)
	protected.Post("/outings/:id/cancel", outingHandler.CancelOuting)
	protected.Post("/outings/:id/register", outingHandler.Register)
	protected.Delete("/outings/:id/register", outingHandler.Unregister)

	// Group routes
	protected.Post("/groups", groupHandler.CreatePrivateGroup)
	protected.Get("/groups", notificationHandler.GetMyGroups)
	protected.Get("/groups/:id", groupHandler.GetGroup)
	protected.Get("/groups/:id/members", groupHandler.GetGroupMembers)
	protected.Post("/groups/:id/notifications", groupHandler.SetNotificationPref)
	protected.Get("/groups/:id/messages", messageHandler.GetGroupMessages)
	protected.Get("/groups/:id/messages/history", messageHandler.GetGroupHistory)
	protected.Post("/groups/:id/messages", messageHandler.SendGroupMessage)
	protected.Post("/groups/:id/visit", messageHandler.MarkGroupVisited)

	// Message routes
	protected.Post("/messages", messageHandler.SendDirectMessage)
	protected.Get("/messages", messageHandler.GetDirectMessages)
	protected.Post("/messages/:id/read", messageHandler.MarkMessageRead)
	protected.Delete("/messages/:id/read", messageHandler.MarkMessageUnread)

	// Notification routes
	protected.Get("/notifications", notificationHandler.GetNotifications)
	protected.Get("/notifications/count", notificationHandler.GetUnreadCount)

	// Background closer for outings whose start time has passed
	closer := scheduler.NewCloser(outingService)
	closerSpec := os.Getenv("CLOSER_CRON")
	if closerSpec == "" {
		closerSpec = "@hourly"
	}
	if err := closer.Start(closerSpec); err != nil {
		log.Fatal("Failed to start outing closer:", err)
	}
	defer closer.Stop()

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Sortir backend is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
