package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"taskmaster/internal/config"
	"taskmaster/internal/handlers"
	"taskmaster/internal/middleware"
	"taskmaster/internal/pdf"
	"taskmaster/internal/repositories"
	"taskmaster/internal/routes"
	"taskmaster/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "taskmaster/docs"
)

func Run() {
	cfg := config.LoadConfig()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT secret is not configured (auth.jwt_secret or JWT_SECRET)")
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()
	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database: ", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// === Services ===
	authService := services.NewAuthService()

	var emailService services.EmailService
	if cfg.Email.SMTPHost != "" {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}

	tgService, err := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		log.Printf("[app] telegram disabled: %v", err)
	}

	userService := services.NewUserService(userRepo, authService, emailService)
	taskService := services.NewTaskService(taskRepo)

	// Optional due-date reminders; the scanner only reads tasks and stamps
	// reminded_at, task lifecycle state stays untouched.
	if cfg.Reminder.Enabled {
		reminder := services.NewReminderService(
			taskRepo, userRepo, emailService, tgService,
			time.Duration(cfg.Reminder.IntervalMin)*time.Minute,
			time.Duration(cfg.Reminder.LeadTimeHours)*time.Hour,
		)
		go reminder.Run(context.Background())
	}

	// === Handlers ===
	jwtSecret := []byte(cfg.Auth.JWTSecret)
	tokenTTL := time.Duration(cfg.Auth.TokenTTLMin) * time.Minute
	authHandler := handlers.NewAuthHandler(userService, authService, jwtSecret, tokenTTL)
	taskHandler := handlers.NewTaskHandler(taskService, pdf.NewTaskListGenerator())

	// === Rate limiter ===
	middleware.InitRedisRateLimiter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	var loginLimiter gin.HandlerFunc
	if cfg.Redis.Addr != "" {
		loginLimiter = middleware.RedisRateLimit(cfg.Auth.LoginRateLimit, time.Minute)
	} else {
		loginLimiter = middleware.SimpleRateLimit(cfg.Auth.LoginRateLimit, time.Minute)
	}

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		taskHandler,
		middleware.AuthMiddleware(jwtSecret),
		loginLimiter,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
