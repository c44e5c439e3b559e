package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chemequip/internal/auth"
	"chemequip/internal/config"
	"chemequip/internal/handlers"
	"chemequip/internal/middleware"
	"chemequip/internal/publisher"
	"chemequip/internal/repository"
	"chemequip/internal/service"
	"chemequip/internal/worker"
	"chemequip/pkg/database"
	"chemequip/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== Chemical Equipment Backend Starting ===")

	cfg := config.Load()

	db, err := database.Connect(database.Config{
		Driver:   cfg.DB.Driver,
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
		Path:     cfg.DB.Path,
		Debug:    cfg.App.Debug,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Redis is optional; without it reads go straight to the database.
	cacheRepo := repository.NewNoopCacheRepository()
	var healthCache repository.CacheRepository
	var cacheStats handlers.StatsFunc
	if cfg.Redis.Enabled {
		redisClient, err := redis.Connect(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Printf("Redis unavailable, caching disabled: %v", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient)
			healthCache = cacheRepo
			cacheStats = func() (map[string]string, error) { return redis.GetStats(redisClient) }
		}
	}

	var notifier service.UploadNotifier
	if cfg.MQTT.Enabled {
		pub, err := publisher.New(publisher.Config{
			Broker:      cfg.MQTT.Broker,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		})
		if err != nil {
			log.Printf("MQTT unavailable, upload events disabled: %v", err)
		} else {
			defer pub.Close()
			notifier = pub
			log.Printf("Publishing upload events to %s", pub.UploadTopic())
		}
	}

	equipmentRepo := repository.NewEquipmentRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	transactor := repository.NewTransactor(db)

	equipmentService := service.NewEquipmentService(
		equipmentRepo,
		historyRepo,
		transactor,
		cacheRepo,
		notifier,
		service.EquipmentConfig{CacheTTL: cfg.Redis.CacheTTL},
	)
	reportService := service.NewReportService(equipmentService, cfg.Reports.OutputDir, nil)

	authenticator := auth.NewAuthenticator(auth.Config{
		Secret:       cfg.Auth.JWTSecret,
		Username:     cfg.Auth.AdminUser,
		PasswordHash: cfg.Auth.AdminPassHash,
		AccessTTL:    cfg.Auth.AccessTTL,
		RefreshTTL:   cfg.Auth.RefreshTTL,
	})
	if cfg.Auth.JWTSecret == "" || cfg.Auth.AdminPassHash == "" {
		log.Println("JWT_SECRET or ADMIN_PASS_HASH not set: every authenticated request will be rejected")
	}

	scheduler := worker.NewScheduler()
	if cfg.Workers.ReportEnabled {
		scheduler.AddWorker(worker.NewReportWorker(reportService, cfg.Workers.ReportInterval))
		log.Printf("Report Worker enabled (interval: %v, dir: %s)", cfg.Workers.ReportInterval, cfg.Reports.OutputDir)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader, "X-Report-Pages"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if !cfg.App.Debug {
		limit := rate.Limit(cfg.RateLimit.RequestsPerSecond)
		if cfg.RateLimit.Mode == "global" {
			r.Use(middleware.RateLimitMiddleware(rate.NewLimiter(limit, cfg.RateLimit.Burst)))
		} else {
			r.Use(middleware.IPRateLimitMiddleware(middleware.NewIPRateLimiter(limit, cfg.RateLimit.Burst)))
		}
		log.Printf("Rate limiting enabled (%s): %d req/sec, burst: %d",
			cfg.RateLimit.Mode, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	r.Use(middleware.BodyLimit(cfg.App.MaxUploadMB << 20))
	r.MaxMultipartMemory = cfg.App.MaxUploadMB << 20

	handlers.RegisterRoutes(r, handlers.Handlers{
		Equipment: handlers.NewEquipmentHandler(equipmentService),
		Reports:   handlers.NewReportHandler(reportService),
		Auth:      handlers.NewAuthHandler(authenticator),
		Health:    handlers.NewHealthHandler(db, healthCache, cacheStats),
	}, middleware.AuthMiddleware(authenticator))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)
		log.Printf("Health check: http://localhost:%s/api/health", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited properly")
}
