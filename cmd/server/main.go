package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatescan-service/internal/infrastructure/auth"
	"gatescan-service/internal/infrastructure/config"
	"gatescan-service/internal/infrastructure/persistence"
	"gatescan-service/internal/interface/httpapi"
	"gatescan-service/internal/interface/repository"
	"gatescan-service/internal/usecase"
	"gatescan-service/pkg/logger"
	"gatescan-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
)

const deviceTokenDuration = 30 * 24 * time.Hour

func main() {
	// Create logger
	log := logger.NewLogger()
	defer log.Sync()
	log.Info("Starting Gatescan Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	refLoc, err := time.LoadLocation(cfg.ReferenceTimezone)
	if err != nil {
		log.Fatal("Invalid reference timezone", "timezone", cfg.ReferenceTimezone, "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	// Set up PostgreSQL connection for flight and reference tables
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Redis backs the per-device rate limiter; the service starts without it
	// and simply stops throttling.
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting disabled", "error", err)
		redisClient = nil
	}

	// Set up metrics
	m := metrics.NewMetrics("gatescan")

	// Set up repositories
	scanLedger := repository.NewMongoScanLedger(db)
	rejectionRepo := repository.NewMongoRejectionRepository(db, log)
	passRepo := repository.NewMongoBoardingPassRepository(db)
	flightRepo := repository.NewGormFlightRepository(gormDB)
	refCodeRepo := repository.NewGormReferenceCodeRepository(gormDB)

	// Set up the sync coordinator
	coordinator := usecase.NewSyncCoordinator(
		scanLedger,
		flightRepo,
		passRepo,
		rejectionRepo,
		m,
		log,
		refLoc,
	)

	// Set up HTTP API
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, deviceTokenDuration)
	limiter := httpapi.NewRateLimiter(redisClient, cfg.RateLimitPerMinute, log)
	handler := httpapi.NewHandler(coordinator, flightRepo, rejectionRepo, refCodeRepo, cfg.MaxSyncBatchSize, log)
	router := httpapi.NewRouter(handler, jwtManager, limiter, promhttp.Handler(), log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Gatescan Service stopped")
}
