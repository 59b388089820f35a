package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"decision-engine/internal/config"
	"decision-engine/internal/database/postgres"
	"decision-engine/internal/database/redis"
	"decision-engine/internal/event"
	"decision-engine/internal/handlers"
	"decision-engine/internal/repository"
	"decision-engine/internal/services"

	"github.com/gofiber/fiber/v3"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/var", "log", "decision_engine")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(file, nil)))
	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		fmt.Printf("Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	cfg := config.New()
	slog.Info("Connecting to PostgreSQL",
		"host", cfg.PostgresCfg.Host, "port", cfg.PostgresCfg.Port, "dbname", cfg.PostgresCfg.DBname)

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		slog.Error("error connecting to database", "error", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	// Config cache is optional; the engine reads straight from Postgres
	// when Redis is down.
	var cache *redis.Client
	cache, err = redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		slog.Error("error connecting to redis, config cache disabled", "error", err)
		cache = nil
	}

	var publisher *event.Publisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Error("error connecting to RabbitMQ, events disabled", "error", err)
	} else {
		defer rabbitConn.Close()
		publisher = event.NewPublisher(rabbitConn)
	}

	// repositories
	cacheTTL := time.Duration(cfg.EngineCfg.ConfigCacheTTLSeconds) * time.Second
	applicationRepo := repository.NewApplicationRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	configRepo := repository.NewConfigRuleRepository(db, cache, cacheTTL)
	customerRepo := repository.NewCustomerRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	recRepo := repository.NewRecommendationRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	historyRepo := repository.NewClaimHistoryRepository(db)
	assessmentRepo := repository.NewClaimAssessmentRepository(db)
	settlementRepo := repository.NewClaimSettlementRepository(db)

	// services
	calculator := services.NewPremiumCalculator(cfg.EngineCfg)
	scorer := services.NewQuoteScorer()
	authority := services.NewAuthorityResolver(configRepo)
	quoteService := services.NewQuoteService(
		cfg.EngineCfg, calculator, scorer,
		applicationRepo, catalogRepo, configRepo, customerRepo, quoteRepo, recRepo,
	)
	claimWorkflow := services.NewClaimWorkflow(
		cfg.EngineCfg, claimRepo, historyRepo, assessmentRepo, settlementRepo, authority,
	)

	// handlers
	quoteHandler := handlers.NewQuoteHandler(quoteService, publisher)
	claimHandler := handlers.NewClaimHandler(claimWorkflow, publisher)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Decision engine is healthy")
	})

	quoteHandler.Register(app)
	claimHandler.Register(app)

	slog.Info("Starting decision engine", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
