package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/csvchat/backend/internal/analysis"
	"github.com/csvchat/backend/internal/api/handlers"
	"github.com/csvchat/backend/internal/cache/redis"
	"github.com/csvchat/backend/internal/dataset"
	"github.com/csvchat/backend/internal/llm"
	"github.com/csvchat/backend/internal/metrics"
	"github.com/csvchat/backend/internal/middleware/ratelimit"
	"github.com/csvchat/backend/internal/middleware/security"
	"github.com/csvchat/backend/internal/middleware/validation"
	"github.com/csvchat/backend/internal/storage/sqlite"
	"github.com/csvchat/backend/internal/tabular"
	"github.com/csvchat/backend/internal/viz"
	"github.com/csvchat/backend/pkg/config"
	appLogger "github.com/csvchat/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting CSV Chat API Server")

	metrics.Init()

	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0755); err != nil {
		appLogger.Fatal("Failed to create data directory", zap.Error(err))
	}

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	renderer, err := viz.NewRenderer(cfg.Charts.Dir)
	if err != nil {
		appLogger.Fatal("Failed to create chart renderer", zap.Error(err))
	}

	var cache analysis.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without response cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = redisClient
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	tabularClient := tabular.NewClient(cfg.Tabular.Endpoint, cfg.Tabular.APIKey, cfg.Tabular.TimeoutSec)
	if !tabularClient.Available() {
		appLogger.Warn("Dataframe-query service key not set, external query path disabled")
	}

	store := dataset.NewStore(nil)
	engine := analysis.NewEngine(
		renderer,
		tabularClient,
		sqliteClient,
		cache,
		time.Duration(cfg.Redis.TTLSec)*time.Second,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	limiter := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})

	datasetHandler := handlers.NewDatasetHandler(store, sqliteClient)
	queryHandler := handlers.NewQueryHandler(store, engine, sqliteClient)
	chatHandler := handlers.NewChatHandler(llmClient)

	api := app.Group("/api/v1")

	api.Post("/datasets", limiter.Middleware(), datasetHandler.Upload)
	api.Post("/datasets/:id/query", limiter.Middleware(), queryHandler.HandleQuery)
	api.Get("/query/history", queryHandler.GetQueryHistory)
	api.Post("/chat", limiter.Middleware(), chatHandler.HandleChat)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
