package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/NadavGB86/event-pragmetizer-oss/common/id"
	"github.com/NadavGB86/event-pragmetizer-oss/common/llm"
	"github.com/NadavGB86/event-pragmetizer-oss/common/logger"
	"github.com/NadavGB86/event-pragmetizer-oss/common/otel"
	"github.com/NadavGB86/event-pragmetizer-oss/core/config"
	"github.com/NadavGB86/event-pragmetizer-oss/core/db"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/advisory"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/brain"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/http/middleware"
	httprouter "github.com/NadavGB86/event-pragmetizer-oss/internal/http/router"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/service"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "planner starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var database *db.DB
	if cfg.DB.Enabled() {
		database, err = db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to migrate database", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "database connected")
	} else {
		slog.WarnContext(ctx, "DATABASE_URL not set, sessions are kept in memory")
	}

	advisoryStore := advisory.NewMemoryStore()
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		advisoryStore = advisory.NewRedisStore(redisClient, advisory.RedisStoreConfig{
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.AdvisoryTTL,
		})
		slog.InfoContext(ctx, "redis connected", "key_prefix", cfg.Redis.KeyPrefix)
	}

	generatorLLM := mustLLM(ctx, "generator", cfg.GeneratorLLM)
	analystLLM := generatorLLM
	if cfg.AnalystLLM.Enabled() {
		analystLLM = mustLLM(ctx, "analyst", cfg.AnalystLLM)
	}
	advisorLLM := generatorLLM
	if cfg.AdvisorLLM.Enabled() {
		advisorLLM = mustLLM(ctx, "advisor", cfg.AdvisorLLM)
	}

	advisor, err := brain.NewAdvisor(advisorLLM, cfg.Planning.AdvisoryCache)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create advisor", "error", err)
		os.Exit(1)
	}
	tracker := advisory.NewTracker(advisor, advisoryStore, cfg.Planning.LLMTimeout)

	origin := cfg.Planning.Origin
	services := service.NewServices(store.NewStores(database), service.PlanningDeps{
		Analyst:   brain.NewAnalyst(analystLLM, brain.ParseGuidanceMode(cfg.Planning.GuidanceMode)),
		Generator: brain.NewGenerator(generatorLLM, origin),
		Refiner:   brain.NewRefiner(generatorLLM, origin),
		Advisory:  tracker,
		Origin:    origin,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation waits on the model.
		WriteTimeout: cfg.Planning.LLMTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := tracker.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "advisory shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func mustLLM(ctx context.Context, role string, cfg config.LLMConfig) llm.Client {
	client, err := llm.New(llm.Config{
		Provider:  cfg.Provider,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "role", role, "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "llm client ready", "role", role, "model", client.Model())
	return client
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
 ___ _  _ ___ _  _ _____   ___ _      _   _  _ _  _ ___ ___
| __| || | __| \| |_   _| | _ \ |    /_\ | \| | \| | __| _ \
| _|| \/ | _|| .' | | |   |  _/ |__ / _ \| .' | .' | _||   /
|___|\__/|___|_|\_| |_|   |_| |____/_/ \_\_|\_|_|\_|___|_|_\
`
