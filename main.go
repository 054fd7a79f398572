package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/adapters/datasource"
	_ "github.com/genbi-ai/genbi-engine/pkg/adapters/datasource/mssql"
	_ "github.com/genbi-ai/genbi-engine/pkg/adapters/datasource/postgres"
	"github.com/genbi-ai/genbi-engine/pkg/cache"
	"github.com/genbi-ai/genbi-engine/pkg/catalog"
	"github.com/genbi-ai/genbi-engine/pkg/config"
	"github.com/genbi-ai/genbi-engine/pkg/handlers"
	"github.com/genbi-ai/genbi-engine/pkg/llm"
	"github.com/genbi-ai/genbi-engine/pkg/logging"
	"github.com/genbi-ai/genbi-engine/pkg/monitor"
	"github.com/genbi-ai/genbi-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := datasource.Open(ctx, &cfg.Datasource, logger)
	if err != nil {
		logger.Fatal("Failed to open datasource", zap.Error(err))
	}
	defer func() { _ = conn.Close() }()

	synth, err := llm.NewFromConfig(&cfg.LLM, llm.Dialect(cfg.Datasource.Driver), logger)
	if err != nil {
		logger.Fatal("Failed to build synthesizer", zap.Error(err))
	}

	store := catalog.NewStore(catalog.SnapshotVersion)
	cat, err := catalog.LoadSnapshot(cfg.CatalogPath, cfg.Datasource.Database)
	if err != nil {
		logger.Warn("Catalog snapshot unusable, starting empty", zap.Error(err))
	}
	if cat.TableCount() > 0 {
		store.Swap(cat)
		logger.Info("Catalog snapshot loaded",
			zap.String("path", cfg.CatalogPath),
			zap.Int("tables", cat.TableCount()))
	}

	orchestrator := services.NewOrchestrator(
		store,
		conn,
		synth,
		cache.NewResultCache(cfg.Cache.ResultCapacity, cfg.Cache.ResultTTL()),
		cache.NewPromptCache(cfg.Cache.PromptCapacity, cfg.Cache.PromptTTL()),
		monitor.NewRecorder(),
		cfg,
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewTasksHandler(orchestrator, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting genbi-engine",
		zap.String("addr", server.Addr),
		zap.String("version", cfg.Version),
		zap.String("driver", cfg.Datasource.Driver))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
