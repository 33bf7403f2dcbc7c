package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Andrei800/booknest/internal/config"
	"github.com/Andrei800/booknest/internal/covers"
	"github.com/Andrei800/booknest/internal/database"
	http_controllers "github.com/Andrei800/booknest/internal/http"
	"github.com/Andrei800/booknest/internal/metadata"
	"github.com/Andrei800/booknest/internal/scheduler"
	"github.com/Andrei800/booknest/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains it within
// the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the catalog database, metadata clients, and background task
// queue together and starts the HTTP server.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting BookNest v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	googleClient := metadata.NewGoogleBooksClient(cfg.Covers.GoogleAPIKey, cfg.Covers.PreferredLanguage)
	openLibraryClient := metadata.NewOpenLibraryClient()
	metadataService := metadata.NewService(googleClient, openLibraryClient)
	enricher := metadata.NewEnricher(metadataService, db)

	coverCache, err := covers.NewCache(filepath.Join(filepath.Dir(cfg.Database.Path), "covers"))
	if err != nil {
		log.Printf("Cover image cache disabled: %v", err)
		coverCache = nil
	}

	var backfill *scheduler.CoverBackfillScheduler
	if cfg.Covers.BackfillEnabled {
		backfill = scheduler.NewCoverBackfillScheduler(enricher, cfg.Covers.BackfillSchedule)
		if err := backfill.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start cover backfill scheduler: %v", err)
		}
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.DefaultConfig()
		taskCfg.Workers = cfg.Tasks.Workers
		taskCfg.MaxRetries = cfg.Tasks.MaxRetries
		taskCfg.RetryDelay = cfg.Tasks.RetryDelay
		taskCfg.TaskTimeout = cfg.Tasks.TaskTimeout
		taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
		taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewFetchCoverQueue(enricher),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		DB:             db,
		Metadata:       metadataService,
		Enricher:       enricher,
		TaskClient:     taskClient,
		CoverCache:     coverCache,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		FetchCovers:    cfg.Covers.FetchEnabled,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if backfill != nil {
			backfill.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		if taskCtxCancel != nil {
			taskCtxCancel()
		}
	})
}
