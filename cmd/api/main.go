package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prezstore/internal/cache"
	"prezstore/internal/config"
	"prezstore/internal/database"
	"prezstore/internal/database/migration"
	handlers "prezstore/internal/http/handler"
	"prezstore/internal/http/middleware"
	"prezstore/internal/model"
	"prezstore/internal/otel"
	"prezstore/internal/repository/postgres"
	"prezstore/internal/service"
	"prezstore/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	store, db, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, store)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// buildStore selects the storage backend once at startup: the durable store
// (Postgres + MinIO mirror + cache) when the database is configured, the
// filesystem fallback otherwise. The returned *sql.DB is nil for the
// fallback.
func buildStore(ctx context.Context, cfg *config.AppConfig) (service.PresentationStore, *sql.DB, error) {
	backend := cfg.Storage.Backend
	if backend == "" {
		if cfg.Database.Enabled() {
			backend = string(service.BackendDurable)
		} else {
			backend = string(service.BackendFilesystem)
		}
	}

	if backend == string(service.BackendFilesystem) {
		store, err := service.NewFilesystemStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		db.Close()
		return nil, nil, err
	}

	mirror, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	var docCache *cache.Cache[*model.Presentation]
	if cfg.Cache.Enabled {
		docCache = cache.New[*model.Presentation](
			time.Duration(cfg.Cache.TTLSeconds)*time.Second,
			cfg.Cache.MaxEntries,
		)
	}

	store := service.NewPresentationStore(
		postgres.NewPresentationPostgres(db),
		postgres.NewVersionPostgres(db),
		mirror,
		docCache,
	)
	return store, db, nil
}
