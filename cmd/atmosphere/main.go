package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/i474232898/atmosphere/internal/api/http"
	"github.com/i474232898/atmosphere/internal/config"
	"github.com/i474232898/atmosphere/internal/journal"
	"github.com/i474232898/atmosphere/internal/scheduler"
	"github.com/i474232898/atmosphere/internal/store"
	"github.com/i474232898/atmosphere/internal/weather"
	"github.com/i474232898/atmosphere/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	apiKey := cfg.ProviderAPIKey()
	if apiKey == "" {
		log.Warn("weather provider API key is not set; dashboard requests will fail", "provider", cfg.Provider)
	}
	provider, err := providers.New(cfg.Provider, httpClient, apiKey,
		providers.WithRateLimit(cfg.ProviderRPS, cfg.ProviderBurst))
	if err != nil {
		log.Error("failed to create weather provider", "error", err)
		os.Exit(1)
	}

	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	service := weather.NewService(memStore, provider, cfg.CacheTTL, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	journalStore, closeJournal, err := openJournal(ctx, cfg)
	if err != nil {
		log.Error("failed to open journal store", "driver", cfg.JournalDriver, "error", err)
		os.Exit(1)
	}
	defer closeJournal()

	sched := scheduler.New(cfg.Locations, cfg.RefreshInterval, service, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "atmosphere",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, " + httpapi.DeviceHeader,
		ExposeHeaders: httpapi.DeviceHeader,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "atmosphere",
			"provider": provider.Name(),
		})
	})

	httpapi.RegisterRoutes(app, service, journalStore, log)

	go func() {
		log.Info("listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}

// openJournal builds the configured journal backend and returns its
// cleanup function.
func openJournal(ctx context.Context, cfg *config.AppConfig) (journal.Store, func(), error) {
	if cfg.JournalDriver == config.JournalDriverPostgres {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		pg := journal.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	}

	sqlite, err := journal.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return sqlite, func() { sqlite.Close() }, nil
}
