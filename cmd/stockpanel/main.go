package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/stockpanel/internal/adapter/driven/inventoryapi"
	sqliteadapter "github.com/ericfisherdev/stockpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/stockpanel/internal/adapter/driven/toast"
	httphandler "github.com/ericfisherdev/stockpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/stockpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/stockpanel/internal/application"
	"github.com/ericfisherdev/stockpanel/internal/config"
	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"poll_interval", cfg.PollInterval,
		"location", cfg.Location.String(),
		"inventory_api", cfg.HasInventoryAPI(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "schema_version", version)

	// 5. Wire adapters.
	kvStore := sqliteadapter.NewKVRepo(db)
	productStore := sqliteadapter.NewProductRepo(db)
	movementStore := sqliteadapter.NewMovementRepo(db)
	toasts := toast.NewQueue()

	// 6. Inventory client stays a nil interface when unconfigured so the
	// sync service reports itself disabled.
	var invClient driven.InventoryClient
	if cfg.HasInventoryAPI() {
		c, err := inventoryapi.NewClient(cfg.InventoryAPIURL, cfg.InventoryAPIToken)
		if err != nil {
			return err
		}
		invClient = c
		slog.Info("inventory client created", "base_url", cfg.InventoryAPIURL)
	} else {
		slog.Info("no inventory API configured, sync disabled")
	}

	// 7. Services. Persisted state is loaded before serving requests.
	settingsSvc := application.NewSettingsService(kvStore, toasts)
	settingsSvc.Load(ctx)

	alertStore := application.NewAlertStore(kvStore).WithLocation(cfg.Location)
	alertStore.Load(ctx)

	alertFeed := application.NewAlertFeed(productStore, movementStore, settingsSvc, alertStore)

	syncSvc := application.NewSyncService(invClient, productStore, movementStore, cfg.PollInterval)
	go syncSvc.Start(ctx)

	// 8. Register API and GUI routes on one mux.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(settingsSvc, alertStore, alertFeed, syncSvc, cfg.Location, slog.Default())
	apiHandler.RegisterRoutes(mux)

	webHandler := webhandler.NewHandler(settingsSvc, alertStore, alertFeed, productStore, syncSvc, toasts, cfg.Location, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("stockpanel started",
		"listen_addr", cfg.ListenAddr,
		"sync_enabled", syncSvc.Enabled(),
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
