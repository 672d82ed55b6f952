package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/massiben/rh-backend/internal"
	"github.com/massiben/rh-backend/internal/core/events"
	"github.com/massiben/rh-backend/internal/datastore"
	"github.com/massiben/rh-backend/internal/transport/rest"
	"github.com/massiben/rh-backend/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	Store  *datastore.Store
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	// background flusher and optional file watcher live until shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go deps.Store.StartFlusher(ctx, deps.Config.Store.FlushInterval)
	if deps.Config.Store.Watch {
		if err := deps.Store.Watch(ctx); err != nil {
			deps.Logger.Error("failed to start store watcher", "error", err)
		}
	}

	rest.RegisterAllRoutes(deps.Router, deps.Store, deps.Bus, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr, "store", deps.Store.Path())

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, shutdownCancel := internal.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		cancel()
		if err := deps.Store.Flush(); err != nil {
			slog.Error("Store flush error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	lg := logger.LoggerWrapper()

	store, err := initStore(config.Store, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.AuditLogger(bus)

	return &Dependencies{
		Config: config,
		Logger: lg,
		Store:  store,
		Bus:    bus,
		Router: chi.NewRouter(),
	}, nil
}

// initStore loads the document and makes sure the auth collections exist.
func initStore(cfg internal.StoreConfig, lg *slog.Logger) (*datastore.Store, error) {
	store, err := datastore.Open(cfg.Path, lg)
	if err != nil {
		return nil, err
	}
	store.Bootstrap()
	return store, nil
}
