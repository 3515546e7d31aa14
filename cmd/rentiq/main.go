package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/riandyrn/otelchi"
	"github.com/spf13/cobra"

	"github.com/neomorfeo/rentiq/internal/adapter/fsm"
	oteladapter "github.com/neomorfeo/rentiq/internal/adapter/otel"
	riveradapter "github.com/neomorfeo/rentiq/internal/adapter/river"
	"github.com/neomorfeo/rentiq/internal/adapter/sqlite"
	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/config"
	"github.com/neomorfeo/rentiq/internal/domain"

	handler "github.com/neomorfeo/rentiq/internal/adapter/http"
)

const (
	serviceName    = "rentiq"
	serviceVersion = "0.1.0"
)

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Rent contract back office",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background job workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database and job queue migrations, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg.DatabasePath)
		},
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))
	return cfg, nil
}

// migrate runs the schema migrations and River's own migrations.
func migrate(ctx context.Context, dbPath string) error {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer store.Close()

	if _, err := riveradapter.Setup(ctx, store.DB(), riveradapter.Options{}); err != nil {
		return fmt.Errorf("river: %w", err)
	}

	slog.InfoContext(ctx, "migrations applied", "database", dbPath)
	return nil
}

func serve(ctx context.Context, cfg config.Config) error {
	// --- Telemetry ---
	providers, err := oteladapter.Setup(ctx, oteladapter.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := oteladapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("database: %w", err)
	}
	defer store.Close()

	executor, err := oteladapter.NewTracingQueryExecutor(store)
	if err != nil {
		return fmt.Errorf("query instrumentation: %w", err)
	}

	// The scan worker needs the contract service, which publishes through
	// the River client, so the scanner is bound after both exist.
	scanner := &serviceScanner{}
	riverClient, err := riveradapter.Setup(ctx, db, riveradapter.Options{
		Scanner:      scanner,
		ScanInterval: cfg.ScanInterval,
		EndingMonths: cfg.EndingMonths,
	})
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}

	// --- Application ---
	lifecycle := fsm.New()
	window := app.NewContractWindowQuery(executor)
	contracts := app.NewContractService(
		oteladapter.NewTracingContractRepository(store),
		store,
		store,
		window,
		oteladapter.NewTracingPublisher(riveradapter.NewPublisher(riverClient)),
		lifecycle,
	)
	scanner.svc = contracts

	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			slog.Error("river stop", "error", err)
		}
	}()

	// --- Adapters (in) ---
	router := newRouter(handler.Services{
		Registry:  app.NewRegistryService(store, store, store),
		Contracts: contracts,
		Window:    window,
		Lifecycle: lifecycle,
		Scans: func(ctx context.Context, months int) error {
			return riveradapter.EnqueueScan(ctx, riverClient, months)
		},
	}, providers.MetricsHandler)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("rentiq listening", "port", cfg.Port, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}

// newRouter builds the HTTP stack. metrics may be nil.
func newRouter(svc handler.Services, metrics http.Handler) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))

	if metrics != nil {
		router.Handle("/metrics", metrics)
	}

	api := humachi.New(router, huma.DefaultConfig(serviceName, serviceVersion))
	handler.Register(api, svc)

	return router
}

// serviceScanner forwards expiry scans to the contract service once it is built.
type serviceScanner struct {
	svc *app.ContractService
}

func (s *serviceScanner) ScanEnding(ctx context.Context, now time.Time, monthsAhead int) ([]domain.RentContract, error) {
	if s.svc == nil {
		return nil, errors.New("contract service not ready")
	}
	return s.svc.ScanEnding(ctx, now, monthsAhead)
}
