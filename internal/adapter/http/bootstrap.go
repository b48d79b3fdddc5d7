package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"todoitems/internal/adapter/database/postgres"
	pgrepository "todoitems/internal/adapter/database/postgres/repository"
	"todoitems/internal/adapter/database/sqlite"
	sqliterepository "todoitems/internal/adapter/database/sqlite/repository"
	"todoitems/internal/adapter/http/routes"
	"todoitems/internal/adapter/telemetry"
	"todoitems/internal/core/port"
	"todoitems/pkg/auth"
	"todoitems/pkg/config"
	"todoitems/pkg/logger"
)

type store struct {
	repo   port.TodoItemRepository
	checks map[string]port.HealthCheck
	close  func()
}

func openStore(ctx context.Context, cfg *config.AppConfig, log *logger.Logger, probe port.Telemetry) (*store, error) {
	switch cfg.DatabaseDriver() {
	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, postgres.Options{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, log.Logger.Logger)

		if err != nil {
			return nil, err
		}

		return &store{
			repo:   pgrepository.NewTodoItemRepository(db, probe),
			checks: map[string]port.HealthCheck{"database": port.HealthCheckFunc(db.Ping)},
			close:  db.Close,
		}, nil

	default:
		db, err := sqlite.NewDB(sqlite.Options{
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogQueries:      cfg.Database.LogQueries,
		})

		if err != nil {
			return nil, err
		}

		return &store{
			repo:   sqliterepository.NewTodoItemRepository(db, probe),
			checks: map[string]port.HealthCheck{"database": port.HealthCheckFunc(db.Ping)},
			close:  func() { _ = db.Close() },
		}, nil
	}
}

// StartServer serves the API until ctx is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func StartServer(ctx context.Context, cfg *config.AppConfig, log *logger.Logger, tel *telemetry.Container) error {
	probe := tel.NewTelemetryProbe()

	st, err := openStore(ctx, cfg, log, probe)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.close()

	container := NewContainer(st.repo, st.checks, cfg, log, probe)

	routerConfig := routes.RouterConfig{
		ServiceName:  cfg.AppName,
		Logger:       log,
		Metrics:      tel.AppMetrics,
		EnforceHTTPS: cfg.EnforceHTTPS,
	}

	if cfg.AuthJWTSecret != "" {
		routerConfig.JWT = &auth.JWT{Secret: cfg.AuthJWTSecret}
	}

	router := routes.SetupRouter(routes.HandlersConfig{
		TodoItemHandler: container.TodoItemHandler,
		HealthHandler:   container.HealthHandler,
	}, routerConfig)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	log.Info("Server starting",
		zap.String("port", cfg.HTTP.Port),
		zap.String("environment", cfg.Environment),
		zap.String("database", string(cfg.DatabaseDriver())),
		zap.Bool("https_enforced", cfg.EnforceHTTPS),
		zap.Bool("auth_enabled", routerConfig.JWT != nil),
	)

	serveErr := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
