package bootstrap

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

	"github.com/patientmesh/mesh/platform/tokens"
	httpadapter "github.com/patientmesh/mesh/services/auth-service/internal/adapters/http"
	"github.com/patientmesh/mesh/services/auth-service/internal/adapters/postgres"
	"github.com/patientmesh/mesh/services/auth-service/internal/adapters/security"
	"github.com/patientmesh/mesh/services/auth-service/internal/application"
)

type Runtime struct {
	logger     *slog.Logger
	httpServer *http.Server
	cleanupFn  func()
}

func newLogger(serviceID string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", serviceID)
	slog.SetDefault(logger)
	return logger
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.ServiceID)

	signer, err := tokens.NewSigner(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	service := application.NewService(application.Dependencies{
		Users:  postgres.NewUserRepository(db),
		Hasher: security.NewBcryptHasher(cfg.BcryptCost),
		Tokens: signer,
	})
	if cfg.BootstrapEmail != "" {
		user, seedErr := service.EnsureUser(ctx, cfg.BootstrapEmail, cfg.BootstrapPassword, cfg.BootstrapRole)
		if seedErr != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("bootstrap user: %w", seedErr)
		}
		logger.InfoContext(ctx, "bootstrap user ensured", "operation", "bootstrap_user", "outcome", "success", "user_id", user.ID.String())
	}

	return &Runtime{
		logger: logger,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           httpadapter.NewRouter(httpadapter.NewHandler(service)),
			ReadHeaderTimeout: 5 * time.Second,
		},
		cleanupFn: func() { _ = sqlDB.Close() },
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	r.logger.InfoContext(ctx, "auth api listening", "addr", r.httpServer.Addr)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", runErr)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn()
	return runErr
}
