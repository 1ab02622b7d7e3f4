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
	"github.com/patientmesh/mesh/services/api-gateway/internal/adapters/cache"
	httpadapter "github.com/patientmesh/mesh/services/api-gateway/internal/adapters/http"
	"github.com/patientmesh/mesh/services/api-gateway/internal/adapters/validator"
	"github.com/patientmesh/mesh/services/api-gateway/internal/application"
	"github.com/patientmesh/mesh/services/api-gateway/internal/domain"
	"github.com/patientmesh/mesh/services/api-gateway/internal/ports"
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

	routes, err := domain.NewRouteTable(cfg.Routes)
	if err != nil {
		return nil, err
	}

	var (
		tokenValidator ports.TokenValidator
		resultCache    ports.ValidationCache
		cleanupFn      = func() {}
	)
	switch cfg.ValidationMode {
	case ValidationLocal:
		verifier, verr := tokens.NewVerifier(cfg.JWTSecret)
		if verr != nil {
			return nil, fmt.Errorf("token verifier: %w", verr)
		}
		tokenValidator = validator.NewLocal(verifier)
	case ValidationRemote:
		tokenValidator = validator.NewRemote(cfg.AuthServiceURL, cfg.ValidationTimeout, nil)
		if cfg.CacheTTL > 0 {
			resultCache = cache.NewMemoryValidationCache(cfg.MemoryCacheSize)
			if cfg.RedisURL != "" {
				client, cerr := cache.Connect(ctx, cfg.RedisURL)
				if cerr != nil {
					logger.WarnContext(ctx, "redis unavailable, using in-memory validation cache", "error", cerr)
				} else {
					resultCache = cache.NewRedisValidationCache(client)
					cleanupFn = func() { _ = client.Close() }
				}
			}
		}
	}

	gate := application.NewGate(application.Dependencies{
		Config:    application.Config{CacheTTL: cfg.CacheTTL},
		Routes:    routes,
		Validator: tokenValidator,
		Cache:     resultCache,
	})
	proxy, err := httpadapter.NewProxy(gate, routes, httpadapter.ProxyOptions{
		Upstreams:         cfg.Upstreams,
		KeepAuthorization: cfg.KeepAuthorization,
	})
	if err != nil {
		cleanupFn()
		return nil, err
	}
	logger.InfoContext(ctx, "gateway configured",
		"operation", "bootstrap",
		"validation_mode", cfg.ValidationMode,
		"routes", len(routes.Routes()),
		"cache_enabled", resultCache != nil,
	)

	return &Runtime{
		logger: logger,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           httpadapter.NewRouter(proxy),
			ReadHeaderTimeout: 5 * time.Second,
		},
		cleanupFn: cleanupFn,
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
	r.logger.InfoContext(ctx, "gateway listening", "addr", r.httpServer.Addr)

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
