package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/patientmesh/mesh/services/billing-service/internal/adapters/cache"
	grpcadapter "github.com/patientmesh/mesh/services/billing-service/internal/adapters/grpc"
	"github.com/patientmesh/mesh/services/billing-service/internal/application"
	"github.com/patientmesh/mesh/services/billing-service/internal/ports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	grpcServer *grpc.Server
	grpcLis    net.Listener
	health     *health.Server
	cleanupFn  func()
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	registry := ports.AccountRegistry(cache.NewMemoryAccountRegistry())
	cleanup := func() {}
	if cfg.RedisURL != "" {
		redisClient, redisErr := cache.Connect(ctx, cfg.RedisURL)
		if redisErr != nil {
			return nil, redisErr
		}
		registry = cache.NewRedisAccountRegistry(redisClient)
		cleanup = func() { _ = redisClient.Close() }
	} else {
		logger.WarnContext(ctx, "no redis configured, billing accounts kept in memory")
	}

	service := application.NewService(application.Dependencies{Accounts: registry})

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcadapter.LoggingInterceptor(logger)))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(grpcServer, grpcadapter.NewBillingServer(service))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		cleanup()
		return nil, err
	}
	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		grpcServer: grpcServer,
		grpcLis:    lis,
		health:     healthSrv,
		cleanupFn:  cleanup,
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)

	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	r.logger.InfoContext(ctx, "billing grpc listening", "addr", r.grpcLis.Addr().String())

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", runErr)
	}
	r.health.Shutdown()
	r.grpcServer.GracefulStop()
	r.cleanupFn()
	return runErr
}
