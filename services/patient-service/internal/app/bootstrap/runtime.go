package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	eventadapter "github.com/patientmesh/mesh/services/patient-service/internal/adapters/events"
	grpcadapter "github.com/patientmesh/mesh/services/patient-service/internal/adapters/grpc"
	httpadapter "github.com/patientmesh/mesh/services/patient-service/internal/adapters/http"
	"github.com/patientmesh/mesh/services/patient-service/internal/adapters/postgres"
	"github.com/patientmesh/mesh/services/patient-service/internal/application"
	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	cleanupFn  func(context.Context)
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

	billingClient, err := grpcadapter.NewBillingClient(cfg.BillingEndpoint(), cfg.BillingTimeout)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	var closers []io.Closer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			application.EventTypePatientCreated: cfg.KafkaTopicPatient,
		}, cfg.KafkaWriteTimeout)
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}
	} else {
		logger.WarnContext(ctx, "no kafka brokers configured, using logging publisher")
	}

	service := application.NewService(application.Dependencies{
		Config:    application.Config{ServiceName: cfg.ServiceID},
		Patients:  postgres.NewPatientRepository(db),
		Billing:   billingClient,
		Publisher: publisher,
	})

	handler := httpadapter.NewHandler(service)
	router := httpadapter.NewRouter(handler, httpadapter.RouterOptions{RequireIdentity: cfg.RequireGatewayIdentity})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		cleanupFn: func(ctx context.Context) {
			for _, closer := range closers {
				_ = closer.Close()
			}
			_ = billingClient.Close()
			_ = sqlDB.Close()
		},
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
	r.logger.InfoContext(ctx, "patient api listening", "addr", r.httpServer.Addr)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", runErr)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return runErr
}

// Migrate applies the embedded schema and exits.
func Migrate(ctx context.Context, configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.ServiceID)
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := postgres.RunMigrations(ctx, db); err != nil {
		return err
	}
	logger.InfoContext(ctx, "migrations applied", "operation", "migrate", "outcome", "success")
	return nil
}
