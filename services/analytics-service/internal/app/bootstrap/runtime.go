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

	"github.com/patientmesh/mesh/services/analytics-service/internal/adapters/cache"
	eventadapter "github.com/patientmesh/mesh/services/analytics-service/internal/adapters/events"
	httpadapter "github.com/patientmesh/mesh/services/analytics-service/internal/adapters/http"
	"github.com/patientmesh/mesh/services/analytics-service/internal/application"
	"github.com/patientmesh/mesh/services/analytics-service/internal/ports"
)

type Runtime struct {
	logger     *slog.Logger
	consumer   *eventadapter.ConsumerWorker
	httpServer *http.Server
	closers    []io.Closer
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
	var closers []io.Closer

	dedup := ports.Deduplicator(cache.NewMemoryDeduplicator(cfg.DedupTTL))
	if cfg.RedisURL != "" {
		client, cerr := cache.Connect(ctx, cfg.RedisURL)
		if cerr != nil {
			logger.WarnContext(ctx, "redis unavailable, using in-memory deduplication", "error", cerr)
		} else {
			dedup = cache.NewRedisDeduplicator(client, cfg.DedupTTL)
			closers = append(closers, client)
		}
	}
	service := application.NewService(dedup)

	consumer := eventadapter.Consumer(eventadapter.NewNoopConsumer())
	if len(cfg.KafkaBrokers) > 0 {
		kafkaConsumer, conErr := eventadapter.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, []string{cfg.KafkaTopicPatient})
		if conErr != nil {
			logger.WarnContext(ctx, "kafka consumer disabled, using noop consumer", "error", conErr)
		} else {
			consumer = kafkaConsumer
			closers = append(closers, kafkaConsumer)
		}
	} else {
		logger.WarnContext(ctx, "no kafka brokers configured, using noop consumer")
	}

	return &Runtime{
		logger:   logger,
		consumer: eventadapter.NewConsumerWorker(logger, consumer, service, cfg.KafkaTopicPatient, cfg.PollInterval, cfg.BatchSize),
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           httpadapter.NewRouter(service),
			ReadHeaderTimeout: 5 * time.Second,
		},
		closers: closers,
	}, nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go func() {
		if err := r.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	r.logger.InfoContext(ctx, "analytics worker started", "addr", r.httpServer.Addr)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", runErr)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	for _, closer := range r.closers {
		_ = closer.Close()
	}
	return runErr
}
