package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patientmesh/mesh/services/analytics-service/internal/application"
	"github.com/patientmesh/mesh/services/analytics-service/internal/domain"
)

type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       string
	Payload   []byte
}

// Consumer hands out messages without acknowledging them. Commit
// acknowledges a prefix of what Poll returned.
type Consumer interface {
	Poll(ctx context.Context, max int) ([]Message, error)
	Commit(ctx context.Context, msgs ...Message) error
}

const commitTimeout = 5 * time.Second

type ConsumerWorker struct {
	logger       *slog.Logger
	consumer     Consumer
	service      *application.Service
	patientTopic string
	interval     time.Duration
	batchSize    int
}

func NewConsumerWorker(logger *slog.Logger, consumer Consumer, service *application.Service, patientTopic string, interval time.Duration, batchSize int) *ConsumerWorker {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ConsumerWorker{
		logger:       logger,
		consumer:     consumer,
		service:      service,
		patientTopic: patientTopic,
		interval:     interval,
		batchSize:    batchSize,
	}
}

func (w *ConsumerWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "consumer iteration failed",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "process_once",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// processOnce handles one polled batch in order and commits the prefix that
// was handled or skipped. The first message that could not be handled, and
// everything after it, stays uncommitted for redelivery.
func (w *ConsumerWorker) processOnce(ctx context.Context) error {
	msgs, pollErr := w.consumer.Poll(ctx, w.batchSize)

	done := 0
	var handleErr error
	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			handleErr = err
			break
		}
		if msg.Topic != w.patientTopic {
			w.logger.DebugContext(ctx, "ignoring message from unexpected topic", "topic", msg.Topic)
			done++
			continue
		}
		if _, err := w.service.HandlePatientEvent(ctx, msg.Payload); err != nil {
			if !errors.Is(err, domain.ErrInvalidEvent) {
				handleErr = fmt.Errorf("handle offset %d: %w", msg.Offset, err)
				break
			}
			w.logger.WarnContext(ctx, "skipping undecodable patient event",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "handle_message",
				"outcome", "skipped",
				"partition_key", msg.Key,
				"offset", msg.Offset,
				"error", err,
			)
		}
		done++
	}

	var commitErr error
	if done > 0 {
		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
		commitErr = w.consumer.Commit(commitCtx, msgs[:done]...)
		cancel()
	}
	return errors.Join(pollErr, handleErr, commitErr)
}
