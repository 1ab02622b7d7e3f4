package events

import (
	"context"
	"fmt"
	"time"

	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
	"github.com/segmentio/kafka-go"
)

// Publish sends one message at a time; flush it without waiting for a batch.
const publishBatchTimeout = 10 * time.Millisecond

// KafkaPublisher writes one message per Publish call and waits for all
// in-sync replicas. The hash balancer pins a partition key to one partition,
// which keeps events for a patient ordered.
type KafkaPublisher struct {
	writer       *kafka.Writer
	topicByEvent map[string]string
}

func NewKafkaPublisher(brokers []string, topicByEvent map[string]string, writeTimeout time.Duration) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
			MaxAttempts:  1,
			BatchSize:    1,
			BatchTimeout: publishBatchTimeout,
			WriteTimeout: writeTimeout,
		},
		topicByEvent: topicByEvent,
	}, nil
}

func (p *KafkaPublisher) topicFor(eventType string) string {
	if mapped, ok := p.topicByEvent[eventType]; ok && mapped != "" {
		return mapped
	}
	return eventType
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topicFor(eventType),
		Key:   []byte(partitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)
