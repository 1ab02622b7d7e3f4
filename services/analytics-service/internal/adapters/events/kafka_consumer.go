package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConsumer fetches patient events without committing them. Offsets move
// only through Commit, after the worker has handled or skipped a message.
type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaConsumer(brokers []string, groupID string, topics []string) (*KafkaConsumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer requires at least one broker")
	}
	if groupID == "" {
		return nil, fmt.Errorf("kafka consumer requires group id")
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("kafka consumer requires at least one topic")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: 0,
	})
	return &KafkaConsumer{reader: reader}, nil
}

// Poll fetches up to max messages, returning early once the topic is idle.
func (c *KafkaConsumer) Poll(ctx context.Context, max int) ([]Message, error) {
	if max <= 0 {
		max = 1
	}
	out := make([]Message, 0, max)
	for i := 0; i < max; i++ {
		fetchCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return out, ctx.Err()
			case errors.Is(err, context.DeadlineExceeded):
				return out, nil
			default:
				return out, err
			}
		}
		out = append(out, Message{
			Topic:     msg.Topic,
			Partition: msg.Partition,
			Offset:    msg.Offset,
			Key:       string(msg.Key),
			Payload:   msg.Value,
		})
	}
	return out, nil
}

// Commit acknowledges msgs for the consumer group.
func (c *KafkaConsumer) Commit(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	handles := make([]kafka.Message, 0, len(msgs))
	for _, msg := range msgs {
		handles = append(handles, kafka.Message{
			Topic:     msg.Topic,
			Partition: msg.Partition,
			Offset:    msg.Offset,
		})
	}
	if err := c.reader.CommitMessages(ctx, handles...); err != nil {
		return fmt.Errorf("commit offsets: %w", err)
	}
	return nil
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
