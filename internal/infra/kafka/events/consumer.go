package infra_kafka_events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/humanbelnik/livepoll/internal/config"
	"github.com/humanbelnik/livepoll/internal/model"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader messageReader
}

func NewConsumer(cfg config.Kafka) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       cfg.Topic,
			GroupID:     cfg.GroupID,
			MinBytes:    1,
			MaxBytes:    10e6,
			MaxWait:     time.Second,
			StartOffset: kafka.FirstOffset,
		}),
	}
}

// Read blocks until the next event arrives or ctx is done.
func (c *Consumer) Read(ctx context.Context) (model.PollEvent, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return model.PollEvent{}, err
	}
	return decode(msg)
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("failed to close kafka reader: %w", err)
	}
	return nil
}

func decode(msg kafka.Message) (model.PollEvent, error) {
	var e model.PollEvent
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return model.PollEvent{}, fmt.Errorf("failed to decode poll event at offset %d: %w", msg.Offset, err)
	}
	return e, nil
}
