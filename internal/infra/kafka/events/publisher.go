package infra_kafka_events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/humanbelnik/livepoll/internal/config"
	"github.com/humanbelnik/livepoll/internal/model"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes poll events keyed by poll id, so every event of one poll
// lands on the same partition in mutation order.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(cfg config.Kafka, opts ...Option) *Publisher {
	p := &Publisher{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
		// Mutations must not wait on the broker.
		Async: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.logger.Warn("failed to deliver poll events",
					slog.Int("count", len(messages)),
					slog.String("error", err.Error()),
				)
			}
		},
	}
	return p
}

func (p *Publisher) Publish(ctx context.Context, e model.PollEvent) error {
	msg, err := encode(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write poll event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}

func encode(e model.PollEvent) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal poll event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(e.PollID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
		Time: e.OccurredAt,
	}, nil
}
