package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/humanbelnik/livepoll/internal/app"
	"github.com/humanbelnik/livepoll/internal/config"
	infra_kafka_events "github.com/humanbelnik/livepoll/internal/infra/kafka/events"
)

// events tails the poll event topic and logs every event it sees.
func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is not set")
	}

	consumer := infra_kafka_events.NewConsumer(cfg.Kafka)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("failed to close consumer", slog.String("error", err.Error()))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("tailing poll events",
		slog.String("topic", cfg.Kafka.Topic),
		slog.String("group", cfg.Kafka.GroupID),
	)

	for {
		e, err := consumer.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("failed to read event", slog.String("error", err.Error()))
			time.Sleep(time.Second)
			continue
		}

		attrs := []any{
			slog.String("type", string(e.Type)),
			slog.String("poll_id", string(e.PollID)),
			slog.Time("occurred_at", e.OccurredAt),
		}
		if e.QuestionIndex != nil {
			attrs = append(attrs, slog.Int("question", *e.QuestionIndex))
		}
		if e.Option != "" {
			attrs = append(attrs, slog.String("option", e.Option), slog.Int("count", e.Count))
		}
		if e.Status != "" {
			attrs = append(attrs, slog.String("status", string(e.Status)))
		}
		if e.Action != "" {
			attrs = append(attrs, slog.String("action", string(e.Action)))
		}
		logger.Info("poll event", attrs...)
	}

	logger.Info("consumer terminated")
}
