package app

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/humanbelnik/livepoll/internal/config"
	http_init "github.com/humanbelnik/livepoll/internal/delivery/http/init"
	http_metrics "github.com/humanbelnik/livepoll/internal/delivery/http/metrics"
	http_poll "github.com/humanbelnik/livepoll/internal/delivery/http/poll"
	http_results "github.com/humanbelnik/livepoll/internal/delivery/http/results"
	http_swagger "github.com/humanbelnik/livepoll/internal/delivery/http/swagger"
	http_voting "github.com/humanbelnik/livepoll/internal/delivery/http/voting"
	ws_room "github.com/humanbelnik/livepoll/internal/delivery/ws/room"
	infra_kafka_events "github.com/humanbelnik/livepoll/internal/infra/kafka/events"
	infra_lock_local "github.com/humanbelnik/livepoll/internal/infra/lock/local"
	infra_memory_poll "github.com/humanbelnik/livepoll/internal/infra/memory/poll"
	"github.com/humanbelnik/livepoll/internal/infra/metrics"
	infra_pg_init "github.com/humanbelnik/livepoll/internal/infra/postgres/init"
	infra_postgres_poll "github.com/humanbelnik/livepoll/internal/infra/postgres/poll"
	infra_redis_init "github.com/humanbelnik/livepoll/internal/infra/redis/init"
	infra_redis_lock "github.com/humanbelnik/livepoll/internal/infra/redis/lock"
	usecase_guard "github.com/humanbelnik/livepoll/internal/usecase/guard"
	usecase_poll "github.com/humanbelnik/livepoll/internal/usecase/poll"
	usecase_status "github.com/humanbelnik/livepoll/internal/usecase/status"
	usecase_vote "github.com/humanbelnik/livepoll/internal/usecase/vote"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	cfg     *config.Config
	pool    *http_init.ControllerPool
	hub     *ws_room.Hub
	closers []func() error
	logger  *slog.Logger
}

func Go(cfg *config.Config) {
	slog.SetDefault(NewLogger(cfg.Log))
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := New(ctx, cfg)
	if err := a.Run(ctx); err != nil {
		log.Fatalf("failed to run HTTP server: %v", err)
	}
}

// New builds every component from cfg. Drivers that need a network
// connection fail fast if it cannot be established.
func New(ctx context.Context, cfg *config.Config) *App {
	a := &App{
		cfg:    cfg,
		logger: slog.Default(),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	var store usecase_poll.PollStore
	switch cfg.Storage.Driver {
	case "postgres":
		db := infra_pg_init.MustEstablishConn(cfg.Postgres)
		infra_pg_init.MustMigrate(ctx, db)
		store = infra_postgres_poll.New(db)
		a.closers = append(a.closers, db.Close)
	default:
		store = infra_memory_poll.New()
	}

	var locker usecase_guard.Locker
	switch cfg.Lock.Driver {
	case "redis":
		client := infra_redis_init.MustEstablishConn(cfg.Redis)
		locker = infra_redis_lock.New(client, cfg.Lock.TTL)
		a.closers = append(a.closers, client.Close)
	default:
		locker = infra_lock_local.New()
	}

	var publisher usecase_poll.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		p := infra_kafka_events.NewPublisher(cfg.Kafka)
		publisher = p
		a.closers = append(a.closers, p.Close)
	}

	a.logger.Info("components selected",
		slog.String("storage", cfg.Storage.Driver),
		slog.String("lock", cfg.Lock.Driver),
		slog.Bool("events", publisher != nil),
		slog.Bool("strict", cfg.Poll.StrictMode),
		slog.String("mode", cfg.HTTP.Mode),
	)

	guard := usecase_guard.New(locker, cfg.Poll.PersistTimeout)
	a.hub = ws_room.NewHub(
		ws_room.WithSendBuffer(cfg.Realtime.SendBuffer),
		ws_room.WithMetrics(m),
	)

	pollUC := usecase_poll.New(store, guard, publisher)
	voteUC := usecase_vote.New(store, guard, a.hub, publisher,
		usecase_vote.WithStrictMode(cfg.Poll.StrictMode),
		usecase_vote.WithMetrics(m),
	)
	statusUC := usecase_status.New(store, guard, a.hub, publisher,
		usecase_status.WithStrictMode(cfg.Poll.StrictMode),
		usecase_status.WithMetrics(m),
	)

	a.pool = http_init.NewControllerPool(cfg.HTTP.Mode)
	a.pool.Add(http_swagger.New())
	a.pool.Add(http_poll.New(pollUC))
	a.pool.Add(http_voting.New(voteUC, statusUC))
	a.pool.Add(http_results.New(voteUC))
	a.pool.Add(ws_room.NewController(a.hub, pollUC, cfg.Realtime))
	a.pool.AddRoot(http_metrics.New(registry))
	a.pool.Register()

	return a
}

// Run starts the hub and the HTTP server and tears both down once ctx is done.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(ctx)

	err := a.pool.RunAll(ctx, a.cfg.HTTP.Host, a.cfg.HTTP.Port)

	a.hub.Close()
	<-a.hub.Done()
	a.close()
	return err
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close resource", slog.String("error", err.Error()))
		}
	}
}

func NewLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
