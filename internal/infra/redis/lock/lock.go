package infra_redis_lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis"
	"github.com/google/uuid"
)

const (
	minBackoff = 5 * time.Millisecond
	maxBackoff = 100 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock taken over by another instance is never released by us.
var releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type client interface {
	SetNX(key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(script string, keys []string, args ...interface{}) *redis.Cmd
}

// Driver is a per-key lock shared by every instance connected to the same redis.
type Driver struct {
	client client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Driver)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func WithPrefix(prefix string) Option {
	return func(d *Driver) {
		d.prefix = prefix
	}
}

func New(c *redis.Client, ttl time.Duration, opts ...Option) *Driver {
	return newDriver(c, ttl, opts...)
}

func newDriver(c client, ttl time.Duration, opts ...Option) *Driver {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	d := &Driver{
		client: c,
		prefix: "livepoll:lock:",
		ttl:    ttl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Lock retries SET NX with backoff until it wins or ctx is done.
func (d *Driver) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := d.prefix + key
	token := uuid.NewString()
	backoff := minBackoff

	for {
		ok, err := d.client.SetNX(fullKey, token, d.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", fullKey, err)
		}
		if ok {
			return func() { d.release(fullKey, token) }, nil
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("lock %s not acquired: %w", fullKey, ctx.Err())
		case <-timer.C:
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (d *Driver) release(key, token string) {
	if err := d.client.Eval(releaseScript, []string{key}, token).Err(); err != nil {
		d.logger.Warn("failed to release lock",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
