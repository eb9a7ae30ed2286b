package usecase_guard

import (
	"context"
	"errors"
	"time"

	"github.com/humanbelnik/livepoll/internal/model"
)

const keyPrefix = "poll:"

//go:generate mockery --name=Locker --output=../../../mocks/lock --filename=Locker.go
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Guard is the per-poll serialization point shared by every usecase that
// does a read-modify-write on a poll. Different polls never contend.
type Guard struct {
	locker  Locker
	timeout time.Duration
}

func New(locker Locker, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Guard{
		locker:  locker,
		timeout: timeout,
	}
}

// Do runs fn while holding the lock for pollID.
// The context passed to fn is detached from the caller's cancellation and
// bounded by the persistence timeout: an accepted mutation is finished even
// if the client goes away.
func (g *Guard) Do(ctx context.Context, pollID model.PollID, fn func(ctx context.Context) error) error {
	ctx, cancel := g.Detached(ctx)
	defer cancel()

	unlock, err := g.locker.Lock(ctx, keyPrefix+string(pollID))
	if err != nil {
		return errors.Join(model.ErrPersistence, err)
	}
	defer unlock()

	return fn(ctx)
}

// Detached returns a context for a single bounded store call without the lock.
func (g *Guard) Detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
}

func (g *Guard) Timeout() time.Duration {
	return g.timeout
}
