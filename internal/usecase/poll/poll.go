package usecase_poll

import (
	"context"
	"log/slog"
	"time"

	"github.com/humanbelnik/livepoll/internal/model"
	usecase_guard "github.com/humanbelnik/livepoll/internal/usecase/guard"
)

//go:generate mockery --name=PollStore --output=../../../mocks/store --filename=PollStore.go
type PollStore interface {
	Create(ctx context.Context, p model.Poll) error
	Get(ctx context.Context, id model.PollID) (model.Poll, error)
	Delete(ctx context.Context, id model.PollID) error
	SetStatus(ctx context.Context, id model.PollID, status model.Status) (model.Poll, error)
	IncrementVote(ctx context.Context, id model.PollID, questionIndex int, option string) (model.Poll, error)
	ResetVotes(ctx context.Context, id model.PollID) (model.Poll, error)
}

//go:generate mockery --name=EventPublisher --output=../../../mocks/events --filename=EventPublisher.go
type EventPublisher interface {
	Publish(ctx context.Context, e model.PollEvent) error
}

// Broadcaster fans a snapshot out to the observers of a poll. Callers invoke
// it while holding the poll's guard, so updates are handed over in mutation order.
//
//go:generate mockery --name=Broadcaster --output=../../../mocks/broadcast --filename=Broadcaster.go
type Broadcaster interface {
	Broadcast(pollID model.PollID, update model.PollUpdate)
}

type Usecase struct {
	store     PollStore
	guard     *usecase_guard.Guard
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(
	store PollStore,
	guard *usecase_guard.Guard,
	publisher EventPublisher,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		store:     store,
		guard:     guard,
		publisher: publisher,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) Create(ctx context.Context, name string, questions []model.Question) (model.Poll, error) {
	if err := model.ValidatePollInput(name, questions); err != nil {
		return model.Poll{}, err
	}

	p := model.NewPoll(name, questions, u.now().UTC())

	sctx, cancel := u.guard.Detached(ctx)
	defer cancel()
	if err := u.store.Create(sctx, p); err != nil {
		return model.Poll{}, model.Classify(err)
	}

	u.logger.Info("poll created",
		slog.String("poll_id", string(p.ID)),
		slog.Int("questions", len(p.Questions)),
	)
	u.publish(ctx, model.PollEvent{Type: model.EventPollCreated, PollID: p.ID, Status: p.Status})
	return p, nil
}

func (u *Usecase) Get(ctx context.Context, id model.PollID) (model.Poll, error) {
	sctx, cancel := u.guard.Detached(ctx)
	defer cancel()

	p, err := u.store.Get(sctx, id)
	if err != nil {
		return model.Poll{}, model.Classify(err)
	}
	return p, nil
}

func (u *Usecase) Delete(ctx context.Context, id model.PollID) error {
	err := u.guard.Do(ctx, id, func(ctx context.Context) error {
		if err := u.store.Delete(ctx, id); err != nil {
			return err
		}
		u.publish(ctx, model.PollEvent{Type: model.EventPollDeleted, PollID: id})
		return nil
	})
	if err != nil {
		return model.Classify(err)
	}

	u.logger.Info("poll deleted", slog.String("poll_id", string(id)))
	return nil
}

// Observe hands the current snapshot to fn while holding the poll's guard.
func (u *Usecase) Observe(ctx context.Context, id model.PollID, fn func(p model.Poll) error) error {
	return u.guard.Do(ctx, id, func(ctx context.Context) error {
		p, err := u.store.Get(ctx, id)
		if err != nil {
			return model.Classify(err)
		}
		return fn(p)
	})
}

func (u *Usecase) publish(ctx context.Context, e model.PollEvent) {
	e.OccurredAt = u.now().UTC()
	Publish(ctx, u.publisher, u.logger, e)
}

// Publish sends e best-effort. A nil publisher disables the event stream.
func Publish(ctx context.Context, publisher EventPublisher, logger *slog.Logger, e model.PollEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		logger.Warn("failed to publish poll event",
			slog.String("type", string(e.Type)),
			slog.String("poll_id", string(e.PollID)),
			slog.String("error", err.Error()),
		)
	}
}
