package usecase_status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/humanbelnik/livepoll/internal/infra/metrics"
	"github.com/humanbelnik/livepoll/internal/model"
	usecase_guard "github.com/humanbelnik/livepoll/internal/usecase/guard"
	usecase_poll "github.com/humanbelnik/livepoll/internal/usecase/poll"
)

type Usecase struct {
	store       usecase_poll.PollStore
	guard       *usecase_guard.Guard
	broadcaster usecase_poll.Broadcaster
	publisher   usecase_poll.EventPublisher
	strict      bool
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(u *Usecase) {
		u.metrics = m
	}
}

// WithStrictMode enforces the lifecycle table. Without it every requested
// status is stored as is and departures from the table are only logged.
func WithStrictMode(strict bool) Option {
	return func(u *Usecase) {
		u.strict = strict
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(
	store usecase_poll.PollStore,
	guard *usecase_guard.Guard,
	broadcaster usecase_poll.Broadcaster,
	publisher usecase_poll.EventPublisher,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		store:       store,
		guard:       guard,
		broadcaster: broadcaster,
		publisher:   publisher,
		strict:      true,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) Pause(ctx context.Context, pollID model.PollID) (model.Poll, error) {
	return u.SetStatus(ctx, pollID, string(model.ActionPause))
}

func (u *Usecase) Stop(ctx context.Context, pollID model.PollID) (model.Poll, error) {
	return u.SetStatus(ctx, pollID, string(model.ActionStop))
}

// SetStatus applies a lifecycle request. "next" never changes the stored
// state in strict mode: it is relayed to observers as an action.
func (u *Usecase) SetStatus(ctx context.Context, pollID model.PollID, requested string) (model.Poll, error) {
	if requested == "" {
		return model.Poll{}, fmt.Errorf("%w: status is required", model.ErrInvalidInput)
	}

	action, known := model.ParseAction(requested)
	if u.strict && !known {
		return model.Poll{}, fmt.Errorf("%w: unknown status %q", model.ErrInvalidTransition, requested)
	}

	var (
		snapshot model.Poll
		from     model.Status
		to       model.Status
	)
	err := u.guard.Do(ctx, pollID, func(ctx context.Context) error {
		p, err := u.store.Get(ctx, pollID)
		if err != nil {
			return err
		}
		from = p.Status

		if u.strict {
			if action == model.ActionNext {
				if p.Status != model.StatusPlaying {
					return fmt.Errorf("%w: next is only valid while playing, poll is %s",
						model.ErrInvalidTransition, p.Status)
				}
				snapshot, to = p, p.Status
				u.broadcaster.Broadcast(pollID, model.PollUpdate{Poll: p, Action: model.ActionNext})
				u.publishStatus(ctx, pollID, to, action)
				return nil
			}

			to = action.Target(p.Status)
			if !model.CanTransition(from, to) {
				return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, from, to)
			}
		} else {
			to = model.Status(requested)
			if !known || action == model.ActionNext || !model.CanTransition(from, to) {
				u.logger.Warn("accepting status outside the poll lifecycle",
					slog.String("poll_id", string(pollID)),
					slog.String("from", string(from)),
					slog.String("to", string(to)),
				)
			}
		}

		snapshot, err = u.store.SetStatus(ctx, pollID, to)
		if err != nil {
			return err
		}

		update := model.PollUpdate{Poll: snapshot}
		if action == model.ActionNext {
			update.Action = model.ActionNext
		}
		u.broadcaster.Broadcast(pollID, update)
		u.publishStatus(ctx, pollID, to, action)
		return nil
	})
	if err != nil {
		return model.Poll{}, model.Classify(err)
	}

	u.metrics.StatusChanged(from, to)
	u.logger.Info("poll status changed",
		slog.String("poll_id", string(pollID)),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("requested", requested),
	)
	return snapshot, nil
}

func (u *Usecase) publishStatus(ctx context.Context, pollID model.PollID, to model.Status, action model.Action) {
	e := model.PollEvent{
		Type:       model.EventStatusChanged,
		PollID:     pollID,
		Status:     to,
		OccurredAt: u.now().UTC(),
	}
	if action == model.ActionNext {
		e.Action = model.ActionNext
	}
	usecase_poll.Publish(ctx, u.publisher, u.logger, e)
}
