package usecase_vote

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
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

// WithStrictMode controls whether votes must name one of the question's options.
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

// ApplyVote adds one vote for option in question questionIndex and returns
// the updated snapshot. On any failure nothing is counted or broadcast.
// The broadcast and the event are both emitted under the poll's guard, so
// observers and the event stream see votes in mutation order.
func (u *Usecase) ApplyVote(ctx context.Context, pollID model.PollID, questionIndex int, option string) (model.Poll, error) {
	started := u.now()

	if option == "" {
		err := fmt.Errorf("%w: option is required", model.ErrInvalidInput)
		u.metrics.VoteRejected(err)
		return model.Poll{}, err
	}

	var snapshot model.Poll
	err := u.guard.Do(ctx, pollID, func(ctx context.Context) error {
		p, err := u.store.Get(ctx, pollID)
		if err != nil {
			return err
		}

		if questionIndex < 0 || questionIndex >= len(p.Questions) {
			return fmt.Errorf("%w: poll has %d questions, got index %d",
				model.ErrInvalidQuestion, len(p.Questions), questionIndex)
		}
		if !p.Questions[questionIndex].HasOption(option) {
			if u.strict {
				return fmt.Errorf("%w: %q is not an option of question %d",
					model.ErrInvalidOption, option, questionIndex)
			}
			u.logger.Warn("accepting vote for unlisted option",
				slog.String("poll_id", string(pollID)),
				slog.Int("question", questionIndex),
				slog.String("option", option),
			)
		}

		snapshot, err = u.store.IncrementVote(ctx, pollID, questionIndex, option)
		if err != nil {
			return err
		}

		u.broadcaster.Broadcast(pollID, model.PollUpdate{Poll: snapshot})

		count := 0
		if questionIndex < len(snapshot.QuestionVotes) {
			count = snapshot.QuestionVotes[questionIndex][option]
		}
		q := questionIndex
		u.publish(ctx, model.PollEvent{
			Type:          model.EventVoteApplied,
			PollID:        pollID,
			QuestionIndex: &q,
			Option:        option,
			Count:         count,
		})
		return nil
	})
	if err != nil {
		err = model.Classify(err)
		u.metrics.VoteRejected(err)
		return model.Poll{}, err
	}

	u.metrics.VoteApplied(u.now().Sub(started))
	u.logger.Debug("vote applied",
		slog.String("poll_id", string(pollID)),
		slog.Int("question", questionIndex),
		slog.String("option", option),
	)
	return snapshot, nil
}

// ResetResults clears every tally of the poll.
func (u *Usecase) ResetResults(ctx context.Context, pollID model.PollID) (model.Poll, error) {
	var snapshot model.Poll
	err := u.guard.Do(ctx, pollID, func(ctx context.Context) error {
		var err error
		snapshot, err = u.store.ResetVotes(ctx, pollID)
		if err != nil {
			return err
		}
		u.broadcaster.Broadcast(pollID, model.PollUpdate{Poll: snapshot})
		u.publish(ctx, model.PollEvent{Type: model.EventResultsReset, PollID: pollID})
		return nil
	})
	if err != nil {
		return model.Poll{}, model.Classify(err)
	}

	u.logger.Info("poll results reset", slog.String("poll_id", string(pollID)))
	return snapshot, nil
}

// Results returns one row per counted option, sorted by option text.
func (u *Usecase) Results(ctx context.Context, pollID model.PollID) ([]model.OptionResult, error) {
	sctx, cancel := u.guard.Detached(ctx)
	defer cancel()

	p, err := u.store.Get(sctx, pollID)
	if err != nil {
		return nil, model.Classify(err)
	}

	results := make([]model.OptionResult, 0, len(p.Votes))
	for option, votes := range p.Votes {
		results = append(results, model.OptionResult{Option: option, Votes: votes})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Option < results[j].Option
	})
	return results, nil
}

func (u *Usecase) publish(ctx context.Context, e model.PollEvent) {
	e.OccurredAt = u.now().UTC()
	usecase_poll.Publish(ctx, u.publisher, u.logger, e)
}
