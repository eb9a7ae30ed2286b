package infra_memory_poll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/humanbelnik/livepoll/internal/model"
)

type record struct {
	poll  model.Poll
	tally map[model.TallyKey]int
}

// Driver keeps polls in process memory. Snapshots handed out are deep copies.
type Driver struct {
	mu    sync.RWMutex
	polls map[model.PollID]*record
	now   func() time.Time
}

func New() *Driver {
	return &Driver{
		polls: make(map[model.PollID]*record),
		now:   time.Now,
	}
}

func (d *Driver) Create(ctx context.Context, p model.Poll) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.polls[p.ID]; exists {
		return fmt.Errorf("%w: poll %s already exists", model.ErrConflict, p.ID)
	}
	d.polls[p.ID] = &record{
		poll:  p.WithTally(nil).Clone(),
		tally: make(map[model.TallyKey]int),
	}
	return nil
}

func (d *Driver) Get(ctx context.Context, id model.PollID) (model.Poll, error) {
	if err := ctx.Err(); err != nil {
		return model.Poll{}, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.polls[id]
	if !ok {
		return model.Poll{}, model.ErrNotFound
	}
	return r.snapshot(), nil
}

func (d *Driver) Delete(ctx context.Context, id model.PollID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.polls[id]; !ok {
		return model.ErrNotFound
	}
	delete(d.polls, id)
	return nil
}

func (d *Driver) SetStatus(ctx context.Context, id model.PollID, status model.Status) (model.Poll, error) {
	return d.mutate(ctx, id, func(r *record) {
		r.poll.Status = status
	})
}

func (d *Driver) IncrementVote(ctx context.Context, id model.PollID, questionIndex int, option string) (model.Poll, error) {
	return d.mutate(ctx, id, func(r *record) {
		r.tally[model.TallyKey{Question: questionIndex, Option: option}]++
	})
}

func (d *Driver) ResetVotes(ctx context.Context, id model.PollID) (model.Poll, error) {
	return d.mutate(ctx, id, func(r *record) {
		r.tally = make(map[model.TallyKey]int)
	})
}

func (d *Driver) mutate(ctx context.Context, id model.PollID, fn func(r *record)) (model.Poll, error) {
	if err := ctx.Err(); err != nil {
		return model.Poll{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.polls[id]
	if !ok {
		return model.Poll{}, model.ErrNotFound
	}
	fn(r)
	r.poll.UpdatedAt = d.now().UTC()
	return r.snapshot(), nil
}

func (r *record) snapshot() model.Poll {
	return r.poll.Clone().WithTally(r.tally)
}
