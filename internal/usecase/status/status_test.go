package usecase_status

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	infra_lock_local "github.com/humanbelnik/livepoll/internal/infra/lock/local"
	infra_memory_poll "github.com/humanbelnik/livepoll/internal/infra/memory/poll"
	"github.com/humanbelnik/livepoll/internal/model"
	usecase_guard "github.com/humanbelnik/livepoll/internal/usecase/guard"
	eventmocks "github.com/humanbelnik/livepoll/mocks/events"
	storemocks "github.com/humanbelnik/livepoll/mocks/store"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UsecaseStatusUnitSuite struct {
	suite.Suite
}

type recorder struct {
	mu      sync.Mutex
	updates []model.PollUpdate
}

func (r *recorder) Broadcast(_ model.PollID, update model.PollUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

func (r *recorder) all() []model.PollUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.PollUpdate(nil), r.updates...)
}

type resources struct {
	store       *infra_memory_poll.Driver
	broadcaster *recorder
	usecase     *Usecase
	id          model.PollID
	ctx         context.Context
}

func newResources(t provider.T, opts ...Option) *resources {
	p := model.NewPoll("Lunch", []model.Question{
		{Text: "Pizza or Tacos?", Options: []string{"Pizza", "Tacos"}},
	}, time.Now())

	r := &resources{
		store:       infra_memory_poll.New(),
		broadcaster: &recorder{},
		id:          p.ID,
		ctx:         context.Background(),
	}
	require.NoError(t, r.store.Create(r.ctx, p))
	r.usecase = New(r.store, usecase_guard.New(infra_lock_local.New(), time.Second), r.broadcaster, nil, opts...)
	return r
}

func (r *resources) status(t provider.T) model.Status {
	p, err := r.store.Get(r.ctx, r.id)
	require.NoError(t, err)
	return p.Status
}

func (s *UsecaseStatusUnitSuite) TestStrictLifecycle(t provider.T) {
	t.Run("Should walk paused, playing, stopped", func(t provider.T) {
		r := newResources(t)

		p, err := r.usecase.SetStatus(r.ctx, r.id, "playing")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPlaying, p.Status)

		p, err = r.usecase.SetStatus(r.ctx, r.id, "stopped")
		require.NoError(t, err)
		assert.Equal(t, model.StatusStopped, p.Status)

		updates := r.broadcaster.all()
		require.Len(t, updates, 2)
		assert.Equal(t, model.StatusPlaying, updates[0].Poll.Status)
		assert.Equal(t, model.StatusStopped, updates[1].Poll.Status)
	})

	t.Run("Should treat stopped as terminal", func(t provider.T) {
		r := newResources(t)
		_, err := r.usecase.Stop(r.ctx, r.id)
		require.NoError(t, err)

		_, err = r.usecase.SetStatus(r.ctx, r.id, "playing")

		assert.ErrorIs(t, err, model.ErrInvalidTransition)
		assert.Equal(t, model.StatusStopped, r.status(t))
		assert.Len(t, r.broadcaster.all(), 1)
	})

	t.Run("Should rebroadcast on repeated state", func(t provider.T) {
		r := newResources(t)

		_, err := r.usecase.Pause(r.ctx, r.id)
		require.NoError(t, err)

		assert.Equal(t, model.StatusPaused, r.status(t))
		assert.Len(t, r.broadcaster.all(), 1)
	})

	t.Run("Should reject unknown status", func(t provider.T) {
		r := newResources(t)

		_, err := r.usecase.SetStatus(r.ctx, r.id, "rewinding")

		assert.ErrorIs(t, err, model.ErrInvalidTransition)
		assert.Empty(t, r.broadcaster.all())
	})

	t.Run("Should reject empty status", func(t provider.T) {
		r := newResources(t)

		_, err := r.usecase.SetStatus(r.ctx, r.id, "")

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func (s *UsecaseStatusUnitSuite) TestStrictNext(t provider.T) {
	t.Run("Should reject next while paused", func(t provider.T) {
		r := newResources(t)

		_, err := r.usecase.SetStatus(r.ctx, r.id, "next")

		assert.ErrorIs(t, err, model.ErrInvalidTransition)
		assert.Empty(t, r.broadcaster.all())
	})

	t.Run("Should relay next without changing state", func(t provider.T) {
		r := newResources(t)
		_, err := r.usecase.SetStatus(r.ctx, r.id, "playing")
		require.NoError(t, err)

		p, err := r.usecase.SetStatus(r.ctx, r.id, "next")

		require.NoError(t, err)
		assert.Equal(t, model.StatusPlaying, p.Status)
		assert.Equal(t, model.StatusPlaying, r.status(t))

		updates := r.broadcaster.all()
		require.Len(t, updates, 2)
		assert.Equal(t, model.ActionNext, updates[1].Action)
		assert.Empty(t, updates[0].Action)
	})
}

func (s *UsecaseStatusUnitSuite) TestLegacyMode(t provider.T) {
	t.Run("Should accept transition out of stopped", func(t provider.T) {
		r := newResources(t, WithStrictMode(false))
		_, err := r.usecase.Stop(r.ctx, r.id)
		require.NoError(t, err)

		p, err := r.usecase.SetStatus(r.ctx, r.id, "playing")

		require.NoError(t, err)
		assert.Equal(t, model.StatusPlaying, p.Status)
	})

	t.Run("Should store next literally", func(t provider.T) {
		r := newResources(t, WithStrictMode(false))

		p, err := r.usecase.SetStatus(r.ctx, r.id, "next")

		require.NoError(t, err)
		assert.Equal(t, model.StatusNext, p.Status)
		assert.Equal(t, model.StatusNext, r.status(t))
		assert.Equal(t, model.ActionNext, r.broadcaster.all()[0].Action)
	})

	t.Run("Should store any non-empty string", func(t provider.T) {
		r := newResources(t, WithStrictMode(false))

		p, err := r.usecase.SetStatus(r.ctx, r.id, "rewinding")

		require.NoError(t, err)
		assert.Equal(t, model.Status("rewinding"), p.Status)
	})
}

func (s *UsecaseStatusUnitSuite) TestFailures(t provider.T) {
	t.Run("Should fail with not found and not broadcast", func(t provider.T) {
		store := storemocks.NewPollStore(t)
		id := model.NewPollID()
		store.On("Get", mock.Anything, id).Return(model.Poll{}, model.ErrNotFound).Once()
		b := &recorder{}

		u := New(store, usecase_guard.New(infra_lock_local.New(), time.Second), b, nil)
		_, err := u.SetStatus(context.Background(), id, "playing")

		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Empty(t, b.all())
	})

	t.Run("Should surface persistence failure and not publish", func(t provider.T) {
		store := storemocks.NewPollStore(t)
		publisher := eventmocks.NewEventPublisher(t)
		p := model.NewPoll("Lunch", []model.Question{{Text: "q", Options: []string{"a"}}}, time.Now())
		store.On("Get", mock.Anything, p.ID).Return(p, nil).Once()
		store.On("SetStatus", mock.Anything, p.ID, model.StatusPlaying).
			Return(model.Poll{}, errors.New("disk full")).Once()
		b := &recorder{}

		u := New(store, usecase_guard.New(infra_lock_local.New(), time.Second), b, publisher)
		_, err := u.SetStatus(context.Background(), p.ID, "playing")

		assert.ErrorIs(t, err, model.ErrPersistence)
		assert.Empty(t, b.all())
	})

	t.Run("Should publish status change", func(t provider.T) {
		store := storemocks.NewPollStore(t)
		publisher := eventmocks.NewEventPublisher(t)
		p := model.NewPoll("Lunch", []model.Question{{Text: "q", Options: []string{"a"}}}, time.Now())
		playing := p
		playing.Status = model.StatusPlaying
		store.On("Get", mock.Anything, p.ID).Return(p, nil).Once()
		store.On("SetStatus", mock.Anything, p.ID, model.StatusPlaying).Return(playing, nil).Once()
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e model.PollEvent) bool {
			return e.Type == model.EventStatusChanged && e.Status == model.StatusPlaying && e.PollID == p.ID
		})).Return(nil).Once()

		u := New(store, usecase_guard.New(infra_lock_local.New(), time.Second), &recorder{}, publisher)
		_, err := u.SetStatus(context.Background(), p.ID, "playing")

		assert.NoError(t, err)
	})
}

func TestUsecaseStatusUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseStatusUnitSuite))
}
