package ws_room

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/humanbelnik/livepoll/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type HubSuite struct {
	suite.Suite
}

func runHub(t provider.T, opts ...Option) *Hub {
	h := NewHub(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h
}

func pollWithName(id model.PollID, name string) model.Poll {
	p := model.NewPoll(name, []model.Question{{Text: "q", Options: []string{"a"}}}, time.Now())
	p.ID = id
	return p
}

func receive(t provider.T, s *Session) (UpdateMessage, bool) {
	select {
	case raw, ok := <-s.Messages():
		if !ok {
			return UpdateMessage{}, false
		}
		var msg UpdateMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg, true
	case <-time.After(time.Second):
		t.Fatalf("no message for session %s", s.ID)
		return UpdateMessage{}, false
	}
}

func assertSilent(t provider.T, s *Session) {
	select {
	case raw, ok := <-s.Messages():
		if ok {
			t.Errorf("unexpected message %s", raw)
		}
	case <-time.After(30 * time.Millisecond):
	}
}

func (s *HubSuite) TestBroadcastOrdering(t provider.T) {
	h := runHub(t)
	id := model.NewPollID()

	sessions := make([]*Session, 3)
	for i := range sessions {
		sess, err := h.Connect("s" + string(rune('a'+i)))
		require.NoError(t, err)
		require.NoError(t, h.Subscribe(id, sess.ID))
		sessions[i] = sess
	}
	assert.Equal(t, 3, h.RoomSize(id))

	const n = 50
	for i := range n {
		h.Broadcast(id, model.PollUpdate{Poll: pollWithName(id, string(rune('A'+i)))})
	}

	for _, sess := range sessions {
		for i := range n {
			msg, ok := receive(t, sess)
			require.True(t, ok)
			assert.Equal(t, MessagePollUpdate, msg.Type)
			assert.Equal(t, string(rune('A'+i)), msg.Poll.Name)
		}
	}
}

func (s *HubSuite) TestRoomsAreIsolated(t provider.T) {
	h := runHub(t)
	a, b := model.NewPollID(), model.NewPollID()

	sa, err := h.Connect("a")
	require.NoError(t, err)
	sb, err := h.Connect("b")
	require.NoError(t, err)
	require.NoError(t, h.Subscribe(a, sa.ID))
	require.NoError(t, h.Subscribe(b, sb.ID))

	h.Broadcast(a, model.PollUpdate{Poll: pollWithName(a, "first")})

	msg, ok := receive(t, sa)
	require.True(t, ok)
	assert.Equal(t, a, msg.Poll.ID)
	assertSilent(t, sb)
}

func (s *HubSuite) TestSubscribeMovesAndIsIdempotent(t provider.T) {
	h := runHub(t)
	a, b := model.NewPollID(), model.NewPollID()

	sess, err := h.Connect("a")
	require.NoError(t, err)
	require.NoError(t, h.Subscribe(a, sess.ID))
	require.NoError(t, h.Subscribe(a, sess.ID))
	assert.Equal(t, 1, h.RoomSize(a))

	require.NoError(t, h.Subscribe(b, sess.ID))
	assert.Equal(t, 0, h.RoomSize(a))
	assert.Equal(t, 1, h.RoomSize(b))
}

func (s *HubSuite) TestUnsubscribeAndDisconnect(t provider.T) {
	h := runHub(t)
	id := model.NewPollID()

	sess, err := h.Connect("a")
	require.NoError(t, err)
	require.NoError(t, h.Subscribe(id, sess.ID))

	require.NoError(t, h.Unsubscribe(sess.ID))
	require.NoError(t, h.Unsubscribe(sess.ID))
	require.NoError(t, h.Unsubscribe("unknown"))
	assert.Equal(t, 0, h.RoomSize(id))

	h.Broadcast(id, model.PollUpdate{Poll: pollWithName(id, "missed")})
	assertSilent(t, sess)

	require.NoError(t, h.Subscribe(id, sess.ID))
	require.NoError(t, h.Disconnect(sess.ID))
	require.NoError(t, h.Disconnect(sess.ID))
	assert.Equal(t, 0, h.RoomSize(id))

	_, ok := <-sess.Messages()
	assert.False(t, ok)

	h.Broadcast(id, model.PollUpdate{Poll: pollWithName(id, "after")})
	assert.Error(t, h.Send(sess.ID, UpdateMessage{}))
}

func (s *HubSuite) TestSlowSessionIsDropped(t provider.T) {
	h := runHub(t, WithSendBuffer(1))
	id := model.NewPollID()

	slow, err := h.Connect("slow")
	require.NoError(t, err)
	require.NoError(t, h.Subscribe(id, slow.ID))

	h.Broadcast(id, model.PollUpdate{Poll: pollWithName(id, "one")})
	h.Broadcast(id, model.PollUpdate{Poll: pollWithName(id, "two")})

	msg, ok := receive(t, slow)
	require.True(t, ok)
	assert.Equal(t, "one", msg.Poll.Name)

	_, ok = receive(t, slow)
	assert.False(t, ok)
	assert.Equal(t, 0, h.RoomSize(id))
}

func (s *HubSuite) TestRunStopClosesSessions(t provider.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	sess, err := h.Connect("a")
	require.NoError(t, err)

	cancel()
	<-h.Done()

	_, ok := <-sess.Messages()
	assert.False(t, ok)

	_, err = h.Connect("b")
	assert.ErrorIs(t, err, ErrHubClosed)
	assert.ErrorIs(t, h.Subscribe(model.NewPollID(), "a"), ErrHubClosed)
	h.Broadcast(model.NewPollID(), model.PollUpdate{})
	h.Close()
}

func TestHubSuite(t *testing.T) {
	suite.RunSuite(t, new(HubSuite))
}
