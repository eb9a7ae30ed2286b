package ws_room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/humanbelnik/livepoll/internal/infra/metrics"
	"github.com/humanbelnik/livepoll/internal/model"
)

const (
	MessageJoinPoll   = "join poll"
	MessageLeavePoll  = "leave poll"
	MessagePollUpdate = "poll update"
	MessageError      = "error"
)

const defaultSendBuffer = 256

var (
	ErrHubClosed      = errors.New("hub closed")
	ErrUnknownSession = errors.New("unknown session")
	ErrSessionFull    = errors.New("session queue is full")
)

type UpdateMessage struct {
	Type   string       `json:"type"`
	Poll   model.Poll   `json:"poll"`
	Action model.Action `json:"action,omitempty"`
}

type ErrorMessage struct {
	Type    string     `json:"type"`
	Kind    model.Kind `json:"kind"`
	Message string     `json:"message"`
}

// Session is one registered observer. Its queue is closed by the hub when
// the session is disconnected or dropped.
type Session struct {
	ID   string
	send chan []byte
}

func (s *Session) Messages() <-chan []byte {
	return s.send
}

type member struct {
	session *Session
	pollID  model.PollID
}

type subscription struct {
	sessionID string
	pollID    model.PollID
	done      chan struct{}
}

type delivery struct {
	pollID    model.PollID
	sessionID string
	payload   []byte
	done      chan error
}

type registration struct {
	session *Session
	done    chan struct{}
}

type sizeQuery struct {
	pollID model.PollID
	reply  chan int
}

// Hub owns the poll rooms. All state lives in the Run loop; the exported
// methods only hand requests to it, so requests are applied in arrival order.
type Hub struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	sendBuffer int

	register    chan registration
	subscribe   chan subscription
	unsubscribe chan subscription
	disconnect  chan subscription
	broadcast   chan delivery
	direct      chan delivery
	size        chan sizeQuery

	quit     chan struct{}
	stopped  chan struct{}
	quitOnce sync.Once

	sessions map[string]*member
	rooms    map[model.PollID]map[string]*Session
}

type Option func(*Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}

func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		logger:      slog.Default(),
		sendBuffer:  defaultSendBuffer,
		register:    make(chan registration),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		disconnect:  make(chan subscription),
		broadcast:   make(chan delivery),
		direct:      make(chan delivery),
		size:        make(chan sizeQuery),
		quit:        make(chan struct{}),
		stopped:     make(chan struct{}),
		sessions:    make(map[string]*member),
		rooms:       make(map[model.PollID]map[string]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves requests until ctx is done or Close is called. Every session
// queue is closed on return.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.quit:
			return

		case r := <-h.register:
			h.handleRegister(r.session)
			close(r.done)

		case s := <-h.subscribe:
			h.handleSubscribe(s.sessionID, s.pollID)
			close(s.done)

		case s := <-h.unsubscribe:
			h.leaveRoom(s.sessionID)
			h.reportTopology()
			close(s.done)

		case s := <-h.disconnect:
			h.handleDisconnect(s.sessionID)
			close(s.done)

		case d := <-h.broadcast:
			h.broadcastToRoom(d.pollID, d.payload)

		case d := <-h.direct:
			d.done <- h.sendTo(d.sessionID, d.payload)

		case q := <-h.size:
			q.reply <- len(h.rooms[q.pollID])
		}
	}
}

// Close stops the loop. Use Done to wait for it.
func (h *Hub) Close() {
	h.quitOnce.Do(func() { close(h.quit) })
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

func (h *Hub) Connect(sessionID string) (*Session, error) {
	s := &Session{
		ID:   sessionID,
		send: make(chan []byte, h.sendBuffer),
	}
	r := registration{session: s, done: make(chan struct{})}
	if err := enqueue(h, h.register, r, r.done); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe moves the session into the room of pollID. Subscribing twice to
// the same poll is a no-op.
func (h *Hub) Subscribe(pollID model.PollID, sessionID string) error {
	s := subscription{sessionID: sessionID, pollID: pollID, done: make(chan struct{})}
	return enqueue(h, h.subscribe, s, s.done)
}

// Unsubscribe removes the session from its room. Unknown sessions are ignored.
func (h *Hub) Unsubscribe(sessionID string) error {
	s := subscription{sessionID: sessionID, done: make(chan struct{})}
	return enqueue(h, h.unsubscribe, s, s.done)
}

// Disconnect unsubscribes the session and closes its queue. Idempotent.
func (h *Hub) Disconnect(sessionID string) error {
	s := subscription{sessionID: sessionID, done: make(chan struct{})}
	return enqueue(h, h.disconnect, s, s.done)
}

// Broadcast queues the update for every session currently in the poll's room.
// Delivery is best-effort; updates of one poll reach each session in call order.
func (h *Hub) Broadcast(pollID model.PollID, update model.PollUpdate) {
	payload, err := json.Marshal(UpdateMessage{
		Type:   MessagePollUpdate,
		Poll:   update.Poll,
		Action: update.Action,
	})
	if err != nil {
		h.logger.Error("failed to marshal poll update",
			slog.String("poll_id", string(pollID)),
			slog.String("error", err.Error()),
		)
		return
	}

	select {
	case h.broadcast <- delivery{pollID: pollID, payload: payload}:
		h.metrics.Broadcast()
	case <-h.quit:
	}
}

// Send queues msg for a single session.
func (h *Hub) Send(sessionID string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	d := delivery{sessionID: sessionID, payload: payload, done: make(chan error, 1)}
	select {
	case h.direct <- d:
	case <-h.quit:
		return ErrHubClosed
	}
	return <-d.done
}

func (h *Hub) RoomSize(pollID model.PollID) int {
	q := sizeQuery{pollID: pollID, reply: make(chan int, 1)}
	select {
	case h.size <- q:
	case <-h.quit:
		return 0
	}
	return <-q.reply
}

func enqueue[T any](h *Hub, ch chan T, req T, done chan struct{}) error {
	select {
	case ch <- req:
	case <-h.quit:
		return ErrHubClosed
	}

	select {
	case <-done:
		return nil
	case <-h.stopped:
		return ErrHubClosed
	}
}

func (h *Hub) handleRegister(s *Session) {
	if old, ok := h.sessions[s.ID]; ok {
		h.drop(old)
	}
	h.sessions[s.ID] = &member{session: s}
	h.reportTopology()
	h.logger.Debug("session connected", slog.String("session_id", s.ID))
}

func (h *Hub) handleSubscribe(sessionID string, pollID model.PollID) {
	m, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	if m.pollID == pollID {
		return
	}

	h.leaveRoom(sessionID)
	room, exists := h.rooms[pollID]
	if !exists {
		room = make(map[string]*Session)
		h.rooms[pollID] = room
	}
	room[sessionID] = m.session
	m.pollID = pollID
	h.reportTopology()

	h.logger.Info("session joined poll",
		slog.String("session_id", sessionID),
		slog.String("poll_id", string(pollID)),
	)
}

func (h *Hub) handleDisconnect(sessionID string) {
	m, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	h.drop(m)
	h.reportTopology()
	h.logger.Debug("session disconnected", slog.String("session_id", sessionID))
}

func (h *Hub) leaveRoom(sessionID string) {
	m, ok := h.sessions[sessionID]
	if !ok || m.pollID == model.EmptyPollID {
		return
	}
	if room, exists := h.rooms[m.pollID]; exists {
		delete(room, sessionID)
		if len(room) == 0 {
			delete(h.rooms, m.pollID)
		}
	}
	m.pollID = model.EmptyPollID
}

func (h *Hub) drop(m *member) {
	h.leaveRoom(m.session.ID)
	delete(h.sessions, m.session.ID)
	close(m.session.send)
}

func (h *Hub) broadcastToRoom(pollID model.PollID, payload []byte) {
	for id, s := range h.rooms[pollID] {
		select {
		case s.send <- payload:
		default:
			h.logger.Warn("dropping slow session",
				slog.String("session_id", id),
				slog.String("poll_id", string(pollID)),
			)
			h.drop(h.sessions[id])
			h.metrics.SessionDropped()
		}
	}
	h.reportTopology()
}

func (h *Hub) sendTo(sessionID string, payload []byte) error {
	m, ok := h.sessions[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	select {
	case m.session.send <- payload:
		return nil
	default:
		h.drop(m)
		h.metrics.SessionDropped()
		h.reportTopology()
		return ErrSessionFull
	}
}

func (h *Hub) shutdown() {
	h.quitOnce.Do(func() { close(h.quit) })
	for _, m := range h.sessions {
		close(m.session.send)
	}
	h.sessions = make(map[string]*member)
	h.rooms = make(map[model.PollID]map[string]*Session)
	h.reportTopology()
}

func (h *Hub) reportTopology() {
	h.metrics.SetTopology(len(h.sessions), len(h.rooms))
}
