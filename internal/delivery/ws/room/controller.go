package ws_room

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/humanbelnik/livepoll/internal/config"
	http_common "github.com/humanbelnik/livepoll/internal/delivery/http/common"
	"github.com/humanbelnik/livepoll/internal/model"
)

const maxMessageSize = 4096

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type PollObserver interface {
	Get(ctx context.Context, id model.PollID) (model.Poll, error)
	// Observe calls fn with the current snapshot while no mutation of the
	// poll can be broadcast.
	Observe(ctx context.Context, id model.PollID, fn func(p model.Poll) error) error
}

type inboundMessage struct {
	Type   string `json:"type"`
	PollID string `json:"poll_id"`
}

type Controller struct {
	hub    *Hub
	polls  PollObserver
	cfg    config.Realtime
	logger *slog.Logger
}

func NewController(hub *Hub, polls PollObserver, cfg config.Realtime) *Controller {
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	return &Controller{
		hub:    hub,
		polls:  polls,
		cfg:    cfg,
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", c.serve)
	router.GET("/polls/:poll_id/ws", c.servePoll)
}

// serve upgrades a connection that joins polls with "join poll" messages.
func (c *Controller) serve(ctx *gin.Context) {
	c.upgrade(ctx, model.EmptyPollID)
}

// servePoll upgrades and joins the poll from the path right away.
func (c *Controller) servePoll(ctx *gin.Context) {
	id, ok := http_common.PollID(ctx, c.logger, "ws")
	if !ok {
		return
	}
	if _, err := c.polls.Get(ctx.Request.Context(), id); err != nil {
		http_common.Fail(ctx, c.logger, "ws", err)
		return
	}
	c.upgrade(ctx, id)
}

func (c *Controller) upgrade(ctx *gin.Context, pollID model.PollID) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade to websocket",
			slog.String("error", err.Error()),
		)
		return
	}

	session, err := c.hub.Connect(uuid.NewString())
	if err != nil {
		c.logger.Error("failed to register session", slog.String("error", err.Error()))
		_ = conn.Close()
		return
	}

	go c.writePump(conn, session)

	if pollID != model.EmptyPollID {
		c.join(session, pollID)
	}
	go c.readPump(conn, session)
}

func (c *Controller) readPump(conn *websocket.Conn, session *Session) {
	defer func() {
		_ = c.hub.Disconnect(session.ID)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket closed unexpectedly",
					slog.String("session_id", session.ID),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reject(session, model.KindInvalidInput, "malformed message")
			continue
		}

		switch msg.Type {
		case MessageJoinPoll:
			id, err := model.ParsePollID(msg.PollID)
			if err != nil {
				c.reject(session, model.KindInvalidInput, "invalid poll id")
				continue
			}
			c.join(session, id)
		case MessageLeavePoll:
			_ = c.hub.Unsubscribe(session.ID)
		default:
			c.reject(session, model.KindInvalidInput, "unknown message type")
		}
	}
}

func (c *Controller) writePump(conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-session.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// join subscribes the session and sends it the current snapshot. Both happen
// inside Observe so no update of the poll can slip in between.
func (c *Controller) join(session *Session, pollID model.PollID) {
	err := c.polls.Observe(context.Background(), pollID, func(p model.Poll) error {
		if err := c.hub.Subscribe(pollID, session.ID); err != nil {
			return err
		}
		return c.hub.Send(session.ID, UpdateMessage{Type: MessagePollUpdate, Poll: p})
	})
	if err != nil {
		c.logger.Warn("failed to join poll",
			slog.String("session_id", session.ID),
			slog.String("poll_id", string(pollID)),
			slog.String("error", err.Error()),
		)
		c.reject(session, model.KindOf(err), err.Error())
	}
}

func (c *Controller) reject(session *Session, kind model.Kind, message string) {
	_ = c.hub.Send(session.ID, ErrorMessage{
		Type:    MessageError,
		Kind:    kind,
		Message: message,
	})
}
