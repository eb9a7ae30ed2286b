package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/humanbelnik/livepoll/internal/config"
	http_common "github.com/humanbelnik/livepoll/internal/delivery/http/common"
	ws_room "github.com/humanbelnik/livepoll/internal/delivery/ws/room"
	"github.com/humanbelnik/livepoll/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type E2EPollFlowSuite struct {
	suite.Suite
}

type env struct {
	app *App
	srv *httptest.Server
}

func testConfig(strict bool) *config.Config {
	return &config.Config{
		HTTP:    config.HTTPServer{Host: "127.0.0.1", Port: "0"},
		Storage: config.Storage{Driver: "memory"},
		Lock:    config.Lock{Driver: "local"},
		Poll:    config.Poll{StrictMode: strict, PersistTimeout: 2 * time.Second},
		Realtime: config.Realtime{
			SendBuffer: 64,
			PingPeriod: time.Second,
			PongWait:   2 * time.Second,
			WriteWait:  time.Second,
		},
	}
}

func startEnv(t provider.T, strict bool) *env {
	return startEnvWith(t, testConfig(strict))
}

func startEnvWith(t provider.T, cfg *config.Config) *env {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())

	a := New(ctx, cfg)
	go a.hub.Run(ctx)
	srv := httptest.NewServer(a.pool.Handler())

	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-a.hub.Done()
	})
	return &env{app: a, srv: srv}
}

func (e *env) do(t provider.T, method, path string, body any) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (e *env) createLunch(t provider.T) model.PollID {
	resp, raw := e.do(t, http.MethodPost, "/api/v1/polls", map[string]any{
		"name": "Lunch",
		"questions": []map[string]any{
			{"text": "Pizza or Tacos?", "options": []string{"Pizza", "Tacos"}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created struct {
		Success bool   `json:"success"`
		PollID  string `json:"pollId"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))
	require.True(t, created.Success)
	return model.PollID(created.PollID)
}

func (e *env) vote(t provider.T, id model.PollID, question int, option string) (int, http_common.ErrorResponse) {
	resp, raw := e.do(t, http.MethodPost, "/api/v1/polls/"+string(id)+"/votes", map[string]any{
		"questionIndex": question,
		"option":        option,
	})
	var errResp http_common.ErrorResponse
	_ = json.Unmarshal(raw, &errResp)
	return resp.StatusCode, errResp
}

func (e *env) dial(t provider.T, path string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readUpdate(t provider.T, conn *websocket.Conn) ws_room.UpdateMessage {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws_room.UpdateMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func (s *E2EPollFlowSuite) TestLunchScenario(t provider.T) {
	e := startEnv(t, true)
	id := e.createLunch(t)

	observer := e.dial(t, "/api/v1/ws")
	require.NoError(t, observer.WriteJSON(map[string]string{"type": "join poll", "poll_id": string(id)}))

	initial := readUpdate(t, observer)
	assert.Equal(t, ws_room.MessagePollUpdate, initial.Type)
	assert.Equal(t, id, initial.Poll.ID)
	assert.Empty(t, initial.Poll.Votes)

	for _, option := range []string{"Pizza", "Pizza", "Tacos"} {
		code, errResp := e.vote(t, id, 0, option)
		require.Equal(t, http.StatusOK, code, errResp.Message)
	}

	var last ws_room.UpdateMessage
	for i := 1; i <= 3; i++ {
		last = readUpdate(t, observer)
		assert.Equal(t, i, last.Poll.TotalVotes())
	}
	assert.Equal(t, map[string]int{"Pizza": 2, "Tacos": 1}, last.Poll.Votes)

	resp, raw := e.do(t, http.MethodGet, "/api/v1/polls/"+string(id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snapshot model.Poll
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Equal(t, map[string]int{"Pizza": 2, "Tacos": 1}, snapshot.Votes)
	assert.Equal(t, model.StatusPaused, snapshot.Status)

	resp, raw = e.do(t, http.MethodGet, "/api/v1/polls/"+string(id)+"/results.csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "results.csv")
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Option", "Votes"}, records[0])
	assert.ElementsMatch(t, [][]string{{"Pizza", "2"}, {"Tacos", "1"}}, records[1:])

	resp, _ = e.do(t, http.MethodPost, "/api/v1/polls/"+string(id)+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, readUpdate(t, observer).Poll.Votes)

	resp, raw = e.do(t, http.MethodGet, "/api/v1/polls/"+string(id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Empty(t, snapshot.Votes)
}

func (s *E2EPollFlowSuite) TestLifecycleBroadcasts(t provider.T) {
	e := startEnv(t, true)
	id := e.createLunch(t)
	observer := e.dial(t, "/api/v1/polls/"+string(id)+"/ws")
	readUpdate(t, observer)

	path := "/api/v1/polls/" + string(id) + "/status"

	resp, _ := e.do(t, http.MethodPatch, path, map[string]string{"status": "next"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPatch, path, map[string]string{"status": "playing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.StatusPlaying, readUpdate(t, observer).Poll.Status)

	resp, _ = e.do(t, http.MethodPatch, path, map[string]string{"status": "next"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	next := readUpdate(t, observer)
	assert.Equal(t, model.ActionNext, next.Action)
	assert.Equal(t, model.StatusPlaying, next.Poll.Status)

	resp, _ = e.do(t, http.MethodPost, "/api/stopPoll/"+string(id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.StatusStopped, readUpdate(t, observer).Poll.Status)

	resp, raw := e.do(t, http.MethodPatch, path, map[string]string{"status": "playing"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp http_common.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, model.KindInvalidTransition, errResp.Kind)
	assert.False(t, errResp.Success)
}

func (s *E2EPollFlowSuite) TestLegacyMode(t provider.T) {
	e := startEnv(t, false)

	resp, raw := e.do(t, http.MethodPost, "/api/createPoll", map[string]any{
		"name":      "Lunch",
		"questions": []map[string]any{{"text": "Pizza or Tacos?", "options": []string{"Pizza", "Tacos"}}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created struct {
		PollID string `json:"pollId"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))
	id := created.PollID

	resp, _ = e.do(t, http.MethodPost, "/api/vote/"+id, map[string]any{"questionIndex": 0, "option": "Burger"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/stopPoll/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/updatePollStatus", map[string]string{"id": id, "status": "playing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/updatePollStatus", map[string]string{"id": id})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/pausePoll/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = e.do(t, http.MethodGet, "/api/poll/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snapshot model.Poll
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Equal(t, model.StatusPaused, snapshot.Status)
	assert.Equal(t, 1, snapshot.Votes["Burger"])

	resp, raw = e.do(t, http.MethodGet, "/api/downloadResults/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Option,Votes\nBurger,1\n", string(raw))

	resp, _ = e.do(t, http.MethodPost, "/api/resetResults/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = e.do(t, http.MethodGet, "/api/poll/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Empty(t, snapshot.Votes)

	resp, _ = e.do(t, http.MethodDelete, "/api/deletePoll/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/poll/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (s *E2EPollFlowSuite) TestErrorMapping(t provider.T) {
	e := startEnv(t, true)
	id := e.createLunch(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
		kind   model.Kind
	}{
		{"malformed id", http.MethodGet, "/api/v1/polls/not-a-uuid", nil, http.StatusBadRequest, model.KindInvalidInput},
		{"missing poll", http.MethodGet, "/api/v1/polls/" + string(model.NewPollID()), nil, http.StatusNotFound, model.KindNotFound},
		{"vote on missing poll", http.MethodPost, "/api/v1/polls/" + string(model.NewPollID()) + "/votes", map[string]any{"questionIndex": 0, "option": "Pizza"}, http.StatusNotFound, model.KindNotFound},
		{"question out of range", http.MethodPost, "/api/v1/polls/" + string(id) + "/votes", map[string]any{"questionIndex": 3, "option": "Pizza"}, http.StatusBadRequest, model.KindInvalidQuestion},
		{"missing question", http.MethodPost, "/api/v1/polls/" + string(id) + "/votes", map[string]any{"option": "Pizza"}, http.StatusBadRequest, model.KindInvalidQuestion},
		{"unlisted option", http.MethodPost, "/api/v1/polls/" + string(id) + "/votes", map[string]any{"questionIndex": 0, "option": "Burger"}, http.StatusBadRequest, model.KindInvalidOption},
		{"empty name", http.MethodPost, "/api/v1/polls", map[string]any{"name": "", "questions": []any{}}, http.StatusBadRequest, model.KindInvalidInput},
		{"unknown status", http.MethodPatch, "/api/v1/polls/" + string(id) + "/status", map[string]string{"status": "rewinding"}, http.StatusConflict, model.KindInvalidTransition},
		{"reset missing poll", http.MethodPost, "/api/v1/polls/" + string(model.NewPollID()) + "/reset", nil, http.StatusNotFound, model.KindNotFound},
		{"results of missing poll", http.MethodGet, "/api/v1/polls/" + string(model.NewPollID()) + "/results.csv", nil, http.StatusNotFound, model.KindNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			resp, raw := e.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.code, resp.StatusCode)

			var errResp http_common.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &errResp))
			assert.Equal(t, tc.kind, errResp.Kind)
		})
	}

	resp, raw := e.do(t, http.MethodGet, "/api/v1/polls/"+string(id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snapshot model.Poll
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Empty(t, snapshot.Votes)
}

func (s *E2EPollFlowSuite) TestDisconnectLeavesRoom(t provider.T) {
	e := startEnv(t, true)
	id := e.createLunch(t)

	observer := e.dial(t, "/api/v1/polls/"+string(id)+"/ws")
	readUpdate(t, observer)
	require.Equal(t, 1, e.app.hub.RoomSize(id))

	require.NoError(t, observer.Close())

	deadline := time.Now().Add(2 * time.Second)
	for e.app.hub.RoomSize(id) != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, e.app.hub.RoomSize(id))

	code, _ := e.vote(t, id, 0, "Pizza")
	assert.Equal(t, http.StatusOK, code)

	resp, _ := e.do(t, http.MethodDelete, "/api/v1/polls/"+string(id), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/v1/polls/"+string(id), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (s *E2EPollFlowSuite) TestMetricsEndpoint(t provider.T) {
	e := startEnv(t, true)
	id := e.createLunch(t)
	code, _ := e.vote(t, id, 0, "Pizza")
	require.Equal(t, http.StatusOK, code)

	resp, raw := e.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "livepoll_votes_applied_total 1")
}

func (s *E2EPollFlowSuite) TestCORS(t provider.T) {
	e := startEnv(t, true)

	resp, _ := e.do(t, http.MethodOptions, "/api/v1/polls", nil)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestE2EPollFlowSuite(t *testing.T) {
	suite.RunSuite(t, new(E2EPollFlowSuite))
}

func (s *E2EPollFlowSuite) TestReadOnlyInstance(t provider.T) {
	cfg := testConfig(true)
	cfg.HTTP.Mode = "RO"
	e := startEnvWith(t, cfg)

	resp, _ := e.do(t, http.MethodPost, "/api/v1/polls", map[string]any{"name": "Lunch"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/polls/"+string(model.NewPollID()), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
