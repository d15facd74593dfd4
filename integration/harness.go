package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kasuganosora/rpgcore/server/api"
	"github.com/kasuganosora/rpgcore/server/api/sse"
	"github.com/kasuganosora/rpgcore/server/audit"
	"github.com/kasuganosora/rpgcore/server/cache"
	"github.com/kasuganosora/rpgcore/server/config"
	"github.com/kasuganosora/rpgcore/server/game/saving"
	"github.com/kasuganosora/rpgcore/server/game/world"
	"github.com/kasuganosora/rpgcore/server/plugin/hook"
	"github.com/kasuganosora/rpgcore/server/resource"
	"github.com/kasuganosora/rpgcore/server/scheduler"
	"github.com/kasuganosora/rpgcore/server/testutil"
)

// AdminKey is the key every test server accepts at /api/auth/token.
const AdminKey = "integration-admin-key"

// TestServer is a real HTTP server over the sample scene in ../data. The
// world is not ticked in the background; tests advance it with Advance.
type TestServer struct {
	DB     *gorm.DB
	Cache  cache.Cache
	PubSub cache.PubSub
	World  *world.World
	Res    *resource.ResourceLoader
	Audit  *audit.Service
	Server *httptest.Server
	URL    string
	Sec    config.SecurityConfig
}

// NewTestServer wires the server the same way main does. opts may adjust
// the security section before the router is built.
func NewTestServer(t *testing.T, opts ...func(*config.SecurityConfig)) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c, pubsub := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminKey), bcrypt.MinCost)
	require.NoError(t, err)
	sec := config.SecurityConfig{
		AdminKeyHash:   string(hash),
		JWTSecret:      "integration-test-secret",
		JWTTTLH:        time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 2000,
	}
	for _, opt := range opts {
		opt(&sec)
	}

	res := resource.NewLoader("../data")
	require.NoError(t, res.Load(), "sample data must load")

	hooks := hook.NewHookCenter()
	auditSvc := audit.New(db, logger)
	auditSvc.Attach(hooks)
	publisher := sse.NewPublisher(pubsub, logger)
	publisher.Attach(hooks)

	w, err := world.New(res, world.DefaultConfig(), hooks, logger)
	require.NoError(t, err)

	sched := scheduler.New(logger)
	r, err := api.NewRouter(api.Deps{
		World:    w,
		Weapons:  res,
		Saves:    saving.NewSystem(saving.NewDBStore(db), logger),
		Audit:    auditSvc,
		Cache:    c,
		PubSub:   pubsub,
		Sched:    sched,
		Security: sec,
		Logger:   logger,
	})
	require.NoError(t, err)

	server := httptest.NewServer(r)
	t.Cleanup(func() {
		server.Close()
		sched.Stop()
		publisher.Stop()
		auditSvc.Stop(context.Background())
	})

	return &TestServer{
		DB:     db,
		Cache:  c,
		PubSub: pubsub,
		World:  w,
		Res:    res,
		Audit:  auditSvc,
		Server: server,
		URL:    server.URL,
		Sec:    sec,
	}
}

// Advance steps the world by seconds in 50 ms ticks.
func (ts *TestServer) Advance(seconds float64) {
	for range int(seconds/0.05 + 0.5) {
		ts.World.Step(50 * time.Millisecond)
	}
}

// AdvanceUntil steps the world until cond holds or limit seconds pass.
func (ts *TestServer) AdvanceUntil(limit float64, cond func() bool) bool {
	for range int(limit/0.05 + 0.5) {
		if cond() {
			return true
		}
		ts.World.Step(50 * time.Millisecond)
	}
	return cond()
}

// --- HTTP helpers ---

func (ts *TestServer) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// PostJSON sends a POST request with a JSON body and optional Bearer token.
func (ts *TestServer) PostJSON(t *testing.T, path string, body any, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodPost, path, body, token)
}

// Get sends a GET request with optional Bearer token.
func (ts *TestServer) Get(t *testing.T, path string, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodGet, path, nil, token)
}

// Delete sends a DELETE request with optional Bearer token.
func (ts *TestServer) Delete(t *testing.T, path string, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodDelete, path, nil, token)
}

// ReadJSON reads and decodes a JSON response body into target.
func ReadJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", string(data))
}

// Expect checks the status code, decodes the body into target when given
// and closes it.
func Expect(t *testing.T, resp *http.Response, status int, target any) {
	t.Helper()
	if target != nil {
		require.Equal(t, status, resp.StatusCode)
		ReadJSON(t, resp, target)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, status, resp.StatusCode, "body: %s", string(body))
}

// Login exchanges the admin key for a token.
func (ts *TestServer) Login(t *testing.T, operator string) string {
	t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	Expect(t, ts.PostJSON(t, "/api/auth/token", map[string]string{
		"admin_key": AdminKey,
		"operator":  operator,
	}, ""), http.StatusOK, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

// --- SSE client ---

// StreamEvent is one server-sent event.
type StreamEvent struct {
	Name string
	Data string
}

// EventStream reads /sse on a background goroutine.
type EventStream struct {
	t      *testing.T
	cancel context.CancelFunc
	events chan StreamEvent
}

// ConnectSSE opens the event stream and waits for the connected event.
func (ts *TestServer) ConnectSSE(t *testing.T, token string) *EventStream {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sse?token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		require.NoError(t, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		t.Fatalf("sse status %d", resp.StatusCode)
	}

	es := &EventStream{t: t, cancel: cancel, events: make(chan StreamEvent, 256)}
	go es.readLoop(resp.Body)
	t.Cleanup(es.Close)
	es.Recv("connected", 2*time.Second)
	return es
}

func (es *EventStream) readLoop(body io.ReadCloser) {
	defer close(es.events)
	defer body.Close()
	var ev StreamEvent
	lines := bufio.NewScanner(body)
	for lines.Scan() {
		line := lines.Text()
		switch {
		case line == "":
			if ev.Name != "" {
				es.events <- ev
			}
			ev = StreamEvent{}
		case strings.HasPrefix(line, "event: "):
			ev.Name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.Data = strings.TrimPrefix(line, "data: ")
		}
	}
}

// Recv waits for the next event called name, skipping others.
func (es *EventStream) Recv(name string, timeout time.Duration) StreamEvent {
	es.t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-es.events:
			if !ok {
				es.t.Fatalf("event stream closed while waiting for %q", name)
			}
			if ev.Name == name {
				return ev
			}
		case <-deadline:
			es.t.Fatalf("timed out waiting for event %q", name)
		}
	}
}

// Close ends the stream.
func (es *EventStream) Close() {
	es.cancel()
}
