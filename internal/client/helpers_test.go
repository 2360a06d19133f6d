package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time), stop: make(chan struct{})}
	f.tickers = append(f.tickers, t)
	return t
}

// Advance moves time forward and delivers one tick to every live ticker.
func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	tickers := append([]*fakeTicker{}, f.tickers...)
	f.mu.Unlock()

	for _, t := range tickers {
		select {
		case t.c <- now:
		case <-t.stop:
		}
	}
}

// Skip moves time forward without delivering a tick.
func (f *fakeClock) Skip(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type fakeTicker struct {
	c    chan time.Time
	stop chan struct{}
	once sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.once.Do(func() { close(t.stop) }) }

type backendCall struct {
	Method  string
	Token   string
	Action  string
	Payload map[string]any
	Query   url.Values
}

type responder func(call backendCall) (any, error)

type fakeBackend struct {
	mu      sync.Mutex
	calls   []backendCall
	respond responder
}

func (f *fakeBackend) Post(_ context.Context, token string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	action, _ := m["action"].(string)
	return f.reply(backendCall{Method: "POST", Token: token, Action: action, Payload: m}, out)
}

func (f *fakeBackend) Get(_ context.Context, token string, query url.Values, out any) error {
	return f.reply(backendCall{Method: "GET", Token: token, Action: query.Get("action"), Query: query}, out)
}

func (f *fakeBackend) reply(call backendCall, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return nil
	}
	resp, err := respond(call)
	if err != nil {
		return err
	}
	if out == nil || resp == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeBackend) Calls() []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backendCall{}, f.calls...)
}

func (f *fakeBackend) setResponder(r responder) {
	f.mu.Lock()
	f.respond = r
	f.mu.Unlock()
}

type testEnv struct {
	app     *App
	backend *fakeBackend
	clock   *fakeClock
	store   *MemoryKV
}

func newTestEnv(t *testing.T, r responder) *testEnv {
	t.Helper()
	env := &testEnv{
		backend: &fakeBackend{respond: r},
		clock:   newFakeClock(),
		store:   NewMemoryKV(),
	}
	app, err := New(Options{
		Backend: env.backend,
		Store:   env.store,
		Clock:   env.clock,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Payee:   "webpot@upi",
	})
	require.NoError(t, err)
	env.app = app
	t.Cleanup(app.DiscardPending)
	return env
}

func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, e.app.Sessions.Set(Session{Email: "jane@example.com", Name: "Jane Doe", Token: "token"}))
}

func waitState(t *testing.T, c *Checkout, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, timeout, tick,
		"checkout state %s, want %s", c.State(), want)
}

const (
	timeout = time.Second
	tick    = time.Millisecond
)
