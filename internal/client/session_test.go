package client

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenKV struct{}

var errStorage = errors.New("storage unavailable")

func (brokenKV) Get(string) (string, bool, error) { return "", false, errStorage }
func (brokenKV) Set(map[string]string) error      { return errStorage }
func (brokenKV) Delete(...string) error           { return errStorage }

func newTestSessions(kv KV, clock Clock) *Sessions {
	return NewSessions(kv, clock, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSessionsSetAndGet(t *testing.T) {
	clock := newFakeClock()
	s := newTestSessions(NewMemoryKV(), clock)

	assert.False(t, s.Get().LoggedIn)

	require.NoError(t, s.Set(Session{Email: "jane@example.com", Name: "jane doe", Token: "tok"}))

	got := s.Get()
	assert.True(t, got.LoggedIn)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, "JD", got.Initials)
	assert.Equal(t, "tok", got.Token)
	assert.True(t, got.LastActivity.Equal(clock.Now()))
}

func TestSessionsExpireAfterInactivity(t *testing.T) {
	clock := newFakeClock()
	kv := NewMemoryKV()
	s := newTestSessions(kv, clock)
	require.NoError(t, s.Set(Session{Email: "jane@example.com", Name: "Jane"}))

	clock.Advance(DefaultSessionTimeout)
	assert.True(t, s.Get().LoggedIn, "session must survive exactly the timeout")

	require.NoError(t, s.Touch())
	clock.Advance(DefaultSessionTimeout - time.Second)
	assert.True(t, s.Get().LoggedIn, "touch must extend the session")

	clock.Advance(2 * time.Second)
	assert.False(t, s.Get().LoggedIn)

	_, ok, err := kv.Get(keyLoggedIn)
	require.NoError(t, err)
	assert.False(t, ok, "expired session must be cleared")

	_, err = s.Require()
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.ErrorIs(t, s.Touch(), ErrLoginRequired)
}

func TestSessionsStorageFailureMeansLoggedOut(t *testing.T) {
	s := newTestSessions(brokenKV{}, newFakeClock())

	assert.Equal(t, Session{}, s.Get())
	_, err := s.Require()
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.ErrorIs(t, s.Set(Session{Email: "jane@example.com"}), errStorage)
	assert.Empty(t, s.AdminToken())
}

func TestSessionsObservers(t *testing.T) {
	s := newTestSessions(NewMemoryKV(), newFakeClock())

	var seen []Session
	s.OnChange(func(sess Session) { seen = append(seen, sess) })

	require.NoError(t, s.Set(Session{Email: "jane@example.com", Name: "Jane"}))
	require.NoError(t, s.Clear())

	require.Len(t, seen, 2)
	assert.True(t, seen[0].LoggedIn)
	assert.Equal(t, "J", seen[0].Initials)
	assert.False(t, seen[1].LoggedIn)
}

func TestSessionsClearKeepsAdminToken(t *testing.T) {
	s := newTestSessions(NewMemoryKV(), newFakeClock())
	require.NoError(t, s.SetAdminToken("admin-token"))
	require.NoError(t, s.Set(Session{Email: "jane@example.com"}))

	require.NoError(t, s.Clear())
	assert.Equal(t, "admin-token", s.AdminToken())

	require.NoError(t, s.SetAdminToken(""))
	assert.Empty(t, s.AdminToken())
}

func TestSessionsSwapLastSeen(t *testing.T) {
	clock := newFakeClock()
	s := newTestSessions(NewMemoryKV(), clock)

	_, ok := s.SwapLastSeen()
	assert.False(t, ok)

	first := clock.Now()
	clock.Advance(time.Hour)
	prev, ok := s.SwapLastSeen()
	require.True(t, ok)
	assert.True(t, prev.Equal(first))

	prev, ok = s.SwapLastSeen()
	require.True(t, ok)
	assert.True(t, prev.Equal(clock.Now()))
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"jane":              "J",
		"Jane Doe":          "JD",
		"  mary  ann  lee ": "MA",
		"-- bob":            "B",
		"élodie durand":     "ÉD",
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, Initials(name))
		})
	}
}

func TestFileKVPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")

	first := NewFileKV(path)
	v, ok, err := first.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)

	require.NoError(t, first.Set(map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, first.Delete("b"))

	second := NewFileKV(path)
	v, ok, err = second.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok, err = second.Get("b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileKVCorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	kv := NewFileKV(path)
	_, _, err := kv.Get("a")
	require.Error(t, err)

	s := newTestSessions(kv, newFakeClock())
	assert.False(t, s.Get().LoggedIn)
}
