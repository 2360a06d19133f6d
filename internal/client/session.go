package client

import (
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
)

const (
	keyLoggedIn     = "webpotUserLoggedIn"
	keyEmail        = "webpotUserEmail"
	keyName         = "webpotUserName"
	keyInitials     = "webpotUserInitials"
	keyProfilePic   = "webpotUserProfilePic"
	keyToken        = "webpotUserToken"
	keyLastActivity = "webpotLastActivity"
	keyLastLogin    = "webpotLastLogin"
	keyAdminToken   = "webpotAdminToken"

	// DefaultSessionTimeout ends a session after this much inactivity.
	DefaultSessionTimeout = 30 * time.Minute
)

var sessionKeys = []string{keyLoggedIn, keyEmail, keyName, keyInitials, keyProfilePic, keyToken, keyLastActivity}

// Session is the signed-in customer identity. The zero value means logged out.
type Session struct {
	LoggedIn       bool
	Email          string
	Name           string
	Initials       string
	ProfilePicture string
	Token          string
	LastActivity   time.Time
}

// Sessions persists the customer session and enforces the inactivity timeout.
type Sessions struct {
	kv      KV
	clock   Clock
	timeout time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	observers []func(Session)
}

// NewSessions builds session manager over kv.
func NewSessions(kv KV, clock Clock, timeout time.Duration, logger *slog.Logger) *Sessions {
	if clock == nil {
		clock = SystemClock()
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{kv: kv, clock: clock, timeout: timeout, logger: logger}
}

// OnChange registers observer notified after every Set and Clear.
func (s *Sessions) OnChange(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Set persists identity fields and stamps activity.
func (s *Sessions) Set(sess Session) error {
	sess.LoggedIn = true
	sess.LastActivity = s.clock.Now()
	if sess.Initials == "" {
		sess.Initials = Initials(sess.Name)
	}

	err := s.kv.Set(map[string]string{
		keyLoggedIn:     "true",
		keyEmail:        sess.Email,
		keyName:         sess.Name,
		keyInitials:     sess.Initials,
		keyProfilePic:   sess.ProfilePicture,
		keyToken:        sess.Token,
		keyLastActivity: formatTime(sess.LastActivity),
	})
	if err != nil {
		return err
	}
	s.notify(sess)
	return nil
}

// Get returns the live session or the zero Session when absent, expired or
// unreadable. An expired session is cleared.
func (s *Sessions) Get() Session {
	sess, err := s.read()
	if err != nil {
		s.logger.Warn("session storage unavailable", slog.Any("error", err))
		return Session{}
	}
	if !sess.LoggedIn {
		return Session{}
	}
	if s.clock.Now().Sub(sess.LastActivity) > s.timeout {
		s.logger.Info("session expired", slog.String("email", sess.Email))
		if err := s.Clear(); err != nil {
			s.logger.Warn("failed to clear expired session", slog.Any("error", err))
		}
		return Session{}
	}
	return sess
}

// Require returns the live session or ErrLoginRequired.
func (s *Sessions) Require() (Session, error) {
	sess := s.Get()
	if !sess.LoggedIn {
		return Session{}, ErrLoginRequired
	}
	return sess, nil
}

// Touch records activity on a live session.
func (s *Sessions) Touch() error {
	if !s.Get().LoggedIn {
		return ErrLoginRequired
	}
	return s.kv.Set(map[string]string{keyLastActivity: formatTime(s.clock.Now())})
}

// Clear removes the customer session. The admin token is kept.
func (s *Sessions) Clear() error {
	if err := s.kv.Delete(sessionKeys...); err != nil {
		return err
	}
	s.notify(Session{})
	return nil
}

// SwapLastSeen returns the previous last-seen time and stores now.
func (s *Sessions) SwapLastSeen() (time.Time, bool) {
	var (
		prev time.Time
		ok   bool
	)
	if raw, found, err := s.kv.Get(keyLastLogin); err == nil && found {
		prev, ok = parseTime(raw)
	}
	if err := s.kv.Set(map[string]string{keyLastLogin: formatTime(s.clock.Now())}); err != nil {
		s.logger.Warn("failed to store last seen", slog.Any("error", err))
	}
	return prev, ok
}

// AdminToken returns the stored console token.
func (s *Sessions) AdminToken() string {
	v, ok, err := s.kv.Get(keyAdminToken)
	if err != nil || !ok {
		return ""
	}
	return v
}

// SetAdminToken stores the console token. Empty token removes it.
func (s *Sessions) SetAdminToken(token string) error {
	if token == "" {
		return s.kv.Delete(keyAdminToken)
	}
	return s.kv.Set(map[string]string{keyAdminToken: token})
}

func (s *Sessions) read() (Session, error) {
	values := make(map[string]string, len(sessionKeys))
	for _, k := range sessionKeys {
		v, ok, err := s.kv.Get(k)
		if err != nil {
			return Session{}, err
		}
		if ok {
			values[k] = v
		}
	}
	if values[keyLoggedIn] != "true" {
		return Session{}, nil
	}
	last, ok := parseTime(values[keyLastActivity])
	if !ok {
		return Session{}, nil
	}
	return Session{
		LoggedIn:       true,
		Email:          values[keyEmail],
		Name:           values[keyName],
		Initials:       values[keyInitials],
		ProfilePicture: values[keyProfilePic],
		Token:          values[keyToken],
		LastActivity:   last,
	}, nil
}

func (s *Sessions) notify(sess Session) {
	s.mu.Lock()
	observers := append([]func(Session){}, s.observers...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(sess)
	}
}

// Initials returns up to two uppercase letters from the first words of name.
func Initials(name string) string {
	letters := make([]rune, 0, 2)
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		letters = append(letters, unicode.ToUpper(r))
		if len(letters) == 2 {
			break
		}
	}
	return string(letters)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
