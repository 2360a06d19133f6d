package client

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/polkiloo/webpot/internal/pkg/pricing"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

// Options configures App. Zero values pick defaults.
type Options struct {
	// Endpoint is the action URL, used when Backend is nil.
	Endpoint   string
	HTTPClient *http.Client
	Backend    Backend

	Store  KV
	Clock  Clock
	Logger *slog.Logger

	Catalog *pricing.Catalog

	Payee         string
	PayeeName     string
	PaymentWindow time.Duration
	// MaxRegenerations defaults to 3. Negative disables regeneration.
	MaxRegenerations int
	SessionTimeout   time.Duration
	// RedirectDelay is how long a sign-in confirmation stays on screen.
	RedirectDelay time.Duration
}

const (
	// DefaultPayee receives UPI payments.
	DefaultPayee = "kakadiyasuprince@okhdfcbank"
	// DefaultRedirect is where a signed-in user lands.
	DefaultRedirect      = "index.html"
	defaultRedirectDelay = 2 * time.Second
)

// App holds client state shared by every flow.
type App struct {
	Sessions  *Sessions
	Auth      *Auth
	Orders    *OrderFlow
	Dashboard *Dashboard
	Admin     *Admin
	Reviews   *Reviews
	Contact   *Contact

	backend  Backend
	clock    Clock
	catalog  *pricing.Catalog
	logger   *slog.Logger
	checkout CheckoutOptions
	redirect time.Duration

	mu      sync.Mutex
	pending *Checkout
}

// New wires App from opts.
func New(opts Options) (*App, error) {
	if opts.Backend == nil {
		if opts.Endpoint == "" {
			return nil, errors.New("client: endpoint or backend required")
		}
		opts.Backend = NewHTTPBackend(opts.Endpoint, opts.HTTPClient)
	}
	if opts.Store == nil {
		opts.Store = NewMemoryKV()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Catalog == nil {
		opts.Catalog = pricing.DefaultCatalog()
	}
	if opts.Payee == "" {
		opts.Payee = DefaultPayee
	}
	if opts.MaxRegenerations == 0 {
		opts.MaxRegenerations = DefaultMaxRegenerations
	}
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = defaultRedirectDelay
	}

	a := &App{
		Sessions: NewSessions(opts.Store, opts.Clock, opts.SessionTimeout, opts.Logger),
		backend:  opts.Backend,
		clock:    opts.Clock,
		catalog:  opts.Catalog,
		logger:   opts.Logger,
		checkout: CheckoutOptions{
			Payee:            opts.Payee,
			PayeeName:        opts.PayeeName,
			Window:           opts.PaymentWindow,
			MaxRegenerations: opts.MaxRegenerations,
			Clock:            opts.Clock,
		},
		redirect: opts.RedirectDelay,
	}
	a.Auth = &Auth{app: a}
	a.Orders = &OrderFlow{app: a}
	a.Dashboard = &Dashboard{app: a}
	a.Admin = &Admin{app: a}
	a.Reviews = &Reviews{app: a}
	a.Contact = &Contact{app: a}
	return a, nil
}

// Pending returns the open checkout, if any.
func (a *App) Pending() *Checkout {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// DiscardPending closes the open checkout.
func (a *App) DiscardPending() {
	a.mu.Lock()
	prev := a.pending
	a.pending = nil
	a.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

// openCheckout replaces any pending checkout with a new one and starts it.
// A confirmed checkout drops out of Pending.
func (a *App) openCheckout(amount int64, allowPayLater bool, submit submitFunc) *Checkout {
	opts := a.checkout
	opts.AllowPayLater = allowPayLater
	c := newCheckout(amount, submit, opts)
	c.OnChange(func(s State) {
		if s != StateConfirmed {
			return
		}
		a.mu.Lock()
		if a.pending == c {
			a.pending = nil
		}
		a.mu.Unlock()
	})

	a.mu.Lock()
	prev := a.pending
	a.pending = c
	a.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	c.Open()
	return c
}

// token returns the session token and records activity.
func (a *App) token() (Session, error) {
	sess, err := a.Sessions.Require()
	if err != nil {
		return Session{}, err
	}
	if err := a.Sessions.Touch(); err != nil {
		a.logger.Warn("failed to record activity", slog.Any("error", err))
	}
	return sess, nil
}

// expired ends a session the backend no longer accepts.
func (a *App) expired(err error) error {
	if !IsStatus(err, dto.StatusUnauthorized) {
		return err
	}
	if cerr := a.Sessions.Clear(); cerr != nil {
		a.logger.Warn("failed to clear rejected session", slog.Any("error", cerr))
	}
	return ErrLoginRequired
}
