package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// DefaultPaymentWindow is how long a payment code stays valid.
	DefaultPaymentWindow = 300 * time.Second
	// DefaultMaxRegenerations bounds how often an expired code is refreshed.
	DefaultMaxRegenerations = 3
	// DefaultPayeeName labels the payee in payment apps.
	DefaultPayeeName = "Webpot"

	qrSize = 256
)

// State is the payment flow position.
type State string

const (
	StateDrafting       State = "drafting"
	StatePendingPayment State = "pending_payment"
	StateExpired        State = "expired"
	StateSubmitting     State = "submitting"
	StateConfirmed      State = "confirmed"
	StateFailed         State = "failed"
)

// PaymentURI builds the UPI deep link encoded in the QR code. The payee
// address is kept verbatim since payment apps expect a literal '@'.
func PaymentURI(payee, payeeName string, amount int64) string {
	return "upi://pay?pa=" + payee +
		"&pn=" + url.PathEscape(payeeName) +
		"&am=" + strconv.FormatInt(amount, 10) +
		"&cu=INR"
}

// submitFunc sends the payment to the backend and returns the order reference.
// Empty transactionID means pay later.
type submitFunc func(ctx context.Context, transactionID string) (string, error)

// CheckoutOptions configures a checkout.
type CheckoutOptions struct {
	Payee            string
	PayeeName        string
	Window           time.Duration
	MaxRegenerations int
	AllowPayLater    bool
	Clock            Clock
}

// Checkout drives one payment from code display to confirmation.
type Checkout struct {
	amount        int64
	payee         string
	payeeName     string
	maxRegens     int
	allowPayLater bool
	submit        submitFunc
	countdown     *Countdown
	guard         Guard
	onTick        atomic.Pointer[func(time.Duration)]

	mu            sync.Mutex
	state         State
	payload       string
	regenerations int
	reference     string
	lastErr       error
	closed        bool
	observers     []func(State)
}

func newCheckout(amount int64, submit submitFunc, opts CheckoutOptions) *Checkout {
	if opts.PayeeName == "" {
		opts.PayeeName = DefaultPayeeName
	}
	if opts.Window <= 0 {
		opts.Window = DefaultPaymentWindow
	}
	if opts.MaxRegenerations < 0 {
		opts.MaxRegenerations = 0
	}
	c := &Checkout{
		amount:        amount,
		payee:         opts.Payee,
		payeeName:     opts.PayeeName,
		maxRegens:     opts.MaxRegenerations,
		allowPayLater: opts.AllowPayLater,
		submit:        submit,
	}
	c.countdown = NewCountdown(opts.Clock, opts.Window, c.tick, c.expire)
	return c
}

// Open shows the payment code and starts the countdown.
func (c *Checkout) Open() {
	c.mu.Lock()
	notify := c.openLocked()
	c.mu.Unlock()
	notify()
}

// openLocked re-arms the countdown before the state turns pending so the
// deadline check never sees the previous deadline.
func (c *Checkout) openLocked() func() {
	c.countdown.Start()
	c.payload = PaymentURI(c.payee, c.payeeName, c.amount)
	c.setStateLocked(StatePendingPayment)
	return c.snapshotLocked()
}

// OnChange registers observer for state transitions.
func (c *Checkout) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// OnTick registers fn to receive remaining time every second. fn runs on the
// countdown goroutine and must not call back into the checkout.
func (c *Checkout) OnTick(fn func(time.Duration)) {
	c.onTick.Store(&fn)
}

// Amount is the sum requested by this checkout.
func (c *Checkout) Amount() int64 { return c.amount }

// State returns current position in the flow.
func (c *Checkout) State() State {
	c.mu.Lock()
	notify := c.expireIfDueLocked()
	state := c.state
	c.mu.Unlock()
	notify()
	return state
}

// Remaining returns time left on the payment code.
func (c *Checkout) Remaining() time.Duration {
	return c.countdown.Remaining()
}

// Regenerations returns how many times the code was refreshed.
func (c *Checkout) Regenerations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regenerations
}

// Reference returns the server order reference after confirmation.
func (c *Checkout) Reference() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reference
}

// Err returns the last submission failure.
func (c *Checkout) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Payload returns the payment link, empty once the code expired.
func (c *Checkout) Payload() string {
	c.mu.Lock()
	notify := c.expireIfDueLocked()
	payload := c.payload
	c.mu.Unlock()
	notify()
	return payload
}

// QRPNG renders the payment code as PNG.
func (c *Checkout) QRPNG(size int) ([]byte, error) {
	payload, err := c.activePayload()
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = qrSize
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}

// QRText renders the payment code for a terminal.
func (c *Checkout) QRText() (string, error) {
	payload, err := c.activePayload()
	if err != nil {
		return "", err
	}
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}
	return code.ToSmallString(false), nil
}

// Regenerate issues a fresh code after expiry and restarts the countdown.
func (c *Checkout) Regenerate() error {
	c.mu.Lock()
	expired := c.expireIfDueLocked()
	if c.state != StateExpired {
		c.mu.Unlock()
		return ErrInvalidState
	}
	if c.regenerations >= c.maxRegens {
		c.mu.Unlock()
		return ErrRegenerationLimit
	}
	c.regenerations++
	notify := c.openLocked()
	c.mu.Unlock()

	expired()
	notify()
	return nil
}

// Confirm submits the payment with the bank reference entered by the payer.
func (c *Checkout) Confirm(ctx context.Context, transactionID string) (string, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return "", &ValidationError{Fields: []string{"transactionId"}, Reason: "please enter the transaction reference"}
	}
	return c.send(ctx, transactionID)
}

// PayLater records the order without payment.
func (c *Checkout) PayLater(ctx context.Context) (string, error) {
	if !c.allowPayLater {
		return "", ErrPayLaterUnavailable
	}
	return c.send(ctx, "")
}

// Close abandons the checkout and stops the countdown.
func (c *Checkout) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.countdown.Stop()
}

func (c *Checkout) send(ctx context.Context, transactionID string) (string, error) {
	release, err := c.guard.Acquire()
	if err != nil {
		return "", err
	}
	defer release()

	c.mu.Lock()
	if expired := c.expireIfDueLocked(); c.state == StateExpired {
		c.mu.Unlock()
		expired()
		return "", ErrInvalidState
	}
	if c.state != StatePendingPayment || c.closed {
		c.mu.Unlock()
		return "", ErrInvalidState
	}
	c.setStateLocked(StateSubmitting)
	notify := c.snapshotLocked()
	c.mu.Unlock()
	notify()

	ref, err := c.submit(ctx, transactionID)

	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.setStateLocked(StateFailed)
		failed := c.snapshotLocked()
		if c.countdown.Expired() {
			c.payload = ""
			c.setStateLocked(StateExpired)
		} else {
			c.setStateLocked(StatePendingPayment)
		}
		after := c.snapshotLocked()
		c.mu.Unlock()
		failed()
		after()
		return "", err
	}

	c.countdown.Stop()
	c.mu.Lock()
	c.lastErr = nil
	c.reference = ref
	c.setStateLocked(StateConfirmed)
	notify = c.snapshotLocked()
	c.mu.Unlock()
	notify()
	return ref, nil
}

func (c *Checkout) activePayload() (string, error) {
	payload := c.Payload()
	if payload == "" {
		return "", ErrInvalidState
	}
	return payload, nil
}

func (c *Checkout) tick(left time.Duration) {
	if fn := c.onTick.Load(); fn != nil {
		(*fn)(left)
	}
}

func (c *Checkout) expire() {
	c.mu.Lock()
	notify := c.expireIfDueLocked()
	c.mu.Unlock()
	notify()
}

// expireLocked moves a pending checkout to Expired. The returned func
// delivers the transition and is a no-op when nothing changed.
func (c *Checkout) expireLocked() func() {
	if c.state != StatePendingPayment || c.closed {
		return func() {}
	}
	c.payload = ""
	c.setStateLocked(StateExpired)
	return c.snapshotLocked()
}

// expireIfDueLocked expires the checkout once the deadline passed, even if
// the countdown has not ticked yet.
func (c *Checkout) expireIfDueLocked() func() {
	if c.state != StatePendingPayment || !c.countdown.Expired() {
		return func() {}
	}
	return c.expireLocked()
}

func (c *Checkout) setStateLocked(s State) {
	c.state = s
}

// snapshotLocked captures observers and current state for delivery outside the lock.
func (c *Checkout) snapshotLocked() func() {
	state := c.state
	observers := append([]func(State){}, c.observers...)
	return func() {
		for _, fn := range observers {
			fn(state)
		}
	}
}

// IsRetryable reports whether a failed submission may be sent again as is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}
