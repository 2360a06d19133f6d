package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork marks transport or decoding failures. The caller may retry.
	ErrNetwork = errors.New("could not reach webpot, please try again")
	// ErrLoginRequired means the caller must sign in first.
	ErrLoginRequired = errors.New("login required")
	// ErrInFlight is returned when the same control already has a request running.
	ErrInFlight = errors.New("request already in progress")
	// ErrRegenerationLimit is returned once the payment code was refreshed too often.
	ErrRegenerationLimit = errors.New("payment code regeneration limit reached")
	// ErrInvalidState is returned for actions the checkout does not accept in its current state.
	ErrInvalidState = errors.New("action not available in current payment state")
	// ErrPayLaterUnavailable is returned when settling a balance without a reference.
	ErrPayLaterUnavailable = errors.New("pay later is only available for new orders")
	// ErrNoPendingLogin is returned when a code is entered without a suspended login.
	ErrNoPendingLogin = errors.New("no login is waiting for a code")
	// ErrNothingDue is returned when paying an order without balance.
	ErrNothingDue = errors.New("order has no balance due")
)

// StatusError carries a non-success envelope returned by the backend.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return e.Status
	}
	return e.Status + ": " + e.Message
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status string) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// ValidationError lists fields rejected before any request was sent.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("please fill in: %s", strings.Join(e.Fields, ", "))
}

// requireFields returns ValidationError naming every empty value.
func requireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
