package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/polkiloo/webpot/internal/server/http/dto"
)

// Outcome tells the caller which screen follows an auth attempt.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeSignedIn means a session was stored.
	OutcomeSignedIn
	// OutcomeOTPRequired means a code was sent; no session exists yet.
	OutcomeOTPRequired
	// OutcomeSwitchToRegister means the email is unknown.
	OutcomeSwitchToRegister
	// OutcomeBanned means the account is blocked.
	OutcomeBanned
	// OutcomeCodeSent means a reset code was delivered.
	OutcomeCodeSent
	// OutcomePasswordChanged means the reset completed.
	OutcomePasswordChanged
)

// AuthResult describes a settled auth attempt.
type AuthResult struct {
	Outcome  Outcome
	Session  Session
	Email    string
	Message  string
	Redirect string
	Delay    time.Duration
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Auth runs login, registration and password reset.
type Auth struct {
	app   *App
	guard Guard

	mu           sync.Mutex
	pendingEmail string
}

type loginPayload struct {
	Action string `json:"action"`
	dto.LoginRequest
}

type registerPayload struct {
	Action string `json:"action"`
	dto.RegisterRequest
}

type verifyOTPPayload struct {
	Action string `json:"action"`
	dto.VerifyOTPRequest
}

type resetPayload struct {
	Action string `json:"action"`
	dto.ResetRequest
}

type verifyResetPayload struct {
	Action string `json:"action"`
	dto.VerifyResetRequest
}

// Login signs in with email and password.
func (a *Auth) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := requireFields("email", email, "password", password); err != nil {
		return AuthResult{}, err
	}

	release, err := a.guard.Acquire()
	if err != nil {
		return AuthResult{}, err
	}
	defer release()

	var resp dto.AuthResponse
	err = a.app.backend.Post(ctx, "", loginPayload{
		Action:       "login",
		LoginRequest: dto.LoginRequest{Email: email, Password: password},
	}, &resp)

	switch {
	case err == nil:
		return a.signIn(resp)
	case IsStatus(err, dto.StatusOTPRequired):
		a.mu.Lock()
		a.pendingEmail = email
		a.mu.Unlock()
		return AuthResult{Outcome: OutcomeOTPRequired, Email: email, Message: statusMessage(err)}, nil
	case IsStatus(err, dto.StatusUserNotFound):
		return AuthResult{Outcome: OutcomeSwitchToRegister, Email: email, Message: statusMessage(err)}, nil
	case IsStatus(err, dto.StatusUserBanned):
		return AuthResult{Outcome: OutcomeBanned, Email: email, Message: statusMessage(err)}, nil
	default:
		return AuthResult{}, err
	}
}

// PendingEmail returns the email awaiting a login code.
func (a *Auth) PendingEmail() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingEmail
}

// CancelOTP abandons the suspended login.
func (a *Auth) CancelOTP() {
	a.mu.Lock()
	a.pendingEmail = ""
	a.mu.Unlock()
}

// VerifyLoginOTP completes a login suspended for a code. Empty email uses
// the pending one.
func (a *Auth) VerifyLoginOTP(ctx context.Context, email, code string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		email = a.PendingEmail()
	}
	if email == "" {
		return AuthResult{}, ErrNoPendingLogin
	}
	if err := requireFields("otp", code); err != nil {
		return AuthResult{}, err
	}

	release, err := a.guard.Acquire()
	if err != nil {
		return AuthResult{}, err
	}
	defer release()

	var resp dto.AuthResponse
	err = a.app.backend.Post(ctx, "", verifyOTPPayload{
		Action:           "verify_login_otp",
		VerifyOTPRequest: dto.VerifyOTPRequest{Email: email, OTP: strings.TrimSpace(code)},
	}, &resp)
	if IsStatus(err, dto.StatusUserBanned) {
		a.CancelOTP()
		return AuthResult{Outcome: OutcomeBanned, Email: email, Message: statusMessage(err)}, nil
	}
	if err != nil {
		return AuthResult{}, err
	}

	a.CancelOTP()
	return a.signIn(resp)
}

// Register creates an account and signs in.
func (a *Auth) Register(ctx context.Context, form RegisterForm) (AuthResult, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := requireFields(
		"name", form.Name,
		"email", form.Email,
		"password", form.Password,
		"confirmPassword", form.ConfirmPassword,
	); err != nil {
		return AuthResult{}, err
	}
	if form.Password != form.ConfirmPassword {
		return AuthResult{}, &ValidationError{Fields: []string{"confirmPassword"}, Reason: "passwords do not match"}
	}

	release, err := a.guard.Acquire()
	if err != nil {
		return AuthResult{}, err
	}
	defer release()

	var resp dto.AuthResponse
	err = a.app.backend.Post(ctx, "", registerPayload{
		Action: "register",
		RegisterRequest: dto.RegisterRequest{
			Name:     strings.TrimSpace(form.Name),
			Email:    form.Email,
			Password: form.Password,
			Phone:    strings.TrimSpace(form.Phone),
		},
	}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	return a.signIn(resp)
}

// RequestPasswordReset sends a reset code to email.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := requireFields("email", email); err != nil {
		return AuthResult{}, err
	}

	release, err := a.guard.Acquire()
	if err != nil {
		return AuthResult{}, err
	}
	defer release()

	var resp dto.Response
	err = a.app.backend.Post(ctx, "", resetPayload{
		Action:       "request_reset",
		ResetRequest: dto.ResetRequest{Email: email},
	}, &resp)
	if IsStatus(err, dto.StatusUserNotFound) {
		return AuthResult{Outcome: OutcomeSwitchToRegister, Email: email, Message: statusMessage(err)}, nil
	}
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Outcome: OutcomeCodeSent, Email: email, Message: resp.Message}, nil
}

// ConfirmPasswordReset sets a new password using the reset code.
func (a *Auth) ConfirmPasswordReset(ctx context.Context, email, code, password, confirm string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := requireFields(
		"email", email,
		"code", code,
		"newPassword", password,
		"confirmPassword", confirm,
	); err != nil {
		return AuthResult{}, err
	}
	if password != confirm {
		return AuthResult{}, &ValidationError{Fields: []string{"confirmPassword"}, Reason: "passwords do not match"}
	}

	release, err := a.guard.Acquire()
	if err != nil {
		return AuthResult{}, err
	}
	defer release()

	var resp dto.Response
	err = a.app.backend.Post(ctx, "", verifyResetPayload{
		Action: "verify_reset",
		VerifyResetRequest: dto.VerifyResetRequest{
			Email:       email,
			Code:        strings.TrimSpace(code),
			NewPassword: password,
		},
	}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Outcome: OutcomePasswordChanged, Email: email, Message: resp.Message}, nil
}

// Logout clears the customer session and any open checkout.
func (a *Auth) Logout() error {
	a.CancelOTP()
	a.app.DiscardPending()
	return a.app.Sessions.Clear()
}

func (a *Auth) signIn(resp dto.AuthResponse) (AuthResult, error) {
	if resp.User == nil || resp.Token == "" {
		return AuthResult{}, fmt.Errorf("%w: sign-in response without identity", ErrNetwork)
	}
	sess := Session{
		Email: resp.User.Email,
		Name:  resp.User.Name,
		Token: resp.Token,
	}
	if err := a.app.Sessions.Set(sess); err != nil {
		return AuthResult{}, err
	}
	sess = a.app.Sessions.Get()
	return AuthResult{
		Outcome:  OutcomeSignedIn,
		Session:  sess,
		Email:    sess.Email,
		Message:  resp.Message,
		Redirect: DefaultRedirect,
		Delay:    a.app.redirect,
	}, nil
}

func statusMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
