package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/polkiloo/webpot/internal/adapter/notify"
	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/domain/repository"
	pkgAuth "github.com/polkiloo/webpot/internal/pkg/auth"
)

// AuthUseCase handles user lifecycle, one-time codes and token management.
type AuthUseCase struct {
	users    repository.UserRepository
	codes    repository.CodeStore
	notifier notify.Notifier
	hasher   pkgAuth.PasswordHasher
	tokens   pkgAuth.Strategy
	logger   *slog.Logger

	loginOTP bool
	now      func() time.Time
}

// AuthOptions tunes login behaviour.
type AuthOptions struct {
	// LoginOTP requires a one-time code after a correct password.
	LoginOTP bool
	Now      func() time.Time
	Logger   *slog.Logger
}

// RegisterInput carries registration form fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(
	users repository.UserRepository,
	codes repository.CodeStore,
	notifier notify.Notifier,
	hasher pkgAuth.PasswordHasher,
	strategy pkgAuth.Strategy,
	opts AuthOptions,
) *AuthUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &AuthUseCase{
		users:    users,
		codes:    codes,
		notifier: notifier,
		hasher:   hasher,
		tokens:   strategy,
		logger:   opts.Logger,
		loginOTP: opts.LoginOTP,
		now:      opts.Now,
	}
}

// Register creates a customer account and returns auth token.
func (u *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := model.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, "", domainErrors.ErrInvalidInput
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         model.RoleCustomer,
		Status:       model.UserStatusActive,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Role: usr.Role})
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials. With login OTP enabled it delivers a
// code and returns ErrOTPRequired together with the user and no token.
func (u *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.lookup(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if usr.Banned() {
		return nil, "", domainErrors.ErrUserBanned
	}

	if u.loginOTP && usr.Role == model.RoleCustomer {
		if err := u.sendCode(ctx, repository.CodePurposeLogin, usr, "Your Webpot login code is %s"); err != nil {
			return nil, "", err
		}
		return usr, "", domainErrors.ErrOTPRequired
	}

	return u.completeLogin(ctx, usr)
}

// VerifyLoginOTP finishes a login suspended by ErrOTPRequired.
func (u *AuthUseCase) VerifyLoginOTP(ctx context.Context, email, code string) (*model.User, string, error) {
	email = model.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, "", domainErrors.ErrInvalidInput
	}

	usr, err := u.lookup(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if usr.Banned() {
		return nil, "", domainErrors.ErrUserBanned
	}
	if err := u.codes.Verify(ctx, repository.CodePurposeLogin, email, code); err != nil {
		return nil, "", err
	}

	return u.completeLogin(ctx, usr)
}

// RequestReset delivers a password reset code to an existing user.
func (u *AuthUseCase) RequestReset(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return domainErrors.ErrInvalidInput
	}

	usr, err := u.lookup(ctx, email)
	if err != nil {
		return err
	}
	return u.sendCode(ctx, repository.CodePurposeReset, usr, "Your Webpot password reset code is %s")
}

// ConfirmReset checks reset code and stores the new password.
func (u *AuthUseCase) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	email = model.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return domainErrors.ErrInvalidInput
	}

	usr, err := u.lookup(ctx, email)
	if err != nil {
		return err
	}
	if err := u.codes.Verify(ctx, repository.CodePurposeReset, email, code); err != nil {
		return err
	}

	hash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return u.users.UpdatePassword(ctx, usr.ID, hash)
}

// AdminLogin authenticates console operator. Non-admin accounts get the
// same answer as a wrong password.
func (u *AuthUseCase) AdminLogin(ctx context.Context, email, password string) (*model.User, string, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if usr.Role != model.RoleAdmin || usr.Banned() {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	return u.completeLogin(ctx, usr)
}

// ParseToken extracts identity from provided token.
func (u *AuthUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// Customer loads the caller behind a token and rejects banned accounts.
func (u *AuthUseCase) Customer(ctx context.Context, userID int64) (*model.User, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, err
	}
	if usr.Banned() {
		return nil, domainErrors.ErrUserBanned
	}
	return usr, nil
}

// ListUsers returns every account for the console.
func (u *AuthUseCase) ListUsers(ctx context.Context) ([]model.User, error) {
	return u.users.List(ctx)
}

// Ban blocks customer account. Administrators cannot be banned.
func (u *AuthUseCase) Ban(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return domainErrors.ErrInvalidInput
	}
	usr, err := u.lookup(ctx, email)
	if err != nil {
		return err
	}
	if usr.Role == model.RoleAdmin {
		return domainErrors.ErrForbidden
	}
	if err := u.users.SetStatus(ctx, email, model.UserStatusBanned); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrUserNotFound
		}
		return err
	}
	return nil
}

// EnsureAdmin upserts the configured console account. Empty email is a no-op.
func (u *AuthUseCase) EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	if password == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return u.users.UpsertAdmin(ctx, name, email, hash)
}

func (u *AuthUseCase) lookup(ctx context.Context, email string) (*model.User, error) {
	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, err
	}
	return usr, nil
}

func (u *AuthUseCase) completeLogin(ctx context.Context, usr *model.User) (*model.User, string, error) {
	token, err := u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Role: usr.Role})
	if err != nil {
		return nil, "", err
	}

	now := u.now()
	if err := u.users.TouchLogin(ctx, usr.ID, now); err != nil {
		u.logger.WarnContext(ctx, "failed to record login time", slog.Int64("user_id", usr.ID), slog.Any("error", err))
	} else {
		usr.LastLoginAt = &now
	}
	return usr, token, nil
}

// sendCode issues code and delivers it. A code that could not be delivered
// is discarded so the resend window does not lock the user out.
func (u *AuthUseCase) sendCode(ctx context.Context, purpose repository.CodePurpose, usr *model.User, format string) error {
	code, err := u.codes.Issue(ctx, purpose, usr.Email)
	if err != nil {
		return err
	}
	to := notify.Recipient{Email: usr.Email, Phone: usr.Phone}
	if err := u.notifier.Notify(ctx, to, fmt.Sprintf(format, code)); err != nil {
		if derr := u.codes.Discard(ctx, purpose, usr.Email); derr != nil {
			u.logger.WarnContext(ctx, "failed to discard undelivered code", slog.String("purpose", string(purpose)), slog.Any("error", derr))
		}
		return fmt.Errorf("deliver code: %w", err)
	}
	return nil
}
