package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/webpot/internal/adapter/notify"
	"github.com/polkiloo/webpot/internal/config"
	"github.com/polkiloo/webpot/internal/domain/repository"
	pkgAuth "github.com/polkiloo/webpot/internal/pkg/auth"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newAuthUseCase,
	NewOrderUseCase,
	NewReviewUseCase,
	NewInquiryUseCase,
)

type authParams struct {
	fx.In

	Config   *config.Config
	Logger   *slog.Logger
	Users    repository.UserRepository
	Codes    repository.CodeStore
	Notifier notify.Notifier
	Hasher   pkgAuth.PasswordHasher
	Strategy pkgAuth.Strategy
}

func newAuthUseCase(p authParams) *AuthUseCase {
	return NewAuthUseCase(p.Users, p.Codes, p.Notifier, p.Hasher, p.Strategy, AuthOptions{
		LoginOTP: p.Config.LoginOTP,
		Logger:   p.Logger,
	})
}
