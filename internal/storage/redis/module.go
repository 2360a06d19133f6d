package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/webpot/internal/config"
	"github.com/polkiloo/webpot/internal/domain/repository"
)

// Module wires Redis client and code store.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(newCodeStore),
)

type clientParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newClient(p clientParams) *goredis.Client {
	client := goredis.NewClient(&goredis.Options{
		Addr:     p.Config.RedisAddr,
		Password: p.Config.RedisPassword,
		DB:       p.Config.RedisDB,
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				// codes fail per request until redis comes back
				p.Logger.Warn("redis unavailable", slog.String("addr", p.Config.RedisAddr), slog.Any("error", err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return client
}

func newCodeStore(client *goredis.Client, cfg *config.Config) repository.CodeStore {
	return NewCodeStore(client, map[repository.CodePurpose]CodeOptions{
		repository.CodePurposeLogin: {
			TTL:          cfg.OTPTTL,
			MaxAttempts:  cfg.OTPMaxAttempts,
			ResendWindow: cfg.OTPResendWindow,
		},
		repository.CodePurposeReset: {
			TTL:          cfg.ResetTTL,
			MaxAttempts:  cfg.OTPMaxAttempts,
			ResendWindow: cfg.OTPResendWindow,
		},
	})
}
