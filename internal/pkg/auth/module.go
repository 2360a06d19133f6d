package auth

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/polkiloo/webpot/internal/config"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newPasswordHasher),
	fx.Provide(newTokenStrategy),
	fx.Provide(newPolicy),
)

func newPasswordHasher() PasswordHasher {
	return NewBcryptHasher(0)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) (Strategy, error) {
	opts := Options{TTL: p.Config.TokenTTL}
	switch p.Config.TokenStrategy {
	case "", "jwt":
		return NewJWTStrategy(p.Config.TokenSecret, opts), nil
	case "hmac":
		return NewHMACStrategy(p.Config.TokenSecret, opts), nil
	default:
		return nil, fmt.Errorf("unknown token strategy %q", p.Config.TokenStrategy)
	}
}

func newPolicy() (*Policy, error) {
	return NewPolicy(DefaultRules)
}
