package di

import (
	"github.com/polkiloo/webpot/internal/adapter/notify"
	"github.com/polkiloo/webpot/internal/app"
	"github.com/polkiloo/webpot/internal/config"
	"github.com/polkiloo/webpot/internal/logger"
	"github.com/polkiloo/webpot/internal/pkg/auth"
	"github.com/polkiloo/webpot/internal/pkg/pricing"
	"github.com/polkiloo/webpot/internal/server/http/handlers"
	"github.com/polkiloo/webpot/internal/server/http/router"
	"github.com/polkiloo/webpot/internal/storage/postgres"
	"github.com/polkiloo/webpot/internal/storage/redis"
	"github.com/polkiloo/webpot/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		pricing.Module,
		postgres.Module,
		redis.Module,
		notify.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		fx.Provide(func(f *app.WebpotFacade) handlers.WebpotFacade { return f }),
		fx.Provide(func(p *auth.Policy) handlers.Authorizer { return p }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
