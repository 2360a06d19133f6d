package notify

import (
	"log/slog"

	"github.com/twilio/twilio-go"
	"go.uber.org/fx"

	"github.com/polkiloo/webpot/internal/config"
)

// Module exposes notifier implementation to fx graph.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) Notifier {
	if p.Config.TwilioAccountSID == "" || p.Config.TwilioAuthToken == "" {
		return NewSMSNotifier(nil, "", p.Logger)
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: p.Config.TwilioAccountSID,
		Password: p.Config.TwilioAuthToken,
	})
	return NewSMSNotifier(client.Api, p.Config.TwilioFromNumber, p.Logger)
}
