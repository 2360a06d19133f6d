package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Recipient identifies who receives a message.
type Recipient struct {
	Email string
	Phone string
}

// Notifier delivers short text messages to customers.
type Notifier interface {
	Notify(ctx context.Context, to Recipient, message string) error
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier sends SMS through Twilio and falls back to log delivery
// when no sender number or no recipient phone is known.
type SMSNotifier struct {
	api        messageCreator
	fromNumber string
	logger     *slog.Logger
}

// NewSMSNotifier constructs notifier. api may be nil for log-only delivery.
func NewSMSNotifier(api messageCreator, fromNumber string, logger *slog.Logger) *SMSNotifier {
	return &SMSNotifier{api: api, fromNumber: fromNumber, logger: logger}
}

// Notify delivers message to recipient.
func (n *SMSNotifier) Notify(ctx context.Context, to Recipient, message string) error {
	phone := strings.TrimSpace(to.Phone)
	if n.api == nil || n.fromNumber == "" || phone == "" {
		n.logger.InfoContext(ctx, "notification logged",
			slog.String("email", to.Email),
			slog.String("phone", phone),
			slog.String("message", message),
		)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(n.fromNumber)
	params.SetBody(message)

	resp, err := n.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}

	attrs := []any{slog.String("to", phone)}
	if resp != nil && resp.Sid != nil {
		attrs = append(attrs, slog.String("sid", *resp.Sid))
	}
	n.logger.DebugContext(ctx, "sms sent", attrs...)
	return nil
}
