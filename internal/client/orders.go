package client

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/pkg/pricing"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

// Quote is the price breakdown shown before checkout.
type Quote struct {
	Tier    model.Tier
	Price   int64
	Advance int64
}

// Draft is an order being filled in. Details are optional. IdempotencyKey is
// assigned on first submit and reused by every retry of the same draft.
type Draft struct {
	Tier    string
	Name    string
	Email   string
	Phone   string
	Details string

	IdempotencyKey string
}

// OrderFlow turns drafts into payment checkouts.
type OrderFlow struct {
	app *App
}

type orderPayload struct {
	Action         string `json:"action"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Service        string `json:"service"`
	Amount         int64  `json:"amount"`
	Details        string `json:"details"`
	TransactionID  string `json:"transactionId,omitempty"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// Tiers lists quotes for every tier, cheapest first.
func (o *OrderFlow) Tiers() []Quote {
	tiers := o.app.catalog.Tiers()
	quotes := make([]Quote, 0, len(tiers))
	for _, t := range tiers {
		q, err := o.Quote(string(t))
		if err == nil {
			quotes = append(quotes, q)
		}
	}
	return quotes
}

// Quote returns price and advance for tier.
func (o *OrderFlow) Quote(tier string) (Quote, error) {
	t, price, err := o.app.catalog.Lookup(tier)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Tier: t, Price: price, Advance: pricing.Advance(price)}, nil
}

// Submit validates draft and opens a checkout for the advance. Nothing is
// sent until the payer confirms or chooses to pay later.
func (o *OrderFlow) Submit(draft *Draft) (*Checkout, error) {
	if err := requireFields(
		"service", draft.Tier,
		"name", draft.Name,
		"email", draft.Email,
		"phone", draft.Phone,
	); err != nil {
		return nil, err
	}
	quote, err := o.Quote(draft.Tier)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"service"}, Reason: "please choose a valid service"}
	}
	if draft.IdempotencyKey == "" {
		draft.IdempotencyKey = uuid.NewString()
	}

	payload := orderPayload{
		Action:         "order",
		Name:           strings.TrimSpace(draft.Name),
		Email:          strings.TrimSpace(draft.Email),
		Phone:          strings.TrimSpace(draft.Phone),
		Service:        string(quote.Tier),
		Amount:         quote.Advance,
		Details:        strings.TrimSpace(draft.Details),
		IdempotencyKey: draft.IdempotencyKey,
	}

	submit := func(ctx context.Context, transactionID string) (string, error) {
		p := payload
		p.TransactionID = transactionID
		var token string
		if sess := o.app.Sessions.Get(); sess.LoggedIn {
			token = sess.Token
		}
		var resp dto.OrderPlacedResponse
		if err := o.app.backend.Post(ctx, token, p, &resp); err != nil {
			return "", err
		}
		return resp.OrderID, nil
	}

	return o.app.openCheckout(quote.Advance, true, submit), nil
}
