package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

func placed(backendCall) (any, error) {
	return dto.OrderPlacedResponse{Response: dto.Success("order placed"), OrderID: "ORD-1-ABCD"}, nil
}

func basicDraft() *Draft {
	return &Draft{
		Tier:    "basic",
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "9999999999",
		Details: "Landing page",
	}
}

func TestOrderFlowQuote(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := []struct {
		tier    string
		price   int64
		advance int64
	}{
		{tier: "Starter", price: 2999, advance: 1500},
		{tier: "basic", price: 5999, advance: 3000},
		{tier: "PREMIUM", price: 9999, advance: 5000},
	}
	for _, tc := range cases {
		t.Run(tc.tier, func(t *testing.T) {
			q, err := env.app.Orders.Quote(tc.tier)
			require.NoError(t, err)
			assert.Equal(t, tc.price, q.Price)
			assert.Equal(t, tc.advance, q.Advance)
		})
	}

	_, err := env.app.Orders.Quote("Enterprise")
	assert.Error(t, err)

	quotes := env.app.Orders.Tiers()
	require.Len(t, quotes, 3)
	assert.Equal(t, model.TierStarter, quotes[0].Tier)
}

func TestOrderFlowInvalidDraftSendsNothing(t *testing.T) {
	cases := map[string]func(d *Draft){
		"missing name":    func(d *Draft) { d.Name = "" },
		"missing email":   func(d *Draft) { d.Email = " " },
		"missing phone":   func(d *Draft) { d.Phone = "" },
		"missing tier":    func(d *Draft) { d.Tier = "" },
		"unknown tier":    func(d *Draft) { d.Tier = "Gold" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, placed)
			draft := basicDraft()
			mutate(draft)

			c, err := env.app.Orders.Submit(draft)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Nil(t, c)
			assert.Empty(t, env.backend.Calls())
			assert.Nil(t, env.app.Pending())
		})
	}
}

func TestOrderFlowDetailsAreOptional(t *testing.T) {
	env := newTestEnv(t, placed)
	draft := basicDraft()
	draft.Details = ""

	c, err := env.app.Orders.Submit(draft)
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = c.PayLater(context.Background())
	require.NoError(t, err)
	calls := env.backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "", calls[0].Payload["details"])
}

func TestOrderFlowPayLaterPayload(t *testing.T) {
	env := newTestEnv(t, placed)
	draft := basicDraft()

	c, err := env.app.Orders.Submit(draft)
	require.NoError(t, err)
	assert.Same(t, c, env.app.Pending())
	assert.Equal(t, int64(3000), c.Amount())
	assert.Empty(t, env.backend.Calls(), "opening the checkout must not contact the backend")

	ref, err := c.PayLater(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD-1-ABCD", ref)
	assert.Nil(t, env.app.Pending(), "recorded order must leave no pending checkout")

	calls := env.backend.Calls()
	require.Len(t, calls, 1)
	p := calls[0].Payload
	assert.Equal(t, "order", p["action"])
	assert.Equal(t, float64(3000), p["amount"])
	assert.Equal(t, "Basic", p["service"])
	assert.Equal(t, draft.IdempotencyKey, p["idempotencyKey"])
	assert.NotContains(t, p, "transactionId")
	assert.Empty(t, calls[0].Token)
}

func TestOrderFlowConfirmCarriesReference(t *testing.T) {
	env := newTestEnv(t, placed)
	env.signIn(t)

	c, err := env.app.Orders.Submit(basicDraft())
	require.NoError(t, err)

	_, err = c.Confirm(context.Background(), "UTR42")
	require.NoError(t, err)

	calls := env.backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "UTR42", calls[0].Payload["transactionId"])
	assert.Equal(t, "token", calls[0].Token)
}

func TestOrderFlowReusesKeyAcrossRetries(t *testing.T) {
	fail := true
	env := newTestEnv(t, func(call backendCall) (any, error) {
		if fail {
			return nil, ErrNetwork
		}
		return placed(call)
	})
	draft := basicDraft()

	c, err := env.app.Orders.Submit(draft)
	require.NoError(t, err)
	key := draft.IdempotencyKey
	require.NotEmpty(t, key)

	_, err = c.PayLater(context.Background())
	require.ErrorIs(t, err, ErrNetwork)

	fail = false
	_, err = c.PayLater(context.Background())
	require.NoError(t, err)

	again, err := env.app.Orders.Submit(draft)
	require.NoError(t, err)
	assert.Equal(t, key, draft.IdempotencyKey)
	assert.NotSame(t, c, again)

	calls := env.backend.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, key, calls[0].Payload["idempotencyKey"])
	assert.Equal(t, key, calls[1].Payload["idempotencyKey"])

	other := basicDraft()
	_, err = env.app.Orders.Submit(other)
	require.NoError(t, err)
	assert.NotEqual(t, key, other.IdempotencyKey)
}
