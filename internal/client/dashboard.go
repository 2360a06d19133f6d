package client

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

// Row is one order line on the dashboard.
type Row struct {
	Date    time.Time
	OrderID string
	Service string
	Amount  decimal.Decimal
	Paid    decimal.Decimal
	Due     decimal.Decimal
	Status  model.OrderStatus
	CanPay  bool
}

// Summary aggregates the customer's orders.
type Summary struct {
	Count      int
	TotalSpent decimal.Decimal
	TotalDue   decimal.Decimal
}

// View is everything the dashboard renders.
type View struct {
	Name          string
	Email         string
	Initials      string
	LastSeen      time.Time
	HasLastSeen   bool
	ServiceType   string
	CurrentStatus string
	Summary       Summary
	Rows          []Row
}

// ReviewForm is the dashboard review form. Name and email come from the session.
type ReviewForm struct {
	Service string
	Rating  int
	Comment string
}

// Dashboard shows customer orders and settles balances.
type Dashboard struct {
	app         *App
	reviewGuard Guard

	mu   sync.Mutex
	rows map[string]Row
}

type paymentPayload struct {
	Action string `json:"action"`
	dto.UpdatePaymentRequest
}

type reviewPayload struct {
	Action string `json:"action"`
	dto.ReviewRequest
}

// Load fetches orders for the signed-in customer.
func (d *Dashboard) Load(ctx context.Context) (*View, error) {
	sess, err := d.app.token()
	if err != nil {
		return nil, err
	}
	lastSeen, hasLastSeen := d.app.Sessions.SwapLastSeen()

	query := url.Values{}
	query.Set("action", "get_user_data")
	query.Set("email", sess.Email)

	var resp dto.UserDataResponse
	if err := d.app.backend.Get(ctx, sess.Token, query, &resp); err != nil {
		return nil, d.app.expired(err)
	}

	view := &View{
		Name:          sess.Name,
		Email:         sess.Email,
		Initials:      sess.Initials,
		LastSeen:      lastSeen,
		HasLastSeen:   hasLastSeen,
		ServiceType:   resp.ServiceType,
		CurrentStatus: resp.CurrentStatus,
	}
	view.Rows, view.Summary = summarize(resp.Orders)

	index := make(map[string]Row, len(view.Rows))
	for _, r := range view.Rows {
		index[r.OrderID] = r
	}
	d.mu.Lock()
	d.rows = index
	d.mu.Unlock()

	return view, nil
}

// summarize builds rows and totals. Status and due are derived from amounts
// so stale server values never show a negative balance.
func summarize(orders []dto.OrderResponse) ([]Row, Summary) {
	rows := make([]Row, 0, len(orders))
	sum := Summary{Count: len(orders), TotalSpent: decimal.Zero, TotalDue: decimal.Zero}
	for _, o := range orders {
		due := model.ClampDue(o.TotalAmount - o.PaidAmount)
		row := Row{
			Date:    o.Date,
			OrderID: o.OrderID,
			Service: o.Service,
			Amount:  decimal.NewFromInt(o.TotalAmount),
			Paid:    decimal.NewFromInt(o.PaidAmount),
			Due:     decimal.NewFromInt(due),
			Status:  model.DeriveStatus(o.TotalAmount, o.PaidAmount),
			CanPay:  due > 0,
		}
		sum.TotalSpent = sum.TotalSpent.Add(row.Amount)
		sum.TotalDue = sum.TotalDue.Add(row.Due)
		rows = append(rows, row)
	}
	return rows, sum
}

// PayNow opens a checkout for the balance of an order shown by the last Load.
func (d *Dashboard) PayNow(orderID string) (*Checkout, error) {
	sess, err := d.app.token()
	if err != nil {
		return nil, err
	}
	orderID = strings.TrimSpace(orderID)

	d.mu.Lock()
	row, ok := d.rows[orderID]
	d.mu.Unlock()
	if !ok {
		return nil, &ValidationError{Fields: []string{"orderId"}, Reason: "order not found, reload the dashboard"}
	}
	if !row.CanPay {
		return nil, ErrNothingDue
	}
	amount := row.Due.IntPart()

	submit := func(ctx context.Context, transactionID string) (string, error) {
		var resp dto.PaymentResponse
		err := d.app.backend.Post(ctx, sess.Token, paymentPayload{
			Action: "update_payment",
			UpdatePaymentRequest: dto.UpdatePaymentRequest{
				OrderID:       orderID,
				Amount:        dto.Amount(amount),
				TransactionID: transactionID,
				Email:         sess.Email,
			},
		}, &resp)
		if err != nil {
			return "", d.app.expired(err)
		}
		return resp.Order.OrderID, nil
	}

	return d.app.openCheckout(amount, false, submit), nil
}

// SubmitReview posts a review for moderation.
func (d *Dashboard) SubmitReview(ctx context.Context, form ReviewForm) error {
	if !model.ValidRating(form.Rating) {
		return &ValidationError{Fields: []string{"rating"}, Reason: "please choose a rating from 1 to 5"}
	}
	if err := requireFields("service", form.Service, "comment", form.Comment); err != nil {
		return err
	}
	sess, err := d.app.token()
	if err != nil {
		return err
	}

	release, err := d.reviewGuard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	err = d.app.backend.Post(ctx, sess.Token, reviewPayload{
		Action: "submit_review",
		ReviewRequest: dto.ReviewRequest{
			Name:    sess.Name,
			Email:   sess.Email,
			Service: strings.TrimSpace(form.Service),
			Rating:  form.Rating,
			Comment: strings.TrimSpace(form.Comment),
		},
	}, nil)
	return d.app.expired(err)
}
