package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/domain/repository"
	"github.com/polkiloo/webpot/internal/pkg/pricing"
)

const referenceAttempts = 3

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders  repository.OrderRepository
	catalog *pricing.Catalog
	now     func() time.Time
	suffix  func() string
}

// PlaceOrderInput carries checkout form fields.
type PlaceOrderInput struct {
	UserID         *int64
	Name           string
	Email          string
	Phone          string
	Service        string
	Details        string
	Amount         int64
	TransactionID  string
	IdempotencyKey string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, catalog *pricing.Catalog) *OrderUseCase {
	if catalog == nil {
		catalog = pricing.DefaultCatalog()
	}
	return &OrderUseCase{
		orders:  orders,
		catalog: catalog,
		now:     time.Now,
		suffix:  func() string { return uuid.NewString()[:4] },
	}
}

// Place registers order for a catalog tier. Without transaction id the order
// is recorded as due. Returns whether order was newly created; a repeated
// idempotency key yields the original order.
func (u *OrderUseCase) Place(ctx context.Context, in PlaceOrderInput) (*model.Order, bool, error) {
	order := model.Order{
		UserID:         in.UserID,
		Name:           strings.TrimSpace(in.Name),
		Email:          model.NormalizeEmail(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Details:        strings.TrimSpace(in.Details),
		TransactionID:  strings.TrimSpace(in.TransactionID),
		IdempotencyKey: strings.TrimSpace(in.IdempotencyKey),
	}
	if order.Name == "" || order.Email == "" || order.Phone == "" || order.IdempotencyKey == "" {
		return nil, false, domainErrors.ErrInvalidInput
	}

	tier, price, err := u.catalog.Lookup(in.Service)
	if err != nil {
		return nil, false, err
	}
	if in.Amount <= 0 || in.Amount > price {
		return nil, false, domainErrors.ErrInvalidAmount
	}

	order.Service = tier
	order.TotalAmount = price
	if order.TransactionID != "" {
		order.PaidAmount = in.Amount
	}
	order.Status = model.DeriveStatus(order.TotalAmount, order.PaidAmount)

	for attempt := 1; ; attempt++ {
		order.Reference = u.reference()
		created, isNew, err := u.orders.Create(ctx, order)
		if errors.Is(err, domainErrors.ErrAlreadyExists) && attempt < referenceAttempts {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return created, isNew, nil
	}
}

// RecordPayment settles part of an order owned by email.
func (u *OrderUseCase) RecordPayment(ctx context.Context, email, reference, transactionID string, amount int64) (*model.Order, error) {
	reference = strings.TrimSpace(reference)
	transactionID = strings.TrimSpace(transactionID)
	if reference == "" || transactionID == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}

	order, err := u.orders.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(order.Email, model.NormalizeEmail(email)) {
		return nil, domainErrors.ErrForbidden
	}

	updated, _, err := u.orders.RecordPayment(ctx, reference, transactionID, amount)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListByEmail returns customer orders, newest first.
func (u *OrderUseCase) ListByEmail(ctx context.Context, email string) ([]model.Order, error) {
	return u.orders.ListByEmail(ctx, model.NormalizeEmail(email))
}

// ListAll returns every order for the console.
func (u *OrderUseCase) ListAll(ctx context.Context) ([]model.Order, error) {
	return u.orders.ListAll(ctx)
}

// UpdateStatus sets operator-chosen status.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, reference string, status model.OrderStatus) error {
	if !status.Valid() {
		return domainErrors.ErrInvalidStatus
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domainErrors.ErrInvalidInput
	}
	return u.orders.UpdateStatus(ctx, reference, status)
}

// ClaimNotifications returns approved orders whose notice is not yet sent.
func (u *OrderUseCase) ClaimNotifications(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ClaimNotifications(ctx, limit)
}

// ReleaseNotification re-queues approval notice after failed delivery.
func (u *OrderUseCase) ReleaseNotification(ctx context.Context, orderID int64) error {
	return u.orders.ReleaseNotification(ctx, orderID)
}

// Catalog exposes tier prices.
func (u *OrderUseCase) Catalog() *pricing.Catalog {
	return u.catalog
}

func (u *OrderUseCase) reference() string {
	return fmt.Sprintf("ORD-%d-%s", u.now().UnixMilli(), strings.ToUpper(u.suffix()))
}
