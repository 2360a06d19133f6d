package repository

import (
	"context"

	"github.com/polkiloo/webpot/internal/domain/model"
)

// OrderRepository describes persistence operations with orders and their payments.
type OrderRepository interface {
	// Create stores order unless its idempotency key was seen before, in which
	// case the existing order is returned with created=false.
	Create(ctx context.Context, order model.Order) (*model.Order, bool, error)
	GetByReference(ctx context.Context, reference string) (*model.Order, error)
	ListByEmail(ctx context.Context, email string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, reference string, status model.OrderStatus) error
	// RecordPayment applies payment to order. Replayed transaction ids return
	// applied=false and leave amounts untouched.
	RecordPayment(ctx context.Context, reference, transactionID string, amount int64) (*model.Order, bool, error)
	ClaimNotifications(ctx context.Context, limit int) ([]model.Order, error)
	ReleaseNotification(ctx context.Context, orderID int64) error
}
