package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, reference, idempotency_key, user_id, name, email, phone, service, details,
                      total_amount, paid_amount, status, transaction_id, notified, created_at, updated_at`

func scanOrder(row scanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.Reference, &o.IdempotencyKey, &o.UserID, &o.Name, &o.Email, &o.Phone, &o.Service, &o.Details,
		&o.TotalAmount, &o.PaidAmount, &o.Status, &o.TransactionID, &o.Notified, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts order together with its first payment when a transaction id is present.
func (r *orderRepository) Create(ctx context.Context, order model.Order) (*model.Order, bool, error) {
	const insertOrder = `INSERT INTO orders (reference, idempotency_key, user_id, name, email, phone, service, details,
                         total_amount, paid_amount, status, transaction_id)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
                         ON CONFLICT (idempotency_key) DO NOTHING
                         RETURNING id, created_at, updated_at`
	const selectExisting = `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key=$1`
	const insertPayment = `INSERT INTO payments (order_id, transaction_id, amount) VALUES ($1, $2, $3)`

	var (
		result  *model.Order
		created bool
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrder,
			order.Reference, order.IdempotencyKey, order.UserID, order.Name, order.Email, order.Phone, order.Service, order.Details,
			order.TotalAmount, order.PaidAmount, order.Status, order.TransactionID,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := scanOrder(tx.QueryRow(ctx, selectExisting, order.IdempotencyKey))
			if err != nil {
				return notFound(err)
			}
			result = existing
			return nil
		}
		if err != nil {
			if isUniqueViolation(err) {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}

		if order.TransactionID != "" && order.PaidAmount > 0 {
			if _, err := tx.Exec(ctx, insertPayment, order.ID, order.TransactionID, order.PaidAmount); err != nil {
				return err
			}
		}
		result = &order
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

func (r *orderRepository) GetByReference(ctx context.Context, reference string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE reference=$1`
	o, err := scanOrder(r.storage.pool.QueryRow(ctx, query, reference))
	if err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

func (r *orderRepository) ListByEmail(ctx context.Context, email string) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE email=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// UpdateStatus sets stored status. Moving to Active re-arms the approval notice.
func (r *orderRepository) UpdateStatus(ctx context.Context, reference string, status model.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, notified = notified AND NOT $2, updated_at=NOW() WHERE reference=$3`
	tag, err := r.storage.pool.Exec(ctx, query, status, status == model.OrderStatusActive, reference)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) RecordPayment(ctx context.Context, reference, transactionID string, amount int64) (*model.Order, bool, error) {
	const lockOrder = `SELECT ` + orderColumns + ` FROM orders WHERE reference=$1 FOR UPDATE`
	const insertPayment = `INSERT INTO payments (order_id, transaction_id, amount) VALUES ($1, $2, $3)
                           ON CONFLICT (order_id, transaction_id) DO NOTHING`
	const updateOrder = `UPDATE orders SET paid_amount=$1, status=$2, transaction_id=$3, updated_at=NOW() WHERE id=$4`

	var (
		result  *model.Order
		applied bool
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := scanOrder(tx.QueryRow(ctx, lockOrder, reference))
		if err != nil {
			return notFound(err)
		}

		tag, err := tx.Exec(ctx, insertPayment, order.ID, transactionID, amount)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			result = order
			return nil
		}

		if amount <= 0 || amount > order.Due() {
			return domainErrors.ErrInvalidAmount
		}

		order.PaidAmount += amount
		order.Status = model.StatusAfterPayment(order.Status, order.TotalAmount, order.PaidAmount)
		order.TransactionID = transactionID
		if _, err := tx.Exec(ctx, updateOrder, order.PaidAmount, order.Status, order.TransactionID, order.ID); err != nil {
			return err
		}
		result = order
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, applied, nil
}

// ClaimNotifications marks a batch of approved orders as notified and returns them.
func (r *orderRepository) ClaimNotifications(ctx context.Context, limit int) ([]model.Order, error) {
	const selectQuery = `SELECT ` + orderColumns + `
                         FROM orders
                         WHERE status = 'Active' AND NOT notified
                         ORDER BY updated_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`

	var orders []model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}
		claimed, err := collectOrders(rows)
		if err != nil {
			return err
		}
		for i := range claimed {
			if _, err := tx.Exec(ctx, `UPDATE orders SET notified=TRUE WHERE id=$1`, claimed[i].ID); err != nil {
				return err
			}
			claimed[i].Notified = true
		}
		orders = claimed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ReleaseNotification(ctx context.Context, orderID int64) error {
	_, err := r.storage.pool.Exec(ctx, `UPDATE orders SET notified=FALSE WHERE id=$1`, orderID)
	return err
}
