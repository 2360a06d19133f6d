package model

import "time"

// OrderStatus describes order lifecycle as shown to customers and operators.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusActive    OrderStatus = "Active"
	OrderStatusPartial   OrderStatus = "Partial"
	OrderStatusCompleted OrderStatus = "Completed"
)

// Valid reports whether status is one of the known values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusActive, OrderStatusPartial, OrderStatusCompleted:
		return true
	}
	return false
}

// Order describes a service purchase. Amounts are whole rupees.
type Order struct {
	ID             int64
	Reference      string
	IdempotencyKey string
	UserID         *int64
	Name           string
	Email          string
	Phone          string
	Service        Tier
	Details        string
	TotalAmount    int64
	PaidAmount     int64
	Status         OrderStatus
	TransactionID  string
	Notified       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Due returns outstanding balance clamped to zero.
func (o Order) Due() int64 {
	return ClampDue(o.TotalAmount - o.PaidAmount)
}

// ClampDue never lets overpayment render as negative balance.
func ClampDue(due int64) int64 {
	if due < 0 {
		return 0
	}
	return due
}

// DeriveStatus computes display status from amounts only.
func DeriveStatus(total, paid int64) OrderStatus {
	switch {
	case total-paid <= 0:
		return OrderStatusCompleted
	case paid > 0:
		return OrderStatusPartial
	default:
		return OrderStatusPending
	}
}

// StatusAfterPayment decides stored status once a payment was applied.
// Approved orders stay Active until settled in full.
func StatusAfterPayment(current OrderStatus, total, paid int64) OrderStatus {
	derived := DeriveStatus(total, paid)
	if derived != OrderStatusCompleted && current == OrderStatusActive {
		return OrderStatusActive
	}
	return derived
}

// Payment records a single transaction reference applied to an order.
type Payment struct {
	ID            int64
	OrderID       int64
	TransactionID string
	Amount        int64
	CreatedAt     time.Time
}
