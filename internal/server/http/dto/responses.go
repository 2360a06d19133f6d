package dto

import (
	"time"

	"github.com/polkiloo/webpot/internal/domain/model"
)

type UserResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type OrderResponse struct {
	OrderID       string    `json:"orderId"`
	Date          time.Time `json:"date"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Service       string    `json:"service"`
	Details       string    `json:"details,omitempty"`
	TotalAmount   int64     `json:"totalAmount"`
	PaidAmount    int64     `json:"paidAmount"`
	DueAmount     int64     `json:"dueAmount"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId,omitempty"`
}

type ReviewResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Service   string    `json:"service"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse answers register, login and OTP verification.
type AuthResponse struct {
	Response
	User  *UserResponse `json:"user,omitempty"`
	Token string        `json:"token,omitempty"`
	Email string        `json:"email,omitempty"`
}

type OrderPlacedResponse struct {
	Response
	OrderID string `json:"orderId"`
}

type PaymentResponse struct {
	Response
	Order OrderResponse `json:"order"`
}

// UserDataResponse feeds the customer dashboard. ServiceType and CurrentStatus
// describe the most recent order.
type UserDataResponse struct {
	Response
	Orders        []OrderResponse `json:"orders"`
	ServiceType   string          `json:"serviceType,omitempty"`
	CurrentStatus string          `json:"currentStatus,omitempty"`
}

type OrdersResponse struct {
	Response
	Orders []OrderResponse `json:"orders"`
}

type UsersResponse struct {
	Response
	Users []UserResponse `json:"users"`
}

type ReviewsResponse struct {
	Response
	Reviews []ReviewResponse `json:"reviews"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLoginAt,
	}
}

func NewOrderResponse(o model.Order) OrderResponse {
	return OrderResponse{
		OrderID:       o.Reference,
		Date:          o.CreatedAt,
		Name:          o.Name,
		Email:         o.Email,
		Phone:         o.Phone,
		Service:       string(o.Service),
		Details:       o.Details,
		TotalAmount:   o.TotalAmount,
		PaidAmount:    o.PaidAmount,
		DueAmount:     o.Due(),
		Status:        string(o.Status),
		TransactionID: o.TransactionID,
	}
}

// NewReviewResponse hides reviewer email unless includeEmail is set.
func NewReviewResponse(r model.Review, includeEmail bool) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		Name:      r.Name,
		Service:   r.Service,
		Rating:    r.Rating,
		Comment:   r.Comment,
		Approved:  r.Approved,
		CreatedAt: r.CreatedAt,
	}
	if includeEmail {
		resp.Email = r.Email
	}
	return resp
}
