package handlers

import (
	"context"

	"github.com/polkiloo/webpot/internal/domain/model"
	pkgAuth "github.com/polkiloo/webpot/internal/pkg/auth"
	"github.com/polkiloo/webpot/internal/usecase"
)

// AuthFacade covers account actions.
type AuthFacade interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	VerifyLoginOTP(ctx context.Context, email, code string) (*model.User, string, error)
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, email, code, newPassword string) error
	AdminLogin(ctx context.Context, email, password string) (*model.User, string, error)
	ParseToken(token string) (pkgAuth.Claims, error)
	Customer(ctx context.Context, userID int64) (*model.User, error)
}

// OrderFacade covers order placement and payments.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (*model.Order, bool, error)
	RecordPayment(ctx context.Context, email, reference, transactionID string, amount int64) (*model.Order, error)
	CustomerOrders(ctx context.Context, email string) ([]model.Order, error)
}

// ContentFacade covers contact form and reviews.
type ContentFacade interface {
	Contact(ctx context.Context, in usecase.InquiryInput) error
	SubmitReview(ctx context.Context, in usecase.ReviewInput) error
	PublicReviews(ctx context.Context) ([]model.Review, error)
}

// AdminFacade covers console actions.
type AdminFacade interface {
	AllOrders(ctx context.Context) ([]model.Order, error)
	AllUsers(ctx context.Context) ([]model.User, error)
	AllReviews(ctx context.Context) ([]model.Review, error)
	UpdateOrderStatus(ctx context.Context, reference string, status model.OrderStatus) error
	BanUser(ctx context.Context, email string) error
	ApproveReview(ctx context.Context, id int64) error
}

// WebpotFacade combines everything the action handler needs.
type WebpotFacade interface {
	AuthFacade
	OrderFacade
	ContentFacade
	AdminFacade
	HealthCheck(ctx context.Context) error
}

// Authorizer decides whether a role may invoke an action.
type Authorizer interface {
	Allowed(role model.UserRole, action string) bool
}
