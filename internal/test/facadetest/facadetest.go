// Package facadetest holds a stub of the HTTP facade for handler and router tests.
package facadetest

import (
	"context"
	"time"

	"github.com/polkiloo/webpot/internal/domain/model"
	pkgAuth "github.com/polkiloo/webpot/internal/pkg/auth"
	"github.com/polkiloo/webpot/internal/usecase"
)

// WebpotFacadeStub provides controllable behaviour for action handlers.
// Unset functions fall back to successful defaults.
type WebpotFacadeStub struct {
	RegisterFn       func(context.Context, usecase.RegisterInput) (*model.User, string, error)
	LoginFn          func(context.Context, string, string) (*model.User, string, error)
	VerifyLoginOTPFn func(context.Context, string, string) (*model.User, string, error)
	RequestResetFn   func(context.Context, string) error
	ConfirmResetFn   func(context.Context, string, string, string) error
	AdminLoginFn     func(context.Context, string, string) (*model.User, string, error)
	ParseTokenFn     func(string) (pkgAuth.Claims, error)
	CustomerFn       func(context.Context, int64) (*model.User, error)

	PlaceOrderFn     func(context.Context, usecase.PlaceOrderInput) (*model.Order, bool, error)
	RecordPaymentFn  func(context.Context, string, string, string, int64) (*model.Order, error)
	CustomerOrdersFn func(context.Context, string) ([]model.Order, error)

	ContactFn       func(context.Context, usecase.InquiryInput) error
	SubmitReviewFn  func(context.Context, usecase.ReviewInput) error
	PublicReviewsFn func(context.Context) ([]model.Review, error)

	AllOrdersFn         func(context.Context) ([]model.Order, error)
	AllUsersFn          func(context.Context) ([]model.User, error)
	AllReviewsFn        func(context.Context) ([]model.Review, error)
	UpdateOrderStatusFn func(context.Context, string, model.OrderStatus) error
	BanUserFn           func(context.Context, string) error
	ApproveReviewFn     func(context.Context, int64) error

	HealthErr error
}

// DefaultUser is returned by auth defaults.
func DefaultUser() *model.User {
	return &model.User{
		ID:        1,
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Role:      model.RoleCustomer,
		Status:    model.UserStatusActive,
		CreatedAt: time.Unix(0, 0).UTC(),
	}
}

func (s *WebpotFacadeStub) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, in)
	}
	return DefaultUser(), "token", nil
}

func (s *WebpotFacadeStub) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, email, password)
	}
	return DefaultUser(), "token", nil
}

func (s *WebpotFacadeStub) VerifyLoginOTP(ctx context.Context, email, code string) (*model.User, string, error) {
	if s.VerifyLoginOTPFn != nil {
		return s.VerifyLoginOTPFn(ctx, email, code)
	}
	return DefaultUser(), "token", nil
}

func (s *WebpotFacadeStub) RequestReset(ctx context.Context, email string) error {
	if s.RequestResetFn != nil {
		return s.RequestResetFn(ctx, email)
	}
	return nil
}

func (s *WebpotFacadeStub) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	if s.ConfirmResetFn != nil {
		return s.ConfirmResetFn(ctx, email, code, newPassword)
	}
	return nil
}

func (s *WebpotFacadeStub) AdminLogin(ctx context.Context, email, password string) (*model.User, string, error) {
	if s.AdminLoginFn != nil {
		return s.AdminLoginFn(ctx, email, password)
	}
	admin := DefaultUser()
	admin.Role = model.RoleAdmin
	return admin, "admin-token", nil
}

func (s *WebpotFacadeStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseTokenFn != nil {
		return s.ParseTokenFn(token)
	}
	return pkgAuth.Claims{UserID: 1, Role: model.RoleCustomer}, nil
}

func (s *WebpotFacadeStub) Customer(ctx context.Context, userID int64) (*model.User, error) {
	if s.CustomerFn != nil {
		return s.CustomerFn(ctx, userID)
	}
	usr := DefaultUser()
	usr.ID = userID
	return usr, nil
}

func (s *WebpotFacadeStub) PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (*model.Order, bool, error) {
	if s.PlaceOrderFn != nil {
		return s.PlaceOrderFn(ctx, in)
	}
	return &model.Order{Reference: "ORD-1-ABCD", Email: in.Email}, true, nil
}

func (s *WebpotFacadeStub) RecordPayment(ctx context.Context, email, reference, transactionID string, amount int64) (*model.Order, error) {
	if s.RecordPaymentFn != nil {
		return s.RecordPaymentFn(ctx, email, reference, transactionID, amount)
	}
	return &model.Order{Reference: reference, Email: email, PaidAmount: amount, TransactionID: transactionID}, nil
}

func (s *WebpotFacadeStub) CustomerOrders(ctx context.Context, email string) ([]model.Order, error) {
	if s.CustomerOrdersFn != nil {
		return s.CustomerOrdersFn(ctx, email)
	}
	return nil, nil
}

func (s *WebpotFacadeStub) Contact(ctx context.Context, in usecase.InquiryInput) error {
	if s.ContactFn != nil {
		return s.ContactFn(ctx, in)
	}
	return nil
}

func (s *WebpotFacadeStub) SubmitReview(ctx context.Context, in usecase.ReviewInput) error {
	if s.SubmitReviewFn != nil {
		return s.SubmitReviewFn(ctx, in)
	}
	return nil
}

func (s *WebpotFacadeStub) PublicReviews(ctx context.Context) ([]model.Review, error) {
	if s.PublicReviewsFn != nil {
		return s.PublicReviewsFn(ctx)
	}
	return nil, nil
}

func (s *WebpotFacadeStub) AllOrders(ctx context.Context) ([]model.Order, error) {
	if s.AllOrdersFn != nil {
		return s.AllOrdersFn(ctx)
	}
	return nil, nil
}

func (s *WebpotFacadeStub) AllUsers(ctx context.Context) ([]model.User, error) {
	if s.AllUsersFn != nil {
		return s.AllUsersFn(ctx)
	}
	return nil, nil
}

func (s *WebpotFacadeStub) AllReviews(ctx context.Context) ([]model.Review, error) {
	if s.AllReviewsFn != nil {
		return s.AllReviewsFn(ctx)
	}
	return nil, nil
}

func (s *WebpotFacadeStub) UpdateOrderStatus(ctx context.Context, reference string, status model.OrderStatus) error {
	if s.UpdateOrderStatusFn != nil {
		return s.UpdateOrderStatusFn(ctx, reference, status)
	}
	return nil
}

func (s *WebpotFacadeStub) BanUser(ctx context.Context, email string) error {
	if s.BanUserFn != nil {
		return s.BanUserFn(ctx, email)
	}
	return nil
}

func (s *WebpotFacadeStub) ApproveReview(ctx context.Context, id int64) error {
	if s.ApproveReviewFn != nil {
		return s.ApproveReviewFn(ctx, id)
	}
	return nil
}

func (s *WebpotFacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}
