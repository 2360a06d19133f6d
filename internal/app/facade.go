package app

import (
	"context"
	"fmt"

	"github.com/polkiloo/webpot/internal/adapter/notify"
	"github.com/polkiloo/webpot/internal/domain/model"
	pkgAuth "github.com/polkiloo/webpot/internal/pkg/auth"
	"github.com/polkiloo/webpot/internal/usecase"
)

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// WebpotFacade aggregates use cases behind the action handlers and the worker.
type WebpotFacade struct {
	auth      *usecase.AuthUseCase
	orders    *usecase.OrderUseCase
	reviews   *usecase.ReviewUseCase
	inquiries *usecase.InquiryUseCase
	notifier  notify.Notifier
	health    HealthChecker
}

func NewWebpotFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	reviews *usecase.ReviewUseCase,
	inquiries *usecase.InquiryUseCase,
	notifier notify.Notifier,
	health HealthChecker,
) *WebpotFacade {
	return &WebpotFacade{
		auth:      auth,
		orders:    orders,
		reviews:   reviews,
		inquiries: inquiries,
		notifier:  notifier,
		health:    health,
	}
}

func (f *WebpotFacade) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error) {
	return f.auth.Register(ctx, in)
}

func (f *WebpotFacade) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, email, password)
}

func (f *WebpotFacade) VerifyLoginOTP(ctx context.Context, email, code string) (*model.User, string, error) {
	return f.auth.VerifyLoginOTP(ctx, email, code)
}

func (f *WebpotFacade) RequestReset(ctx context.Context, email string) error {
	return f.auth.RequestReset(ctx, email)
}

func (f *WebpotFacade) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	return f.auth.ConfirmReset(ctx, email, code, newPassword)
}

func (f *WebpotFacade) AdminLogin(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.auth.AdminLogin(ctx, email, password)
}

func (f *WebpotFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

func (f *WebpotFacade) Customer(ctx context.Context, userID int64) (*model.User, error) {
	return f.auth.Customer(ctx, userID)
}

func (f *WebpotFacade) EnsureAdmin(ctx context.Context, email, password string) (*model.User, error) {
	return f.auth.EnsureAdmin(ctx, "", email, password)
}

func (f *WebpotFacade) PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (*model.Order, bool, error) {
	return f.orders.Place(ctx, in)
}

func (f *WebpotFacade) RecordPayment(ctx context.Context, email, reference, transactionID string, amount int64) (*model.Order, error) {
	return f.orders.RecordPayment(ctx, email, reference, transactionID, amount)
}

func (f *WebpotFacade) CustomerOrders(ctx context.Context, email string) ([]model.Order, error) {
	return f.orders.ListByEmail(ctx, email)
}

func (f *WebpotFacade) Contact(ctx context.Context, in usecase.InquiryInput) error {
	_, err := f.inquiries.Submit(ctx, in)
	return err
}

func (f *WebpotFacade) SubmitReview(ctx context.Context, in usecase.ReviewInput) error {
	_, err := f.reviews.Submit(ctx, in)
	return err
}

func (f *WebpotFacade) PublicReviews(ctx context.Context) ([]model.Review, error) {
	return f.reviews.Public(ctx)
}

func (f *WebpotFacade) AllOrders(ctx context.Context) ([]model.Order, error) {
	return f.orders.ListAll(ctx)
}

func (f *WebpotFacade) AllUsers(ctx context.Context) ([]model.User, error) {
	return f.auth.ListUsers(ctx)
}

func (f *WebpotFacade) AllReviews(ctx context.Context) ([]model.Review, error) {
	return f.reviews.All(ctx)
}

func (f *WebpotFacade) UpdateOrderStatus(ctx context.Context, reference string, status model.OrderStatus) error {
	return f.orders.UpdateStatus(ctx, reference, status)
}

func (f *WebpotFacade) BanUser(ctx context.Context, email string) error {
	return f.auth.Ban(ctx, email)
}

func (f *WebpotFacade) ApproveReview(ctx context.Context, id int64) error {
	return f.reviews.Approve(ctx, id)
}

func (f *WebpotFacade) HealthCheck(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}

func (f *WebpotFacade) ClaimApprovalNotices(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.ClaimNotifications(ctx, limit)
}

func (f *WebpotFacade) ReleaseApprovalNotice(ctx context.Context, orderID int64) error {
	return f.orders.ReleaseNotification(ctx, orderID)
}

// SendApprovalNotice tells the customer that work on the order has started.
func (f *WebpotFacade) SendApprovalNotice(ctx context.Context, order model.Order) error {
	return f.notifier.Notify(ctx, notify.Recipient{Email: order.Email, Phone: order.Phone}, ApprovalMessage(order))
}

// ApprovalMessage renders the notice sent once an order becomes Active.
func ApprovalMessage(order model.Order) string {
	msg := fmt.Sprintf("Hi %s, your Webpot %s order %s is approved and work has started.", order.Name, order.Service, order.Reference)
	if due := order.Due(); due > 0 {
		msg += fmt.Sprintf(" Balance due: Rs %d.", due)
	}
	return msg
}
