package client

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

// OrderRow is an order line in the console.
type OrderRow struct {
	dto.OrderResponse
	CanApprove bool
}

// UserRow is an account line in the console.
type UserRow struct {
	dto.UserResponse
	Label  string
	CanBan bool
}

// Stats summarizes orders for the console header.
type Stats struct {
	Total   int
	Active  int
	Pending int
	Revenue decimal.Decimal
}

// Admin is the operator console.
type Admin struct {
	app   *App
	guard Guard
}

type adminLoginPayload struct {
	Action string `json:"action"`
	dto.LoginRequest
}

type updateStatusPayload struct {
	Action string `json:"action"`
	dto.UpdateStatusRequest
}

type banUserPayload struct {
	Action string `json:"action"`
	dto.BanUserRequest
}

type approveReviewPayload struct {
	Action string `json:"action"`
	dto.ApproveReviewRequest
}

// Login authenticates the operator and stores the console token.
func (a *Admin) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := requireFields("email", email, "password", password); err != nil {
		return err
	}

	release, err := a.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	var resp dto.AuthResponse
	err = a.app.backend.Post(ctx, "", adminLoginPayload{
		Action:       "admin_login",
		LoginRequest: dto.LoginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return &StatusError{Status: dto.StatusError, Message: "console login returned no token"}
	}
	return a.app.Sessions.SetAdminToken(resp.Token)
}

// Logout forgets the console token.
func (a *Admin) Logout() error {
	return a.app.Sessions.SetAdminToken("")
}

// LoggedIn reports whether a console token is stored.
func (a *Admin) LoggedIn() bool {
	return a.app.Sessions.AdminToken() != ""
}

// ListOrders returns every order. Rows offer approval unless already active.
func (a *Admin) ListOrders(ctx context.Context) ([]OrderRow, error) {
	var resp dto.OrdersResponse
	if err := a.get(ctx, "get_all_orders", &resp); err != nil {
		return nil, err
	}
	rows := make([]OrderRow, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		rows = append(rows, OrderRow{
			OrderResponse: o,
			CanApprove:    model.OrderStatus(o.Status) != model.OrderStatusActive,
		})
	}
	return rows, nil
}

// UpdateOrderStatus sets an order status.
func (a *Admin) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	if !status.Valid() {
		return &ValidationError{Fields: []string{"status"}, Reason: "unknown status " + string(status)}
	}
	if err := requireFields("orderId", orderID); err != nil {
		return err
	}
	return a.post(ctx, updateStatusPayload{
		Action:              "update_status",
		UpdateStatusRequest: dto.UpdateStatusRequest{OrderID: strings.TrimSpace(orderID), Status: string(status)},
	})
}

// Approve activates an order.
func (a *Admin) Approve(ctx context.Context, orderID string) error {
	return a.UpdateOrderStatus(ctx, orderID, model.OrderStatusActive)
}

// ListUsers returns every account. Banned users get no ban action.
func (a *Admin) ListUsers(ctx context.Context) ([]UserRow, error) {
	var resp dto.UsersResponse
	if err := a.get(ctx, "get_all_users", &resp); err != nil {
		return nil, err
	}
	rows := make([]UserRow, 0, len(resp.Users))
	for _, u := range resp.Users {
		banned := model.UserStatus(u.Status) == model.UserStatusBanned
		row := UserRow{UserResponse: u, Label: "Active"}
		if banned {
			row.Label = "Banned"
		}
		row.CanBan = !banned && model.UserRole(u.Role) != model.RoleAdmin
		rows = append(rows, row)
	}
	return rows, nil
}

// BanUser blocks an account.
func (a *Admin) BanUser(ctx context.Context, email string) error {
	if err := requireFields("email", email); err != nil {
		return err
	}
	return a.post(ctx, banUserPayload{
		Action:         "ban_user",
		BanUserRequest: dto.BanUserRequest{Email: strings.TrimSpace(email)},
	})
}

// ListReviews returns every review including pending ones.
func (a *Admin) ListReviews(ctx context.Context) ([]dto.ReviewResponse, error) {
	var resp dto.ReviewsResponse
	if err := a.get(ctx, "get_all_reviews", &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

// ApproveReview publishes a review.
func (a *Admin) ApproveReview(ctx context.Context, reviewID int64) error {
	if reviewID <= 0 {
		return &ValidationError{Fields: []string{"reviewId"}}
	}
	return a.post(ctx, approveReviewPayload{
		Action:               "approve_review",
		ApproveReviewRequest: dto.ApproveReviewRequest{ReviewID: reviewID},
	})
}

// Stats counts orders by status and sums payments received.
func (a *Admin) Stats(orders []OrderRow) Stats {
	s := Stats{Total: len(orders), Revenue: decimal.Zero}
	for _, o := range orders {
		switch model.OrderStatus(o.Status) {
		case model.OrderStatusActive:
			s.Active++
		case model.OrderStatusPending:
			s.Pending++
		}
		s.Revenue = s.Revenue.Add(decimal.NewFromInt(o.PaidAmount))
	}
	return s
}

func (a *Admin) token() (string, error) {
	token := a.app.Sessions.AdminToken()
	if token == "" {
		return "", ErrLoginRequired
	}
	return token, nil
}

func (a *Admin) get(ctx context.Context, action string, out any) error {
	token, err := a.token()
	if err != nil {
		return err
	}
	query := url.Values{}
	query.Set("action", action)
	return a.expired(a.app.backend.Get(ctx, token, query, out))
}

func (a *Admin) post(ctx context.Context, payload any) error {
	token, err := a.token()
	if err != nil {
		return err
	}
	release, err := a.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()
	return a.expired(a.app.backend.Post(ctx, token, payload, nil))
}

// expired drops a console token the backend no longer accepts.
func (a *Admin) expired(err error) error {
	if !IsStatus(err, dto.StatusUnauthorized) {
		return err
	}
	if cerr := a.Logout(); cerr != nil {
		a.app.logger.Warn("failed to drop console token", slog.Any("error", cerr))
	}
	return ErrLoginRequired
}
