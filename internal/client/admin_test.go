package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

// consoleBackend keeps a tiny user table so ban effects are visible on reload.
func consoleBackend(users map[string]string) responder {
	return func(call backendCall) (any, error) {
		if call.Action != "admin_login" && call.Token != "admin-token" {
			return nil, &StatusError{Status: dto.StatusUnauthorized}
		}
		switch call.Action {
		case "admin_login":
			return dto.AuthResponse{Response: dto.Success("login successful"), Token: "admin-token"}, nil
		case "get_all_users":
			resp := dto.UsersResponse{Response: dto.Success("")}
			for _, email := range []string{"alice@example.com", "bob@example.com"} {
				resp.Users = append(resp.Users, dto.UserResponse{Email: email, Role: "customer", Status: users[email]})
			}
			return resp, nil
		case "ban_user":
			users[call.Payload["email"].(string)] = "banned"
			return dto.Success("user banned"), nil
		case "get_all_orders":
			return dto.OrdersResponse{Response: dto.Success(""), Orders: []dto.OrderResponse{
				{OrderID: "ORD-1", Status: "Active", TotalAmount: 5999, PaidAmount: 3000},
				{OrderID: "ORD-2", Status: "Pending", TotalAmount: 2999, PaidAmount: 0},
				{OrderID: "ORD-3", Status: "Completed", TotalAmount: 9999, PaidAmount: 9999},
			}}, nil
		case "get_all_reviews":
			return dto.ReviewsResponse{Response: dto.Success(""), Reviews: []dto.ReviewResponse{{ID: 4, Rating: 5}}}, nil
		default:
			return dto.Success("ok"), nil
		}
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	env := newTestEnv(t, consoleBackend(map[string]string{}))

	_, err := env.app.Admin.ListOrders(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Empty(t, env.backend.Calls())
	assert.False(t, env.app.Admin.LoggedIn())
}

func TestAdminBanScenario(t *testing.T) {
	users := map[string]string{"alice@example.com": "active", "bob@example.com": "active"}
	env := newTestEnv(t, consoleBackend(users))
	ctx := context.Background()

	require.NoError(t, env.app.Admin.Login(ctx, "admin@webpot.in", "secret"))
	assert.Equal(t, "admin-token", env.app.Sessions.AdminToken())

	rows, err := env.app.Admin.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[1].CanBan)

	require.NoError(t, env.app.Admin.BanUser(ctx, "bob@example.com"))

	rows, err = env.app.Admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Active", rows[0].Label)
	assert.True(t, rows[0].CanBan)
	assert.Equal(t, "Banned", rows[1].Label)
	assert.False(t, rows[1].CanBan)
}

func TestAdminOrdersAndStats(t *testing.T) {
	env := newTestEnv(t, consoleBackend(map[string]string{}))
	ctx := context.Background()
	require.NoError(t, env.app.Sessions.SetAdminToken("admin-token"))

	orders, err := env.app.Admin.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.False(t, orders[0].CanApprove)
	assert.True(t, orders[1].CanApprove)
	assert.True(t, orders[2].CanApprove)

	stats := env.app.Admin.Stats(orders)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, "12999", stats.Revenue.String())

	require.NoError(t, env.app.Admin.Approve(ctx, "ORD-2"))
	calls := env.backend.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "update_status", last.Action)
	assert.Equal(t, "ORD-2", last.Payload["orderId"])
	assert.Equal(t, string(model.OrderStatusActive), last.Payload["status"])

	before := len(env.backend.Calls())
	err = env.app.Admin.UpdateOrderStatus(ctx, "ORD-2", "Shipped")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, env.backend.Calls(), before)
}

func TestAdminReviews(t *testing.T) {
	env := newTestEnv(t, consoleBackend(map[string]string{}))
	ctx := context.Background()
	require.NoError(t, env.app.Sessions.SetAdminToken("admin-token"))

	reviews, err := env.app.Admin.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	require.NoError(t, env.app.Admin.ApproveReview(ctx, reviews[0].ID))
	calls := env.backend.Calls()
	assert.Equal(t, "approve_review", calls[len(calls)-1].Action)
	assert.Equal(t, float64(4), calls[len(calls)-1].Payload["reviewId"])

	var verr *ValidationError
	require.ErrorAs(t, env.app.Admin.ApproveReview(ctx, 0), &verr)
}

func TestAdminRejectedTokenIsDropped(t *testing.T) {
	env := newTestEnv(t, consoleBackend(map[string]string{}))
	require.NoError(t, env.app.Sessions.SetAdminToken("stale"))

	_, err := env.app.Admin.ListUsers(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.False(t, env.app.Admin.LoggedIn())
}
