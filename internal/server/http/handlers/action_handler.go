package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/webpot/internal/domain/model"
	pkgAuth "github.com/polkiloo/webpot/internal/pkg/auth"
	"github.com/polkiloo/webpot/internal/server/http/dto"
	"github.com/polkiloo/webpot/internal/server/http/middleware"
)

const maxBodyBytes = 1 << 20

// actionCall carries the decoded request of a single action.
type actionCall struct {
	claims pkgAuth.Claims
	body   []byte
}

type action struct {
	fn       func(*ActionHandler, *gin.Context, actionCall)
	readOnly bool
}

var actions = map[string]action{
	"register":           {fn: (*ActionHandler).register},
	"login":              {fn: (*ActionHandler).login},
	"verify_login_otp":   {fn: (*ActionHandler).verifyLoginOTP},
	"request_reset":      {fn: (*ActionHandler).requestReset},
	"verify_reset":       {fn: (*ActionHandler).verifyReset},
	"admin_login":        {fn: (*ActionHandler).adminLogin},
	"order":              {fn: (*ActionHandler).order},
	"contact":            {fn: (*ActionHandler).contact},
	"update_payment":     {fn: (*ActionHandler).updatePayment},
	"submit_review":      {fn: (*ActionHandler).submitReview},
	"get_user_data":      {fn: (*ActionHandler).userData, readOnly: true},
	"get_public_reviews": {fn: (*ActionHandler).publicReviews, readOnly: true},
	"get_all_orders":     {fn: (*ActionHandler).allOrders, readOnly: true},
	"get_all_users":      {fn: (*ActionHandler).allUsers, readOnly: true},
	"get_all_reviews":    {fn: (*ActionHandler).allReviews, readOnly: true},
	"update_status":      {fn: (*ActionHandler).updateStatus},
	"ban_user":           {fn: (*ActionHandler).banUser},
	"approve_review":     {fn: (*ActionHandler).approveReview},
}

// ActionHandler serves the action-discriminated endpoint.
type ActionHandler struct {
	facade WebpotFacade
	policy Authorizer
	logger *slog.Logger
}

func NewActionHandler(facade WebpotFacade, policy Authorizer, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{facade: facade, policy: policy, logger: logger}
}

// Exec resolves the action from query or body, authorizes the caller and
// runs the action. Mutating actions require POST.
func (h *ActionHandler) Exec(c *gin.Context) {
	call := actionCall{claims: middleware.CurrentClaims(c)}

	var envelope dto.ActionEnvelope
	if c.Request.Method == http.MethodPost {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			badRequest(c, "unreadable body")
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &envelope); err != nil {
				badRequest(c, "invalid JSON body")
				return
			}
		}
		call.body = body
	}
	name := actionName(envelope, c)
	if name == "" {
		badRequest(c, "action is required")
		return
	}

	act, ok := actions[name]
	if !ok {
		badRequest(c, "unknown action "+name)
		return
	}
	c.Set(middleware.ActionContextKey, name)
	if c.Request.Method != http.MethodPost && !act.readOnly {
		c.JSON(http.StatusMethodNotAllowed, dto.Failure(dto.StatusError, name+" requires POST"))
		return
	}

	if !h.policy.Allowed(call.claims.Role, name) {
		if call.claims.Role == model.RoleAnonymous {
			c.JSON(http.StatusUnauthorized, dto.Failure(dto.StatusUnauthorized, "sign in to continue"))
			return
		}
		c.JSON(http.StatusForbidden, dto.Failure(dto.StatusForbidden, "not allowed"))
		return
	}

	act.fn(h, c, call)
}

func actionName(envelope dto.ActionEnvelope, c *gin.Context) string {
	name := envelope.Action
	if name == "" {
		name = envelope.FormType
	}
	if name == "" {
		name = c.Query("action")
	}
	if name == "" {
		name = c.Query("formType")
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// bind decodes the request body for POST and the query string otherwise.
func (h *ActionHandler) bind(c *gin.Context, call actionCall, dst any) bool {
	var err error
	if c.Request.Method == http.MethodPost {
		if len(call.body) == 0 {
			badRequest(c, "empty body")
			return false
		}
		err = json.Unmarshal(call.body, dst)
	} else {
		err = c.ShouldBindQuery(dst)
	}
	if err != nil {
		badRequest(c, "invalid request")
		return false
	}
	return true
}

// customer loads the caller and rejects banned accounts.
func (h *ActionHandler) customer(c *gin.Context, call actionCall) (*model.User, bool) {
	usr, err := h.facade.Customer(c.Request.Context(), call.claims.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return nil, false
	}
	return usr, true
}

// Health reports storage reachability.
func (h *ActionHandler) Health(c *gin.Context) {
	if err := h.facade.HealthCheck(c.Request.Context()); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, dto.Failure(dto.StatusError, "storage unavailable"))
		return
	}
	c.JSON(http.StatusOK, dto.Success(""))
}
