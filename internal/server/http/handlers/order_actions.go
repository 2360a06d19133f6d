package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/server/http/dto"
	"github.com/polkiloo/webpot/internal/usecase"
)

func (h *ActionHandler) order(c *gin.Context, call actionCall) {
	var req dto.OrderRequest
	if !h.bind(c, call, &req) {
		return
	}

	in := usecase.PlaceOrderInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Service:        req.Service,
		Details:        req.Details,
		Amount:         int64(req.Amount),
		TransactionID:  req.TransactionID,
		IdempotencyKey: req.IdempotencyKey,
	}
	if call.claims.Role == model.RoleCustomer {
		if _, ok := h.customer(c, call); !ok {
			return
		}
		userID := call.claims.UserID
		in.UserID = &userID
	}

	order, created, err := h.facade.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	message := "order placed"
	if !created {
		message = "order already recorded"
	}
	c.JSON(http.StatusOK, dto.OrderPlacedResponse{Response: dto.Success(message), OrderID: order.Reference})
}

func (h *ActionHandler) updatePayment(c *gin.Context, call actionCall) {
	var req dto.UpdatePaymentRequest
	if !h.bind(c, call, &req) {
		return
	}
	usr, ok := h.customer(c, call)
	if !ok {
		return
	}
	if req.Email != "" && !strings.EqualFold(model.NormalizeEmail(req.Email), usr.Email) {
		writeError(c, h.logger, domainErrors.ErrForbidden)
		return
	}

	order, err := h.facade.RecordPayment(c.Request.Context(), usr.Email, req.OrderID, req.TransactionID, int64(req.Amount))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentResponse{Response: dto.Success("payment recorded"), Order: dto.NewOrderResponse(*order)})
}

// userData returns caller orders newest first. ServiceType and CurrentStatus
// describe the latest order.
func (h *ActionHandler) userData(c *gin.Context, call actionCall) {
	var req dto.UserDataRequest
	if len(call.body) > 0 || c.Request.Method != http.MethodPost {
		if !h.bind(c, call, &req) {
			return
		}
	}
	usr, ok := h.customer(c, call)
	if !ok {
		return
	}
	if req.Email != "" && !strings.EqualFold(model.NormalizeEmail(req.Email), usr.Email) {
		writeError(c, h.logger, domainErrors.ErrForbidden)
		return
	}

	orders, err := h.facade.CustomerOrders(c.Request.Context(), usr.Email)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	resp := dto.UserDataResponse{Response: dto.Success(""), Orders: orderResponses(orders)}
	if len(orders) > 0 {
		resp.ServiceType = string(orders[0].Service)
		resp.CurrentStatus = string(orders[0].Status)
	}
	c.JSON(http.StatusOK, resp)
}

func orderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.NewOrderResponse(o))
	}
	return out
}
