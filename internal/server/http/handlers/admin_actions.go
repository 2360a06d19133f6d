package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

func (h *ActionHandler) allOrders(c *gin.Context, _ actionCall) {
	orders, err := h.facade.AllOrders(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrdersResponse{Response: dto.Success(""), Orders: orderResponses(orders)})
}

func (h *ActionHandler) allUsers(c *gin.Context, _ actionCall) {
	users, err := h.facade.AllUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserResponse(u))
	}
	c.JSON(http.StatusOK, dto.UsersResponse{Response: dto.Success(""), Users: out})
}

func (h *ActionHandler) allReviews(c *gin.Context, _ actionCall) {
	reviews, err := h.facade.AllReviews(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, dto.NewReviewResponse(r, true))
	}
	c.JSON(http.StatusOK, dto.ReviewsResponse{Response: dto.Success(""), Reviews: out})
}

func (h *ActionHandler) updateStatus(c *gin.Context, call actionCall) {
	var req dto.UpdateStatusRequest
	if !h.bind(c, call, &req) {
		return
	}
	status := model.OrderStatus(strings.TrimSpace(req.Status))
	if err := h.facade.UpdateOrderStatus(c.Request.Context(), req.OrderID, status); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success("status updated"))
}

func (h *ActionHandler) banUser(c *gin.Context, call actionCall) {
	var req dto.BanUserRequest
	if !h.bind(c, call, &req) {
		return
	}
	if err := h.facade.BanUser(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success("user banned"))
}

func (h *ActionHandler) approveReview(c *gin.Context, call actionCall) {
	var req dto.ApproveReviewRequest
	if !h.bind(c, call, &req) {
		return
	}
	if err := h.facade.ApproveReview(c.Request.Context(), req.ReviewID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success("review approved"))
}
