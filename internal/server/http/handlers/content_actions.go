package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/webpot/internal/server/http/dto"
	"github.com/polkiloo/webpot/internal/usecase"
)

func (h *ActionHandler) contact(c *gin.Context, call actionCall) {
	var req dto.ContactRequest
	if !h.bind(c, call, &req) {
		return
	}
	err := h.facade.Contact(c.Request.Context(), usecase.InquiryInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success("message received"))
}

func (h *ActionHandler) submitReview(c *gin.Context, call actionCall) {
	var req dto.ReviewRequest
	if !h.bind(c, call, &req) {
		return
	}
	if _, ok := h.customer(c, call); !ok {
		return
	}
	userID := call.claims.UserID
	err := h.facade.SubmitReview(c.Request.Context(), usecase.ReviewInput{
		UserID:  &userID,
		Name:    req.Name,
		Email:   req.Email,
		Service: req.Service,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success("review submitted for approval"))
}

func (h *ActionHandler) publicReviews(c *gin.Context, _ actionCall) {
	reviews, err := h.facade.PublicReviews(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, dto.NewReviewResponse(r, false))
	}
	c.JSON(http.StatusOK, dto.ReviewsResponse{Response: dto.Success(""), Reviews: out})
}
