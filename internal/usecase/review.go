package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/domain/repository"
)

// ReviewUseCase handles customer feedback.
type ReviewUseCase struct {
	reviews repository.ReviewRepository
}

// ReviewInput carries review form fields.
type ReviewInput struct {
	UserID  *int64
	Name    string
	Email   string
	Service string
	Rating  int
	Comment string
}

// NewReviewUseCase constructs ReviewUseCase.
func NewReviewUseCase(reviews repository.ReviewRepository) *ReviewUseCase {
	return &ReviewUseCase{reviews: reviews}
}

// Submit stores review pending approval.
func (u *ReviewUseCase) Submit(ctx context.Context, in ReviewInput) (*model.Review, error) {
	if !model.ValidRating(in.Rating) {
		return nil, domainErrors.ErrInvalidRating
	}
	review := model.Review{
		UserID:  in.UserID,
		Name:    strings.TrimSpace(in.Name),
		Email:   model.NormalizeEmail(in.Email),
		Service: strings.TrimSpace(in.Service),
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
	}
	if review.Name == "" || review.Email == "" || review.Comment == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.reviews.Create(ctx, review)
}

// Public lists approved reviews.
func (u *ReviewUseCase) Public(ctx context.Context) ([]model.Review, error) {
	return u.reviews.ListApproved(ctx)
}

// All lists every review for moderation.
func (u *ReviewUseCase) All(ctx context.Context) ([]model.Review, error) {
	return u.reviews.ListAll(ctx)
}

// Approve publishes review.
func (u *ReviewUseCase) Approve(ctx context.Context, id int64) error {
	if id <= 0 {
		return domainErrors.ErrInvalidInput
	}
	return u.reviews.Approve(ctx, id)
}

// InquiryUseCase records contact form messages.
type InquiryUseCase struct {
	inquiries repository.InquiryRepository
}

// InquiryInput carries contact form fields.
type InquiryInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// NewInquiryUseCase constructs InquiryUseCase.
func NewInquiryUseCase(inquiries repository.InquiryRepository) *InquiryUseCase {
	return &InquiryUseCase{inquiries: inquiries}
}

// Submit stores inquiry as new.
func (u *InquiryUseCase) Submit(ctx context.Context, in InquiryInput) (*model.Inquiry, error) {
	inquiry := model.Inquiry{
		Name:    strings.TrimSpace(in.Name),
		Email:   model.NormalizeEmail(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Message: strings.TrimSpace(in.Message),
		Status:  model.InquiryStatusNew,
	}
	if inquiry.Name == "" || inquiry.Email == "" || inquiry.Message == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.inquiries.Create(ctx, inquiry)
}
