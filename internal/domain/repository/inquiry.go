package repository

import (
	"context"

	"github.com/polkiloo/webpot/internal/domain/model"
)

// InquiryRepository stores contact form submissions.
type InquiryRepository interface {
	Create(ctx context.Context, inquiry model.Inquiry) (*model.Inquiry, error)
}
