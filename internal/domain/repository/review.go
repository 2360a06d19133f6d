package repository

import (
	"context"

	"github.com/polkiloo/webpot/internal/domain/model"
)

// ReviewRepository stores customer reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review model.Review) (*model.Review, error)
	ListApproved(ctx context.Context) ([]model.Review, error)
	ListAll(ctx context.Context) ([]model.Review, error)
	Approve(ctx context.Context, id int64) error
}
