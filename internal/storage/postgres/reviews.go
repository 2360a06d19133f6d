package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
)

type reviewRepository struct {
	storage *Storage
}

type inquiryRepository struct {
	storage *Storage
}

const reviewColumns = `id, user_id, name, email, service, rating, comment, approved, created_at`

func (r *reviewRepository) Create(ctx context.Context, review model.Review) (*model.Review, error) {
	const query = `INSERT INTO reviews (user_id, name, email, service, rating, comment)
                   VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, approved, created_at`
	err := r.storage.pool.QueryRow(ctx, query, review.UserID, review.Name, review.Email, review.Service, review.Rating, review.Comment).
		Scan(&review.ID, &review.Approved, &review.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListApproved(ctx context.Context) ([]model.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE approved ORDER BY created_at DESC`)
}

func (r *reviewRepository) ListAll(ctx context.Context) ([]model.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC`)
}

func (r *reviewRepository) list(ctx context.Context, query string) ([]model.Review, error) {
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.Name, &rv.Email, &rv.Service, &rv.Rating, &rv.Comment, &rv.Approved, &rv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *reviewRepository) Approve(ctx context.Context, id int64) error {
	tag, err := r.storage.pool.Exec(ctx, `UPDATE reviews SET approved=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry model.Inquiry) (*model.Inquiry, error) {
	const query = `INSERT INTO inquiries (name, email, phone, message, status)
                   VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := r.storage.pool.QueryRow(ctx, query, inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.Message, inquiry.Status).
		Scan(&inquiry.ID, &inquiry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}
