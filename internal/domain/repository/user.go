package repository

import (
	"context"
	"time"

	"github.com/polkiloo/webpot/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user model.User) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetStatus(ctx context.Context, email string, status model.UserStatus) error
	TouchLogin(ctx context.Context, id int64, at time.Time) error
	UpsertAdmin(ctx context.Context, name, email, passwordHash string) (*model.User, error)
}
