package postgres

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
)

type userRepository struct {
	storage *Storage
}

const userColumns = `id, name, email, password_hash, phone, role, status, created_at, last_login_at`

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.Status, &u.CreatedAt, &u.LastLoginAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user model.User) (*model.User, error) {
	const query = `INSERT INTO users (name, email, password_hash, phone, role, status)
                   VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.storage.pool.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.Phone, user.Role, user.Status).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	u, err := scanUser(r.storage.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	u, err := scanUser(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash=$1 WHERE id=$2`
	tag, err := r.storage.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) SetStatus(ctx context.Context, email string, status model.UserStatus) error {
	const query = `UPDATE users SET status=$1 WHERE email=$2`
	tag, err := r.storage.pool.Exec(ctx, query, status, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE users SET last_login_at=$1 WHERE id=$2`
	_, err := r.storage.pool.Exec(ctx, query, at, id)
	return err
}

func (r *userRepository) UpsertAdmin(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (name, email, password_hash, role, status)
                   VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (email) DO UPDATE
                   SET name = EXCLUDED.name,
                       password_hash = EXCLUDED.password_hash,
                       role = EXCLUDED.role,
                       status = EXCLUDED.status
                   RETURNING ` + userColumns
	return scanUser(r.storage.pool.QueryRow(ctx, query, name, email, passwordHash, model.RoleAdmin, model.UserStatusActive))
}
