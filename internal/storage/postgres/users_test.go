package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
)

func TestUserRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &userRepository{storage: storage}

	user := model.User{Name: "Jane", Email: "jane@example.com", PasswordHash: "hash", Role: model.RoleCustomer, Status: model.UserStatusActive}
	createdAt := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Jane", "jane@example.com", "hash", "", model.RoleCustomer, model.UserStatusActive).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt))
	created, err := repo.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 || created.Email != "jane@example.com" || !created.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected user: %+v", created)
	}

	args := []any{"Jane", "jane@example.com", "hash", "", model.RoleCustomer, model.UserStatusActive}
	mock.ExpectQuery("INSERT INTO users").WithArgs(args...).WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(context.Background(), user); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists error, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO users").WithArgs(args...).WillReturnError(errors.New("other"))
	if _, err := repo.Create(context.Background(), user); err == nil || errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUserRepositoryLookups(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &userRepository{storage: storage}
	ctx := context.Background()

	mock.ExpectQuery("FROM users WHERE email=").WithArgs("jane@example.com").
		WillReturnRows(addUserRow(pgxmockv3.NewRows(userColumnNames), 1, "jane@example.com", model.RoleCustomer, model.UserStatusBanned))
	user, err := repo.GetByEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.Banned() || user.LastLoginAt != nil {
		t.Fatalf("unexpected user: %+v", user)
	}

	mock.ExpectQuery("FROM users WHERE email=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByEmail(ctx, "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM users WHERE id=").WithArgs(int64(1)).
		WillReturnRows(addUserRow(pgxmockv3.NewRows(userColumnNames), 1, "a@b.c", model.RoleAdmin, model.UserStatusActive))
	user, err = repo.GetByID(ctx, 1)
	if err != nil || user.Role != model.RoleAdmin {
		t.Fatalf("unexpected user %+v err=%v", user, err)
	}

	mock.ExpectQuery("FROM users WHERE id=").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(ctx, 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM users WHERE id=").WithArgs(int64(3)).WillReturnError(errors.New("boom"))
	if _, err := repo.GetByID(ctx, 3); err == nil {
		t.Fatal("expected error")
	}

	rows := pgxmockv3.NewRows(userColumnNames)
	addUserRow(rows, 1, "a@b.c", model.RoleCustomer, model.UserStatusActive)
	addUserRow(rows, 2, "c@d.e", model.RoleCustomer, model.UserStatusBanned)
	mock.ExpectQuery("FROM users ORDER BY created_at DESC").WillReturnRows(rows)
	users, err := repo.List(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("unexpected users %v err=%v", users, err)
	}

	mock.ExpectQuery("FROM users ORDER BY created_at DESC").WillReturnError(errors.New("query"))
	if _, err := repo.List(ctx); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUserRepositoryUpdates(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &userRepository{storage: storage}
	ctx := context.Background()

	mock.ExpectExec("UPDATE users SET password_hash=").WithArgs("new", int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdatePassword(ctx, 1, "new"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("UPDATE users SET password_hash=").WithArgs("new", int64(9)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdatePassword(ctx, 9, "new"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE users SET status=").WithArgs(model.UserStatusBanned, "a@b.c").WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.SetStatus(ctx, "a@b.c", model.UserStatusBanned); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("UPDATE users SET status=").WithArgs(model.UserStatusBanned, "none").WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.SetStatus(ctx, "none", model.UserStatusBanned); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	mock.ExpectExec("UPDATE users SET status=").WithArgs(model.UserStatusBanned, "x").WillReturnError(errors.New("db"))
	if err := repo.SetStatus(ctx, "x", model.UserStatusBanned); err == nil {
		t.Fatal("expected error")
	}

	at := time.Now()
	mock.ExpectExec("UPDATE users SET last_login_at=").WithArgs(at, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.TouchLogin(ctx, 1, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("INSERT INTO users").WithArgs("Admin", "admin@webpot.in", "hash", model.RoleAdmin, model.UserStatusActive).
		WillReturnRows(addUserRow(pgxmockv3.NewRows(userColumnNames), 5, "admin@webpot.in", model.RoleAdmin, model.UserStatusActive))
	admin, err := repo.UpsertAdmin(ctx, "Admin", "admin@webpot.in", "hash")
	if err != nil || admin.ID != 5 || admin.Role != model.RoleAdmin {
		t.Fatalf("unexpected admin %+v err=%v", admin, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
