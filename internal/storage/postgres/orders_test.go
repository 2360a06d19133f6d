package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
)

func newOrder(transactionID string, paid int64) model.Order {
	userID := int64(7)
	return model.Order{
		Reference:      "ORD-1",
		IdempotencyKey: "key-ORD-1",
		UserID:         &userID,
		Name:           "Jane",
		Email:          "jane@example.com",
		Phone:          "9800000000",
		Service:        model.TierBasic,
		Details:        "landing page",
		TotalAmount:    5999,
		PaidAmount:     paid,
		Status:         model.DeriveStatus(5999, paid),
		TransactionID:  transactionID,
	}
}

// insertArgs lists the values Create binds into the orders insert.
func insertArgs(o model.Order) []any {
	return []any{
		o.Reference, o.IdempotencyKey, o.UserID, o.Name, o.Email, o.Phone, o.Service, o.Details,
		o.TotalAmount, o.PaidAmount, o.Status, o.TransactionID,
	}
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()

	t.Run("paid order writes payment", func(t *testing.T) {
		in := newOrder("UTR1", 3000)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs(in)...).
			WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), fixedTime(), fixedTime()))
		mock.ExpectExec("INSERT INTO payments").WithArgs(int64(10), "UTR1", int64(3000)).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
		mock.ExpectCommit()

		order, created, err := repo.Create(ctx, in)
		if err != nil || !created || order.ID != 10 || order.Status != model.OrderStatusPartial {
			t.Fatalf("unexpected result: order=%+v created=%v err=%v", order, created, err)
		}
	})

	t.Run("pay later skips payment", func(t *testing.T) {
		in := newOrder("", 0)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs(in)...).
			WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), fixedTime(), fixedTime()))
		mock.ExpectCommit()

		order, created, err := repo.Create(ctx, in)
		if err != nil || !created || order.Status != model.OrderStatusPending {
			t.Fatalf("unexpected result: order=%+v created=%v err=%v", order, created, err)
		}
	})

	t.Run("replayed idempotency key", func(t *testing.T) {
		in := newOrder("UTR1", 3000)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs(in)...).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("FROM orders WHERE idempotency_key=").WithArgs("key-ORD-1").
			WillReturnRows(addOrderRow(orderRows(), 10, "ORD-0", model.OrderStatusPartial, 5999, 3000))
		mock.ExpectCommit()

		order, created, err := repo.Create(ctx, in)
		if err != nil || created || order.Reference != "ORD-0" {
			t.Fatalf("unexpected result: order=%+v created=%v err=%v", order, created, err)
		}
	})

	t.Run("reference collision", func(t *testing.T) {
		in := newOrder("", 0)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs(in)...).WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		if _, _, err := repo.Create(ctx, in); !errors.Is(err, domainErrors.ErrAlreadyExists) {
			t.Fatalf("expected already exists, got %v", err)
		}
	})

	t.Run("payment failure rolls back", func(t *testing.T) {
		in := newOrder("UTR2", 3000)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs(in)...).
			WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(12), fixedTime(), fixedTime()))
		mock.ExpectExec("INSERT INTO payments").WithArgs(int64(12), "UTR2", int64(3000)).WillReturnError(errors.New("payments"))
		mock.ExpectRollback()

		if _, _, err := repo.Create(ctx, in); err == nil {
			t.Fatal("expected error")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetAndList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()

	mock.ExpectQuery("FROM orders WHERE reference=").WithArgs("ORD-1").
		WillReturnRows(addOrderRow(orderRows(), 1, "ORD-1", model.OrderStatusActive, 5999, 3000))
	order, err := repo.GetByReference(ctx, "ORD-1")
	if err != nil || order.Status != model.OrderStatusActive || order.Due() != 2999 || *order.UserID != 7 {
		t.Fatalf("unexpected order: %+v err=%v", order, err)
	}

	mock.ExpectQuery("FROM orders WHERE reference=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByReference(ctx, "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	rows := orderRows()
	addOrderRow(rows, 1, "ORD-1", model.OrderStatusPartial, 5999, 3000)
	addOrderRow(rows, 2, "ORD-2", model.OrderStatusPending, 2999, 0)
	mock.ExpectQuery("FROM orders WHERE email=").WithArgs("jane@example.com").WillReturnRows(rows)
	orders, err := repo.ListByEmail(ctx, "jane@example.com")
	if err != nil || len(orders) != 2 {
		t.Fatalf("unexpected result: %v err=%v", orders, err)
	}

	mock.ExpectQuery("FROM orders WHERE email=").WithArgs("err").WillReturnError(errors.New("query"))
	if _, err := repo.ListByEmail(ctx, "err"); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("FROM orders ORDER BY created_at DESC").WillReturnRows(
		addOrderRow(addOrderRow(orderRows(), 1, "ORD-1", model.OrderStatusPartial, 5999, 3000), 2, "ORD-2", model.OrderStatusPending, 2999, 0).
			RowError(1, errors.New("row err")),
	)
	if _, err := repo.ListAll(ctx); err == nil || err.Error() != "row err" {
		t.Fatalf("expected row err, got %v", err)
	}

	mock.ExpectQuery("FROM orders ORDER BY created_at DESC").WillReturnRows(orderRows())
	orders, err = repo.ListAll(ctx)
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", orders, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.ListByEmail(context.Background(), "a@b.c"); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestOrderRepositoryUpdateStatus(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()

	mock.ExpectExec("UPDATE orders SET status=").WithArgs(model.OrderStatusActive, true, "ORD-1").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateStatus(ctx, "ORD-1", model.OrderStatusActive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status=").WithArgs(model.OrderStatusCompleted, false, "ORD-1").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateStatus(ctx, "ORD-1", model.OrderStatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status=").WithArgs(model.OrderStatusActive, true, "ORD-X").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdateStatus(ctx, "ORD-X", model.OrderStatusActive); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status=").WithArgs(model.OrderStatusPending, false, "ORD-1").WillReturnError(errors.New("db"))
	if err := repo.UpdateStatus(ctx, "ORD-1", model.OrderStatusPending); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryRecordPayment(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()

	t.Run("settles due amount", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders WHERE reference=").WithArgs("ORD-1").
			WillReturnRows(addOrderRow(orderRows(), 1, "ORD-1", model.OrderStatusActive, 5999, 3000))
		mock.ExpectExec("INSERT INTO payments").WithArgs(int64(1), "UTR9", int64(2999)).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
		mock.ExpectExec("UPDATE orders SET paid_amount=").WithArgs(int64(5999), model.OrderStatusCompleted, "UTR9", int64(1)).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		order, applied, err := repo.RecordPayment(ctx, "ORD-1", "UTR9", 2999)
		if err != nil || !applied || order.Status != model.OrderStatusCompleted || order.Due() != 0 {
			t.Fatalf("unexpected result: order=%+v applied=%v err=%v", order, applied, err)
		}
	})

	t.Run("partial payment keeps approval", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders WHERE reference=").WithArgs("ORD-1").
			WillReturnRows(addOrderRow(orderRows(), 1, "ORD-1", model.OrderStatusActive, 5999, 3000))
		mock.ExpectExec("INSERT INTO payments").WithArgs(int64(1), "UTR10", int64(1000)).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
		mock.ExpectExec("UPDATE orders SET paid_amount=").WithArgs(int64(4000), model.OrderStatusActive, "UTR10", int64(1)).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		order, applied, err := repo.RecordPayment(ctx, "ORD-1", "UTR10", 1000)
		if err != nil || !applied || order.Status != model.OrderStatusActive {
			t.Fatalf("unexpected result: order=%+v applied=%v err=%v", order, applied, err)
		}
	})

	t.Run("replayed transaction id", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders WHERE reference=").WithArgs("ORD-1").
			WillReturnRows(addOrderRow(orderRows(), 1, "ORD-1", model.OrderStatusCompleted, 5999, 5999))
		mock.ExpectExec("INSERT INTO payments").WithArgs(int64(1), "UTR9", int64(2999)).WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
		mock.ExpectCommit()

		order, applied, err := repo.RecordPayment(ctx, "ORD-1", "UTR9", 2999)
		if err != nil || applied || order.PaidAmount != 5999 {
			t.Fatalf("unexpected result: order=%+v applied=%v err=%v", order, applied, err)
		}
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders WHERE reference=").WithArgs("ORD-1").
			WillReturnRows(addOrderRow(orderRows(), 1, "ORD-1", model.OrderStatusPartial, 5999, 3000))
		mock.ExpectExec("INSERT INTO payments").WithArgs(int64(1), "UTR11", int64(3000)).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
		mock.ExpectRollback()

		if _, _, err := repo.RecordPayment(ctx, "ORD-1", "UTR11", 3000); !errors.Is(err, domainErrors.ErrInvalidAmount) {
			t.Fatalf("expected invalid amount, got %v", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders WHERE reference=").WithArgs("ORD-X").WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		if _, _, err := repo.RecordPayment(ctx, "ORD-X", "UTR", 1); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryNotifications(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()

	rows := orderRows()
	addOrderRow(rows, 1, "ORD-1", model.OrderStatusActive, 5999, 3000)
	addOrderRow(rows, 2, "ORD-2", model.OrderStatusActive, 2999, 1500)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(5).WillReturnRows(rows)
	mock.ExpectExec("UPDATE orders SET notified=TRUE").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE orders SET notified=TRUE").WithArgs(int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	claimed, err := repo.ClaimNotifications(ctx, 5)
	if err != nil || len(claimed) != 2 || !claimed[0].Notified {
		t.Fatalf("unexpected claim: %+v err=%v", claimed, err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(5).WillReturnRows(addOrderRow(orderRows(), 3, "ORD-3", model.OrderStatusActive, 9999, 5000))
	mock.ExpectExec("UPDATE orders SET notified=TRUE").WithArgs(int64(3)).WillReturnError(errors.New("update"))
	mock.ExpectRollback()
	if _, err := repo.ClaimNotifications(ctx, 5); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(5).WillReturnError(errors.New("select"))
	mock.ExpectRollback()
	if _, err := repo.ClaimNotifications(ctx, 5); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectExec("UPDATE orders SET notified=FALSE").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.ReleaseNotification(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestClaimNotificationsRowsError(t *testing.T) {
	tx := &rowsErrorTx{rows: &errorRows{err: errors.New("rows err")}}
	storage := &Storage{pool: &rowsErrorTxPool{tx: tx}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.ClaimNotifications(context.Background(), 1); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}
