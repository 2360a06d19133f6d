package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/webpot/internal/domain/model"
)

// WorkerFacadeStub mimics the approval notice source used by the dispatcher.
type WorkerFacadeStub struct {
	Batches [][]model.Order
	ClaimFn func(context.Context, int) ([]model.Order, error)
	SendFn  func(context.Context, model.Order) error

	mu         sync.Mutex
	sent       []model.Order
	released   []int64
	claimCount int32
}

// ClaimApprovalNotices returns configured batches, then idles.
func (s *WorkerFacadeStub) ClaimApprovalNotices(ctx context.Context, limit int) ([]model.Order, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.claimCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// SendApprovalNotice records delivered orders unless SendFn fails.
func (s *WorkerFacadeStub) SendApprovalNotice(ctx context.Context, order model.Order) error {
	if s.SendFn != nil {
		if err := s.SendFn(ctx, order); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, order)
	return nil
}

// ReleaseApprovalNotice records released order ids.
func (s *WorkerFacadeStub) ReleaseApprovalNotice(_ context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, orderID)
	return nil
}

// SentOrders returns a copy of delivered orders.
func (s *WorkerFacadeStub) SentOrders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.sent...)
}

// ReleasedIDs returns a copy of released order ids.
func (s *WorkerFacadeStub) ReleasedIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.released...)
}
