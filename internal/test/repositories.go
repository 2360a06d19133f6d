package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error

	Touched []int64
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

func (s *UserRepositoryStub) init() {
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if s.Next == 0 {
		s.Next = 1
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, user model.User) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.init()
	if _, exists := s.Users[user.Email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	user.ID = s.Next
	user.CreatedAt = time.Unix(0, 0)
	s.Next++
	stored := user
	s.Users[user.Email] = &stored
	s.ByID[user.ID] = &stored
	return &user, nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		u := *user
		return &u, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, domainErrors.ErrNotFound
}

// List returns users ordered by identifier.
func (s *UserRepositoryStub) List(ctx context.Context) ([]model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	result := make([]model.User, 0, len(s.ByID))
	for _, u := range s.ByID {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// UpdatePassword replaces stored hash.
func (s *UserRepositoryStub) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// SetStatus changes account status by email.
func (s *UserRepositoryStub) SetStatus(ctx context.Context, email string, status model.UserStatus) error {
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.Users[email]
	if !ok {
		return domainErrors.ErrNotFound
	}
	user.Status = status
	return nil
}

// TouchLogin records last login time.
func (s *UserRepositoryStub) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	if user, ok := s.ByID[id]; ok {
		t := at
		user.LastLoginAt = &t
	}
	s.Touched = append(s.Touched, id)
	return nil
}

// UpsertAdmin creates or promotes admin account.
func (s *UserRepositoryStub) UpsertAdmin(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.init()
	if user, ok := s.Users[email]; ok {
		user.Name = name
		user.PasswordHash = passwordHash
		user.Role = model.RoleAdmin
		user.Status = model.UserStatusActive
		u := *user
		return &u, nil
	}
	return s.Create(ctx, model.User{Name: name, Email: email, PasswordHash: passwordHash, Role: model.RoleAdmin, Status: model.UserStatusActive})
}

// PaymentCall records RecordPayment invocations.
type PaymentCall struct {
	Reference     string
	TransactionID string
	Amount        int64
}

// OrderRepositoryStub keeps orders in memory; Fn fields override behaviour.
type OrderRepositoryStub struct {
	CreateFn        func(context.Context, model.Order) (*model.Order, bool, error)
	RecordPaymentFn func(context.Context, string, string, int64) (*model.Order, bool, error)
	UpdateStatusFn  func(context.Context, string, model.OrderStatus) error
	ClaimFn         func(context.Context, int) ([]model.Order, error)
	ReleaseFn       func(context.Context, int64) error
	Err             error

	Orders   []model.Order
	Created  []model.Order
	Payments []PaymentCall
	Released []int64

	mu sync.Mutex
}

// Create stores order honouring idempotency key.
func (s *OrderRepositoryStub) Create(ctx context.Context, order model.Order) (*model.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Created = append(s.Created, order)
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	if s.Err != nil {
		return nil, false, s.Err
	}
	for _, o := range s.Orders {
		if o.IdempotencyKey == order.IdempotencyKey {
			existing := o
			return &existing, false, nil
		}
	}
	order.ID = int64(len(s.Orders) + 1)
	s.Orders = append(s.Orders, order)
	return &order, true, nil
}

// GetByReference returns order with matching reference.
func (s *OrderRepositoryStub) GetByReference(ctx context.Context, reference string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, o := range s.Orders {
		if o.Reference == reference {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListByEmail filters stored orders by customer email.
func (s *OrderRepositoryStub) ListByEmail(ctx context.Context, email string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Order
	for _, o := range s.Orders {
		if strings.EqualFold(o.Email, email) {
			result = append(result, o)
		}
	}
	return result, nil
}

// ListAll returns every stored order.
func (s *OrderRepositoryStub) ListAll(ctx context.Context) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.Order(nil), s.Orders...), nil
}

// UpdateStatus changes stored status.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, reference string, status model.OrderStatus) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, reference, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Orders {
		if s.Orders[i].Reference == reference {
			s.Orders[i].Status = status
			if status == model.OrderStatusActive {
				s.Orders[i].Notified = false
			}
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// RecordPayment applies payment unless transaction id was already used for the order.
func (s *OrderRepositoryStub) RecordPayment(ctx context.Context, reference, transactionID string, amount int64) (*model.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RecordPaymentFn != nil {
		return s.RecordPaymentFn(ctx, reference, transactionID, amount)
	}
	if s.Err != nil {
		return nil, false, s.Err
	}
	for i := range s.Orders {
		o := &s.Orders[i]
		if o.Reference != reference {
			continue
		}
		for _, p := range s.Payments {
			if p.Reference == reference && p.TransactionID == transactionID {
				order := *o
				return &order, false, nil
			}
		}
		if amount <= 0 || amount > o.Due() {
			return nil, false, domainErrors.ErrInvalidAmount
		}
		s.Payments = append(s.Payments, PaymentCall{Reference: reference, TransactionID: transactionID, Amount: amount})
		o.PaidAmount += amount
		o.Status = model.StatusAfterPayment(o.Status, o.TotalAmount, o.PaidAmount)
		o.TransactionID = transactionID
		order := *o
		return &order, true, nil
	}
	return nil, false, domainErrors.ErrNotFound
}

// ClaimNotifications marks Active orders as notified.
func (s *OrderRepositoryStub) ClaimNotifications(ctx context.Context, limit int) ([]model.Order, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var claimed []model.Order
	for i := range s.Orders {
		if len(claimed) == limit {
			break
		}
		if s.Orders[i].Status == model.OrderStatusActive && !s.Orders[i].Notified {
			s.Orders[i].Notified = true
			claimed = append(claimed, s.Orders[i])
		}
	}
	return claimed, nil
}

// ReleaseNotification resets notified flag.
func (s *OrderRepositoryStub) ReleaseNotification(ctx context.Context, orderID int64) error {
	if s.ReleaseFn != nil {
		return s.ReleaseFn(ctx, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Released = append(s.Released, orderID)
	for i := range s.Orders {
		if s.Orders[i].ID == orderID {
			s.Orders[i].Notified = false
		}
	}
	return nil
}

// ReviewRepositoryStub keeps reviews in memory.
type ReviewRepositoryStub struct {
	Reviews []model.Review
	Err     error
}

// Create appends review as pending approval.
func (s *ReviewRepositoryStub) Create(ctx context.Context, review model.Review) (*model.Review, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	review.ID = int64(len(s.Reviews) + 1)
	review.Approved = false
	s.Reviews = append(s.Reviews, review)
	return &review, nil
}

// ListApproved returns approved reviews only.
func (s *ReviewRepositoryStub) ListApproved(ctx context.Context) ([]model.Review, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Review
	for _, r := range s.Reviews {
		if r.Approved {
			result = append(result, r)
		}
	}
	return result, nil
}

// ListAll returns every review.
func (s *ReviewRepositoryStub) ListAll(ctx context.Context) ([]model.Review, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.Review(nil), s.Reviews...), nil
}

// Approve publishes review.
func (s *ReviewRepositoryStub) Approve(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Reviews {
		if s.Reviews[i].ID == id {
			s.Reviews[i].Approved = true
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// InquiryRepositoryStub records contact form submissions.
type InquiryRepositoryStub struct {
	Inquiries []model.Inquiry
	Err       error
}

// Create stores inquiry.
func (s *InquiryRepositoryStub) Create(ctx context.Context, inquiry model.Inquiry) (*model.Inquiry, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	inquiry.ID = int64(len(s.Inquiries) + 1)
	s.Inquiries = append(s.Inquiries, inquiry)
	return &inquiry, nil
}

// CodeStoreStub issues a fixed code and verifies it in memory.
type CodeStoreStub struct {
	Code      string
	IssueErr  error
	VerifyErr error

	Issued    map[string]string
	Discarded []string
}

func codeSubject(purpose repository.CodePurpose, subject string) string {
	return string(purpose) + ":" + subject
}

// Issue stores code for subject.
func (s *CodeStoreStub) Issue(ctx context.Context, purpose repository.CodePurpose, subject string) (string, error) {
	if s.IssueErr != nil {
		return "", s.IssueErr
	}
	if s.Issued == nil {
		s.Issued = make(map[string]string)
	}
	code := s.Code
	if code == "" {
		code = "123456"
	}
	s.Issued[codeSubject(purpose, subject)] = code
	return code, nil
}

// Verify compares code with issued one and consumes it on success.
func (s *CodeStoreStub) Verify(ctx context.Context, purpose repository.CodePurpose, subject, code string) error {
	if s.VerifyErr != nil {
		return s.VerifyErr
	}
	key := codeSubject(purpose, subject)
	issued, ok := s.Issued[key]
	if !ok {
		return domainErrors.ErrCodeExpired
	}
	if issued != code {
		return domainErrors.ErrCodeInvalid
	}
	delete(s.Issued, key)
	return nil
}

// Discard forgets issued code.
func (s *CodeStoreStub) Discard(ctx context.Context, purpose repository.CodePurpose, subject string) error {
	key := codeSubject(purpose, subject)
	delete(s.Issued, key)
	s.Discarded = append(s.Discarded, key)
	return nil
}

var (
	_ repository.UserRepository    = (*UserRepositoryStub)(nil)
	_ repository.OrderRepository   = (*OrderRepositoryStub)(nil)
	_ repository.ReviewRepository  = (*ReviewRepositoryStub)(nil)
	_ repository.InquiryRepository = (*InquiryRepositoryStub)(nil)
	_ repository.CodeStore         = (*CodeStoreStub)(nil)
)
