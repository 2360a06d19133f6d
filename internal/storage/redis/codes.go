package redis

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/repository"
)

const codeDigits = 6

// CodeOptions tunes lifetime and limits of one purpose.
type CodeOptions struct {
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

// CodeStore keeps one-time codes in Redis.
type CodeStore struct {
	client   goredis.Cmdable
	options  map[repository.CodePurpose]CodeOptions
	generate func() (string, error)
}

// NewCodeStore builds store with per-purpose options.
func NewCodeStore(client goredis.Cmdable, options map[repository.CodePurpose]CodeOptions) *CodeStore {
	return &CodeStore{client: client, options: options, generate: generateCode}
}

func codeKey(purpose repository.CodePurpose, subject string) string {
	return fmt.Sprintf("code:%s:%s", purpose, subject)
}

func attemptsKey(purpose repository.CodePurpose, subject string) string {
	return fmt.Sprintf("code:att:%s:%s", purpose, subject)
}

func resendKey(purpose repository.CodePurpose, subject string) string {
	return fmt.Sprintf("code:res:%s:%s", purpose, subject)
}

func (s *CodeStore) optionsFor(purpose repository.CodePurpose) (CodeOptions, error) {
	opts, ok := s.options[purpose]
	if !ok {
		return CodeOptions{}, fmt.Errorf("unknown code purpose %q", purpose)
	}
	return opts, nil
}

// Issue stores a fresh code, replacing any previous one for the subject.
func (s *CodeStore) Issue(ctx context.Context, purpose repository.CodePurpose, subject string) (string, error) {
	opts, err := s.optionsFor(purpose)
	if err != nil {
		return "", err
	}

	if opts.ResendWindow > 0 {
		ok, err := s.client.SetNX(ctx, resendKey(purpose, subject), 1, opts.ResendWindow).Result()
		if err != nil {
			return "", fmt.Errorf("set resend throttle: %w", err)
		}
		if !ok {
			return "", domainErrors.ErrCodeThrottled
		}
	}

	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, codeKey(purpose, subject), code, opts.TTL)
		pipe.Set(ctx, attemptsKey(purpose, subject), 0, opts.TTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Verify checks code. Every call counts as an attempt; exceeding the limit
// burns the code.
func (s *CodeStore) Verify(ctx context.Context, purpose repository.CodePurpose, subject, code string) error {
	opts, err := s.optionsFor(purpose)
	if err != nil {
		return err
	}

	attempts, err := s.client.Incr(ctx, attemptsKey(purpose, subject)).Result()
	if err != nil {
		return fmt.Errorf("increment attempts: %w", err)
	}
	if attempts == 1 {
		// counter was absent, keep it from living forever
		s.client.Expire(ctx, attemptsKey(purpose, subject), opts.TTL)
	}

	if opts.MaxAttempts > 0 && attempts > int64(opts.MaxAttempts) {
		s.client.Del(ctx, codeKey(purpose, subject), attemptsKey(purpose, subject))
		return domainErrors.ErrCodeAttempts
	}

	stored, err := s.client.Get(ctx, codeKey(purpose, subject)).Result()
	if errors.Is(err, goredis.Nil) {
		return domainErrors.ErrCodeExpired
	}
	if err != nil {
		return fmt.Errorf("get code: %w", err)
	}

	if stored != code {
		return domainErrors.ErrCodeInvalid
	}

	s.client.Del(ctx, codeKey(purpose, subject), attemptsKey(purpose, subject), resendKey(purpose, subject))
	return nil
}

// Discard removes pending code with its counters.
func (s *CodeStore) Discard(ctx context.Context, purpose repository.CodePurpose, subject string) error {
	err := s.client.Del(ctx, codeKey(purpose, subject), attemptsKey(purpose, subject), resendKey(purpose, subject)).Err()
	if err != nil {
		return fmt.Errorf("discard code: %w", err)
	}
	return nil
}

func generateCode() (string, error) {
	digits := make([]byte, codeDigits)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

var _ repository.CodeStore = (*CodeStore)(nil)
