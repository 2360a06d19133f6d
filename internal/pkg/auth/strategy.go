package auth

import (
	"errors"
	"time"

	"github.com/polkiloo/webpot/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Claims is the identity carried by a token.
type Claims struct {
	UserID int64
	Role   model.UserRole
}

type Strategy interface {
	IssueToken(claims Claims) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
	Now func() time.Time
}

const defaultTTL = 24 * time.Hour

func (o Options) normalize() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func validRole(role model.UserRole) bool {
	return role == model.RoleCustomer || role == model.RoleAdmin
}
