package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/webpot/internal/domain/model"
)

func TestJWTStrategy_IssueAndParse(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})

	token, err := strategy.IssueToken(Claims{UserID: 11, Role: model.RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := strategy.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(11), claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, "jwt", strategy.Name())
}

func TestJWTStrategy_TokensAreUnique(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	claims := Claims{UserID: 1, Role: model.RoleCustomer}

	first, err := strategy.IssueToken(claims)
	require.NoError(t, err)
	second, err := strategy.IssueToken(claims)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestJWTStrategy_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTStrategy("one", Options{}).IssueToken(Claims{UserID: 1, Role: model.RoleCustomer})
	require.NoError(t, err)

	_, err = NewJWTStrategy("two", Options{}).ParseToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTStrategy_RejectsExpired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute, Now: fixedNow(issued)})
	token, err := strategy.IssueToken(Claims{UserID: 1, Role: model.RoleCustomer})
	require.NoError(t, err)

	strategy.opts.Now = fixedNow(issued.Add(time.Hour))
	_, err = strategy.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTStrategy_RejectsMalformedClaims(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	exp := time.Now().Add(time.Hour).Unix()

	cases := map[string]jwt.MapClaims{
		"missing subject": {"role": "customer", "iss": jwtIssuer, "exp": exp},
		"bad subject":     {"sub": "x", "role": "customer", "iss": jwtIssuer, "exp": exp},
		"bad role":        {"sub": "1", "role": "root", "iss": jwtIssuer, "exp": exp},
		"foreign issuer":  {"sub": "1", "role": "customer", "iss": "other", "exp": exp},
		"no expiry":       {"sub": "1", "role": "customer", "iss": jwtIssuer},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
			require.NoError(t, err)
			_, err = strategy.ParseToken(signed)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := strategy.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTStrategy_RejectsNoneAlgorithm(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "role": "admin", "iss": jwtIssuer, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = strategy.ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTStrategy_IssueRejectsAnonymous(t *testing.T) {
	_, err := NewJWTStrategy("secret", Options{}).IssueToken(Claims{Role: model.RoleAnonymous})
	assert.Error(t, err)
}
