package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/polkiloo/webpot/internal/domain/model"
)

const jwtIssuer = "webpot"

// JWTStrategy issues HS256 JSON Web Tokens.
type JWTStrategy struct {
	secret []byte
	opts   Options
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	return &JWTStrategy{secret: []byte(secret), opts: opts.normalize()}
}

// IssueToken signs claims with a unique token id.
func (s *JWTStrategy) IssueToken(claims Claims) (string, error) {
	if !validRole(claims.Role) {
		return "", fmt.Errorf("issue token: unsupported role %q", claims.Role)
	}
	now := s.opts.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(claims.UserID, 10),
		"role": string(claims.Role),
		"iss":  jwtIssuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.opts.TTL).Unix(),
		"jti":  uuid.NewString(),
	})
	return token.SignedString(s.secret)
}

// ParseToken verifies signature and expiry and extracts claims.
func (s *JWTStrategy) ParseToken(token string) (Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.opts.Now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, err := mapClaims.GetSubject()
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	role, _ := mapClaims["role"].(string)
	if !validRole(model.UserRole(role)) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: userID, Role: model.UserRole(role)}, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt"
}
