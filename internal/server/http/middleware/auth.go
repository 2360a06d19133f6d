package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/webpot/internal/domain/model"
	pkgAuth "github.com/polkiloo/webpot/internal/pkg/auth"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

const (
	// ClaimsContextKey is a gin context key for caller claims.
	ClaimsContextKey = "claims"
	authCookieName   = "webpot_token"
)

// TokenParser turns bearer token into caller claims.
type TokenParser interface {
	ParseToken(token string) (pkgAuth.Claims, error)
}

// Authenticate resolves the caller. Requests without a token continue as
// anonymous; a token that fails to parse is rejected.
func Authenticate(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Set(ClaimsContextKey, pkgAuth.Claims{Role: model.RoleAnonymous})
			c.Next()
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Failure(dto.StatusUnauthorized, "invalid or expired token"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Failure(dto.StatusError, "internal error"))
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// CurrentClaims returns caller claims, anonymous when none were set.
func CurrentClaims(c *gin.Context) pkgAuth.Claims {
	if v, ok := c.Get(ClaimsContextKey); ok {
		if claims, ok := v.(pkgAuth.Claims); ok {
			return claims
		}
	}
	return pkgAuth.Claims{Role: model.RoleAnonymous}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
