package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	pkgAuth "github.com/polkiloo/webpot/internal/pkg/auth"
	"github.com/polkiloo/webpot/internal/server/http/dto"
)

type errorMapping struct {
	err     error
	code    int
	status  string
	message string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrUserNotFound, http.StatusNotFound, dto.StatusUserNotFound, "no account found for this email"},
	{domainErrors.ErrAlreadyExists, http.StatusConflict, dto.StatusUserAlreadyExists, "an account with this email already exists"},
	{domainErrors.ErrUserBanned, http.StatusForbidden, dto.StatusUserBanned, "this account has been banned"},
	{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.StatusError, "invalid email or password"},
	{pkgAuth.ErrInvalidToken, http.StatusUnauthorized, dto.StatusUnauthorized, "invalid or expired token"},
	{domainErrors.ErrForbidden, http.StatusForbidden, dto.StatusForbidden, "not allowed"},
	{domainErrors.ErrNotFound, http.StatusNotFound, dto.StatusError, "not found"},
	{domainErrors.ErrCodeThrottled, http.StatusTooManyRequests, dto.StatusError, ""},
	{domainErrors.ErrInvalidInput, http.StatusBadRequest, dto.StatusError, "missing required fields"},
	{domainErrors.ErrInvalidAmount, http.StatusBadRequest, dto.StatusError, ""},
	{domainErrors.ErrInvalidService, http.StatusBadRequest, dto.StatusError, ""},
	{domainErrors.ErrInvalidStatus, http.StatusBadRequest, dto.StatusError, ""},
	{domainErrors.ErrInvalidRating, http.StatusBadRequest, dto.StatusError, ""},
	{domainErrors.ErrCodeInvalid, http.StatusBadRequest, dto.StatusError, ""},
	{domainErrors.ErrCodeExpired, http.StatusBadRequest, dto.StatusError, ""},
	{domainErrors.ErrCodeAttempts, http.StatusBadRequest, dto.StatusError, ""},
}

// writeError maps err onto envelope status and HTTP code. Unknown errors are
// logged and reported as internal.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			message := m.message
			if message == "" {
				message = m.err.Error()
			}
			c.JSON(m.code, dto.Failure(m.status, message))
			return
		}
	}
	logger.Error("action failed", slog.String("path", c.Request.URL.Path), slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, dto.Failure(dto.StatusError, "internal error"))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.Failure(dto.StatusError, message))
}
