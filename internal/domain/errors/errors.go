package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidService     = errors.New("unknown service tier")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrForbidden          = errors.New("forbidden")

	ErrUserNotFound = errors.New("user not found")
	ErrUserBanned   = errors.New("user banned")
	ErrOTPRequired  = errors.New("one-time code required")

	ErrCodeInvalid   = errors.New("invalid code")
	ErrCodeExpired   = errors.New("code expired or not issued")
	ErrCodeAttempts  = errors.New("too many attempts")
	ErrCodeThrottled = errors.New("code recently sent, try again later")
)
