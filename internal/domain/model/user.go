package model

import (
	"strings"
	"time"
)

// UserRole separates customers from console operators.
type UserRole string

const (
	RoleAnonymous UserRole = "anonymous"
	RoleCustomer  UserRole = "customer"
	RoleAdmin     UserRole = "admin"
)

// UserStatus describes whether account may sign in.
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusBanned UserStatus = "banned"
)

// User represents a registered customer or administrator.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Banned reports whether the account was blocked by an administrator.
func (u *User) Banned() bool {
	return u != nil && u.Status == UserStatusBanned
}

// NormalizeEmail trims and lowercases address used as account key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
