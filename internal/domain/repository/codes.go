package repository

import "context"

// CodePurpose scopes one-time codes so a reset code never signs anyone in.
type CodePurpose string

const (
	CodePurposeLogin CodePurpose = "login"
	CodePurposeReset CodePurpose = "reset"
)

// CodeStore issues and verifies short-lived one-time codes.
type CodeStore interface {
	Issue(ctx context.Context, purpose CodePurpose, subject string) (string, error)
	Verify(ctx context.Context, purpose CodePurpose, subject, code string) error
	// Discard drops any pending code and its throttle, used when delivery failed.
	Discard(ctx context.Context, purpose CodePurpose, subject string) error
}
