package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is customer feedback shown publicly after approval.
type Review struct {
	ID        int64
	UserID    *int64
	Name      string
	Email     string
	Service   string
	Rating    int
	Comment   string
	Approved  bool
	CreatedAt time.Time
}

// ValidRating reports whether rating is within the star scale.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
