package model

import "time"

const InquiryStatusNew = "new"

// Inquiry is a message left through the contact form.
type Inquiry struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Message   string
	Status    string
	CreatedAt time.Time
}
