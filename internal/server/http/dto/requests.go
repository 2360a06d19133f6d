package dto

// ActionEnvelope names the action of a request. FormType is the legacy name.
type ActionEnvelope struct {
	Action   string `json:"action" form:"action"`
	FormType string `json:"formType" form:"formType"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// LoginRequest accepts loginInput as the legacy email field.
type LoginRequest struct {
	Email      string `json:"email"`
	LoginInput string `json:"loginInput"`
	Password   string `json:"password"`
}

// Identity returns whichever email field was supplied.
func (r LoginRequest) Identity() string {
	if r.Email != "" {
		return r.Email
	}
	return r.LoginInput
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type VerifyResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type OrderRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Service        string `json:"service"`
	Amount         Amount `json:"amount"`
	Details        string `json:"details"`
	TransactionID  string `json:"transactionId"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type UpdatePaymentRequest struct {
	OrderID       string `json:"orderId"`
	Amount        Amount `json:"amount"`
	TransactionID string `json:"transactionId"`
	Email         string `json:"email"`
}

type ReviewRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Service string `json:"service"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type UserDataRequest struct {
	Email string `json:"email" form:"email"`
}

type UpdateStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type BanUserRequest struct {
	Email string `json:"email"`
}

type ApproveReviewRequest struct {
	ReviewID int64 `json:"reviewId"`
}
