package dto

// Envelope statuses shared with browser and CLI clients.
const (
	StatusSuccess           = "success"
	StatusError             = "error"
	StatusUserNotFound      = "user_not_found"
	StatusUserAlreadyExists = "user_already_exists"
	StatusUserBanned        = "user_banned"
	StatusOTPRequired       = "otp_required"
	StatusUnauthorized      = "unauthorized"
	StatusForbidden         = "forbidden"
)

// Response is the envelope every action answers with.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Success builds a bare success envelope.
func Success(message string) Response {
	return Response{Status: StatusSuccess, Message: message}
}

// Failure builds an envelope with the given status.
func Failure(status, message string) Response {
	return Response{Status: status, Message: message}
}
