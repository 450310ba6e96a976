package handlers

const (
	SessionCookieName = "session_token"

	ErrInvalidFormData     = "Invalid form data"
	ErrInternalServerError = "Internal server error"
)
