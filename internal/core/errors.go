package core

import "errors"

// Error codes for protocol-level errors surfaced to clients.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeRateLimited    = "rate_limited"
)

// Domain errors. None of them is fatal to a session; the router absorbs
// them and either drops the event or turns it into a notification.
var (
	ErrInvalidUsername   = errors.New("invalid username")
	ErrUnauthenticated   = errors.New("unauthenticated action")
	ErrRecipientOffline  = errors.New("recipient offline")
	ErrMessageNotFound   = errors.New("message not found")
	ErrEmptyMessage      = errors.New("message has neither text nor file")
	ErrAlreadyLoggedIn   = errors.New("session already logged in")
	ErrInvalidCommand    = errors.New("invalid command")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrUnknownConnection = errors.New("unknown connection")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// NewCoreError builds a CoreError with the given code.
func NewCoreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
