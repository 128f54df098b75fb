package roomchat

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// ErrorProtocol is a failure reported by the server via an error
	// envelope. The session is left untouched; the user decides what to do.
	ErrorProtocol

	// Client-side errors.
	ErrorTransport
	ErrorNotConnected
	ErrorAlreadyConnected
	ErrorNotJoined
	ErrorInvalidConfig
	ErrorSerialization
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorProtocol:
		return "protocol_error"
	case ErrorTransport:
		return "transport_failure"
	case ErrorNotConnected:
		return "not_connected"
	case ErrorAlreadyConnected:
		return "already_connected"
	case ErrorNotJoined:
		return "not_joined"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorSerialization:
		return "serialization_error"
	default:
		return fmt.Sprintf("unknown_code_%d", int(e))
	}
}

// ChatError is a structured error with code and context.
type ChatError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *ChatError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is comparison by code.
func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a ChatError with the given code and message.
func NewError(code ErrorCode, message string) *ChatError {
	return &ChatError{Code: code, Message: message}
}

// WrapError wraps an existing error with a ChatError.
func WrapError(code ErrorCode, message string, err error) *ChatError {
	return &ChatError{Code: code, Message: message, Wrapped: err}
}

// IsProtocolError reports whether err is a server-reported protocol error.
func IsProtocolError(err error) bool {
	return hasCode(err, ErrorProtocol)
}

// IsTransportError reports whether err is a socket-level failure.
func IsTransportError(err error) bool {
	return hasCode(err, ErrorTransport)
}

func hasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var ce *ChatError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == code
}
