package prodcrawl

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meaningful to the engine's control flow: EFETCH and
// EINVALID conditions are recovered per node, while ECONFIG and
// EAIPROVIDER abort the crawl.
const (
	ECONFIG     = "config"      // invalid or missing task configuration
	EINVALID    = "invalid"     // validation failed
	ENOTFOUND   = "not_found"   // entity does not exist
	EFETCH      = "fetch"       // transport failure retrieving a page
	EAIPROVIDER = "ai_provider" // AI provider call failed outright
	EINTERNAL   = "internal"    // internal error
)

// Error represents an application error with a machine-readable code
// and a human-readable message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("prodcrawl error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper to construct an *Error with a formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode returns the code of the error, if it is an *Error.
// Returns EINTERNAL for non-application errors and "" for nil.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the message of the error, if it is an *Error.
// Returns a generic message for non-application errors and "" for nil.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Message
	}
	return "An internal error has occurred."
}
