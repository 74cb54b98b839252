package usecase

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorProjectNotFound    ErrorCode = "PROJECT_NOT_FOUND"
	ErrorNoSelection        ErrorCode = "NO_SELECTION"
	ErrorInvalidTitle       ErrorCode = "INVALID_TITLE"
	ErrorSitemapUnreachable ErrorCode = "SITEMAP_UNREACHABLE"
	ErrorSitemapMalformed   ErrorCode = "SITEMAP_MALFORMED"
	ErrorSitemapEmpty       ErrorCode = "SITEMAP_EMPTY"
	ErrorAIService          ErrorCode = "AI_SERVICE_ERROR"
	ErrorUnexpected         ErrorCode = "UNEXPECTED_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var ue *Error
	if !errors.As(err, &ue) {
		return "", false
	}
	return ue.Code, true
}

// Outcome labels a pipeline result for metrics: "ok", an error code, or
// UNEXPECTED_ERROR for errors without one.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code, ok := CodeOf(err); ok {
		return string(code)
	}
	return string(ErrorUnexpected)
}
