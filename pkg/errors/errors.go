package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// ErrorType represents the category of a scraper failure
type ErrorType string

const (
	ErrorTypeURL        ErrorType = "url"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeExtraction ErrorType = "extraction"
)

// Kind refines a parsing error
type Kind string

const (
	KindNone                     Kind = ""
	KindUnidentifiableResource   Kind = "unidentifiable_resource"
	KindMetadataExtractionFailed Kind = "metadata_extraction_failed"
	KindNotAVideo                Kind = "not_a_video"
	KindVideoURLMissing          Kind = "video_url_missing"
)

// Error is the typed error returned by every scraper component.
// Platform is empty when the failure happened before a platform was known.
type Error struct {
	Type     ErrorType
	Kind     Kind
	Platform string
	Message  string
	// Code carries the HTTP status for network errors, 0 otherwise
	Code  int
	Cause error
}

func (e *Error) Error() string {
	prefix := string(e.Type)
	if e.Platform != "" {
		prefix = e.Platform + " " + prefix
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", prefix, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewURLError reports an input URL that matches no supported platform.
func NewURLError(message string) *Error {
	return &Error{Type: ErrorTypeURL, Message: message}
}

// NewNetworkError reports a transport failure or a non-success HTTP status.
func NewNetworkError(platform, message string, code int, cause error) *Error {
	return &Error{
		Type:     ErrorTypeNetwork,
		Platform: platform,
		Message:  message,
		Code:     code,
		Cause:    cause,
	}
}

// NewParseError reports content that could not be turned into metadata.
func NewParseError(platform string, kind Kind, message string) *Error {
	return &Error{
		Type:     ErrorTypeParsing,
		Kind:     kind,
		Platform: platform,
		Message:  message,
	}
}

// NewExtractionError reports a missing value the caller explicitly asked for.
func NewExtractionError(platform, message string) *Error {
	return &Error{Type: ErrorTypeExtraction, Platform: platform, Message: message}
}

// TypeOf returns the ErrorType of err, or "" when err is not a scraper error.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// KindOf returns the parse Kind of err.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

// StatusCode returns the HTTP status carried by a network error, or 0.
func StatusCode(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsURL reports whether err is an unsupported or malformed URL
func IsURL(err error) bool { return TypeOf(err) == ErrorTypeURL }

// IsNetwork reports whether err is a transport or HTTP status failure
func IsNetwork(err error) bool { return TypeOf(err) == ErrorTypeNetwork }

// IsParse reports whether err is a parse error; KindOf tells which one
func IsParse(err error) bool { return TypeOf(err) == ErrorTypeParsing }

// IsExtraction reports whether err is a generic extraction failure
func IsExtraction(err error) bool { return TypeOf(err) == ErrorTypeExtraction }

// IsRetryable reports whether a failed attempt may be repeated.
// Network and parse errors are both retried; a caller-cancelled context
// and a URL error never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
	}
	switch TypeOf(err) {
	case ErrorTypeURL:
		return false
	default:
		return true
	}
}
