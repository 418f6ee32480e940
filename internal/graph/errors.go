package graph

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Kind classifies a failed Graph API call.
type Kind string

const (
	KindAuthExpired      Kind = "AUTH_EXPIRED"
	KindAuthRequired     Kind = "AUTH_REQUIRED"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindTransient        Kind = "TRANSIENT_SERVER_ERROR"
	KindInvalidParameter Kind = "INVALID_PARAMETER"
	KindNotFound         Kind = "NOT_FOUND"
	KindDuplicate        Kind = "DUPLICATE"
	KindUnknown          Kind = "UNKNOWN"
	KindHTTP             Kind = "HTTP_ERROR"
	KindTimeout          Kind = "TIMEOUT"
	KindNoCredential     Kind = "NO_CREDENTIAL"
)

// ErrRetriesExhausted is wrapped into the error returned when every attempt
// failed with a retryable error.
var ErrRetriesExhausted = errors.New("retries exhausted")

// VendorError is the "error" object of a Graph API error body.
type VendorError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode,omitempty"`
	FBTraceID    string `json:"fbtrace_id,omitempty"`
}

type vendorErrorBody struct {
	Error *VendorError `json:"error"`
}

// Error is a classified Graph API failure.
type Error struct {
	Kind       Kind
	Message    string
	Code       int
	Subcode    int
	Type       string
	TraceID    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "graph api error"
	}
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, " (code %d", e.Code)
		if e.Subcode != 0 {
			fmt.Fprintf(&b, ", subcode %d", e.Subcode)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Retryable reports whether the executor may retry the call.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindRateLimited, KindTransient, KindTimeout:
		return true
	}
	return false
}

// Hint returns a short remediation for the caller.
func (e *Error) Hint() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindAuthExpired, KindAuthRequired:
		return "the access token is invalid or expired; supply a new token"
	case KindPermissionDenied:
		return "the access token lacks the permission required for this call"
	case KindRateLimited:
		return "the API rate limit was reached; wait a few minutes and retry"
	case KindTransient, KindTimeout:
		return "the API is temporarily unavailable; wait and retry"
	case KindInvalidParameter:
		return "check the request parameters"
	case KindNotFound:
		return "the object does not exist or is not visible to this token"
	case KindDuplicate:
		return "an object with the same identity already exists"
	case KindNoCredential:
		return "configure META_ACCESS_TOKEN or register a token with add_access_token"
	case KindUnknown:
		return fmt.Sprintf("unrecognized API error code %d", e.Code)
	}
	return ""
}

// Classify maps a vendor error payload onto the error taxonomy.
func Classify(v *VendorError) *Error {
	if v == nil {
		return &Error{Kind: KindUnknown, Message: "empty error payload"}
	}

	e := &Error{
		Message: v.Message,
		Code:    v.Code,
		Subcode: v.ErrorSubcode,
		Type:    v.Type,
		TraceID: v.FBTraceID,
	}

	switch v.Code {
	case 190:
		e.Kind = KindAuthExpired
	case 102:
		e.Kind = KindAuthRequired
	case 10:
		e.Kind = KindPermissionDenied
	case 4, 17, 32, 613:
		e.Kind = KindRateLimited
	case 1, 2:
		e.Kind = KindTransient
	case 803:
		e.Kind = KindNotFound
	case 100:
		if v.ErrorSubcode == 33 {
			e.Kind = KindNotFound
		} else {
			e.Kind = KindInvalidParameter
		}
	case 2650:
		e.Kind = KindDuplicate
	default:
		e.Kind = KindUnknown
	}
	return e
}

// maxStatusMessage bounds the body echoed into a status error.
const maxStatusMessage = 512

// ClassifyStatus handles non-2xx responses that carry no vendor error body.
func ClassifyStatus(status int, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxStatusMessage {
		cut := maxStatusMessage
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if status >= http.StatusInternalServerError {
		return &Error{Kind: KindTransient, Message: msg, StatusCode: status}
	}
	return &Error{Kind: KindHTTP, Message: msg, StatusCode: status}
}

// IsRetryable reports whether err is a retryable classified error.
func IsRetryable(err error) bool {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Retryable()
	}
	return false
}

// KindOf returns the kind of a classified error, or "" when err is not one.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}
