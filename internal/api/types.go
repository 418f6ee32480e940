package api

import "time"

// Object is an arbitrary Graph API node. Its shape depends on the requested
// fields, so the tool layer keeps it untyped.
type Object = map[string]any

// Identity is the subset of /me used to confirm a token works.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TokenRegistration is returned after a token is added.
type TokenRegistration struct {
	Name        string    `json:"name"`
	MaskedToken string    `json:"masked_token"`
	Active      bool      `json:"active"`
	Identity    *Identity `json:"identity,omitempty"`
}

// UsageStatus reports the local throttle state.
type UsageStatus struct {
	AppUsagePct      float64 `json:"app_usage_pct"`
	BusinessUsagePct float64 `json:"business_usage_pct"`
	CurrentUsagePct  float64 `json:"current_usage_pct"`
	ThrottleDelayMs  int64   `json:"throttle_delay_ms"`
}

// ListResponse wraps a bounded list read.
type ListResponse struct {
	Count int      `json:"count"`
	Data  []Object `json:"data"`
}

// ImageUpload is one uploaded ad image.
type ImageUpload struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	URL  string `json:"url,omitempty"`
}

// CallLogEntry mirrors a journal row for tool output.
type CallLogEntry struct {
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code"`
	Attempts   int       `json:"attempts"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// ErrorResponse provides a consistent error format for tool and HTTP errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
