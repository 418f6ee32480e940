package server

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"adte.com/adte/meta-ads-mcp/internal/auth"
	"adte.com/adte/meta-ads-mcp/internal/graph"
	"adte.com/adte/meta-ads-mcp/internal/journal"
)

const (
	defaultListLimit = 25
	maxListLimit     = 1000
)

// Server holds the dependencies shared by the MCP and HTTP handlers.
type Server struct {
	Graph   *graph.Client
	Tokens  *auth.TokenStore
	Journal *journal.Store
	Logger  *slog.Logger
}

// ValidationError represents a validation failure
type ValidationError struct {
	Message string
	Code    string
	Field   string
}

func (e ValidationError) Error() string {
	return e.Message
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Message: field + " is required", Code: "MISSING_REQUIRED_FIELD", Field: field}
	}
	return nil
}

// NormalizeAccountID adds the act_ prefix Graph API expects on ad account ids.
func NormalizeAccountID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, "act_") {
		return id
	}
	return "act_" + id
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}

func fieldsParam(fields []string, fallback string) url.Values {
	params := url.Values{}
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	} else {
		params.Set("fields", fallback)
	}
	return params
}

func setIfNotEmpty(form url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		form.Set(key, value)
	}
}

func setIfPositive(form url.Values, key string, value int64) {
	if value > 0 {
		form.Set(key, strconv.FormatInt(value, 10))
	}
}

// jsonList renders a string list as the JSON array Graph expects in params.
func jsonList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(v))
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
