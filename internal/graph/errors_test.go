package graph

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestClassifyVendorCodes(t *testing.T) {
	cases := []struct {
		code      int
		subcode   int
		kind      Kind
		retryable bool
	}{
		{190, 0, KindAuthExpired, false},
		{190, 463, KindAuthExpired, false},
		{102, 0, KindAuthRequired, false},
		{10, 0, KindPermissionDenied, false},
		{4, 0, KindRateLimited, true},
		{17, 0, KindRateLimited, true},
		{32, 0, KindRateLimited, true},
		{613, 0, KindRateLimited, true},
		{1, 0, KindTransient, true},
		{2, 0, KindTransient, true},
		{100, 33, KindNotFound, false},
		{803, 0, KindNotFound, false},
		{100, 0, KindInvalidParameter, false},
		{100, 1487390, KindInvalidParameter, false},
		{2650, 0, KindDuplicate, false},
		{9999, 0, KindUnknown, false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_%d", tc.code, tc.subcode), func(t *testing.T) {
			classified := Classify(&VendorError{Message: "boom", Type: "OAuthException", Code: tc.code, ErrorSubcode: tc.subcode, FBTraceID: "trace"})
			require.Equal(t, tc.kind, classified.Kind)
			require.Equal(t, tc.retryable, classified.Retryable())
			require.Equal(t, tc.code, classified.Code)
			require.Equal(t, "trace", classified.TraceID)
		})
	}
}

func TestClassifyUnknownKeepsVendorCodeInMessage(t *testing.T) {
	classified := Classify(&VendorError{Message: "weird", Code: 9999})
	require.Contains(t, classified.Error(), "9999")
	require.Contains(t, classified.Hint(), "9999")
}

func TestClassifyStatus(t *testing.T) {
	server := ClassifyStatus(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
	require.Equal(t, KindTransient, server.Kind)
	require.True(t, server.Retryable())

	client := ClassifyStatus(http.StatusNotFound, nil)
	require.Equal(t, KindHTTP, client.Kind)
	require.False(t, client.Retryable())
	require.Equal(t, "Not Found", client.Message)
}

func TestClassifyStatusTruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", maxStatusMessage-1) + "é" + "tail"
	e := ClassifyStatus(http.StatusBadRequest, []byte(body))
	require.True(t, utf8.ValidString(e.Message))
	require.Equal(t, strings.Repeat("a", maxStatusMessage-1), e.Message)

	short := ClassifyStatus(http.StatusBadRequest, []byte("détail"))
	require.Equal(t, "détail", short.Message)
}

func TestIsRetryableThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w after 3 attempts: %w", ErrRetriesExhausted, &Error{Kind: KindRateLimited})
	require.True(t, errors.Is(wrapped, ErrRetriesExhausted))
	require.True(t, IsRetryable(wrapped))
	require.Equal(t, KindRateLimited, KindOf(wrapped))

	require.False(t, IsRetryable(errors.New("plain")))
	require.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestRateLimitHintSuggestsWaiting(t *testing.T) {
	require.Contains(t, (&Error{Kind: KindRateLimited}).Hint(), "wait")
}
