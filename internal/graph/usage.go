package graph

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Usage headers reported by the Graph API on most responses.
const (
	HeaderAppUsage         = "X-App-Usage"
	HeaderBusinessUseCases = "X-Business-Use-Case-Usage"
)

var usageMetrics = []string{"call_count", "total_cputime", "total_time"}

// UsageTracker keeps the last usage percentages reported by the API and turns
// them into a pre-emptive delay. It is safe for concurrent use.
type UsageTracker struct {
	mu       sync.RWMutex
	app      float64
	business float64
}

// NewUsageTracker returns a tracker with zero usage.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

// Update reads the usage headers from a response. Missing or malformed
// headers leave the previous values in place.
func (u *UsageTracker) Update(h http.Header) {
	if u == nil || h == nil {
		return
	}

	app, appOK := parseAppUsage(h.Get(HeaderAppUsage))
	business, businessOK := parseBusinessUsage(h.Get(HeaderBusinessUseCases))
	if !appOK && !businessOK {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if appOK {
		u.app = app
	}
	if businessOK {
		u.business = business
	}
}

// CurrentUsage returns the highest usage percentage seen across both sources.
func (u *UsageTracker) CurrentUsage() float64 {
	if u == nil {
		return 0
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return max(u.app, u.business)
}

// Snapshot returns the per-source percentages.
func (u *UsageTracker) Snapshot() (app, business float64) {
	if u == nil {
		return 0, 0
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.app, u.business
}

// Delay returns the throttle delay for the current usage.
func (u *UsageTracker) Delay() time.Duration {
	return ThrottleDelay(u.CurrentUsage())
}

// ThrottleDelay maps a usage percentage onto a delay:
//
//	u < 75       no delay
//	75 <= u < 95 100ms .. 2s, linear
//	u >= 95      5s .. 60s, linear, capped at 100%
func ThrottleDelay(usage float64) time.Duration {
	switch {
	case usage < 75:
		return 0
	case usage < 95:
		ms := 100 + (usage-75)/20*1900
		return time.Duration(ms * float64(time.Millisecond))
	default:
		usage = min(usage, 100)
		ms := 5000 + (usage-95)/5*55000
		return time.Duration(ms * float64(time.Millisecond))
	}
}

func parseAppUsage(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	var metrics map[string]any
	if err := json.Unmarshal([]byte(raw), &metrics); err != nil {
		return 0, false
	}
	return maxMetric(metrics)
}

// The business use case header is keyed by business id, each holding a list
// of per-use-case entries.
func parseBusinessUsage(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	var byBusiness map[string][]map[string]any
	if err := json.Unmarshal([]byte(raw), &byBusiness); err != nil {
		return 0, false
	}

	var (
		highest float64
		found   bool
	)
	for _, entries := range byBusiness {
		for _, entry := range entries {
			if v, ok := maxMetric(entry); ok {
				highest = max(highest, v)
				found = true
			}
		}
	}
	return highest, found
}

func maxMetric(metrics map[string]any) (float64, bool) {
	var (
		highest float64
		found   bool
	)
	for _, key := range usageMetrics {
		v, ok := metrics[key].(float64)
		if !ok {
			continue
		}
		highest = max(highest, v)
		found = true
	}
	return highest, found
}
