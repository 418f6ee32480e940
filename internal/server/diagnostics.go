package server

import (
	"context"

	"adte.com/adte/meta-ads-mcp/internal/api"
)

// Usage reports the throttle's view of API usage.
func (s *Server) Usage() api.UsageStatus {
	tracker := s.Graph.Usage()
	app, business := tracker.Snapshot()
	return api.UsageStatus{
		AppUsagePct:      app,
		BusinessUsagePct: business,
		CurrentUsagePct:  tracker.CurrentUsage(),
		ThrottleDelayMs:  tracker.Delay().Milliseconds(),
	}
}

// RecentCalls returns the newest journaled Graph API calls.
func (s *Server) RecentCalls(ctx context.Context, limit int) ([]api.CallLogEntry, error) {
	if s.Journal == nil {
		return []api.CallLogEntry{}, nil
	}
	entries, err := s.Journal.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]api.CallLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.CallLogEntry{
			Method:     e.Method,
			Path:       e.Path,
			StatusCode: e.StatusCode,
			Attempts:   e.Attempts,
			ErrorKind:  e.ErrorKind,
			DurationMs: e.DurationMs,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}
