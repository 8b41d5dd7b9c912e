package pages

import (
	"context"
	"strings"
	"time"

	"zimage/internal/pkg/logx"
)

// Poll calls fn every interval until ctx ends. A failing call is logged and the next tick
// runs as usual. Poll does not call fn immediately.
func Poll(ctx context.Context, interval time.Duration, fn func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				logx.Warn("Periodic refresh failed", "error", err.Error())
			}
		}
	}
}

// FilterByPrompt keeps the items whose prompt contains query, ignoring case. An empty or
// blank query keeps everything. Order is preserved.
func FilterByPrompt[T any](items []T, query string, prompt func(T) string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(prompt(item)), query) {
			out = append(out, item)
		}
	}
	return out
}
