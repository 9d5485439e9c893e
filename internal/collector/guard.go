package collector

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// WarehouseProber is the read-only slice of the warehouse the guard needs.
type WarehouseProber interface {
	CountPostsByDate(ctx context.Context, table, subreddit, date string) (int, error)
	CountPostsByTimeFilter(ctx context.Context, table, subreddit, timeFilter string) (int, error)
}

// Guard answers "has this (subreddit, window) already been captured?" by
// probing the durable sinks. It is a read-only probe: resolution on a
// positive result belongs to the caller.
type Guard struct {
	OutputDir  string
	FilePrefix string
}

// FileExists globs the output directory for files named for this collection
// unit: {prefix}_{unit}_{label}_*.csv.
func (g Guard) FileExists(subreddit, label string) bool {
	pattern := filepath.Join(g.OutputDir, fmt.Sprintf("%s_%s_%s_*.csv", g.FilePrefix, subreddit, label))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		slog.Warn("[Guard] Error checking for existing CSV files", slog.String("error", err.Error()))
		return false
	}
	if len(matches) > 0 {
		slog.Info("[Guard] Found existing CSV file(s)",
			slog.String("subreddit", subreddit),
			slog.String("label", label),
			slog.Int("count", len(matches)))
		for _, m := range matches {
			slog.Info("[Guard] existing file", slog.String("path", m))
		}
		return true
	}
	slog.Info("[Guard] No existing CSV files found",
		slog.String("subreddit", subreddit), slog.String("label", label))
	return false
}

// WarehouseHasDate probes the warehouse for rows matching (subreddit, date).
// Probe failures (including a missing table) mean "no match", not an error.
func WarehouseHasDate(ctx context.Context, prober WarehouseProber, table, subreddit, date string) bool {
	count, err := prober.CountPostsByDate(ctx, table, subreddit, date)
	if err != nil {
		slog.Warn("[Guard] Error checking existing warehouse data", slog.String("error", err.Error()))
		return false
	}
	if count > 0 {
		slog.Info("[Guard] Found existing warehouse records",
			slog.String("subreddit", subreddit), slog.String("date", date), slog.Int("count", count))
		return true
	}
	slog.Info("[Guard] No existing warehouse records found",
		slog.String("subreddit", subreddit), slog.String("date", date))
	return false
}

// WarehouseHasTimeFilter probes for rows matching (subreddit, time_filter).
func WarehouseHasTimeFilter(ctx context.Context, prober WarehouseProber, table, subreddit, timeFilter string) bool {
	count, err := prober.CountPostsByTimeFilter(ctx, table, subreddit, timeFilter)
	if err != nil {
		slog.Warn("[Guard] Error checking existing warehouse data", slog.String("error", err.Error()))
		return false
	}
	return count > 0
}
