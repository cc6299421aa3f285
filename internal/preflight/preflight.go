package preflight

import (
	"context"

	"theoraprobe/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Log directory", cfg.Paths.LogDir)}
	if cfg.History.Enabled {
		results = append(results, CheckHistoryDB(ctx, cfg.Paths.HistoryDB))
	}
	return results
}
