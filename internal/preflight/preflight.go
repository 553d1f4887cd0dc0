package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"cinechat/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every applicable preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Server.DataDir))
	if dir := filepath.Dir(cfg.Favorites.Path); dir != filepath.Clean(cfg.Server.DataDir) {
		results = append(results, CheckDirectoryAccess("Favorites directory", dir))
	}
	if dir := strings.TrimSpace(cfg.Logging.Dir); dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", dir))
	}

	results = append(results, CheckLLM(ctx, cfg))
	results = append(results, CheckCatalog(ctx, cfg))
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
