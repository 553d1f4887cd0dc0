package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/config"
	"cinechat/internal/services/gemini"
	"cinechat/internal/services/llm"
)

const (
	llmCheckTimeout     = 30 * time.Second
	catalogCheckTimeout = 10 * time.Second
)

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckLLM verifies that the selected provider is reachable and the key is
// valid. It uses a single attempt with no retries.
func CheckLLM(ctx context.Context, cfg *config.Config) Result {
	name := "LLM (" + cfg.LLM.Provider + ")"
	if strings.TrimSpace(cfg.ProviderAPIKey()) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	var checker healthChecker
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		checker = gemini.NewClient(gemini.Config{
			APIKey:         cfg.Gemini.APIKey,
			Model:          cfg.Gemini.Model,
			TimeoutSeconds: int(llmCheckTimeout / time.Second),
		})
	default:
		checker = llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			TimeoutSeconds: int(llmCheckTimeout / time.Second),
		}, llm.WithRetryMaxAttempts(1))
	}

	checkCtx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()

	if err := checker.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err, "LLM API")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (%s)", cfg.ProviderModel())}
}

// CheckCatalog verifies catalog connectivity and authentication by fetching
// the genre list.
func CheckCatalog(ctx context.Context, cfg *config.Config) Result {
	const name = "TMDB"
	if strings.TrimSpace(cfg.TMDB.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, tmdb.WithTimeout(catalogCheckTimeout))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, catalogCheckTimeout)
	defer cancel()

	genres, err := client.Genres(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err, "catalog")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (%d genres)", len(genres))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeError produces a human-readable summary for health check failures.
func summarizeError(err error, service string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("health check timed out (%s unresponsive)", service)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("health check timed out (%s unreachable)", service)
	}
	return err.Error()
}
