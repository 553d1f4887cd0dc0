package testsupport

import (
	"path/filepath"
	"testing"

	"cinechat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are filled with placeholders so the config validates.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.LLM.APIKey = "test-llm"
	cfgVal.Gemini.APIKey = "test-gemini"
	cfgVal.TMDB.APIKey = "test-tmdb"
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.DataDir = filepath.Join(base, "data")
	cfgVal.Favorites.Path = filepath.Join(base, "data", "favorites.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithLLMURL points the OpenAI-compatible client at url.
func WithLLMURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithTMDBURL points the catalog client at url.
func WithTMDBURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = url
	}
}

// WithAPIToken enables bearer authentication on the HTTP server.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.APIToken = token
	}
}

// WithFavoritesCapacity overrides the favorites store capacity.
func WithFavoritesCapacity(capacity int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Favorites.Capacity = capacity
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Server.DataDir)
}
