package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cinechat/internal/config"
)

// isolate points HOME and the working directory at temp dirs and clears the
// credential variables so a developer's environment cannot leak into tests.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "TMDB_API_KEY", "CINECHAT_API_TOKEN"} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	home := isolate(t)
	t.Setenv("TMDB_API_KEY", "tmdb-env")
	t.Setenv("OPENAI_API_KEY", "openai-env")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, ".config", "cinechat", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if cfg.TMDB.APIKey != "tmdb-env" || cfg.LLM.APIKey != "openai-env" {
		t.Fatalf("expected keys from env, got tmdb=%q llm=%q", cfg.TMDB.APIKey, cfg.LLM.APIKey)
	}
	if cfg.Server.DataDir != filepath.Join(home, ".local", "share", "cinechat") {
		t.Fatalf("unexpected data dir %q", cfg.Server.DataDir)
	}
	if cfg.Favorites.Path != filepath.Join(home, ".local", "share", "cinechat", "favorites.db") {
		t.Fatalf("unexpected favorites path %q", cfg.Favorites.Path)
	}
	defaults := config.Default()
	if cfg.LLM.Model != "gpt-3.5-turbo" || cfg.LLM.MaxTokens != 150 || cfg.LLM.Temperature != 0 {
		t.Fatalf("unexpected llm defaults %#v", cfg.LLM)
	}
	if cfg.LLM.RetryAttempts != 1 {
		t.Fatalf("expected a single attempt by default, got %d", cfg.LLM.RetryAttempts)
	}
	if cfg.TMDB.Language != "ko-KR" || cfg.TMDB.BaseURL != defaults.TMDB.BaseURL {
		t.Fatalf("unexpected tmdb defaults %#v", cfg.TMDB)
	}
	if cfg.Favorites.Capacity != 10 {
		t.Fatalf("unexpected favorites capacity %d", cfg.Favorites.Capacity)
	}
	if cfg.LockPath() != filepath.Join(cfg.Server.DataDir, "cinechat.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Server.DataDir); err != nil || !info.IsDir() {
		t.Fatalf("expected data dir to exist: %v", err)
	}
}

func TestLoadFailsClosedWithoutCredentials(t *testing.T) {
	isolate(t)

	_, _, _, err := config.Load("")
	if err == nil || !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("expected missing llm key error, got %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "openai-env")
	_, _, _, err = config.Load("")
	if err == nil || !strings.Contains(err.Error(), "tmdb.api_key") {
		t.Fatalf("expected missing tmdb key error, got %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "cinechat.toml")

	type payload struct {
		Server struct {
			Bind string `toml:"bind"`
		} `toml:"server"`
		LLM struct {
			Provider string `toml:"provider"`
		} `toml:"llm"`
		Gemini struct {
			APIKey string `toml:"api_key"`
		} `toml:"gemini"`
		TMDB struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"tmdb"`
		Favorites struct {
			Capacity int `toml:"capacity"`
		} `toml:"favorites"`
	}
	custom := payload{}
	custom.Server.Bind = "0.0.0.0:9000"
	custom.LLM.Provider = "Gemini"
	custom.Gemini.APIKey = "gemini-file"
	custom.TMDB.APIKey = "abc123"
	custom.TMDB.BaseURL = "https://example.com/tmdb/"
	custom.Favorites.Capacity = 5
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.LLM.Provider != config.ProviderGemini {
		t.Fatalf("expected provider normalized to gemini, got %q", cfg.LLM.Provider)
	}
	if cfg.ProviderAPIKey() != "gemini-file" || cfg.ProviderModel() != config.Default().Gemini.Model {
		t.Fatalf("unexpected provider credentials %q / %q", cfg.ProviderAPIKey(), cfg.ProviderModel())
	}
	if cfg.TMDB.BaseURL != "https://example.com/tmdb" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.TMDB.BaseURL)
	}
	if cfg.Server.Bind != "0.0.0.0:9000" || cfg.Favorites.Capacity != 5 {
		t.Fatalf("unexpected overrides %#v %#v", cfg.Server, cfg.Favorites)
	}
}

func TestConfigFileValuesWinOverEnvironment(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "cinechat.toml")
	if err := os.WriteFile(configPath, []byte("[tmdb]\napi_key = \"file-tmdb\"\n[llm]\napi_key = \"file-llm\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TMDB_API_KEY", "env-tmdb")
	t.Setenv("OPENAI_API_KEY", "env-llm")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TMDB.APIKey != "file-tmdb" || cfg.LLM.APIKey != "file-llm" {
		t.Fatalf("expected file values, got tmdb=%q llm=%q", cfg.TMDB.APIKey, cfg.LLM.APIKey)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "already-set")
	// godotenv never overrides a variable that is present, even when empty.
	os.Unsetenv("TMDB_API_KEY")
	if err := os.WriteFile(".env", []byte("OPENAI_API_KEY=from-dotenv\nTMDB_API_KEY=tmdb-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "already-set" {
		t.Fatalf("expected existing env to win, got %q", cfg.LLM.APIKey)
	}
	if cfg.TMDB.APIKey != "tmdb-dotenv" {
		t.Fatalf("expected TMDB key from .env, got %q", cfg.TMDB.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.LLM.APIKey = "k"
		cfg.TMDB.APIKey = "k"
		return cfg
	}
	cases := map[string]func(*config.Config){
		"provider":    func(c *config.Config) { c.LLM.Provider = "claude" },
		"gemini key":  func(c *config.Config) { c.LLM.Provider = config.ProviderGemini },
		"temperature": func(c *config.Config) { c.LLM.Temperature = 3 },
		"max tokens":  func(c *config.Config) { c.LLM.MaxTokens = -1 },
		"retry":       func(c *config.Config) { c.LLM.RetryAttempts = -1 },
		"bind":        func(c *config.Config) { c.Server.Bind = "localhost" },
		"tmdb url":    func(c *config.Config) { c.TMDB.BaseURL = "not a url" },
		"language":    func(c *config.Config) { c.TMDB.Language = "korean!" },
		"capacity":    func(c *config.Config) { c.Favorites.Capacity = -2 },
		"log format":  func(c *config.Config) { c.Logging.Format = "xml" },
		"log level":   func(c *config.Config) { c.Logging.Level = "trace" },
	}
	valid := base()
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected defaults with keys to validate, got %v", err)
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("TMDB_API_KEY", "k")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.LLM.Provider != config.ProviderOpenAI || cfg.Favorites.Capacity != 10 {
		t.Fatalf("unexpected sample values %#v", cfg)
	}
}
