package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Supported language model providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Server contains the HTTP bind address and runtime directories.
type Server struct {
	Bind     string `toml:"bind"`
	APIToken string `toml:"api_token"`
	DataDir  string `toml:"data_dir"`
}

// LLM configures criteria extraction. Provider selects which client is used;
// the OpenAI-compatible fields apply to "openai", the [gemini] section to
// "gemini". Temperature, max tokens and timeout apply to both.
type LLM struct {
	Provider       string  `toml:"provider"`
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	JSONMode       bool    `toml:"json_mode"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RetryAttempts  int     `toml:"retry_attempts"`
}

// Gemini contains Google Generative AI credentials.
type Gemini struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Favorites configures the saved-movie store.
type Favorites struct {
	Path     string `toml:"path"`
	Capacity int    `toml:"capacity"`
}

// Config encapsulates all configuration values for cinechat.
//
// Configuration sections by subsystem:
//   - Server: HTTP bind address, optional bearer token, data directory
//   - LLM: criteria extraction provider and request limits
//   - Gemini: credentials when llm.provider = "gemini"
//   - TMDB: catalog credentials and response language
//   - Logging: log format, level, and optional file directory
//   - Favorites: saved-movie store location and capacity
type Config struct {
	Server    Server    `toml:"server"`
	LLM       LLM       `toml:"llm"`
	Gemini    Gemini    `toml:"gemini"`
	TMDB      TMDB      `toml:"tmdb"`
	Logging   Logging   `toml:"logging"`
	Favorites Favorites `toml:"favorites"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A .env file in
// the working directory is read first; variables already present in the
// environment win. The returned config has all path fields expanded and
// credentials resolved.
func Load(path string) (*Config, string, bool, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, "", false, err
	}

	cfg, resolvedPath, exists, err := LoadUnchecked(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

// LoadUnchecked parses and normalizes configuration without validating it.
// `config validate` uses it so the resolved path can be reported alongside
// the validation result.
func LoadUnchecked(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log and favorites directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Server.DataDir, filepath.Dir(c.Favorites.Path)}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the single-instance lock file used by the server.
func (c *Config) LockPath() string {
	return filepath.Join(c.Server.DataDir, "cinechat.lock")
}

// ProviderAPIKey returns the credential for the selected LLM provider.
func (c *Config) ProviderAPIKey() string {
	if c.LLM.Provider == ProviderGemini {
		return c.Gemini.APIKey
	}
	return c.LLM.APIKey
}

// ProviderModel returns the model for the selected LLM provider.
func (c *Config) ProviderModel() string {
	if c.LLM.Provider == ProviderGemini {
		return c.Gemini.Model
	}
	return c.LLM.Model
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
