package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate ensures the configuration is usable. Missing credentials fail here
// so the server refuses to start rather than failing every request.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateFavorites(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if err := validate.Var(c.Server.Bind, "hostname_port"); err != nil {
		return fmt.Errorf("server.bind must be host:port, got %q", c.Server.Bind)
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return missingKeyError("llm.api_key", "OPENAI_API_KEY")
		}
		if err := validate.Var(c.LLM.BaseURL, "url"); err != nil {
			return fmt.Errorf("llm.base_url must be an absolute URL, got %q", c.LLM.BaseURL)
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return missingKeyError("gemini.api_key", "GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return ensurePositiveMap(map[string]int{
		"llm.max_tokens":      c.LLM.MaxTokens,
		"llm.timeout_seconds": c.LLM.TimeoutSeconds,
		"llm.retry_attempts":  c.LLM.RetryAttempts,
	})
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		return missingKeyError("tmdb.api_key", "TMDB_API_KEY")
	}
	if err := validate.Var(c.TMDB.BaseURL, "url"); err != nil {
		return fmt.Errorf("tmdb.base_url must be an absolute URL, got %q", c.TMDB.BaseURL)
	}
	if err := validate.Var(c.TMDB.Language, "bcp47_language_tag"); err != nil {
		return fmt.Errorf("tmdb.language must be a language tag such as ko-KR, got %q", c.TMDB.Language)
	}
	if c.TMDB.TimeoutSeconds <= 0 {
		return errors.New("tmdb.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateFavorites() error {
	if c.Favorites.Capacity <= 0 {
		return errors.New("favorites.capacity must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func missingKeyError(field, env string) error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("%s is required. Set %s (environment or .env) or edit %s (create with 'cinechat config init')", field, env, defaultPath)
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
