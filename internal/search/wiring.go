package search

import (
	"fmt"
	"log/slog"
	"time"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/config"
	"cinechat/internal/criteria"
	"cinechat/internal/services"
	"cinechat/internal/services/gemini"
	"cinechat/internal/services/llm"
)

// NewCompleter builds the language model client selected by llm.provider.
func NewCompleter(cfg *config.Config) (criteria.Completer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI, "":
		return llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			MaxTokens:      cfg.LLM.MaxTokens,
			Temperature:    cfg.LLM.Temperature,
			JSONMode:       cfg.LLM.JSONMode,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}, llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts)), nil
	case config.ProviderGemini:
		return gemini.NewClient(gemini.Config{
			APIKey:         cfg.Gemini.APIKey,
			Model:          cfg.Gemini.Model,
			MaxTokens:      cfg.LLM.MaxTokens,
			Temperature:    cfg.LLM.Temperature,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "search", "wire", fmt.Sprintf("unsupported llm provider %q", cfg.LLM.Provider), nil)
	}
}

// NewCatalog builds the TMDB client from configuration.
func NewCatalog(cfg *config.Config) (*tmdb.Client, error) {
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithTimeout(time.Duration(cfg.TMDB.TimeoutSeconds)*time.Second))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "search", "wire", "tmdb client", err)
	}
	return client, nil
}

// NewFromConfig assembles a Pipeline using the configured provider and catalog.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "search", "wire", "config is required", nil)
	}
	completer, err := NewCompleter(cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := NewCatalog(cfg)
	if err != nil {
		return nil, err
	}
	extractor := criteria.NewExtractor(completer, logger)
	normalizer := criteria.NewNormalizer(cfg.TMDB.Language, logger)
	return NewPipeline(extractor, normalizer, catalog, logger, opts...), nil
}
