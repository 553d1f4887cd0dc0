package config

const (
	defaultConfigPath        = "~/.config/cinechat/config.toml"
	projectConfigName        = "cinechat.toml"
	defaultBind              = "127.0.0.1:7488"
	defaultDataDir           = "~/.local/share/cinechat"
	defaultFavoritesPath     = "~/.local/share/cinechat/favorites.db"
	defaultFavoritesCapacity = 10
	defaultLLMProvider       = ProviderOpenAI
	defaultLLMBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel          = "gpt-3.5-turbo"
	defaultLLMMaxTokens      = 150
	defaultLLMTimeoutSeconds = 10
	defaultLLMRetryAttempts  = 1
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultTMDBLanguage      = "ko-KR"
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDBTimeout       = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:    defaultBind,
			DataDir: defaultDataDir,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			MaxTokens:      defaultLLMMaxTokens,
			Temperature:    0,
			JSONMode:       true,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Gemini: Gemini{
			Model: defaultGeminiModel,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			Language:       defaultTMDBLanguage,
			TimeoutSeconds: defaultTMDBTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Favorites: Favorites{
			Path:     defaultFavoritesPath,
			Capacity: defaultFavoritesCapacity,
		},
	}
}
