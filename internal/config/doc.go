// Package config loads, normalizes, and validates cinechat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file from the working directory,
// and honours environment fallbacks such as OPENAI_API_KEY, GEMINI_API_KEY and
// TMDB_API_KEY. Validation fails when the catalog key or the key for the
// selected language model provider is missing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
