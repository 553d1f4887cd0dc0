// Package llm provides an OpenAI-compatible chat completion client used to
// turn free-text movie requests into structured search criteria.
//
// # Request Shape
//
// Each call sends one system instruction and one user message with the
// configured model, max_tokens, and temperature (0 by default). When JSONMode
// is enabled the request sets response_format=json_object.
//
// # Configuration
//
// Requires api_key; base_url, model, max_tokens, and timeout fall back to
// defaults (OpenAI endpoint, gpt-3.5-turbo, 150 tokens, 10s).
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive the raw completion text.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// A single attempt is made by default. WithRetryMaxAttempts enables retries
// on HTTP 408/429/5xx errors and network timeouts with exponential backoff
// (base 1s, max 10s). Context cancellation aborts retries immediately.
package llm
