package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cinechat/internal/services/llm"
)

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 150
	defaultTimeout   = 10 * time.Second
	jsonMIMEType     = "application/json"
)

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey         string
	Model          string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
}

// generateFunc performs one generation call and returns the response.
type generateFunc func(ctx context.Context, systemPrompt, userPrompt string) (*genai.GenerateContentResponse, error)

// Client wraps the Gemini generateContent API behind the same
// system/user prompt contract as the OpenAI-compatible client.
type Client struct {
	cfg      Config
	timeout  time.Duration
	generate generateFunc
}

// Option customizes the client.
type Option func(*Client)

// withGenerator replaces the SDK call; used by tests.
func withGenerator(fn generateFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.generate = fn
		}
	}
}

// NewClient constructs a Gemini client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			Model:          strings.TrimSpace(cfg.Model),
			MaxTokens:      cfg.MaxTokens,
			Temperature:    cfg.Temperature,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		timeout: defaultTimeout,
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	if client.cfg.MaxTokens <= 0 {
		client.cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.TimeoutSeconds > 0 {
		client.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client.generate = client.generateContent
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// CompleteJSON sends the prompts with a JSON response MIME type and returns
// the first text part of the first candidate.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" {
		return "", errors.New("gemini complete: system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New("gemini complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("gemini complete: api key required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("gemini complete: %w", err)
	}
	text := firstText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini complete: empty response (finish_reason=%s)", finishReason(resp))
	}
	return text, nil
}

// HealthCheck asks the model for a fixed JSON object to confirm the key and
// model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx, "You must respond with JSON only.", `Respond with {"ok":true}`)
	if err != nil {
		return fmt.Errorf("gemini health: %w", err)
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFence(content)), &parsed); err != nil {
		return fmt.Errorf("gemini health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("gemini health: unexpected response")
	}
	return nil
}

func (c *Client) generateContent(ctx context.Context, systemPrompt, userPrompt string) (*genai.GenerateContentResponse, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.cfg.APIKey))
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.cfg.Model)
	if m == nil {
		return nil, errors.New("model is nil")
	}
	m.SetTemperature(float32(c.cfg.Temperature))
	m.SetMaxOutputTokens(int32(c.cfg.MaxTokens))
	m.ResponseMIMEType = jsonMIMEType
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	return m.GenerateContent(ctx, genai.Text(userPrompt))
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				if trimmed := strings.TrimSpace(string(t)); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "none"
	}
	return resp.Candidates[0].FinishReason.String()
}
