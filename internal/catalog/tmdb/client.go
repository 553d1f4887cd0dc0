package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinechat/internal/services"
)

const defaultHTTPTimeout = 10 * time.Second

// Movie is a single discovery match. The catalog's native record is retained
// so it can be relayed without loss.
type Movie struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	BackdropPath  string  `json:"backdrop_path"`
	PosterPath    string  `json:"poster_path"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int64   `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
	GenreIDs      []int   `json:"genre_ids"`

	raw json.RawMessage
}

type movieFields Movie

// UnmarshalJSON decodes the typed fields and keeps the original bytes.
func (m *Movie) UnmarshalJSON(data []byte) error {
	var fields movieFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = Movie(fields)
	m.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON relays the catalog's record verbatim when one was decoded.
func (m Movie) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	return json.Marshal(movieFields(m))
}

// DisplayTitle prefers the localized title and falls back to the original.
func (m Movie) DisplayTitle() string {
	if title := strings.TrimSpace(m.Title); title != "" {
		return title
	}
	return strings.TrimSpace(m.OriginalTitle)
}

// Response models the paginated discovery response.
type Response struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Genre is one entry from the catalog's genre list.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Discoverer defines the catalog operations used by the search pipeline.
type Discoverer interface {
	Discover(ctx context.Context, query DiscoverQuery) (*Response, error)
}

// Client provides access to the TMDB discovery API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Discoverer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the request timeout, keeping any client set by
// WithHTTPClient. The caller's client is copied, not mutated.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			return
		}
		clone := *c.httpClient
		clone.Timeout = timeout
		c.httpClient = &clone
	}
}

// New creates a TMDB client. apiKey is the v4 read access token sent as a
// bearer credential; language is forced onto every discovery request.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Language returns the locale forced onto discovery requests.
func (c *Client) Language() string {
	return c.language
}

// Discover runs a discovery search. Genre and country are optional; sort
// order and page fall back to popularity.desc and 1.
func (c *Client) Discover(ctx context.Context, query DiscoverQuery) (*Response, error) {
	query = query.WithDefaults()
	if c.language != "" {
		query.Language = c.language
	}
	var payload Response
	if err := c.get(ctx, "/discover/movie", query.Values(), "discover", &payload); err != nil {
		return nil, err
	}
	if payload.Results == nil {
		payload.Results = []Movie{}
	}
	return &payload, nil
}

// Genres fetches the catalog's movie genre list in the configured language.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	params := url.Values{}
	if c.language != "" {
		params.Set(ParamLanguage, c.language)
	}
	var payload struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", params, "genre list", &payload); err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, op string, target any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "tmdb", op, "parse url", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "tmdb", op, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "tmdb", op, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "tmdb", op, "read body", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return services.Wrap(services.ErrUpstream, "tmdb", op,
			fmt.Sprintf("tmdb %s returned %d (latency=%v): %s", op, resp.StatusCode, latency, statusMessage(body)), nil)
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(target); err != nil {
		return services.Wrap(services.ErrUpstream, "tmdb", op, "decode response", err)
	}
	return nil
}

// statusMessage extracts TMDB's status_message, falling back to the raw body.
func statusMessage(body []byte) string {
	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.StatusMessage) != "" {
		return strings.TrimSpace(payload.StatusMessage)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(http.StatusBadGateway)
	}
	const limit = 200
	if runes := []rune(text); len(runes) > limit {
		text = string(runes[:limit]) + "..."
	}
	return text
}
