// Package gemini implements the embedding client against the Gemini
// embedContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"docindex/internal/domain"
	"docindex/internal/embedding"
)

const (
	defaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel     = "models/text-embedding-004"
	defaultDimension = 768
	defaultTimeout   = 30 * time.Second
	defaultRPS       = 10.0
)

// Config configures the Gemini embeddings client.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Dimension         int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Policy            embedding.Policy
	OnProgress        embedding.ProgressFunc
}

// Client calls the Gemini embedContent endpoint, one request per chunk,
// spacing requests through a token bucket and retrying transient failures
// under the configured policy.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	client     *http.Client
	limiter    *rate.Limiter
	policy     embedding.Policy
	onProgress embedding.ProgressFunc

	mu      sync.Mutex
	retryAt time.Time
}

var _ domain.Embedder = (*Client)(nil)

// NewClient creates an embeddings client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = defaultDimension
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Burst == 0 {
		cfg.Burst = 1
	}
	if cfg.Policy.MaxAttempts == 0 {
		cfg.Policy = embedding.DefaultPolicy()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		policy:     cfg.Policy,
		onProgress: cfg.OnProgress,
	}, nil
}

// Dimension returns the agreed vector dimensionality.
func (c *Client) Dimension() int { return c.dimension }

// EmbedAll embeds every chunk in order, one result per chunk. A chunk whose
// retries are exhausted yields a failed result carrying the last error;
// later chunks are still processed.
func (c *Client) EmbedAll(ctx context.Context, chunks []domain.Chunk) []domain.EmbeddingResult {
	results := make([]domain.EmbeddingResult, len(chunks))
	for i, chunk := range chunks {
		vector, err := c.EmbedOne(ctx, chunk.Text)
		if err != nil {
			results[i] = domain.EmbeddingResult{Index: chunk.Index, Status: domain.EmbedFailed, Err: err}
		} else {
			results[i] = domain.EmbeddingResult{Index: chunk.Index, Vector: vector, Status: domain.EmbedOK}
		}
		if c.onProgress != nil {
			c.onProgress(i+1, len(chunks))
		}
	}
	return results
}

// EmbedOne embeds a single text, retrying transient failures with
// exponential backoff until the policy's attempt budget runs out.
func (c *Client) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	// Empty text embeds to the zero vector without a network round trip.
	if strings.TrimSpace(text) == "" {
		return make([]float64, c.dimension), nil
	}
	var lastErr error
	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := c.policy.Delay(attempt - 1)
			var te *embedding.TransientError
			if errors.As(lastErr, &te) && te.RetryAfter > wait {
				wait = te.RetryAfter
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		vector, err := c.embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
		if !embedding.IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// TestConnection embeds a short probe text and checks the dimensionality,
// verifying credentials and connectivity in one round trip.
func (c *Client) TestConnection(ctx context.Context) error {
	vector, err := c.EmbedOne(ctx, "connection test")
	if err != nil {
		return err
	}
	if len(vector) != c.dimension {
		return fmt.Errorf("%w: got %d, want %d", embedding.ErrDimensionMismatch, len(vector), c.dimension)
	}
	return nil
}

func (c *Client) embed(ctx context.Context, text string) ([]float64, error) {
	// Honor a rate-limit backoff window set by an earlier 429 before
	// consulting the token bucket.
	c.mu.Lock()
	retryAt := c.retryAt
	c.mu.Unlock()
	if wait := time.Until(retryAt); wait > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body := embedRequest{
		Model:   c.model,
		Content: content{Parts: []part{{Text: text}}},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/%s:embedContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &embedding.TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		if retryAfter > 0 {
			c.mu.Lock()
			c.retryAt = time.Now().Add(retryAfter)
			c.mu.Unlock()
		}
		return nil, &embedding.TransientError{
			Err:         fmt.Errorf("embed request rejected: %s", resp.Status),
			RateLimited: true,
			RetryAfter:  retryAfter,
		}
	case resp.StatusCode >= 500:
		return nil, &embedding.TransientError{Err: fmt.Errorf("embed request failed: %s", resp.Status)}
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("embed request failed: %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &embedding.TransientError{Err: fmt.Errorf("decode embed response: %w", err)}
	}
	values := out.Embedding.Values
	if len(values) != c.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", embedding.ErrDimensionMismatch, len(values), c.dimension)
	}
	return values, nil
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
