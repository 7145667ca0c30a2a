package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"rozgar/internal/domain"
)

// Client talks to an OpenAI-compatible embeddings endpoint. Calls are
// time-bounded and retried a small bounded number of times with exponential
// backoff; a call that still fails surfaces domain.ErrEmbeddingUnavailable so
// callers can tell "retrieval failed" apart from "nothing relevant found".
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries uint64
	dimension  int
	client     *http.Client
}

type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		maxRetries: uint64(retries),
		client:     &http.Client{Timeout: t},
	}, nil
}

func (c *Client) Name() string { return "openai" }

// Prepare is not required for remote embedding; the dimension is set lazily
// on first embed.
func (c *Client) Prepare(corpus []string) error { return nil }

func (c *Client) Dimension() int { return c.dimension }

func (c *Client) Embed(ctx context.Context, text, languageHint string) ([]float64, error) {
	var vec []float64
	op := func() error {
		v, err := c.embedOnce(ctx, text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("embed (lang %q): %v: %w", languageHint, err, domain.ErrEmbeddingUnavailable)
	}
	if c.dimension == 0 {
		c.dimension = len(vec)
	}
	return vec, nil
}

func (c *Client) embedOnce(ctx context.Context, text string) ([]float64, error) {
	type reqBody struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}
	data, _ := json.Marshal(reqBody{Input: text, Model: c.model})
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("embeddings call failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		// Client errors will not heal on retry.
		return nil, backoff.Permanent(fmt.Errorf("embeddings call rejected: %s", resp.Status))
	}
	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, backoff.Permanent(errors.New("no embedding returned"))
	}
	return out.Data[0].Embedding, nil
}
