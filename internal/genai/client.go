package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"rozgar/internal/domain"
)

// Client talks to an OpenAI-compatible chat completions endpoint. Calls are
// time-bounded; transient failures are retried a small bounded number of
// times with exponential backoff, then surfaced as domain.ErrGenerationFailed.
// The assistant never fabricates a response on failure.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	maxRetries uint64
	client     *http.Client
}

type Config struct {
	Endpoint   string
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
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com"
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
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     key,
		model:      cfg.Model,
		maxRetries: uint64(retries),
		client:     &http.Client{Timeout: t},
	}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	var text string
	op := func() error {
		t, err := c.generateOnce(ctx, prompt, maxTokens, temperature)
		if err != nil {
			return err
		}
		text = t
		return nil
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return "", fmt.Errorf("generate: %v: %w", err, domain.ErrGenerationFailed)
	}
	return text, nil
}

func (c *Client) generateOnce(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("chat completion failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return "", backoff.Permanent(fmt.Errorf("chat completion rejected: %s", resp.Status))
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", backoff.Permanent(errors.New("no choices returned"))
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", backoff.Permanent(errors.New("empty completion"))
	}
	return text, nil
}

// Mock is an offline generator for local development and tests. It echoes a
// short acknowledgment built from the prompt's final line.
type Mock struct{}

func NewMock() Mock { return Mock{} }

func (Mock) Generate(_ context.Context, prompt string, _ int, _ float64) (string, error) {
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	last := lines[len(lines)-1]
	return "[offline] I received: " + strings.TrimPrefix(last, "Question: "), nil
}
