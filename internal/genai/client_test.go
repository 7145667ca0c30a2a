package genai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rozgar/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("TEST_GENAI_KEY", "test-key")
	c, err := NewClient(Config{Endpoint: srv.URL, APIKeyEnv: "TEST_GENAI_KEY", Model: "test-model", MaxRetries: 1})
	require.NoError(t, err)
	return c
}

func TestGenerateSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Here is the answer.  "}}]}`))
	})

	text, err := c.Generate(context.Background(), "prompt", 256, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "Here is the answer.", text)
}

func TestGenerateRetriesThenFails(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	text, err := c.Generate(context.Background(), "prompt", 256, 0.7)
	assert.Empty(t, text, "no fabricated response on failure")
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, 2, calls, "one retry after the first failure")
}

func TestGenerateClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.Generate(context.Background(), "prompt", 256, 0.7)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, 1, calls)
}

func TestGenerateEmptyCompletion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Generate(context.Background(), "prompt", 256, 0.7)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestMockEchoesQuestion(t *testing.T) {
	m := NewMock()
	out, err := m.Generate(context.Background(), "System framing.\n\nQuestion: where are the offices?", 256, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "[offline] I received: where are the offices?", out)
}
