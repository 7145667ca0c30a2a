package lang

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTranslatorSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hi", body["source"])
		assert.Equal(t, "en", body["target"])
		_, _ = w.Write([]byte(`{"translatedText":"where is the office"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, 0, nil)
	out, err := tr.Translate(context.Background(), "कार्यालय कहाँ है", "hi", "en")
	require.NoError(t, err)
	assert.Equal(t, "where is the office", out)
}

func TestHTTPTranslatorDegradesThrough(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
		{"empty translation", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"translatedText":""}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			tr := NewHTTPTranslator(srv.URL, 0, nil)
			out, err := tr.Translate(context.Background(), "original text", "hi", "en")
			assert.NoError(t, err, "translation failure must never fail the caller")
			assert.Equal(t, "original text", out)
		})
	}
}

func TestHTTPTranslatorUnreachable(t *testing.T) {
	tr := NewHTTPTranslator("http://127.0.0.1:1", 0, nil)
	out, err := tr.Translate(context.Background(), "original text", "hi", "en")
	assert.NoError(t, err)
	assert.Equal(t, "original text", out)
}

func TestTranslateSameLanguageShortCircuits(t *testing.T) {
	tr := NewHTTPTranslator("http://unused.invalid", 0, nil)
	out, err := tr.Translate(context.Background(), "text", "en", "en")
	require.NoError(t, err)
	assert.Equal(t, "text", out)
}

func TestNoopTranslator(t *testing.T) {
	out, err := NoopTranslator{}.Translate(context.Background(), "text", "hi", "en")
	require.NoError(t, err)
	assert.Equal(t, "text", out)
}
