package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPTranslator is a client for a LibreTranslate-style translation endpoint.
// Translation is a best-effort normalization step: any failure degrades to
// passing the original text through unmodified, never failing the turn.
type HTTPTranslator struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewHTTPTranslator(url string, timeout time.Duration, log *zap.Logger) *HTTPTranslator {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPTranslator{url: url, client: &http.Client{Timeout: timeout}, log: log}
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == targetLang || text == "" {
		return text, nil
	}
	body := map[string]string{"q": text, "source": sourceLang, "target": targetLang}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url+"/translate", bytes.NewReader(data))
	if err != nil {
		return text, nil
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Warn("translation unavailable, passing text through",
			zap.String("source", sourceLang), zap.String("target", targetLang), zap.Error(err))
		return text, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		t.log.Warn("translation rejected, passing text through",
			zap.String("status", resp.Status))
		return text, nil
	}
	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.TranslatedText == "" {
		return text, nil
	}
	return out.TranslatedText, nil
}

// NoopTranslator passes text through; used when no translation service is
// configured or the index is multilingual.
type NoopTranslator struct{}

func (NoopTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
