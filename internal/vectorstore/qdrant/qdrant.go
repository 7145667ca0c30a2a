package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"rozgar/internal/domain"
)

// Index is a minimal REST client to Qdrant implementing domain.VectorIndex.
// It assumes cosine distance and creates the collection if missing.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu        sync.RWMutex
	dimension int
	ids       map[string]struct{}
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewIndex(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
		ids:        make(map[string]struct{}),
	}
}

func (ix *Index) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	ix.mu.Lock()
	ix.dimension = dimension
	ix.ids = make(map[string]struct{})
	ix.mu.Unlock()
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return ix.putJSON(fmt.Sprintf("%s/collections/%s", ix.url, ix.collection), body)
}

func (ix *Index) Add(chunk domain.Chunk, vector []float64) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(vector) != ix.dimension {
		return fmt.Errorf("add %s: got %d, want %d: %w", chunk.ID, len(vector), ix.dimension, domain.ErrInvalidDimension)
	}
	body := map[string]any{
		"points": []map[string]any{{
			"id":     chunk.ID,
			"vector": vector,
			"payload": map[string]any{
				"document_id": chunk.DocumentID,
				"index":       chunk.Index,
				"text":        chunk.Text,
				"length":      chunk.Length,
				"overlap":     chunk.Overlap,
			},
		}},
	}
	if err := ix.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", ix.url, ix.collection), body); err != nil {
		return err
	}
	// Qdrant upserts, so re-adding an existing point must not grow Len.
	ix.ids[chunk.ID] = struct{}{}
	return nil
}

func (ix *Index) Query(vector []float64, k int) ([]domain.RetrievedChunk, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(vector) != ix.dimension {
		return nil, fmt.Errorf("query: got %d, want %d: %w", len(vector), ix.dimension, domain.ErrInvalidDimension)
	}
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := ix.postJSON(fmt.Sprintf("%s/collections/%s/points/search", ix.url, ix.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.RetrievedChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := domain.Chunk{ID: r.ID}
		if v, ok := r.Payload["document_id"].(string); ok {
			chunk.DocumentID = v
		}
		if v, ok := r.Payload["index"].(float64); ok {
			chunk.Index = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			chunk.Text = v
		}
		if v, ok := r.Payload["length"].(float64); ok {
			chunk.Length = int(v)
		}
		if v, ok := r.Payload["overlap"].(float64); ok {
			chunk.Overlap = int(v)
		}
		results = append(results, domain.RetrievedChunk{Chunk: chunk, Score: r.Score})
	}
	return results, nil
}

func (ix *Index) Remove(chunkID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	body := map[string]any{"points": []string{chunkID}}
	if err := ix.postJSON(fmt.Sprintf("%s/collections/%s/points/delete?wait=true", ix.url, ix.collection), body, nil); err != nil {
		return err
	}
	delete(ix.ids, chunkID)
	return nil
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

func (ix *Index) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (ix *Index) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
