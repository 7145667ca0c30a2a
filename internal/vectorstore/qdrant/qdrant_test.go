package qdrant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rozgar/internal/domain"
)

func newFakeQdrant(t *testing.T) (*Index, *[]string) {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		switch r.URL.Path {
		case "/collections/docs/points/search":
			_, _ = w.Write([]byte(`{"result":[
				{"id":"c1","score":0.93,"payload":{"document_id":"d1","index":0,"text":"chunk text","length":10,"overlap":0}},
				{"id":"c2","score":0.41,"payload":{"document_id":"d1","index":1,"text":"other","length":5,"overlap":2}}
			]}`))
		default:
			_, _ = w.Write([]byte(`{"result":true}`))
		}
	}))
	t.Cleanup(srv.Close)
	return NewIndex(Config{URL: srv.URL, APIKey: "secret", Collection: "docs"}), &paths
}

func TestInitCreatesCollection(t *testing.T) {
	ix, paths := newFakeQdrant(t)
	require.NoError(t, ix.Init(3))
	require.Len(t, *paths, 1)
	assert.Equal(t, "PUT /collections/docs", (*paths)[0])

	assert.Error(t, ix.Init(0))
}

func TestAddAndRemoveTrackCount(t *testing.T) {
	ix, _ := newFakeQdrant(t)
	require.NoError(t, ix.Init(3))

	require.NoError(t, ix.Add(domain.Chunk{ID: "c1", DocumentID: "d1", Text: "chunk text"}, []float64{1, 0, 0}))
	assert.Equal(t, 1, ix.Len())

	err := ix.Add(domain.Chunk{ID: "bad"}, []float64{1, 0})
	assert.ErrorIs(t, err, domain.ErrInvalidDimension)
	assert.Equal(t, 1, ix.Len())

	require.NoError(t, ix.Remove("c1"))
	assert.Equal(t, 0, ix.Len())

	// Removing an absent ID stays at zero.
	require.NoError(t, ix.Remove("missing"))
	assert.Equal(t, 0, ix.Len())
}

func TestAddSamePointTwiceIsUpsert(t *testing.T) {
	ix, _ := newFakeQdrant(t)
	require.NoError(t, ix.Init(3))

	require.NoError(t, ix.Add(domain.Chunk{ID: "c1"}, []float64{1, 0, 0}))
	require.NoError(t, ix.Add(domain.Chunk{ID: "c1"}, []float64{0, 1, 0}))
	assert.Equal(t, 1, ix.Len(), "re-adding an existing point must not grow the count")

	require.NoError(t, ix.Add(domain.Chunk{ID: "c2"}, []float64{0, 0, 1}))
	assert.Equal(t, 2, ix.Len())
}

func TestAddSendsChunkPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/docs/points" {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		}
		_, _ = w.Write([]byte(`{"result":true}`))
	}))
	defer srv.Close()

	ix := NewIndex(Config{URL: srv.URL, Collection: "docs"})
	require.NoError(t, ix.Init(2))
	require.NoError(t, ix.Add(domain.Chunk{ID: "d1@r:0", DocumentID: "d1", Index: 0, Text: "hello", Length: 5}, []float64{1, 0}))

	points, ok := got["points"].([]any)
	require.True(t, ok)
	require.Len(t, points, 1)
	point := points[0].(map[string]any)
	assert.Equal(t, "d1@r:0", point["id"])
	payload := point["payload"].(map[string]any)
	assert.Equal(t, "d1", payload["document_id"])
	assert.Equal(t, "hello", payload["text"])
}

func TestQueryMapsPayloadToChunks(t *testing.T) {
	ix, _ := newFakeQdrant(t)
	require.NoError(t, ix.Init(3))

	results, err := ix.Query([]float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].Chunk.ID)
	assert.Equal(t, "d1", results[0].Chunk.DocumentID)
	assert.Equal(t, "chunk text", results[0].Chunk.Text)
	assert.InDelta(t, 0.93, results[0].Score, 1e-9)
	assert.Equal(t, 2, results[1].Chunk.Overlap)

	_, err = ix.Query([]float64{1, 0}, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidDimension)
}

func TestQueryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/docs/points/search" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"result":true}`))
	}))
	defer srv.Close()

	ix := NewIndex(Config{URL: srv.URL, Collection: "docs"})
	require.NoError(t, ix.Init(2))
	_, err := ix.Query([]float64{1, 0}, 2)
	assert.Error(t, err)
}
