package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rozgar/internal/domain"
)

type fakeEmbedder struct {
	vec     []float64
	err     error
	gotHint string
}

func (f *fakeEmbedder) Name() string                  { return "fake" }
func (f *fakeEmbedder) Prepare(corpus []string) error { return nil }
func (f *fakeEmbedder) Dimension() int                { return len(f.vec) }
func (f *fakeEmbedder) Embed(_ context.Context, _, hint string) ([]float64, error) {
	f.gotHint = hint
	return f.vec, f.err
}

type fakeIndex struct {
	results []domain.RetrievedChunk
	gotK    int
	err     error
}

func (f *fakeIndex) Init(int) error                    { return nil }
func (f *fakeIndex) Add(domain.Chunk, []float64) error { return nil }
func (f *fakeIndex) Remove(string) error               { return nil }
func (f *fakeIndex) Len() int                          { return len(f.results) }
func (f *fakeIndex) Query(_ []float64, k int) ([]domain.RetrievedChunk, error) {
	f.gotK = k
	return f.results, f.err
}

type recordingTranslator struct {
	calls  int
	target string
	out    string
	err    error
}

func (r *recordingTranslator) Translate(_ context.Context, text, _, target string) (string, error) {
	r.calls++
	r.target = target
	if r.err != nil {
		return text, r.err
	}
	return r.out, nil
}

func TestRetrieveSuccess(t *testing.T) {
	ix := &fakeIndex{results: []domain.RetrievedChunk{{Chunk: domain.Chunk{ID: "c1"}, Score: 0.9}}}
	r := New(&fakeEmbedder{vec: []float64{1, 0}}, ix, nil, "", nil)

	results, err := r.Retrieve(context.Background(), "query", "en", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Chunk.ID)
	assert.Equal(t, 3, ix.gotK)
}

func TestRetrieveFailsClosedOnEmbeddingError(t *testing.T) {
	emb := &fakeEmbedder{err: domain.ErrEmbeddingUnavailable}
	r := New(emb, &fakeIndex{}, nil, "", nil)

	results, err := r.Retrieve(context.Background(), "query", "en", 3)
	assert.Nil(t, results, "no silent empty result on embedding failure")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetrievePropagatesIndexError(t *testing.T) {
	ix := &fakeIndex{err: domain.ErrInvalidDimension}
	r := New(&fakeEmbedder{vec: []float64{1}}, ix, nil, "", nil)

	_, err := r.Retrieve(context.Background(), "query", "en", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidDimension)
}

func TestRetrieveTranslatesToIndexLanguage(t *testing.T) {
	tr := &recordingTranslator{out: "translated query"}
	emb := &fakeEmbedder{vec: []float64{1}}
	r := New(emb, &fakeIndex{}, tr, "en", nil)

	_, err := r.Retrieve(context.Background(), "मूल प्रश्न", "hi", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.calls)
	assert.Equal(t, "en", tr.target)
	// The translated text is in the index language, so the embedder must be
	// hinted with that language, not the query's.
	assert.Equal(t, "en", emb.gotHint)
}

func TestRetrieveSkipsTranslationForIndexLanguage(t *testing.T) {
	tr := &recordingTranslator{out: "unused"}
	r := New(&fakeEmbedder{vec: []float64{1}}, &fakeIndex{}, tr, "en", nil)

	_, err := r.Retrieve(context.Background(), "plain query", "en", 3)
	require.NoError(t, err)
	assert.Zero(t, tr.calls)
}

func TestRetrieveDegradesThroughTranslationFailure(t *testing.T) {
	tr := &recordingTranslator{err: errors.New("translator down")}
	emb := &fakeEmbedder{vec: []float64{1}}
	r := New(emb, &fakeIndex{}, tr, "en", nil)

	// The original query still gets embedded; translation failure is not fatal.
	_, err := r.Retrieve(context.Background(), "मूल प्रश्न", "hi", 3)
	assert.NoError(t, err)
	assert.Equal(t, 1, tr.calls)
	assert.Equal(t, "hi", emb.gotHint, "untranslated text keeps the query's language hint")
}
