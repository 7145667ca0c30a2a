package domain

import "context"

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text, languageHint string) ([]float64, error)
}

// VectorIndex owns the vector-to-chunk mapping and supports cosine
// similarity search. Add must be incremental; a full rebuild is allowed only
// as an explicit maintenance operation.
type VectorIndex interface {
	Init(dimension int) error
	Add(chunk Chunk, vector []float64) error
	Query(vector []float64, k int) ([]RetrievedChunk, error)
	Remove(chunkID string) error
	Len() int
}

// Retriever embeds a query and returns the most relevant chunks with scores,
// ordered by non-increasing score.
type Retriever interface {
	Retrieve(ctx context.Context, query, language string, k int) ([]RetrievedChunk, error)
}

// Generator is the external text completion service.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Translator normalizes text between languages. Implementations degrade by
// returning the original text when translation is unavailable.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// ConversationStore owns turn history per session.
type ConversationStore interface {
	Append(ctx context.Context, turn Turn) error
	Recent(ctx context.Context, sessionID string, limit int) ([]Turn, error)
}

// PreferenceStore owns preference state per session, last write wins.
type PreferenceStore interface {
	Put(ctx context.Context, prefs Preferences) error
	Get(ctx context.Context, sessionID string) (Preferences, error)
}

// JobCatalog provides the candidate listings to rank.
type JobCatalog interface {
	Listings(ctx context.Context) ([]JobListing, error)
}

// DocumentStore persists documents and their chunks. ReplaceDocument swaps a
// document's chunk set atomically and reports the superseded chunk IDs.
type DocumentStore interface {
	ReplaceDocument(ctx context.Context, doc Document, chunks []Chunk) (removed []string, err error)
	Chunks(ctx context.Context, documentID string) ([]Chunk, error)
	AllChunks(ctx context.Context) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
