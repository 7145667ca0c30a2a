package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rozgar/internal/domain"
)

// IngestResult reports what one ingestion pass produced.
type IngestResult struct {
	Documents int
	Chunks    int
	Summary   string
}

// IngestFiles reads .txt files (globs allowed) and ingests them, using each
// file path as the document identifier.
func (a *Assistant) IngestFiles(ctx context.Context, paths []string, language string) (IngestResult, error) {
	var docs []domain.Document
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return IngestResult{}, err
			}
			docs = append(docs, domain.Document{ID: m, Text: string(data), Language: language})
		}
	}
	if len(docs) == 0 {
		return IngestResult{}, fmt.Errorf("no .txt documents found")
	}
	return a.Ingest(ctx, docs)
}

// Ingest chunks, embeds and indexes the given documents. Re-ingesting a
// document with an existing identifier replaces its prior chunks: the new
// chunks are committed to the store and index before the superseded ones are
// removed, so retrieval never sees a window with zero coverage.
//
// Corpus-fitted embedders are prepared over the full knowledge base (stored
// chunks plus this pass), not just the new documents. When that refit changes
// the vector dimension the index is rebuilt here, with the kept chunks
// re-embedded and re-added; a populated index is never cleared otherwise.
// Ingestion passes are serialized; chats proceed concurrently.
func (a *Assistant) Ingest(ctx context.Context, docs []domain.Document) (IngestResult, error) {
	a.ingestMu.Lock()
	defer a.ingestMu.Unlock()

	now := time.Now()
	rev := uuid.NewString()[:8]

	type ingested struct {
		doc    domain.Document
		chunks []domain.Chunk
	}
	var all []ingested
	var corpus []string
	var corpusText strings.Builder
	replacing := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if doc.IngestedAt.IsZero() {
			doc.IngestedAt = now
		}
		chunks, err := a.chunker.Chunk(doc)
		if err != nil {
			return IngestResult{}, fmt.Errorf("chunk %s: %w", doc.ID, err)
		}
		// Chunk IDs carry an ingestion revision so a replaced document's old
		// and new chunks can coexist in the index during the swap.
		for i := range chunks {
			chunks[i].ID = fmt.Sprintf("%s@%s:%d", doc.ID, rev, chunks[i].Index)
			corpus = append(corpus, chunks[i].Text)
		}
		corpusText.WriteString("\n")
		corpusText.WriteString(doc.Text)
		replacing[doc.ID] = struct{}{}
		all = append(all, ingested{doc: doc, chunks: chunks})
	}

	// Chunks of documents not replaced in this pass stay part of the corpus
	// and must survive any index rebuild.
	stored, err := a.documents.AllChunks(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("load stored chunks: %w", err)
	}
	var kept []domain.Chunk
	for _, ch := range stored {
		if _, ok := replacing[ch.DocumentID]; !ok {
			kept = append(kept, ch)
			corpus = append(corpus, ch.Text)
		}
	}

	if err := a.embedder.Prepare(corpus); err != nil {
		return IngestResult{}, fmt.Errorf("prepare embedder: %w", err)
	}

	// Embed everything first so a failing embedding service aborts the pass
	// before any store or index mutation.
	vectors := make(map[string][]float64, len(corpus))
	for _, ing := range all {
		for _, ch := range ing.chunks {
			vec, err := a.embedder.Embed(ctx, ch.Text, ing.doc.Language)
			if err != nil {
				return IngestResult{}, err
			}
			vectors[ch.ID] = vec
		}
	}

	dim := a.embedder.Dimension()
	if dim == 0 {
		for _, vec := range vectors {
			dim = len(vec)
			break
		}
	}
	if dim != a.dim {
		// Dimension change means the kept vectors are stale too: re-embed
		// them before touching the index, then rebuild in one pass.
		keptVectors := make(map[string][]float64, len(kept))
		for _, ch := range kept {
			vec, err := a.embedder.Embed(ctx, ch.Text, "")
			if err != nil {
				return IngestResult{}, err
			}
			keptVectors[ch.ID] = vec
		}
		if err := a.index.Init(dim); err != nil {
			return IngestResult{}, err
		}
		a.dim = dim
		for _, ch := range kept {
			if err := a.index.Add(ch, keptVectors[ch.ID]); err != nil {
				return IngestResult{}, err
			}
		}
	}

	total := 0
	for _, ing := range all {
		removed, err := a.documents.ReplaceDocument(ctx, ing.doc, ing.chunks)
		if err != nil {
			return IngestResult{}, fmt.Errorf("store %s: %w", ing.doc.ID, err)
		}
		for _, ch := range ing.chunks {
			if err := a.index.Add(ch, vectors[ch.ID]); err != nil {
				return IngestResult{}, err
			}
		}
		for _, id := range removed {
			if err := a.index.Remove(id); err != nil {
				return IngestResult{}, err
			}
		}
		total += len(ing.chunks)
		a.log.Info("document ingested",
			zap.String("document", ing.doc.ID),
			zap.Int("chunks", len(ing.chunks)),
			zap.Int("replaced", len(removed)))
	}

	summary := ""
	if a.summarizer != nil {
		s, err := a.summarizer.Summarize(corpusText.String(), a.opts.SummaryMaxSentences)
		if err == nil {
			summary = s
		}
	}
	return IngestResult{Documents: len(all), Chunks: total, Summary: summary}, nil
}
