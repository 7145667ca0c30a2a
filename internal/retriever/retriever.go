package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rozgar/internal/domain"
)

// Retriever embeds a query and delegates to the vector index. When the
// embedding service is unavailable it fails closed: callers get an explicit
// error, never a plausible-looking empty result.
//
// If a translator and index language are configured, the query is normalized
// to the index language before embedding; translation failures degrade to the
// original text inside the translator itself.
type Retriever struct {
	embedder   domain.Embedder
	index      domain.VectorIndex
	translator domain.Translator
	indexLang  string
	log        *zap.Logger
}

func New(embedder domain.Embedder, index domain.VectorIndex, translator domain.Translator, indexLang string, log *zap.Logger) *Retriever {
	if translator == nil {
		translator = passthrough{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{embedder: embedder, index: index, translator: translator, indexLang: indexLang, log: log}
}

func (r *Retriever) Retrieve(ctx context.Context, query, language string, k int) ([]domain.RetrievedChunk, error) {
	text, hint := query, language
	if r.indexLang != "" && language != "" && language != r.indexLang {
		translated, err := r.translator.Translate(ctx, query, language, r.indexLang)
		if err == nil && translated != "" {
			// The text the embedder sees is now in the index language.
			text = translated
			hint = r.indexLang
		}
	}
	vec, err := r.embedder.Embed(ctx, text, hint)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	results, err := r.index.Query(vec, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	r.log.Debug("retrieved context", zap.String("language", language), zap.Int("results", len(results)))
	return results, nil
}

type passthrough struct{}

func (passthrough) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
