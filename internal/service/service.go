// Package service implements the orchestrator: it drives document ingestion
// and the end-to-end conversational turn, coordinating the stateful stores
// while holding no request state of its own.
package service

import (
	"sync"

	"go.uber.org/zap"

	"rozgar/internal/domain"
	"rozgar/internal/matcher"
	"rozgar/internal/prompt"
)

// Options are the orchestrator's validated runtime settings.
type Options struct {
	TopK                int
	MaxTokens           int
	Temperature         float64
	HistoryTurns        int
	MaxRecommendations  int
	DefaultLanguage     string
	SummaryMaxSentences int
}

// Assistant coordinates one request/response cycle. Turns within a session
// are strictly sequential; sessions run concurrently with each other.
type Assistant struct {
	chunker       domain.Chunker
	embedder      domain.Embedder
	index         domain.VectorIndex
	retriever     domain.Retriever
	assembler     *prompt.Assembler
	generator     domain.Generator
	matcher       *matcher.Matcher
	documents     domain.DocumentStore
	conversations domain.ConversationStore
	preferences   domain.PreferenceStore
	catalog       domain.JobCatalog
	summarizer    domain.Summarizer
	opts          Options
	log           *zap.Logger

	// dim is the index's current vector dimension; touched only under
	// ingestMu, which serializes ingestion passes.
	ingestMu sync.Mutex
	dim      int

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

type Deps struct {
	Chunker       domain.Chunker
	Embedder      domain.Embedder
	Index         domain.VectorIndex
	Retriever     domain.Retriever
	Assembler     *prompt.Assembler
	Generator     domain.Generator
	Matcher       *matcher.Matcher
	Documents     domain.DocumentStore
	Conversations domain.ConversationStore
	Preferences   domain.PreferenceStore
	Catalog       domain.JobCatalog
	Summarizer    domain.Summarizer
	Logger        *zap.Logger
}

func New(deps Deps, opts Options) *Assistant {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{
		chunker:       deps.Chunker,
		embedder:      deps.Embedder,
		index:         deps.Index,
		retriever:     deps.Retriever,
		assembler:     deps.Assembler,
		generator:     deps.Generator,
		matcher:       deps.Matcher,
		documents:     deps.Documents,
		conversations: deps.Conversations,
		preferences:   deps.Preferences,
		catalog:       deps.Catalog,
		summarizer:    deps.Summarizer,
		opts:          opts,
		log:           log,
		sessions:      make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing turns for one session id.
func (a *Assistant) sessionLock(sessionID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.sessions[sessionID]
	if !ok {
		l = &sync.Mutex{}
		a.sessions[sessionID] = l
	}
	return l
}
