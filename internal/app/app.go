// Package app assembles the assistant from configuration: embedder, vector
// index, stores, external clients and the orchestrator. Both binaries share
// this wiring.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rozgar/internal/chunker"
	"rozgar/internal/config"
	"rozgar/internal/domain"
	"rozgar/internal/embedding/openai"
	"rozgar/internal/embedding/tfidf"
	"rozgar/internal/genai"
	"rozgar/internal/lang"
	"rozgar/internal/matcher"
	"rozgar/internal/prompt"
	"rozgar/internal/retriever"
	"rozgar/internal/service"
	"rozgar/internal/storage"
	"rozgar/internal/summarizer"
	"rozgar/internal/vectorstore/memory"
	"rozgar/internal/vectorstore/qdrant"
)

// Build constructs the fully wired assistant. Configuration has already been
// validated; failures here are wiring problems and fatal at startup.
func Build(cfg *config.AppConfig, log *zap.Logger) (*service.Assistant, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:  cfg.Embedder.OpenAI.APIKeyEnv,
			Model:      cfg.Embedder.OpenAI.Model,
			Timeout:    time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Embedder.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init: %w", err)
		}
		emb = client
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var index domain.VectorIndex
	switch cfg.VectorIndex.Type {
	case "memory", "":
		index = memory.NewIndex()
	case "qdrant":
		if cfg.VectorIndex.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		index = qdrant.NewIndex(qdrant.Config{
			URL:        cfg.VectorIndex.Qdrant.URL,
			APIKey:     cfg.VectorIndex.Qdrant.APIKey,
			Collection: cfg.VectorIndex.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorIndex.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown vector index: %s", cfg.VectorIndex.Type)
	}

	ch, err := chunker.NewBoundaryChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap, cfg.Chunker.BoundaryWindow)
	if err != nil {
		return nil, err
	}

	var translator domain.Translator
	switch cfg.Translator.Type {
	case "none", "":
		translator = lang.NoopTranslator{}
	case "http":
		if cfg.Translator.URL == "" {
			return nil, fmt.Errorf("translator url missing")
		}
		translator = lang.NewHTTPTranslator(cfg.Translator.URL, time.Duration(cfg.Translator.TimeoutSecs)*time.Second, log)
	default:
		return nil, fmt.Errorf("unknown translator: %s", cfg.Translator.Type)
	}

	var generator domain.Generator
	if cfg.Generator.Endpoint != "" || cfg.Generator.APIKeyEnv != "" {
		client, err := genai.NewClient(genai.Config{
			Endpoint:   cfg.Generator.Endpoint,
			APIKeyEnv:  cfg.Generator.APIKeyEnv,
			Model:      cfg.Generator.Model,
			Timeout:    time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Generator.MaxRetries,
		})
		if err != nil {
			log.Warn("generation service not configured, using offline mock", zap.Error(err))
			generator = genai.NewMock()
		} else {
			generator = client
		}
	} else {
		generator = genai.NewMock()
	}

	db, err := storage.Open(cfg.Storage.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	catalog := storage.NewJobCatalog(db)
	if err := catalog.Seed(context.Background(), cfg.Storage.JobsCatalog); err != nil {
		return nil, fmt.Errorf("seed job catalog: %w", err)
	}

	m, err := matcher.New(cfg.Matcher.PreferenceWeight)
	if err != nil {
		return nil, err
	}

	// The index is multilingual when no translator is configured, so queries
	// embed as-is; with a translator the index language is the default.
	indexLang := ""
	if cfg.Translator.Type == "http" {
		indexLang = cfg.Language.Default
	}

	assistant := service.New(service.Deps{
		Chunker:       ch,
		Embedder:      emb,
		Index:         index,
		Retriever:     retriever.New(emb, index, translator, indexLang, log),
		Assembler:     prompt.NewAssembler(cfg.Prompt.MaxContextChars),
		Generator:     generator,
		Matcher:       m,
		Documents:     storage.NewDocumentStore(db),
		Conversations: storage.NewConversationStore(db),
		Preferences:   storage.NewPreferenceStore(db),
		Catalog:       catalog,
		Summarizer:    summarizer.NewFrequencySummarizer(),
		Logger:        log,
	}, service.Options{
		TopK:                cfg.Retrieval.TopK,
		MaxTokens:           cfg.Generator.MaxTokens,
		Temperature:         cfg.Generator.Temperature,
		HistoryTurns:        cfg.Prompt.HistoryTurns,
		MaxRecommendations:  cfg.Matcher.MaxRecommendations,
		DefaultLanguage:     cfg.Language.Default,
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
	})
	return assistant, nil
}
