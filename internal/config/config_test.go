package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Language.Default)
	assert.Equal(t, 1000, cfg.Chunker.ChunkSize)
	assert.Equal(t, 200, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.7, cfg.Matcher.PreferenceWeight, 1e-9)
	assert.Equal(t, 5, cfg.Matcher.MaxRecommendations)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorIndex.Type)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `language:
  default: hi
retrieval:
  top_k: 7
matcher:
  preference_weight: 0.5
  max_recommendations: 2
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", cfg.Language.Default)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.5, cfg.Matcher.PreferenceWeight, 1e-9)
	assert.Equal(t, 2, cfg.Matcher.MaxRecommendations)
	// Untouched sections fall back to defaults.
	assert.Equal(t, 1000, cfg.Chunker.ChunkSize)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, 1024, cfg.Generator.MaxTokens)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad weight", "matcher:\n  preference_weight: 1.5\n  max_recommendations: 5\n"},
		{"negative top_k", "retrieval:\n  top_k: -1\n"},
		{"overlap >= size", "chunker:\n  chunk_size: 100\n  chunk_overlap: 100\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Language.Default = "pa"
	cfg.Retrieval.TopK = 4
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pa", loaded.Language.Default)
	assert.Equal(t, 4, loaded.Retrieval.TopK)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Matcher.PreferenceWeight = -0.1
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Language.Default = ""
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Prompt.MaxContextChars = 0
	assert.Error(t, cfg.Validate())
}
