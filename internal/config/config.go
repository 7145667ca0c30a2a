package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LanguageConfig sets the default language and the supported set.
type LanguageConfig struct {
	Default   string   `yaml:"default"`
	Supported []string `yaml:"supported"`
}

// ChunkerConfig configures how documents are split into chunks.
// Sizes are in runes; BoundaryWindow is how far back from a hard cut the
// chunker may move to land on a sentence or paragraph boundary.
type ChunkerConfig struct {
	ChunkSize      int `yaml:"chunk_size"`
	ChunkOverlap   int `yaml:"chunk_overlap"`
	BoundaryWindow int `yaml:"boundary_window"`
}

// RetrievalConfig configures similarity search.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// PromptConfig bounds the assembled generation context.
type PromptConfig struct {
	MaxContextChars int `yaml:"max_context_chars"`
	HistoryTurns    int `yaml:"history_turns"`
}

// MatcherConfig configures job recommendation scoring.
type MatcherConfig struct {
	PreferenceWeight   float64 `yaml:"preference_weight"`
	MaxRecommendations int     `yaml:"max_recommendations"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type       string                `yaml:"type"`
	MaxRetries int                   `yaml:"max_retries"`
	OpenAI     *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// GeneratorConfig configures the external text completion service.
type GeneratorConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries"`
}

// TranslatorConfig configures the translation service used to normalize
// query language before embedding. Type "none" disables translation.
type TranslatorConfig struct {
	Type        string `yaml:"type"`
	URL         string `yaml:"url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorIndexConfig selects and configures the vector index implementation.
type VectorIndexConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// StorageConfig locates the sqlite database and the job catalog seed.
type StorageConfig struct {
	SQLitePath  string `yaml:"sqlite_path"`
	JobsCatalog string `yaml:"jobs_catalog"`
}

// SummarizerConfig configures the ingest summary.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Language    LanguageConfig    `yaml:"language"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Prompt      PromptConfig      `yaml:"prompt"`
	Matcher     MatcherConfig     `yaml:"matcher"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Translator  TranslatorConfig  `yaml:"translator"`
	VectorIndex VectorIndexConfig `yaml:"vector_index"`
	Storage     StorageConfig     `yaml:"storage"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Server      ServerConfig      `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults. The result is validated; invalid configs are rejected
// here so a bad deployment fails at startup, not mid-request.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/rozgar/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects out-of-range options. Violations are fatal at startup.
func (c *AppConfig) Validate() error {
	if c.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("chunker: chunk_size must be positive, got %d", c.Chunker.ChunkSize)
	}
	if c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("chunker: chunk_overlap must be in [0, chunk_size), got %d", c.Chunker.ChunkOverlap)
	}
	if c.Chunker.BoundaryWindow < 0 || c.Chunker.BoundaryWindow > c.Chunker.ChunkSize {
		return fmt.Errorf("chunker: boundary_window must be in [0, chunk_size], got %d", c.Chunker.BoundaryWindow)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval: top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Prompt.MaxContextChars <= 0 {
		return fmt.Errorf("prompt: max_context_chars must be positive, got %d", c.Prompt.MaxContextChars)
	}
	if w := c.Matcher.PreferenceWeight; w < 0 || w > 1 {
		return fmt.Errorf("matcher: preference_weight must be in [0,1], got %g", w)
	}
	if c.Matcher.MaxRecommendations <= 0 {
		return fmt.Errorf("matcher: max_recommendations must be positive, got %d", c.Matcher.MaxRecommendations)
	}
	if c.Language.Default == "" {
		return errors.New("language: default must be set")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rozgar", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Language:    LanguageConfig{Default: "en", Supported: []string{"en", "hi", "pa"}},
		Chunker:     ChunkerConfig{ChunkSize: 1000, ChunkOverlap: 200, BoundaryWindow: 100},
		Retrieval:   RetrievalConfig{TopK: 3},
		Prompt:      PromptConfig{MaxContextChars: 6000, HistoryTurns: 10},
		Matcher:     MatcherConfig{PreferenceWeight: 0.7, MaxRecommendations: 5},
		Embedder:    EmbedderConfig{Type: "tfidf", MaxRetries: 2},
		Generator:   GeneratorConfig{Model: "gpt-3.5-turbo", APIKeyEnv: "OPENAI_API_KEY", MaxTokens: 1024, Temperature: 0.7, TimeoutSecs: 30, MaxRetries: 2},
		Translator:  TranslatorConfig{Type: "none", TimeoutSecs: 10},
		VectorIndex: VectorIndexConfig{Type: "memory"},
		Storage:     StorageConfig{SQLitePath: "rozgar.db"},
		Summarizer:  SummarizerConfig{MaxSentences: 5},
		Server:      ServerConfig{Addr: ":8080"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Language.Default == "" {
		cfg.Language = def.Language
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker = def.Chunker
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval = def.Retrieval
	}
	if cfg.Prompt.MaxContextChars == 0 {
		cfg.Prompt.MaxContextChars = def.Prompt.MaxContextChars
	}
	if cfg.Prompt.HistoryTurns == 0 {
		cfg.Prompt.HistoryTurns = def.Prompt.HistoryTurns
	}
	if cfg.Matcher.PreferenceWeight == 0 && cfg.Matcher.MaxRecommendations == 0 {
		cfg.Matcher = def.Matcher
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.MaxRetries == 0 {
		cfg.Embedder.MaxRetries = def.Embedder.MaxRetries
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = def.Generator.Model
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = def.Generator.APIKeyEnv
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = def.Generator.MaxTokens
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = def.Generator.Temperature
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = def.Generator.TimeoutSecs
	}
	if cfg.Generator.MaxRetries == 0 {
		cfg.Generator.MaxRetries = def.Generator.MaxRetries
	}
	if cfg.Translator.Type == "" {
		cfg.Translator.Type = def.Translator.Type
	}
	if cfg.Translator.TimeoutSecs == 0 {
		cfg.Translator.TimeoutSecs = def.Translator.TimeoutSecs
	}
	if cfg.VectorIndex.Type == "" {
		cfg.VectorIndex.Type = def.VectorIndex.Type
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = def.Storage.SQLitePath
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
}
