package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"rag-assistant/internal/chunker"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxChunkSize int `yaml:"max_chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// HashTFEmbedderConfig holds configuration for the offline hashing embedder.
type HashTFEmbedderConfig struct {
	Dimensions int `yaml:"dimensions"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	HashTF *HashTFEmbedderConfig `yaml:"hashtf,omitempty"`
}

// ChromaConfig contains connection details for a Chroma vector store.
type ChromaConfig struct {
	URL         string `yaml:"url"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Chroma *ChromaConfig `yaml:"chroma,omitempty"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// GeneratorBackendConfig configures one answer-generator backend.
type GeneratorBackendConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
}

// GeneratorConfig selects the answer generator. Backend names the backend
// explicitly; when empty, the first backend with a resolvable credential is
// used, in the order openai, groq, google.
type GeneratorConfig struct {
	Backend     string                  `yaml:"backend"`
	OpenAI      *GeneratorBackendConfig `yaml:"openai,omitempty"`
	Groq        *GeneratorBackendConfig `yaml:"groq,omitempty"`
	Google      *GeneratorBackendConfig `yaml:"google,omitempty"`
	TimeoutSecs int                     `yaml:"timeout_secs"`
}

// RetrievalConfig configures per-question retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Debug       bool              `yaml:"debug"`
	DataDir     string            `yaml:"data_dir"`
	ChatLogDir  string            `yaml:"chat_log_dir"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/rag-assistant/config.yaml.
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

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rag-assistant", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		DataDir:     "data",
		Chunker:     ChunkerConfig{MaxChunkSize: chunker.DefaultMaxSize, ChunkOverlap: chunker.DefaultOverlap},
		Embedder:    EmbedderConfig{Type: "hashtf"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Retrieval:   RetrievalConfig{TopK: 3},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Chunker.MaxChunkSize == 0 {
		cfg.Chunker.MaxChunkSize = chunker.DefaultMaxSize
	}
	if cfg.Chunker.ChunkOverlap == 0 {
		cfg.Chunker.ChunkOverlap = chunker.DefaultOverlap
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashtf"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.VectorStore.Type == "chroma" && cfg.VectorStore.Chroma != nil {
		if cfg.VectorStore.Chroma.URL == "" {
			cfg.VectorStore.Chroma.URL = "http://localhost:8000"
		}
		if cfg.VectorStore.Chroma.Collection == "" {
			cfg.VectorStore.Chroma.Collection = "rag_docs"
		}
	}
}
