package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "hashtf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, 1000, cfg.Chunker.MaxChunkSize)
	assert.Equal(t, 200, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Empty(t, cfg.Generator.Backend)
}

func TestLoadParsesAndAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
debug: true
data_dir: corpus
embedder:
  type: openai
  openai:
    api_key_env: MY_EMBED_KEY
vector_store:
  type: chroma
  chroma:
    collection: papers
generator:
  backend: groq
retrieval:
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "corpus", cfg.DataDir)
	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "MY_EMBED_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, 32, cfg.Embedder.OpenAI.BatchSize)
	assert.Equal(t, "chroma", cfg.VectorStore.Type)
	assert.Equal(t, "papers", cfg.VectorStore.Chroma.Collection)
	assert.Equal(t, "http://localhost:8000", cfg.VectorStore.Chroma.URL)
	assert.Equal(t, "groq", cfg.Generator.Backend)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := defaultConfig()
	cfg.DataDir = "elsewhere"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", loaded.DataDir)
	assert.Equal(t, cfg.Chunker, loaded.Chunker)
}
