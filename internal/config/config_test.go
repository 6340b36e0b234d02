package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/domain"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 500, cfg.Chunker.ChunkSize)
	assert.Equal(t, 50, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 5, cfg.Index.TopK)
	assert.Equal(t, 0.1, cfg.Index.SimilarityThreshold)
	assert.Equal(t, 1000, cfg.Index.MaxVocabularyTerms)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "config.yaml", `
chunker:
  chunk_size: 200
  chunk_overlap: 20
index:
  path: data/idx
  top_k: 3
  similarity_threshold: 0.2
registry:
  type: sqlite
generator:
  type: openai
  openai:
    model: local-model
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Chunker.ChunkSize)
	assert.Equal(t, 20, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, "data/idx", cfg.Index.Path)
	assert.Equal(t, 3, cfg.Index.TopK)
	assert.Equal(t, 0.2, cfg.Index.SimilarityThreshold)
	assert.Equal(t, 1000, cfg.Index.MaxVocabularyTerms)
	assert.Equal(t, "data/idx_papers.db", cfg.Registry.SQLitePath)
	require.NotNil(t, cfg.Generator.OpenAI)
	assert.Equal(t, "local-model", cfg.Generator.OpenAI.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Generator.OpenAI.APIKeyEnv)
	assert.Equal(t, 30, cfg.Generator.OpenAI.RequestsPerMinute)
}

func TestLoad_TOML(t *testing.T) {
	path := write(t, "config.toml", `
[chunker]
chunk_size = 300
chunk_overlap = 30

[index]
top_k = 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Chunker.ChunkSize)
	assert.Equal(t, 30, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 8, cfg.Index.TopK)
	assert.Equal(t, "memory", cfg.Registry.Type)
	assert.Equal(t, "none", cfg.Generator.Type)
}

func TestLoad_InvalidOverlap(t *testing.T) {
	path := write(t, "config.yaml", "chunker:\n  chunk_size: 100\n  chunk_overlap: 100\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "chunk_overlap")
}

func TestLoad_Malformed(t *testing.T) {
	path := write(t, "config.yaml", "chunker: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"negative threshold", func(c *AppConfig) { c.Index.SimilarityThreshold = -0.1 }, "similarity_threshold"},
		{"threshold one", func(c *AppConfig) { c.Index.SimilarityThreshold = 1 }, "similarity_threshold"},
		{"zero top k", func(c *AppConfig) { c.Index.TopK = 0 }, "top_k"},
		{"zero vocabulary", func(c *AppConfig) { c.Index.MaxVocabularyTerms = 0 }, "max_vocabulary_terms"},
		{"unknown registry", func(c *AppConfig) { c.Registry.Type = "redis" }, "registry"},
		{"unknown generator", func(c *AppConfig) { c.Generator.Type = "bedrock" }, "generator"},
		{"openai without section", func(c *AppConfig) { c.Generator.Type = "openai" }, "generator.openai"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestSave_RoundTrip(t *testing.T) {
	for _, name := range []string{"out/config.yaml", "out/config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := Default()
			cfg.Index.TopK = 9
			require.NoError(t, Save(path, cfg))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}
