package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
corpus:
  docs_dir: "manuals"

processor:
  max_passage_words: 100
  min_sentence_words: 4

retrieval:
  top_k: 5
  min_score: 0.05

llm:
  base_url: "http://localhost:11434"
  model: "gpt-4"
  max_tokens: 1000
  temperature: 0.5

database:
  url: "postgres://localhost:5432/test"
  table_name: "test_passages"
  vector_dim: 768
  batch_size: 50

scraper:
  max_depth: 2
  rate_limit: 1.5

ui:
  streaming: true
`

	err := os.WriteFile(configPath, []byte(configData), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "manuals", cfg.Corpus.DocsDir)
	assert.Equal(t, 100, cfg.Processor.MaxPassageWords)
	assert.Equal(t, 4, cfg.Processor.MinSentenceWords)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 0.05, cfg.Retrieval.MinScore)
	assert.Equal(t, "gpt-4", cfg.LLM.Model)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.Equal(t, "test_passages", cfg.Database.TableName)
	assert.Equal(t, 50, cfg.Database.BatchSize)
	assert.Equal(t, 2, cfg.Scraper.MaxDepth)
	assert.Equal(t, 1.5, cfg.Scraper.RateLimit)
	assert.True(t, cfg.UI.Streaming)
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("{}"), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.Corpus.DocsDir)
	assert.Equal(t, 120, cfg.Processor.MaxPassageWords)
	assert.Equal(t, 5, cfg.Processor.MinSentenceWords)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 0.01, cfg.Retrieval.MinScore)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "passages", cfg.Database.TableName)
	assert.Equal(t, 768, cfg.Database.VectorDim)
	assert.Equal(t, 3, cfg.Scraper.MaxDepth)
	assert.True(t, cfg.UI.Streaming)
}

func TestStreamingDefaultsOn(t *testing.T) {
	cfg, err := getDefaultConfig()
	require.NoError(t, err)
	assert.True(t, cfg.UI.Streaming)
}

func TestStreamingExplicitlyDisabled(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
ui:
  streaming: false
`
	err := os.WriteFile(configPath, []byte(configData), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.False(t, cfg.UI.Streaming)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMergeWithEnv(t *testing.T) {
	t.Setenv("MINIRAG_DOCS_DIR", "env-docs")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")
	t.Setenv("DATABASE_URL", "postgres://env:5432/rag")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte("{}"), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-docs", cfg.Corpus.DocsDir)
	assert.Equal(t, "http://ollama:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "postgres://env:5432/rag", cfg.Database.URL)
}

func TestValidate(t *testing.T) {
	cfg, err := getDefaultConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Validate())
}

func TestValidateErrors(t *testing.T) {
	cfg, err := getDefaultConfig()
	require.NoError(t, err)

	cfg.Retrieval.TopK = -1
	cfg.Retrieval.MinScore = 2
	cfg.Processor.MaxPassageWords = 0
	cfg.Scraper.AllowedExtensions = []string{"html"}

	errs := cfg.Validate()
	require.NotEmpty(t, errs)

	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
		assert.NotEmpty(t, e.Error())
	}
	assert.True(t, fields["retrieval.top_k"])
	assert.True(t, fields["retrieval.min_score"])
	assert.True(t, fields["processor.max_passage_words"])
	assert.True(t, fields["scraper.allowed_extensions"])
}
