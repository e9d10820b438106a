package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/xhad/minirag/internal/types"
)

var _ types.Embedder = (*Embedder)(nil)

// EmbedderConfig represents the configuration for an embedder.
type EmbedderConfig struct {
	Model   string
	BaseURL string // Ollama server URL
}

// Embedder produces embeddings for passages and queries via Ollama.
type Embedder struct {
	Config EmbedderConfig
	Embed  *ollama.LLM
}

func NewEmbedderWithConfig(config EmbedderConfig) (Embedder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest" // Default Ollama model
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	emb, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return Embedder{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return Embedder{
		Config: config,
		Embed:  emb,
	}, nil
}

func NewEmbedder() (Embedder, error) {
	return NewEmbedderWithConfig(EmbedderConfig{})
}

// CreateEmbedding embeds the given texts, one vector per text.
func (e *Embedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return e.Embed.CreateEmbedding(ctx, texts)
}

// FlattenEmbeddings joins per-text embeddings into a single vector.
func (e *Embedder) FlattenEmbeddings(embeddings [][]float32) []float32 {
	var flattened []float32
	for _, emb := range embeddings {
		flattened = append(flattened, emb...)
	}
	return flattened
}
