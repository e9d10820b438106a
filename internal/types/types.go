package types

import (
	"context"

	"github.com/xhad/minirag/internal/models"
)

// Core interfaces

// Retriever returns the top-k passages for a query, best first.
type Retriever interface {
	Search(query string, k int) ([]models.ScoredPassage, error)
}

// Answerer turns a query and its retrieved passages into an answer.
type Answerer interface {
	Generate(query string, retrieved []models.ScoredPassage) (models.Answer, error)
}

// VectorStore persists passages and serves similarity queries.
type VectorStore interface {
	Store(passages []models.Passage) error
	Query(embedding []float32, limit int) ([]models.Passage, error)
	Close()
}

// Embedder produces embedding vectors for texts.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	FlattenEmbeddings(embeddings [][]float32) []float32
}
