package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/minirag/internal/models"
	"github.com/xhad/minirag/internal/types"
	"github.com/xhad/minirag/pkg/llm"
)

var (
	_ types.VectorStore = (*VectorStore)(nil)
	_ types.Retriever   = (*VectorStore)(nil)
)

type VectorStoreConfig struct {
	ConnString  string
	TableName   string
	VectorDim   int
	BatchSize   int
	SearchLimit int
	Embedder    *llm.Embedder
}

// VectorStore persists passages with their embeddings in PostgreSQL
// and serves cosine-distance similarity queries via pgvector.
type VectorStore struct {
	config   VectorStoreConfig
	pool     *pgxpool.Pool
	embedder llm.Embedder
}

func NewWithConfig(config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "passages"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text dimension
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = 5
	}

	var embedder llm.Embedder
	if config.Embedder != nil {
		embedder = *config.Embedder
	} else {
		emb, err := llm.NewEmbedder()
		if err != nil {
			return nil, err
		}
		embedder = emb
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	vs := &VectorStore{
		config:   config,
		pool:     pool,
		embedder: embedder,
	}

	if err := vs.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize() error {
	ctx := context.Background()

	// Enable pgvector extension
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content TEXT,
			passage_index INTEGER,
			embedding vector(%d)
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Store embeds and upserts the passages in a single transaction.
func (vs *VectorStore) Store(passages []models.Passage) error {
	ctx := context.Background()

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source, content, passage_index, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			content = EXCLUDED.content,
			passage_index = EXCLUDED.passage_index,
			embedding = EXCLUDED.embedding`,
		vs.config.TableName)

	for _, passage := range passages {
		cleanText := sanitizeUTF8(passage.Text)

		embedding, err := vs.embedder.CreateEmbedding(ctx, []string{cleanText})
		if err != nil {
			return fmt.Errorf("failed to create embeddings: %v", err)
		}

		vector := pgvector.NewVector(vs.embedder.FlattenEmbeddings(embedding))

		_, err = tx.Exec(ctx, stmt,
			passage.ID,
			passage.Source,
			cleanText,
			passage.Index,
			vector,
		)
		if err != nil {
			return fmt.Errorf("failed to insert passage %s: %v", passage.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Query returns the passages closest to the query embedding by cosine
// distance.
func (vs *VectorStore) Query(queryEmbedding []float32, limit int) ([]models.Passage, error) {
	ctx := context.Background()

	if limit == 0 {
		limit = vs.config.SearchLimit
	}

	query := fmt.Sprintf(`
		SELECT id, source, content, passage_index
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	embedding := pgvector.NewVector(queryEmbedding)
	rows, err := vs.pool.Query(ctx, query, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %v", err)
	}
	defer rows.Close()

	var passages []models.Passage
	for rows.Next() {
		var passage models.Passage
		err := rows.Scan(
			&passage.ID,
			&passage.Source,
			&passage.Text,
			&passage.Index,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		passages = append(passages, passage)
	}

	return passages, nil
}

// Search embeds the query and runs a similarity lookup, so callers can
// use the store as a drop-in retriever. Scores are cosine similarity.
func (vs *VectorStore) Search(query string, k int) ([]models.ScoredPassage, error) {
	ctx := context.Background()

	if k == 0 {
		k = vs.config.SearchLimit
	}

	embedding, err := vs.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %v", err)
	}

	stmt := fmt.Sprintf(`
		SELECT id, source, content, passage_index, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	vector := pgvector.NewVector(vs.embedder.FlattenEmbeddings(embedding))
	rows, err := vs.pool.Query(ctx, stmt, vector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %v", err)
	}
	defer rows.Close()

	var scored []models.ScoredPassage
	for rows.Next() {
		var result models.ScoredPassage
		err := rows.Scan(
			&result.Passage.ID,
			&result.Passage.Source,
			&result.Passage.Text,
			&result.Passage.Index,
			&result.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		scored = append(scored, result)
	}

	return scored, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
