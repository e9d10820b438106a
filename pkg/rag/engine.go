package rag

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/xhad/minirag/internal/models"
	"github.com/xhad/minirag/internal/types"
	"github.com/xhad/minirag/pkg/answer"
	"github.com/xhad/minirag/pkg/corpus"
	"github.com/xhad/minirag/pkg/index"
	"github.com/xhad/minirag/pkg/processor"
)

var _ types.Retriever = (*Engine)(nil)

type EngineConfig struct {
	DocsDir          string
	MaxPassageWords  int
	MinSentenceWords int
	TopK             int
	MinScore         float64
	Debug            bool
}

// Engine runs the local retrieval pipeline: load the docs directory,
// chunk into passages, index with TF-IDF, answer queries extractively.
type Engine struct {
	config    EngineConfig
	proc      processor.Processor
	index     *index.Index
	generator answer.Generator

	documents []models.Document
	passages  []models.Passage
}

func NewWithConfig(config EngineConfig) *Engine {
	if config.DocsDir == "" {
		config.DocsDir = "docs"
	}
	if config.TopK == 0 {
		config.TopK = 3
	}
	if config.MinScore == 0 {
		config.MinScore = 0.01
	}

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		MaxPassageWords:  config.MaxPassageWords,
		MinSentenceWords: config.MinSentenceWords,
	})

	return &Engine{
		config:    config,
		proc:      proc,
		index:     index.New(proc.Preprocess),
		generator: answer.NewWithConfig(answer.GeneratorConfig{MinScore: config.MinScore}),
	}
}

// Ingest loads the docs directory and chunks every document into
// passages. It returns the document and passage counts.
func (e *Engine) Ingest() (int, int, error) {
	docs, err := corpus.Load(e.config.DocsDir)
	if err != nil {
		return 0, 0, err
	}

	passages, err := e.proc.Process(docs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to process documents: %v", err)
	}

	e.documents = docs
	e.passages = passages
	return len(docs), len(passages), nil
}

// BuildIndex fits the TF-IDF index over the ingested passages.
func (e *Engine) BuildIndex() error {
	if len(e.passages) == 0 {
		return fmt.Errorf("no passages ingested, call Ingest first")
	}
	return e.index.Fit(e.passages)
}

// Passages exposes the ingested passages, e.g. for external stores.
func (e *Engine) Passages() []models.Passage {
	return e.passages
}

// Search implements types.Retriever over the local TF-IDF index.
func (e *Engine) Search(query string, k int) ([]models.ScoredPassage, error) {
	return e.Retrieve(query, k)
}

// Retrieve returns the top-k passages for a query.
func (e *Engine) Retrieve(query string, k int) ([]models.ScoredPassage, error) {
	if k == 0 {
		k = e.config.TopK
	}

	if e.config.Debug {
		color.Yellow("\n--- DEBUG: Preprocessed Query ---")
		fmt.Printf("Original: %s\n", query)
		fmt.Printf("Preprocessed: %s\n", e.proc.Preprocess(query))
	}

	results, err := e.index.Search(query, k)
	if err != nil {
		return nil, err
	}

	if e.config.Debug {
		color.Yellow("\n--- DEBUG: Top %d Retrieved Passages ---", len(results))
		for i, result := range results {
			fmt.Printf("\n%d. Score: %.4f\n", i+1, result.Score)
			fmt.Printf("   Source: %s\n", result.Passage.Source)
			fmt.Printf("   ID: %s\n", result.Passage.ID)
			fmt.Printf("   Text: %s...\n", truncate(result.Passage.Text, 200))
		}
	}

	return results, nil
}

// Answer runs retrieval plus extractive answer generation.
func (e *Engine) Answer(query string, k int) (models.Answer, error) {
	retrieved, err := e.Retrieve(query, k)
	if err != nil {
		return models.Answer{}, err
	}

	if e.config.Debug {
		color.Yellow("\n--- DEBUG: Answer Generation ---")
		fmt.Printf("Keywords extracted: %v\n", answer.ExtractKeywords(query))

		candidates := e.generator.Candidates(query, retrieved)
		fmt.Printf("\nFound %d candidate sentences\n", len(candidates))
		for i, cand := range candidates {
			if i == 5 {
				break
			}
			fmt.Printf("\n%d. Relevance Score: %d, Passage Score: %.4f\n",
				i+1, cand.Relevance, cand.PassageScore)
			fmt.Printf("   Source: %s\n", cand.Source)
			fmt.Printf("   Sentence: %s...\n", truncate(cand.Sentence, 150))
		}
	}

	result, err := e.generator.Generate(query, retrieved)
	if err != nil {
		return models.Answer{}, err
	}

	result.Sources = dedupe(result.Sources)
	return result, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func dedupe(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
