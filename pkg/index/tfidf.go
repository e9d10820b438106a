package index

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/xhad/minirag/internal/models"
)

// Index is an in-memory TF-IDF index over preprocessed passages.
// Vectors are L2-normalized at build time so similarity search is a
// plain dot product.
type Index struct {
	passages []models.Passage
	vocab    map[string]int
	idf      []float64
	vectors  []map[int]float64
	preproc  func(string) string
}

// New creates an empty index. The preprocess function is applied to
// both passages and queries so the two share a token space.
func New(preprocess func(string) string) *Index {
	if preprocess == nil {
		preprocess = func(s string) string { return strings.ToLower(s) }
	}
	return &Index{
		vocab:   make(map[string]int),
		preproc: preprocess,
	}
}

// Fit builds the vocabulary, IDF weights and normalized passage vectors.
// Calling Fit again replaces the previous index contents.
func (ix *Index) Fit(passages []models.Passage) error {
	if len(passages) == 0 {
		return fmt.Errorf("no passages to index")
	}

	ix.passages = passages
	ix.vocab = make(map[string]int)

	tokenized := make([][]string, len(passages))
	for i, p := range passages {
		tokens := strings.Fields(ix.preproc(p.Text))
		tokenized[i] = tokens
		for _, tok := range tokens {
			if _, ok := ix.vocab[tok]; !ok {
				ix.vocab[tok] = len(ix.vocab)
			}
		}
	}

	// Document frequency per term
	df := make([]int, len(ix.vocab))
	for _, tokens := range tokenized {
		seen := make(map[int]bool)
		for _, tok := range tokens {
			seen[ix.vocab[tok]] = true
		}
		for termID := range seen {
			df[termID]++
		}
	}

	// Smoothed IDF: ln((1+N)/(1+df)) + 1
	n := float64(len(passages))
	ix.idf = make([]float64, len(ix.vocab))
	for termID, count := range df {
		ix.idf[termID] = math.Log((1+n)/(1+float64(count))) + 1
	}

	ix.vectors = make([]map[int]float64, len(passages))
	for i, tokens := range tokenized {
		ix.vectors[i] = ix.vectorize(tokens)
	}

	return nil
}

// Len reports the number of indexed passages.
func (ix *Index) Len() int {
	return len(ix.passages)
}

// VocabSize reports the number of distinct terms.
func (ix *Index) VocabSize() int {
	return len(ix.vocab)
}

// Search returns the top-k passages by cosine similarity, best first.
// Ties keep corpus order. Query terms outside the vocabulary are
// ignored; a query with no known terms scores every passage at zero.
func (ix *Index) Search(query string, k int) ([]models.ScoredPassage, error) {
	if len(ix.vectors) == 0 {
		return nil, fmt.Errorf("index is empty, call Fit first")
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if k > len(ix.passages) {
		k = len(ix.passages)
	}

	queryVec := ix.vectorize(strings.Fields(ix.preproc(query)))

	scored := make([]models.ScoredPassage, len(ix.passages))
	for i := range ix.passages {
		scored[i] = models.ScoredPassage{
			Passage: ix.passages[i],
			Score:   dot(queryVec, ix.vectors[i]),
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	return scored[:k], nil
}

// vectorize builds an L2-normalized sparse TF-IDF vector from tokens.
func (ix *Index) vectorize(tokens []string) map[int]float64 {
	vec := make(map[int]float64)
	for _, tok := range tokens {
		termID, ok := ix.vocab[tok]
		if !ok {
			continue
		}
		vec[termID]++
	}

	var norm float64
	for termID := range vec {
		vec[termID] *= ix.idf[termID]
		norm += vec[termID] * vec[termID]
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for termID := range vec {
			vec[termID] /= norm
		}
	}

	return vec
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for termID, weight := range a {
		sum += weight * b[termID]
	}
	return sum
}
