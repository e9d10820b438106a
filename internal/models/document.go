package models

// Document is a single corpus file loaded from the docs directory.
type Document struct {
	Filename string
	Content  string
	Metadata map[string]interface{}
}

// Passage is a chunk of a document, sized for retrieval.
type Passage struct {
	ID     string
	Source string
	Text   string
	Index  int
}

// ScoredPassage pairs a passage with its retrieval score.
type ScoredPassage struct {
	Passage Passage
	Score   float64
}

// Candidate is a sentence considered during extractive answer generation.
type Candidate struct {
	Sentence     string
	Source       string
	Relevance    int
	PassageScore float64
}

// Answer is the result of answering a query: the answer text plus the
// source files it was drawn from.
type Answer struct {
	Text    string
	Sources []string
}
