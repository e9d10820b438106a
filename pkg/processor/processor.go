package processor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xhad/minirag/internal/models"
)

type ProcessorConfig struct {
	MaxPassageWords  int
	MinSentenceWords int
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.MaxPassageWords == 0 {
		config.MaxPassageWords = 120
	}
	if config.MinSentenceWords == 0 {
		config.MinSentenceWords = 5
	}

	return Processor{
		config: config,
	}
}

// Process chunks every document into retrieval-sized passages.
func (p *Processor) Process(docs []models.Document) ([]models.Passage, error) {
	var passages []models.Passage

	for _, doc := range docs {
		chunks := p.BuildPassages(doc.Content)
		for i, text := range chunks {
			passages = append(passages, models.Passage{
				ID:     fmt.Sprintf("%s_passage_%d", doc.Filename, i),
				Source: doc.Filename,
				Text:   text,
				Index:  i,
			})
		}
	}

	return passages, nil
}

// ASCII punctuation stripped during preprocessing. Other marks, like
// the degree sign in "450°F", survive into the token space.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Preprocess normalizes text for indexing: lowercase, punctuation
// stripped, whitespace collapsed.
func (p *Processor) Preprocess(text string) string {
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// SplitSentences splits text on sentence boundaries. Fragments that do
// not end with terminal punctuation are kept only when substantial, and
// get a period appended so downstream output reads cleanly.
func (p *Processor) SplitSentences(text string) []string {
	var raw []string
	current := strings.Builder{}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])

		if isSentenceEnd(runes[i]) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			raw = append(raw, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		raw = append(raw, current.String())
	}

	var sentences []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		last := s[len(s)-1]
		substantial := len(strings.Fields(s)) > p.config.MinSentenceWords
		if last == '.' || last == '!' || last == '?' {
			sentences = append(sentences, s)
		} else if substantial {
			sentences = append(sentences, s+".")
		}
	}

	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// BuildPassages packs sentences greedily into passages of at most
// MaxPassageWords words. A sentence longer than the limit becomes its
// own passage rather than being dropped.
func (p *Processor) BuildPassages(text string) []string {
	sentences := p.SplitSentences(text)

	var passages []string
	var current []string
	currentWords := 0

	for _, sentence := range sentences {
		words := len(strings.Fields(sentence))

		if currentWords+words > p.config.MaxPassageWords && len(current) > 0 {
			passages = append(passages, strings.Join(current, " "))
			current = []string{sentence}
			currentWords = words
		} else {
			current = append(current, sentence)
			currentWords += words
		}
	}

	if len(current) > 0 {
		passages = append(passages, strings.Join(current, " "))
	}

	return passages
}
