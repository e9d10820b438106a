package answer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xhad/minirag/internal/models"
	"github.com/xhad/minirag/internal/types"
	"github.com/xhad/minirag/pkg/processor"
)

var _ types.Answerer = (*Generator)(nil)

// FallbackText is returned when retrieval produced nothing usable.
const FallbackText = "I couldn't find relevant information to answer this question."

// Question words carry no signal for matching answer sentences.
var questionStopwords = map[string]bool{
	"what": true, "is": true, "the": true, "how": true, "do": true,
	"i": true, "does": true, "have": true, "for": true, "many": true,
	"long": true, "to": true, "a": true, "an": true, "are": true,
	"get": true, "can": true, "my": true, "schedule": true, "take": true,
}

var digitPattern = regexp.MustCompile(`\d`)

type GeneratorConfig struct {
	// MinScore is the retrieval score floor below which the fallback
	// answer is returned.
	MinScore float64
	// MinSentenceWords filters out headers and labels.
	MinSentenceWords int
	// LongSentenceWords is the length past which a sentence is
	// penalized as likely being a whole paragraph.
	LongSentenceWords int
}

type Generator struct {
	config GeneratorConfig
	proc   processor.Processor
}

func NewWithConfig(config GeneratorConfig) Generator {
	if config.MinScore == 0 {
		config.MinScore = 0.01
	}
	if config.MinSentenceWords == 0 {
		config.MinSentenceWords = 5
	}
	if config.LongSentenceWords == 0 {
		config.LongSentenceWords = 50
	}

	return Generator{
		config: config,
		proc:   processor.NewWithConfig(processor.ProcessorConfig{}),
	}
}

// Generate produces an extractive answer from the retrieved passages:
// the single best-scoring sentence plus the file it came from.
func (g *Generator) Generate(query string, retrieved []models.ScoredPassage) (models.Answer, error) {
	if len(retrieved) == 0 || retrieved[0].Score < g.config.MinScore {
		return models.Answer{Text: FallbackText}, nil
	}

	candidates := g.Candidates(query, retrieved)

	var best models.Candidate
	if len(candidates) == 0 {
		// Fall back to the first sentence of the top passage
		top := retrieved[0].Passage
		sentences := g.proc.SplitSentences(top.Text)
		text := top.Text
		if len(sentences) > 0 {
			text = sentences[0]
		}
		best = models.Candidate{Sentence: text, Source: top.Source}
	} else {
		best = candidates[0]
	}

	text := strings.TrimSpace(best.Sentence)
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}

	return models.Answer{
		Text:    text,
		Sources: []string{best.Source},
	}, nil
}

// Candidates scores every substantial sentence in the retrieved
// passages against the query and returns them best first, sorted by
// relevance score then passage score.
func (g *Generator) Candidates(query string, retrieved []models.ScoredPassage) []models.Candidate {
	keywords := ExtractKeywords(query)
	queryLower := strings.ToLower(query)

	var candidates []models.Candidate
	for _, result := range retrieved {
		sentences := g.proc.SplitSentences(result.Passage.Text)

		for _, sentence := range sentences {
			if len(strings.Fields(sentence)) < g.config.MinSentenceWords {
				continue
			}

			score := g.scoreSentence(sentence, keywords, queryLower)
			if score > 0 {
				candidates = append(candidates, models.Candidate{
					Sentence:     sentence,
					Source:       result.Passage.Source,
					Relevance:    score,
					PassageScore: result.Score,
				})
			}
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].Relevance != candidates[b].Relevance {
			return candidates[a].Relevance > candidates[b].Relevance
		}
		return candidates[a].PassageScore > candidates[b].PassageScore
	})

	return candidates
}

// ExtractKeywords pulls content-bearing words out of a query.
func ExtractKeywords(query string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if word == "" || questionStopwords[word] {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

func (g *Generator) scoreSentence(sentence string, keywords []string, queryLower string) int {
	sentenceLower := strings.ToLower(sentence)
	score := 0

	// Exact keyword matches
	for _, keyword := range keywords {
		if strings.Contains(sentenceLower, keyword) {
			score += 2
		}
	}

	// Longer query words found in the sentence
	for _, word := range strings.Fields(queryLower) {
		if len(word) > 3 && strings.Contains(sentenceLower, word) {
			score++
		}
	}

	// Very long sentences are usually whole paragraphs
	if len(strings.Fields(sentence)) > g.config.LongSentenceWords {
		score -= 2
	}

	// Sentences with numbers often carry the specific fact
	if digitPattern.MatchString(sentence) {
		score++
	}

	return score
}
