package answer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/minirag/internal/models"
	"github.com/xhad/minirag/pkg/answer"
)

func TestExtractKeywords(t *testing.T) {
	keywords := answer.ExtractKeywords("What is the warranty for UltraBlend 3000?")
	assert.Equal(t, []string{"warranty", "ultrablend", "3000"}, keywords)

	keywords = answer.ExtractKeywords("How many paid leaves do employees get?")
	assert.Equal(t, []string{"paid", "leaves", "employees"}, keywords)
}

func TestGenerate(t *testing.T) {
	g := answer.NewWithConfig(answer.GeneratorConfig{})

	retrieved := []models.ScoredPassage{
		{
			Passage: models.Passage{
				ID:     "ultrablend_manual.txt_passage_1",
				Source: "ultrablend_manual.txt",
				Text:   "Warranty Information: The UltraBlend 3000 comes with a comprehensive 2-year warranty covering all manufacturing defects. This warranty includes free replacement of defective parts and labor costs.",
			},
			Score: 0.42,
		},
		{
			Passage: models.Passage{
				ID:     "ultrablend_manual.txt_passage_0",
				Source: "ultrablend_manual.txt",
				Text:   "Welcome to your new UltraBlend 3000 blender! This powerful kitchen appliance is designed to make your food preparation easier.",
			},
			Score: 0.21,
		},
	}

	result, err := g.Generate("What is the warranty for UltraBlend 3000?", retrieved)
	require.NoError(t, err)

	assert.Contains(t, result.Text, "2-year warranty")
	assert.Equal(t, []string{"ultrablend_manual.txt"}, result.Sources)
	assert.True(t, strings.HasSuffix(result.Text, "."))
}

func TestGenerateFallbackBelowThreshold(t *testing.T) {
	g := answer.NewWithConfig(answer.GeneratorConfig{})

	retrieved := []models.ScoredPassage{
		{
			Passage: models.Passage{Source: "a.txt", Text: "Something entirely unrelated to anything."},
			Score:   0.001,
		},
	}

	result, err := g.Generate("What is the warranty?", retrieved)
	require.NoError(t, err)
	assert.Equal(t, answer.FallbackText, result.Text)
	assert.Empty(t, result.Sources)
}

func TestGenerateNoRetrieval(t *testing.T) {
	g := answer.NewWithConfig(answer.GeneratorConfig{})

	result, err := g.Generate("anything", nil)
	require.NoError(t, err)
	assert.Equal(t, answer.FallbackText, result.Text)
}

func TestGenerateFallsBackToTopPassage(t *testing.T) {
	g := answer.NewWithConfig(answer.GeneratorConfig{})

	// No sentence matches the query keywords, so the first sentence of
	// the top passage is used.
	retrieved := []models.ScoredPassage{
		{
			Passage: models.Passage{
				Source: "grill.txt",
				Text:   "Preheat the unit before cooking your meal. Always use heat-resistant utensils during operation.",
			},
			Score: 0.3,
		},
	}

	result, err := g.Generate("zyzzyva quux flibbert", retrieved)
	require.NoError(t, err)
	assert.Equal(t, "Preheat the unit before cooking your meal.", result.Text)
	assert.Equal(t, []string{"grill.txt"}, result.Sources)
}

func TestCandidatesOrdering(t *testing.T) {
	g := answer.NewWithConfig(answer.GeneratorConfig{})

	retrieved := []models.ScoredPassage{
		{
			Passage: models.Passage{
				Source: "handbook.txt",
				Text:   "New employees receive 15 days of paid leave per year. Standard work hours are 9 AM to 5 PM, Monday through Friday.",
			},
			Score: 0.5,
		},
	}

	candidates := g.Candidates("How many paid leaves do employees get?", retrieved)
	require.NotEmpty(t, candidates)
	assert.Contains(t, candidates[0].Sentence, "paid leave")
	assert.Equal(t, "handbook.txt", candidates[0].Source)
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Relevance, candidates[i].Relevance)
	}
}
