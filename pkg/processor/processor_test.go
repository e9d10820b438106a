package processor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/minirag/internal/models"
	"github.com/xhad/minirag/pkg/processor"
)

func TestPreprocess(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	tests := []struct {
		text string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"The   UltraBlend 3000.", "the ultrablend 3000"},
		{"  spaced\tout\ntext  ", "spaced out text"},
		{"What is the warranty for UltraBlend 3000?", "what is the warranty for ultrablend 3000"},
		{"The grill heats up to 450°F.", "the grill heats up to 450°f"},
		{"a + b = $5", "a b 5"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Preprocess(tt.text))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	sentences := p.SplitSentences("This is a test. It has two sentences.")
	require.Len(t, sentences, 2)
	assert.Equal(t, "This is a test.", sentences[0])
	assert.Equal(t, "It has two sentences.", sentences[1])
}

func TestSplitSentencesTerminators(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	sentences := p.SplitSentences("Is it safe? It is! Use it daily.")
	require.Len(t, sentences, 3)
	assert.Equal(t, "Is it safe?", sentences[0])
	assert.Equal(t, "It is!", sentences[1])
	assert.Equal(t, "Use it daily.", sentences[2])

	// A period inside a token is not a boundary
	sentences = p.SplitSentences("Visit ultrablend.com/service to schedule an appointment.")
	require.Len(t, sentences, 1)
}

func TestSplitSentencesUnterminated(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	// Short fragments without terminal punctuation are dropped,
	// substantial ones get a period appended.
	sentences := p.SplitSentences("Short header")
	assert.Empty(t, sentences)

	sentences = p.SplitSentences("this trailing fragment has more than five words in it")
	require.Len(t, sentences, 1)
	assert.True(t, strings.HasSuffix(sentences[0], "."))
}

func TestBuildPassages(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{MaxPassageWords: 10})

	text := "One two three four five six. Seven eight nine ten eleven twelve. Thirteen fourteen fifteen sixteen seventeen eighteen."
	passages := p.BuildPassages(text)

	require.Len(t, passages, 3)
	for _, passage := range passages {
		assert.LessOrEqual(t, len(strings.Fields(passage)), 10)
	}
}

func TestBuildPassagesSingle(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	passages := p.BuildPassages("A single short sentence fits in one passage.")
	require.Len(t, passages, 1)
	assert.Equal(t, "A single short sentence fits in one passage.", passages[0])
}

func TestProcess(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{MaxPassageWords: 8})

	docs := []models.Document{
		{Filename: "a.txt", Content: "First sentence right here. Second sentence right here. Third sentence right here."},
		{Filename: "b.txt", Content: "Only one short sentence here."},
	}

	passages, err := p.Process(docs)
	require.NoError(t, err)
	require.NotEmpty(t, passages)

	assert.Equal(t, "a.txt_passage_0", passages[0].ID)
	assert.Equal(t, "a.txt", passages[0].Source)
	assert.Equal(t, 0, passages[0].Index)

	last := passages[len(passages)-1]
	assert.Equal(t, "b.txt", last.Source)
	assert.Equal(t, "b.txt_passage_0", last.ID)
}
