package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/minirag/internal/models"
)

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Model           string
	Temperature     float64
	MaxTokens       int
	SystemTemplate  string
	ContextTemplate string
	BaseURL         string // Ollama server URL
}

// ChatEngine generates answers with an LLM, grounded on retrieved
// passages.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "mistral" // Default Ollama model
	}
	if config.Temperature <= 0 || config.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = "You are a helpful assistant with access to excerpts from a document collection. Answer questions based only on this context and cite the source files."
	}
	if config.ContextTemplate == "" {
		config.ContextTemplate = "\nRelevant passages:\n%s\n\nQuestion: %s"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	model, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{
		config: config,
		llm:    model,
	}, nil
}

// Chat generates an answer for the query using the retrieved passages
// as context.
func (ce *ChatEngine) Chat(query string, retrieved []models.ScoredPassage) (models.Answer, error) {
	content := ce.buildMessages(query, retrieved)

	ctx := context.Background()
	response, err := ce.llm.GenerateContent(ctx, content)
	if err != nil {
		return models.Answer{}, fmt.Errorf("chat error: %w", err)
	}

	var text strings.Builder
	for _, choice := range response.Choices {
		if choice != nil {
			text.WriteString(choice.Content)
		}
	}

	return models.Answer{
		Text:    strings.TrimSpace(text.String()),
		Sources: sourcesOf(retrieved),
	}, nil
}

// ChatStream generates a stream of answer chunks for the query.
func (ce *ChatEngine) ChatStream(query string, retrieved []models.ScoredPassage) (<-chan string, error) {
	content := ce.buildMessages(query, retrieved)

	resultChan := make(chan string)

	go func() {
		defer close(resultChan)

		ctx := context.Background()
		_, err := ce.llm.GenerateContent(ctx, content,
			llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
				resultChan <- string(chunk)
				return nil
			}))
		if err != nil {
			resultChan <- fmt.Sprintf("Error: %v", err)
		}
	}()

	return resultChan, nil
}

func (ce *ChatEngine) buildMessages(query string, retrieved []models.ScoredPassage) []llms.MessageContent {
	var contextBuilder strings.Builder
	for _, result := range retrieved {
		contextBuilder.WriteString(fmt.Sprintf("Source: %s\n%s\n\n",
			result.Passage.Source, result.Passage.Text))
	}

	return []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, ce.config.SystemTemplate),
		llms.TextParts(schema.ChatMessageTypeHuman,
			fmt.Sprintf(ce.config.ContextTemplate, contextBuilder.String(), query)),
	}
}

// sourcesOf collects the distinct source files of the retrieved
// passages, in retrieval order.
func sourcesOf(retrieved []models.ScoredPassage) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, result := range retrieved {
		if !seen[result.Passage.Source] {
			seen[result.Passage.Source] = true
			sources = append(sources, result.Passage.Source)
		}
	}
	return sources
}
