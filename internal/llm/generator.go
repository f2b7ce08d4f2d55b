package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Generator is the text-completion capability the resolver falls back to
// when neither the cache nor the FAQ table can answer. Implementations
// must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, question, contextBlock string) (string, error)
}

// OpenAIGenerator answers a question from assembled context through the
// chat-completion API. The prompt pins the model to the supplied context
// and to a fixed fallback phrase, and temperature is kept low so repeated
// questions get repeatable answers.
type OpenAIGenerator struct {
	client         *openai.Client
	model          string
	temperature    float32
	maxTokens      int
	fallbackPhrase string
}

type GeneratorConfig struct {
	Model          string
	Temperature    float32
	MaxTokens      int
	FallbackPhrase string
}

func NewOpenAIGenerator(client *openai.Client, cfg GeneratorConfig) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:         client,
		model:          cfg.Model,
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxTokens,
		fallbackPhrase: cfg.FallbackPhrase,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	prompt := fmt.Sprintf(`You are a customer support assistant.
Answer using ONLY the information below. Do not invent facts.
If the information does not cover the question, reply exactly: %q

Information:
%s

Question:
%s`, g.fallbackPhrase, contextBlock, question)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return answer, nil
}
