package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/smartcooking/chatbot/internal/models"
)

// GPTClassifier labels sentiment with a chat-completion call. Any API
// failure or unrecognized label falls back to the keyword classifier so
// the resolver always gets a usable sentiment.
type GPTClassifier struct {
	client      *openai.Client
	model       string
	temperature float32
	fallback    *KeywordClassifier
	logger      *zap.Logger
}

func NewGPTClassifier(client *openai.Client, model string, logger *zap.Logger) *GPTClassifier {
	return &GPTClassifier{
		client:      client,
		model:       model,
		temperature: 0,
		fallback:    NewKeywordClassifier(),
		logger:      logger,
	}
}

func (c *GPTClassifier) Classify(ctx context.Context, text string) models.Sentiment {
	prompt := fmt.Sprintf(
		"Classify the sentiment of the following message as exactly one word: positive, negative or neutral.\n\nMessage: %s",
		text,
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   4,
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Warn("sentiment classification failed, using keyword fallback", zap.Error(err))
		return c.fallback.Classify(ctx, text)
	}
	if len(resp.Choices) == 0 {
		return c.fallback.Classify(ctx, text)
	}

	label := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	switch {
	case strings.HasPrefix(label, "positive"):
		return models.SentimentPositive
	case strings.HasPrefix(label, "negative"):
		return models.SentimentNegative
	case strings.HasPrefix(label, "neutral"):
		return models.SentimentNeutral
	default:
		c.logger.Warn("unrecognized sentiment label", zap.String("label", label))
		return c.fallback.Classify(ctx, text)
	}
}
