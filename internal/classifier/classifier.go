package classifier

import (
	"context"
	"strings"

	"github.com/smartcooking/chatbot/internal/models"
)

// Classifier labels free text with a sentiment. Implementations must be
// safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) models.Sentiment
}

// KeywordClassifier is a deterministic lexicon-based classifier. It is
// the fallback when the GPT classifier is unavailable and the default
// in tests.
type KeywordClassifier struct {
	positive []string
	negative []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		positive: []string{
			"thank", "thanks", "great", "good", "love", "awesome",
			"excellent", "perfect", "nice", "helpful",
		},
		negative: []string{
			"bad", "terrible", "awful", "hate", "angry", "refund",
			"broken", "worst", "useless", "complaint", "disappointed",
		},
	}
}

// Classify scores the text by counting lexicon hits; ties and no hits
// are neutral.
func (c *KeywordClassifier) Classify(_ context.Context, text string) models.Sentiment {
	lowered := strings.ToLower(text)

	score := 0
	for _, w := range c.positive {
		if strings.Contains(lowered, w) {
			score++
		}
	}
	for _, w := range c.negative {
		if strings.Contains(lowered, w) {
			score--
		}
	}

	switch {
	case score > 0:
		return models.SentimentPositive
	case score < 0:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
