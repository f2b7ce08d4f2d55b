package models

import "time"

// Sentiment is the label produced by the sentiment classifier.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Source identifies which resolution tier produced a reply, or where a
// history read was served from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceFAQ     Source = "faq"
	SourceLLM     Source = "llm"
	SourceDurable Source = "durable"
)

// Exchange is one recorded question/answer pair in a user's history.
// Immutable once appended.
type Exchange struct {
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserHistory is the full append-only exchange log for one user.
type UserHistory struct {
	UserID   string     `json:"user_id"`
	Messages []Exchange `json:"messages"`
}

// User is a registered user. The mobile number doubles as the user id
// across the chat endpoints.
type User struct {
	Mobile    string    `json:"mobile"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is an inbound message to resolve.
type ChatRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the resolver's answer.
type ChatResponse struct {
	Reply     string    `json:"reply"`
	Source    Source    `json:"source"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
}

// HistoryResponse is a user's ordered exchange log tagged with where it
// was read from.
type HistoryResponse struct {
	UserHistory
	Source Source `json:"source"`
}
