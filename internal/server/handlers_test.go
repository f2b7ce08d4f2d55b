package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartcooking/chatbot/internal/cache"
	"github.com/smartcooking/chatbot/internal/chatbot"
	"github.com/smartcooking/chatbot/internal/classifier"
	"github.com/smartcooking/chatbot/internal/faq"
	"github.com/smartcooking/chatbot/internal/models"
	"github.com/smartcooking/chatbot/internal/storage"
	"github.com/smartcooking/chatbot/pkg/config"
)

type staticGenerator struct {
	reply string
}

func (g staticGenerator) Generate(context.Context, string, string) (string, error) {
	return g.reply, nil
}

func newTestServer(t *testing.T) (*Server, *storage.MemoryStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStorage()
	c := cache.NewMemoryCache()
	table := faq.NewTable([]faq.Record{
		{Topic: "Refunds", Keywords: []string{"refund"}, Answers: map[string]string{"en": "Refunds take 7 days."}},
	})

	resolver := chatbot.NewResolver(c, store, table, staticGenerator{reply: "generated answer"},
		classifier.NewKeywordClassifier(), chatbot.ResolverConfig{TTL: time.Hour, Language: "en"}, zap.NewNop())
	loader := chatbot.NewHistoryLoader(c, store, time.Hour, zap.NewNop())

	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.Server.Mode = "test"

	return New(cfg, resolver, loader, store, zap.NewNop()), store
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	s, store := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/register", `{"mobile": "017000", "name": "Anik"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["user_id"] != "017000" {
		t.Errorf("user_id = %q, want the mobile number", resp["user_id"])
	}

	if _, err := store.GetUser(context.Background(), "017000"); err != nil {
		t.Errorf("user not persisted: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/register", `{"name": "no mobile"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestChatEndpointFAQFlow(t *testing.T) {
	s, store := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/chat", `{"user_id": "u1", "message": "I want a refund"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Source != models.SourceFAQ {
		t.Errorf("source = %q, want %q", resp.Source, models.SourceFAQ)
	}
	if resp.Reply != "Refunds take 7 days." {
		t.Errorf("reply = %q", resp.Reply)
	}

	history, _ := store.GetHistory(context.Background(), "u1")
	if len(history) != 1 {
		t.Errorf("appended %d exchanges, want 1", len(history))
	}
}

func TestChatEndpointGeneratedFlow(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/chat", `{"user_id": "u1", "message": "hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp models.ChatResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Source != models.SourceLLM || resp.Reply != "generated answer" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestChatEndpointValidation(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/chat", `{"user_id": "u1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	s, store := newTestServer(t)

	store.AppendExchange(context.Background(), "u1", models.Exchange{
		Message:   "hi",
		Reply:     "hello",
		Sentiment: models.SentimentNeutral,
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})

	w := doJSON(t, s, http.MethodGet, "/chat/history/u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp models.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.UserID != "u1" || len(resp.Messages) != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Source != models.SourceDurable {
		t.Errorf("source = %q, want %q on a cold cache", resp.Source, models.SourceDurable)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}
