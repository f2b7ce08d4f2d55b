package storage

import (
	"context"
	"sync"
	"time"

	"github.com/smartcooking/chatbot/internal/models"
)

// MemoryStorage is an in-process Storage used in tests and local
// development. Appends copy the exchange, so callers cannot mutate
// recorded history afterwards.
type MemoryStorage struct {
	mu        sync.RWMutex
	histories map[string][]models.Exchange
	users     map[string]*models.User
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		histories: make(map[string][]models.Exchange),
		users:     make(map[string]*models.User),
	}
}

func (s *MemoryStorage) GetHistory(_ context.Context, userID string) ([]models.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[userID]
	out := make([]models.Exchange, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStorage) AppendExchange(_ context.Context, userID string, exchange models.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.histories[userID] = append(s.histories[userID], exchange)
	return nil
}

func (s *MemoryStorage) RegisterUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Mobile]; exists {
		return nil
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.Mobile] = &user
	return nil
}

func (s *MemoryStorage) GetUser(_ context.Context, mobile string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, exists := s.users[mobile]; exists {
		u := *user
		return &u, nil
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStorage) Ping(_ context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
