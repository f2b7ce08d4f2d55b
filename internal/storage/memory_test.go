package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartcooking/chatbot/internal/models"
)

func TestMemoryStorageHistory(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	history, err := s.GetHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("new user has %d exchanges, want 0", len(history))
	}

	ex := models.Exchange{Message: "hi", Reply: "hello", CreatedAt: time.Now().UTC()}
	if err := s.AppendExchange(ctx, "u1", ex); err != nil {
		t.Fatalf("AppendExchange failed: %v", err)
	}

	history, _ = s.GetHistory(ctx, "u1")
	if len(history) != 1 || history[0].Message != "hi" {
		t.Fatalf("unexpected history %+v", history)
	}

	// The returned slice is a copy.
	history[0].Message = "mutated"
	again, _ := s.GetHistory(ctx, "u1")
	if again[0].Message != "hi" {
		t.Errorf("caller mutation leaked into storage")
	}
}

func TestMemoryStorageConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendExchange(ctx, "u1", models.Exchange{Message: "m", CreatedAt: time.Now()})
		}()
	}
	wg.Wait()

	history, _ := s.GetHistory(ctx, "u1")
	if len(history) != n {
		t.Fatalf("lost updates: %d exchanges, want %d", len(history), n)
	}
}

func TestMemoryStorageRegisterUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	if _, err := s.GetUser(ctx, "017000"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetUser on unknown mobile = %v, want ErrUserNotFound", err)
	}

	if err := s.RegisterUser(ctx, models.User{Mobile: "017000", Name: "Anik"}); err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	// Re-registering must not overwrite.
	if err := s.RegisterUser(ctx, models.User{Mobile: "017000", Name: "Someone Else"}); err != nil {
		t.Fatalf("repeat RegisterUser failed: %v", err)
	}

	user, err := s.GetUser(ctx, "017000")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.Name != "Anik" {
		t.Errorf("name = %q, registration overwrote the original record", user.Name)
	}
	if user.CreatedAt.IsZero() {
		t.Errorf("created_at not set")
	}
}
