package storage

import (
	"context"

	"github.com/smartcooking/chatbot/internal/models"
)

// HistoryStore is the durable, append-only per-user exchange log.
//
// AppendExchange must be atomic per user document: concurrent appends for
// the same user may interleave in any order, but none may be lost. Readers
// must not rely on storage order; the history loader re-sorts by timestamp.
type HistoryStore interface {
	// GetHistory returns the user's exchanges in storage order, or an
	// empty slice when the user has no history.
	GetHistory(ctx context.Context, userID string) ([]models.Exchange, error)
	AppendExchange(ctx context.Context, userID string, exchange models.Exchange) error
}

// UserStore holds registered users, keyed by unique mobile number.
type UserStore interface {
	// RegisterUser inserts the user if the mobile number is new and is a
	// no-op otherwise. Registration never overwrites an existing record.
	RegisterUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, mobile string) (*models.User, error)
}

// Storage bundles the two stores plus lifecycle management.
type Storage interface {
	HistoryStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
