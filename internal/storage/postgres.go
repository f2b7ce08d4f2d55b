package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/smartcooking/chatbot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

// ErrUserNotFound is returned by GetUser for an unknown mobile number.
var ErrUserNotFound = errors.New("user not found")

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

// PostgresStorage keeps each user's history as one row with a JSONB
// messages array, so an append is a single upsert and inherits row-level
// atomicity from the database.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetHistory(ctx context.Context, userID string) ([]models.Exchange, error) {
	query := `
		SELECT messages
		FROM chat_histories
		WHERE user_id = $1`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return []models.Exchange{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying history: %v", err)
	}

	var exchanges []models.Exchange
	if err := json.Unmarshal(raw, &exchanges); err != nil {
		return nil, fmt.Errorf("error decoding history document: %v", err)
	}

	return exchanges, nil
}

// AppendExchange pushes one exchange onto the user's document, creating
// the document on first write. The whole operation is one statement, so
// concurrent appends for the same user both land.
func (s *PostgresStorage) AppendExchange(ctx context.Context, userID string, exchange models.Exchange) error {
	payload, err := json.Marshal(exchange)
	if err != nil {
		return fmt.Errorf("error encoding exchange: %v", err)
	}

	query := `
		INSERT INTO chat_histories (user_id, messages)
		VALUES ($1, jsonb_build_array($2::jsonb))
		ON CONFLICT (user_id)
		DO UPDATE SET messages = chat_histories.messages || EXCLUDED.messages`

	if _, err := s.db.ExecContext(ctx, query, userID, payload); err != nil {
		return fmt.Errorf("error appending exchange: %v", err)
	}

	return nil
}

func (s *PostgresStorage) RegisterUser(ctx context.Context, user models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (mobile, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (mobile) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, user.Mobile, user.Name, user.CreatedAt); err != nil {
		return fmt.Errorf("error registering user: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetUser(ctx context.Context, mobile string) (*models.User, error) {
	query := `
		SELECT mobile, name, created_at
		FROM users
		WHERE mobile = $1`

	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, mobile).Scan(&user.Mobile, &user.Name, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %v", err)
	}

	return user, nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
