package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/smartcooking/chatbot/internal/cache"
	"github.com/smartcooking/chatbot/internal/models"
	"github.com/smartcooking/chatbot/internal/storage"
)

// HistoryLoader serves a user's full ordered exchange log cache-aside:
// the history cache first, the durable store on a miss, repopulating the
// cache with the sorted result.
type HistoryLoader struct {
	cache  cache.Cache
	store  storage.HistoryStore
	logger *zap.Logger
	ttl    time.Duration
}

func NewHistoryLoader(c cache.Cache, store storage.HistoryStore, ttl time.Duration, logger *zap.Logger) *HistoryLoader {
	return &HistoryLoader{
		cache:  c,
		store:  store,
		logger: logger,
		ttl:    ttl,
	}
}

// Load returns the user's exchanges sorted ascending by timestamp. The
// sort runs on every durable read even though appends are chronological:
// concurrent appends for one user land in whatever order the store
// serialized them, and backfilled records may be out of order too.
func (l *HistoryLoader) Load(ctx context.Context, userID string) (*models.HistoryResponse, error) {
	key := cache.HistoryKey(userID)

	cached, hit, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.Warn("history cache read failed, treating as miss",
			zap.Error(err), zap.String("user_id", userID))
	}
	if hit {
		var exchanges []models.Exchange
		if err := json.Unmarshal([]byte(cached), &exchanges); err != nil {
			// A corrupt entry is a miss; it gets overwritten below.
			l.logger.Warn("history cache entry is corrupt, falling through to store",
				zap.Error(err), zap.String("user_id", userID))
		} else {
			l.normalizeTimestamps(userID, exchanges)
			return &models.HistoryResponse{
				UserHistory: models.UserHistory{UserID: userID, Messages: exchanges},
				Source:      models.SourceCache,
			}, nil
		}
	}

	exchanges, err := l.store.GetHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading history for %s: %w", userID, err)
	}

	l.normalizeTimestamps(userID, exchanges)

	// Stable, so exchanges with equal timestamps keep storage order and
	// repeated loads agree.
	sort.SliceStable(exchanges, func(i, j int) bool {
		return exchanges[i].CreatedAt.Before(exchanges[j].CreatedAt)
	})

	if serialized, err := json.Marshal(exchanges); err != nil {
		l.logger.Warn("history serialization failed, skipping cache write",
			zap.Error(err), zap.String("user_id", userID))
	} else if err := l.cache.Set(ctx, key, string(serialized), l.ttl); err != nil {
		l.logger.Warn("history cache write failed",
			zap.Error(err), zap.String("user_id", userID))
	}

	return &models.HistoryResponse{
		UserHistory: models.UserHistory{UserID: userID, Messages: exchanges},
		Source:      models.SourceDurable,
	}, nil
}

// normalizeTimestamps converts every timestamp to UTC. Records with a
// missing timestamp are not backdated with a fabricated "now" (that
// would make their sort position depend on when the load ran); they keep
// the zero value, which orders them deterministically before everything
// else, and the anomaly is logged.
func (l *HistoryLoader) normalizeTimestamps(userID string, exchanges []models.Exchange) {
	missing := 0
	for i := range exchanges {
		if exchanges[i].CreatedAt.IsZero() {
			missing++
			continue
		}
		exchanges[i].CreatedAt = exchanges[i].CreatedAt.UTC()
	}
	if missing > 0 {
		l.logger.Warn("history contains exchanges without timestamps",
			zap.Int("count", missing), zap.String("user_id", userID))
	}
}
