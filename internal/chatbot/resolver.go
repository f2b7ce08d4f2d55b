package chatbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smartcooking/chatbot/internal/cache"
	"github.com/smartcooking/chatbot/internal/classifier"
	"github.com/smartcooking/chatbot/internal/faq"
	"github.com/smartcooking/chatbot/internal/llm"
	"github.com/smartcooking/chatbot/internal/models"
	"github.com/smartcooking/chatbot/internal/storage"
)

// ErrDegradedPersistence marks a resolution whose reply was produced but
// whose history append failed. The reply is still valid; callers decide
// how loudly to surface the degradation.
var ErrDegradedPersistence = errors.New("reply produced but history append failed")

// Resolver answers a user message through three tiers, terminal on the
// first that succeeds: reply cache, FAQ keyword match, then the
// generator seeded with assembled context.
type Resolver struct {
	cache      cache.Cache
	store      storage.HistoryStore
	table      *faq.Table
	generator  llm.Generator
	classifier classifier.Classifier
	logger     *zap.Logger

	ttl        time.Duration
	lang       string
	genTimeout time.Duration
	now        func() time.Time
}

type ResolverConfig struct {
	TTL              time.Duration
	Language         string
	GeneratorTimeout time.Duration
}

func NewResolver(
	c cache.Cache,
	store storage.HistoryStore,
	table *faq.Table,
	generator llm.Generator,
	clf classifier.Classifier,
	cfg ResolverConfig,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		cache:      c,
		store:      store,
		table:      table,
		generator:  generator,
		classifier: clf,
		logger:     logger,
		ttl:        cfg.TTL,
		lang:       cfg.Language,
		genTimeout: cfg.GeneratorTimeout,
		now:        time.Now,
	}
}

// Resolve runs the tier chain for one message.
//
// A warm cache hit returns immediately with no writes: the exchange was
// already recorded when the reply was first produced. FAQ- and
// generator-sourced replies are written through to the reply cache, then
// appended to the durable history, and the user's history-cache entry is
// deleted so the next history read sees the new exchange.
//
// Sentiment is always classified on the raw message, never the
// normalized form.
func (r *Resolver) Resolve(ctx context.Context, userID, message string) (*models.ChatResponse, error) {
	normalized := Normalize(message)
	sentiment := r.classifier.Classify(ctx, message)
	key := cache.ReplyKey(userID, normalized)

	// Tier 1: reply cache. Cache errors are a miss, never fatal.
	cached, hit, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("reply cache read failed, treating as miss",
			zap.Error(err), zap.String("user_id", userID))
	}
	if hit {
		return &models.ChatResponse{
			Reply:     cached,
			Source:    models.SourceCache,
			Sentiment: sentiment,
		}, nil
	}

	var reply string
	var source models.Source

	// Tier 2: FAQ keyword match against the normalized text.
	if record := r.table.Match(normalized); record != nil {
		reply = record.Answer(r.lang)
		source = models.SourceFAQ
	} else {
		// Tier 3: generate from assembled context. History is read from
		// the durable store, not the history cache, so context written
		// moments ago is visible here.
		history, err := r.store.GetHistory(ctx, userID)
		if err != nil {
			r.logger.Warn("history read failed, generating with FAQ-only context",
				zap.Error(err), zap.String("user_id", userID))
			history = nil
		}

		genCtx := ctx
		if r.genTimeout > 0 {
			var cancel context.CancelFunc
			genCtx, cancel = context.WithTimeout(ctx, r.genTimeout)
			defer cancel()
		}

		reply, err = r.generator.Generate(genCtx, message, AssembleContext(r.table, r.lang, history))
		if err != nil {
			// No tier exists below the generator.
			return nil, fmt.Errorf("generating reply: %w", err)
		}
		source = models.SourceLLM
	}

	if err := r.cache.Set(ctx, key, reply, r.ttl); err != nil {
		r.logger.Warn("reply cache write failed",
			zap.Error(err), zap.String("user_id", userID))
	}

	resp := &models.ChatResponse{Reply: reply, Source: source, Sentiment: sentiment}
	return resp, r.persist(ctx, userID, message, reply, sentiment)
}

// persist appends the exchange and invalidates the history cache. The
// append is best-effort relative to the already-computed reply: failure
// is reported as ErrDegradedPersistence, not as a failed resolution.
func (r *Resolver) persist(ctx context.Context, userID, message, reply string, sentiment models.Sentiment) error {
	exchange := models.Exchange{
		Message:   message,
		Reply:     reply,
		Sentiment: sentiment,
		CreatedAt: r.now().UTC(),
	}

	var persistErr error
	if err := r.store.AppendExchange(ctx, userID, exchange); err != nil {
		r.logger.Error("history append failed",
			zap.Error(err), zap.String("user_id", userID))
		persistErr = fmt.Errorf("%w: %v", ErrDegradedPersistence, err)
	}

	if err := r.cache.Delete(ctx, cache.HistoryKey(userID)); err != nil {
		r.logger.Warn("history cache invalidation failed",
			zap.Error(err), zap.String("user_id", userID))
	}

	return persistErr
}
