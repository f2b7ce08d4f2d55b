package main

import (
	"flag"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/smartcooking/chatbot/internal/cache"
	"github.com/smartcooking/chatbot/internal/chatbot"
	"github.com/smartcooking/chatbot/internal/classifier"
	"github.com/smartcooking/chatbot/internal/faq"
	"github.com/smartcooking/chatbot/internal/llm"
	"github.com/smartcooking/chatbot/internal/server"
	"github.com/smartcooking/chatbot/internal/storage"
	"github.com/smartcooking/chatbot/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	// The FAQ table is mandatory: the service must not answer without it.
	table, err := faq.Load(cfg.Chat.FAQPath)
	if err != nil {
		logger.Fatal("Failed to load FAQ table", zap.Error(err), zap.String("path", cfg.Chat.FAQPath))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize cache
	var c cache.Cache
	if cfg.Redis.UseInMemory {
		logger.Info("Using in-memory cache")
		c = cache.NewMemoryCache()
	} else {
		logger.Info("Using Redis cache")
		c, err = cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to initialize cache", zap.Error(err))
		}
	}
	defer c.Close()

	// One OpenAI client serves both the generator and the classifier.
	clientConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAI.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	generator := llm.NewOpenAIGenerator(client, llm.GeneratorConfig{
		Model:          cfg.OpenAI.Model,
		Temperature:    float32(cfg.OpenAI.Temperature),
		MaxTokens:      cfg.OpenAI.MaxTokens,
		FallbackPhrase: cfg.Chat.FallbackPhrase,
	})
	clf := classifier.NewGPTClassifier(client, cfg.OpenAI.Model, logger)

	resolver := chatbot.NewResolver(c, store, table, generator, clf, chatbot.ResolverConfig{
		TTL:              cfg.Cache.TTL,
		Language:         cfg.Chat.Language,
		GeneratorTimeout: cfg.Chat.GeneratorTimeout,
	}, logger)
	loader := chatbot.NewHistoryLoader(c, store, cfg.Cache.TTL, logger)

	srv := server.New(cfg, resolver, loader, store, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
