package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartcooking/chatbot/internal/chatbot"
	"github.com/smartcooking/chatbot/internal/storage"
	"github.com/smartcooking/chatbot/pkg/config"
)

// Server is the HTTP surface over the resolver and the history loader.
type Server struct {
	engine   *gin.Engine
	logger   *zap.Logger
	cfg      *config.Config
	resolver *chatbot.Resolver
	loader   *chatbot.HistoryLoader
	store    storage.Storage
}

func New(
	cfg *config.Config,
	resolver *chatbot.Resolver,
	loader *chatbot.HistoryLoader,
	store storage.Storage,
	logger *zap.Logger,
) *Server {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:   gin.New(),
		logger:   logger,
		cfg:      cfg,
		resolver: resolver,
		loader:   loader,
		store:    store,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(RequestID())
	s.engine.Use(RequestLogger(logger))
	s.engine.Use(CORS(cfg.CORS.AllowedOrigins))
	if cfg.Server.RateLimit > 0 {
		s.engine.Use(RateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.POST("/register", s.handleRegister)
	s.engine.POST("/chat", s.handleChat)
	s.engine.GET("/chat/history/:user_id", s.handleHistory)
	s.engine.GET("/health", s.handleHealth)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests for
// the configured shutdown timeout.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Server.Port,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("port", s.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		s.logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
