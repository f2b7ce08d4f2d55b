package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartcooking/chatbot/internal/chatbot"
	"github.com/smartcooking/chatbot/internal/models"
)

type registerRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	Name   string `json:"name"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Mobile:    req.Mobile,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.RegisterUser(c.Request.Context(), user); err != nil {
		s.logger.Error("user registration failed",
			zap.Error(err), zap.String("request_id", c.GetString("request_id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	// The mobile number is the user id across the chat endpoints.
	c.JSON(http.StatusOK, gin.H{
		"user_id": req.Mobile,
		"message": "User registered successfully.",
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.resolver.Resolve(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, chatbot.ErrDegradedPersistence) {
			// The reply stands; only the history record is at risk.
			s.logger.Warn("serving reply with degraded persistence",
				zap.Error(err), zap.String("user_id", req.UserID),
				zap.String("request_id", c.GetString("request_id")))
			c.Header("Warning", `199 - "history persistence degraded"`)
			c.JSON(http.StatusOK, resp)
			return
		}
		s.logger.Error("reply resolution failed",
			zap.Error(err), zap.String("user_id", req.UserID),
			zap.String("request_id", c.GetString("request_id")))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to generate a reply right now"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHistory(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	resp, err := s.loader.Load(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("history load failed",
			zap.Error(err), zap.String("user_id", userID),
			zap.String("request_id", c.GetString("request_id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load history"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	storeStatus := "ok"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":  http.StatusText(status),
		"storage": storeStatus,
	})
}
