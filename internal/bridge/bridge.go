package bridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/ravell-app/tg-bridge/internal/messages"
)

// Sender is the slice of the Telegram client the bridge needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Server is the inbound HTTP surface the Ravell backend pushes notifications
// through. Delivery is at-most-once; the backend retries on 5xx.
type Server struct {
	sender Sender
	log    *zap.Logger
	engine *gin.Engine
	srv    *http.Server
}

func New(addr string, sender Sender, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		sender: sender,
		log:    log,
		engine: engine,
	}
	engine.GET("/", s.health)
	engine.POST("/internal/send-notification", s.sendNotification)

	s.srv = &http.Server{
		Addr:    addr,
		Handler: engine,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "ravell-tg-bridge ok")
}

// pointers distinguish a missing field from a zero value
type notifyRequest struct {
	ChatID *int64  `json:"chat_id"`
	Text   *string `json:"text"`
}

func (s *Server) sendNotification(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ChatID == nil || req.Text == nil || *req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id and text are required"})
		return
	}

	_, err := s.sender.SendMessage(c.Request.Context(), &bot.SendMessageParams{
		ChatID:    *req.ChatID,
		Text:      *req.Text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		s.log.Error("notification send failed",
			zap.Int64("chat_id", *req.ChatID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
