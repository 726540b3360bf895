package middleware

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/ravell-app/tg-bridge/internal/contextkeys"
)

type Middlewares struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Middlewares {
	return &Middlewares{log: log}
}

// Recover keeps a panicking handler from taking the update loop down.
// Every failure stays scoped to the one update that caused it.
func (m *Middlewares) Recover(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		defer func() {
			if r := recover(); r != nil {
				m.log.Error("handler panic",
					zap.Int64("update_id", update.ID),
					zap.Any("panic", r))
			}
		}()
		next(ctx, b, update)
	}
}

// AnalyzeMessageMiddleware classifies the update so the main handler can
// dispatch on a single message type.
func (m *Middlewares) AnalyzeMessageMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		next(contextkeys.WithMessageType(ctx, classify(update)), b, update)
	}
}

func classify(update *models.Update) contextkeys.MessageType {
	if update.PreCheckoutQuery != nil {
		return contextkeys.MessageTypePreCheckout
	}
	if update.Message == nil {
		return contextkeys.MessageTypeUnknown
	}
	if update.Message.SuccessfulPayment != nil {
		return contextkeys.MessageTypePayment
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		return contextkeys.MessageTypeCommand
	}
	if update.Message.Text != "" {
		return contextkeys.MessageTypeText
	}
	return contextkeys.MessageTypeUnknown
}
