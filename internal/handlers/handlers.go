package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/ravell-app/tg-bridge/internal/contextkeys"
	"github.com/ravell-app/tg-bridge/internal/linker"
	"github.com/ravell-app/tg-bridge/internal/messages"
	"github.com/ravell-app/tg-bridge/types"
)

type Handlers struct {
	users         types.EntitlementStore
	linker        *linker.Linker
	subPriceStars int
	log           *zap.Logger
}

func NewHandlers(users types.EntitlementStore, linker *linker.Linker, subPriceStars int, log *zap.Logger) *Handlers {
	if subPriceStars <= 0 {
		subPriceStars = 1
	}
	return &Handlers{
		users:         users,
		linker:        linker,
		subPriceStars: subPriceStars,
		log:           log,
	}
}

func (bh *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	messageType, _ := contextkeys.GetMessageType(ctx)

	switch messageType {
	case contextkeys.MessageTypeCommand:
		bh.HandleCommand(ctx, b, update)
	case contextkeys.MessageTypePreCheckout:
		bh.HandlePreCheckout(ctx, b, update)
	case contextkeys.MessageTypePayment:
		bh.HandleSuccessfulPayment(ctx, b, update)
	case contextkeys.MessageTypeText:
		bh.sendText(ctx, b, update.Message.Chat.ID, messages.StartWelcome())
	default:
	}
}

func (bh *Handlers) sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		bh.log.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func getUserIDFromUpdate(update *models.Update) int64 {
	if update == nil {
		return 0
	}
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.PreCheckoutQuery != nil {
		return update.PreCheckoutQuery.From.ID
	}
	return 0
}
