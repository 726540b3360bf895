package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/ravell-app/tg-bridge/internal/backend"
	"github.com/ravell-app/tg-bridge/internal/deeplink"
	"github.com/ravell-app/tg-bridge/internal/messages"
)

func (bh *Handlers) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	command := strings.TrimSpace(update.Message.Text)
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return
	}
	cmd := fields[0]
	if strings.Contains(cmd, "@") {
		cmd = strings.SplitN(cmd, "@", 2)[0]
	}
	chatID := update.Message.Chat.ID
	userID := getUserIDFromUpdate(update)

	switch cmd {
	case "/start":
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}
		bh.handleStart(ctx, b, chatID, arg)
	case "/status":
		bh.handleStatus(ctx, b, chatID, userID)
	case "/testpay":
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}
		bh.handleTestPay(ctx, b, chatID, userID, arg)
	case "/refund":
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}
		bh.handleRefund(ctx, b, chatID, userID, arg)
	case "/paysupport":
		bh.sendText(ctx, b, chatID, messages.PaySupport())
	case "/help":
		bh.sendText(ctx, b, chatID, messages.HelpText())
	default:
		bh.sendText(ctx, b, chatID, messages.ErrorUnknownCommand())
	}
}

func (bh *Handlers) handleStart(ctx context.Context, b *bot.Bot, chatID int64, arg string) {
	link, err := deeplink.Parse(arg)
	if err != nil {
		bh.log.Warn("bad deep link", zap.String("arg", arg), zap.Error(err))
		bh.sendText(ctx, b, chatID, messages.ErrorBadDeepLink())
		return
	}

	switch link.Intent {
	case deeplink.IntentBind:
		bh.handleBind(ctx, b, chatID, link.UserID)
	case deeplink.IntentSubscribe:
		bh.sendSubscriptionInvoice(ctx, b, chatID, link.UserID)
	default:
		bh.sendText(ctx, b, chatID, messages.StartWelcome())
	}
}

func (bh *Handlers) handleBind(ctx context.Context, b *bot.Bot, chatID, userID int64) {
	err := bh.linker.Bind(ctx, userID, chatID)
	switch {
	case err == nil:
		bh.sendText(ctx, b, chatID, messages.BindConnected())
	case errors.Is(err, backend.ErrUnreachable):
		bh.sendText(ctx, b, chatID, messages.BindBackendUnreachable())
	case errors.Is(err, backend.ErrRejected):
		bh.sendText(ctx, b, chatID, messages.BindRejected())
	default:
		bh.sendText(ctx, b, chatID, messages.BindStoreFailed())
	}
}

func (bh *Handlers) handleStatus(ctx context.Context, b *bot.Bot, chatID, userID int64) {
	u, err := bh.users.GetUser(userID)
	if err != nil {
		bh.log.Error("status lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		bh.sendText(ctx, b, chatID, messages.ErrorDefault())
		return
	}
	if u == nil {
		bh.sendText(ctx, b, chatID, messages.Status(false, nil))
		return
	}
	bh.sendText(ctx, b, chatID, messages.Status(u.TGChatID != nil, u.PremiumUntil))
}

func (bh *Handlers) handleTestPay(ctx context.Context, b *bot.Bot, chatID, userID int64, arg string) {
	amount, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		bh.sendText(ctx, b, chatID, messages.TestInvoiceUsage())
		return
	}
	bh.IssueTestInvoice(ctx, b, chatID, userID, amount)
}

func (bh *Handlers) handleRefund(ctx context.Context, b *bot.Bot, chatID, userID int64, arg string) {
	chargeID := strings.TrimSpace(arg)
	if chargeID == "" {
		bh.sendText(ctx, b, chatID, messages.RefundUsage())
		return
	}

	// Refunds are not idempotent; the platform's verdict is final and is
	// reported verbatim, never retried.
	ok, err := b.RefundStarPayment(ctx, &bot.RefundStarPaymentParams{
		UserID:                  userID,
		TelegramPaymentChargeID: chargeID,
	})
	if err != nil {
		bh.log.Warn("refund rejected by platform",
			zap.Int64("user_id", userID),
			zap.String("charge_id", chargeID),
			zap.Error(err))
		bh.sendText(ctx, b, chatID, messages.RefundFailed(err.Error()))
		return
	}
	if !ok {
		bh.sendText(ctx, b, chatID, messages.RefundFailed("платёж не найден"))
		return
	}
	// The entitlement the charge funded is deliberately not revoked here;
	// support handles clawbacks manually.
	bh.log.Warn("payment refunded, entitlement kept",
		zap.Int64("user_id", userID),
		zap.String("charge_id", chargeID))
	bh.sendText(ctx, b, chatID, messages.RefundDone())
}
