package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/ravell-app/tg-bridge/internal/deeplink"
	"github.com/ravell-app/tg-bridge/internal/messages"
	"github.com/ravell-app/tg-bridge/types"
)

const premiumPeriod = 30 * 24 * time.Hour

// Telegram caps a single Stars invoice item at 2500 stars.
const (
	testAmountMin = 1
	testAmountMax = 2500
)

func testAmountValid(amount int) bool {
	return amount >= testAmountMin && amount <= testAmountMax
}

func (bh *Handlers) sendSubscriptionInvoice(ctx context.Context, b *bot.Bot, chatID, userID int64) {
	_, err := b.SendInvoice(ctx, &bot.SendInvoiceParams{
		ChatID:      chatID,
		Title:       "Ravell Premium",
		Description: "Премиум-доступ на 30 дней",
		Payload:     deeplink.ProPayload(userID),
		Currency:    "XTR",
		Prices:      []models.LabeledPrice{{Label: "Premium (30 дней)", Amount: bh.subPriceStars}},
	})
	if err != nil {
		bh.log.Error("send subscription invoice failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
		bh.sendText(ctx, b, chatID, messages.SubscriptionInvoiceFailed(err.Error()))
	}
}

func (bh *Handlers) IssueTestInvoice(ctx context.Context, b *bot.Bot, chatID, payerID int64, amount int) {
	if !testAmountValid(amount) {
		bh.sendText(ctx, b, chatID, messages.TestAmountOutOfRange(testAmountMin, testAmountMax))
		return
	}
	_, err := b.SendInvoice(ctx, &bot.SendInvoiceParams{
		ChatID:      chatID,
		Title:       "Тестовый платёж",
		Description: "Проверка платежей, подписка не меняется",
		Payload:     deeplink.TestPayload(payerID),
		Currency:    "XTR",
		Prices:      []models.LabeledPrice{{Label: "Тест", Amount: amount}},
	})
	if err != nil {
		bh.log.Error("send test invoice failed",
			zap.Int64("user_id", payerID),
			zap.Error(err))
		bh.sendText(ctx, b, chatID, messages.SubscriptionInvoiceFailed(err.Error()))
	}
}

// HandlePreCheckout approves unconditionally: no inventory, fraud, or amount
// re-validation happens here. Telegram fails the purchase on its own if the
// answer misses the deadline, so nothing slow may run on this path.
func (bh *Handlers) HandlePreCheckout(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.PreCheckoutQuery == nil {
		return
	}
	q := update.PreCheckoutQuery
	bh.log.Info("pre-checkout query",
		zap.Int64("user_id", q.From.ID),
		zap.String("payload", q.InvoicePayload),
		zap.Int("total_amount", q.TotalAmount))
	_, err := b.AnswerPreCheckoutQuery(ctx, &bot.AnswerPreCheckoutQueryParams{
		PreCheckoutQueryID: q.ID,
		OK:                 true,
	})
	if err != nil {
		bh.log.Error("answer pre-checkout failed",
			zap.Int64("user_id", q.From.ID),
			zap.Error(err))
	}
}

func (bh *Handlers) HandleSuccessfulPayment(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.SuccessfulPayment == nil {
		return
	}
	userID := getUserIDFromUpdate(update)
	chatID := update.Message.Chat.ID
	text := bh.applyPayment(userID, update.Message.SuccessfulPayment)
	bh.sendText(ctx, b, chatID, text)
}

// applyPayment records the charge and commits the entitlement it pays for,
// returning the text for the payer. The money is already captured by the
// time this runs, so nothing here may refuse the payment; every failure
// path hands the payer the charge id instead.
//
// Repeat-purchase policy is overwrite: a committed pro purchase sets
// premium_until to now+30d regardless of any remaining paid time.
func (bh *Handlers) applyPayment(userID int64, p *models.SuccessfulPayment) string {
	chargeID := strings.TrimSpace(p.TelegramPaymentChargeID)
	payload := strings.TrimSpace(p.InvoicePayload)

	inserted, err := bh.users.RecordPayment(types.Payment{
		UserID:                userID,
		Currency:              strings.TrimSpace(p.Currency),
		TotalAmount:           int64(p.TotalAmount),
		InvoicePayload:        payload,
		TelegramPaymentCharge: chargeID,
		ProviderPaymentCharge: strings.TrimSpace(p.ProviderPaymentChargeID),
		CreatedAt:             time.Now().UTC(),
	})
	if err != nil {
		bh.log.Error("payment record failed",
			zap.Int64("user_id", userID),
			zap.String("charge_id", chargeID),
			zap.Error(err))
		return messages.PaymentStoreFailed(chargeID)
	}
	if !inserted {
		bh.log.Info("duplicate payment delivery ignored",
			zap.Int64("user_id", userID),
			zap.String("charge_id", chargeID))
		return messages.PaymentAlreadyProcessed()
	}

	purchase, err := deeplink.ParsePayload(payload)
	if err != nil {
		// Money without entitlement: keep the raw payload around for
		// forensic recovery and make sure this shows up in monitoring.
		bh.log.Error("unrecognized invoice payload",
			zap.Int64("user_id", userID),
			zap.String("charge_id", chargeID),
			zap.String("payload", payload))
		return messages.PaymentUnrecognized(chargeID)
	}

	switch purchase.Kind {
	case deeplink.PurchaseTest:
		bh.log.Info("test payment received",
			zap.Int64("user_id", userID),
			zap.String("charge_id", chargeID))
		return messages.TestPaymentReceived()
	case deeplink.PurchasePro:
		until := time.Now().UTC().Add(premiumPeriod)
		if err := bh.users.SetPremiumUntil(purchase.SubjectID, until); err != nil {
			bh.log.Error("entitlement write failed after captured payment",
				zap.Int64("user_id", purchase.SubjectID),
				zap.String("charge_id", chargeID),
				zap.Error(err))
			return messages.PaymentStoreFailed(chargeID)
		}
		bh.log.Info("premium granted",
			zap.Int64("user_id", purchase.SubjectID),
			zap.String("charge_id", chargeID),
			zap.Time("premium_until", until))
		return messages.PaymentSucceeded(until)
	default:
		return messages.PaymentUnrecognized(chargeID)
	}
}
