package messages

import (
	"fmt"
	"strings"
	"time"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func StartWelcome() string {
	return "👋 <b>Привет!</b>\nЯ бот Ravell: привязываю аккаунт к Telegram и присылаю сюда уведомления.\n\n" +
		"🔗 Откройте Ravell и нажмите «Подключить Telegram», чтобы привязать аккаунт.\n" +
		"ℹ️ /help — список команд."
}

func HelpText() string {
	return "ℹ️ <b>Команды</b>\n" +
		"/start — привязка аккаунта по ссылке из Ravell\n" +
		"/status — состояние привязки и подписки\n" +
		"/refund — возврат платежа по его идентификатору\n" +
		"/paysupport — помощь с платежами"
}

func ErrorUnknownCommand() string {
	return "❓ <b>Команда не найдена</b>"
}

func ErrorBadDeepLink() string {
	return "🚫 <b>Некорректная ссылка</b>\nОткройте Ravell и попробуйте привязку ещё раз."
}

func BindConnected() string {
	return "✅ <b>Ravell Connected!</b>\nТеперь уведомления о лайках и ответах будут приходить сюда."
}

func BindBackendUnreachable() string {
	return "❌ Сервер Ravell недоступен.\nПривязка сохранена, синхронизация с сервером выполнится автоматически."
}

func BindRejected() string {
	return "❌ Ошибка на сервере привязки. Попробуйте позже."
}

func BindStoreFailed() string {
	return "🚫 <b>Не удалось сохранить привязку</b>\nПопробуйте ещё раз."
}

func SubscriptionInvoiceFailed(detail string) string {
	return "🚫 <b>Не удалось выставить счёт</b>\n" + Escape(detail)
}

func TestInvoiceUsage() string {
	return "Использование: /testpay &lt;количество звёзд&gt;"
}

func TestAmountOutOfRange(min, max int) string {
	return fmt.Sprintf("🚫 Сумма должна быть от %d до %d звёзд.", min, max)
}

func TestPaymentReceived() string {
	return "🧪 <b>Тестовый платёж получен</b>\nПодписка не изменена."
}

func PaymentSucceeded(until time.Time) string {
	return fmt.Sprintf("⭐ <b>Оплата прошла!</b>\nПремиум активен до %s.", until.UTC().Format("02.01.2006 15:04 MST"))
}

func PaymentAlreadyProcessed() string {
	return "✅ Этот платёж уже был обработан."
}

// PaymentStoreFailed is sent when money was captured but the entitlement
// write failed. The charge id gives the user a handle for support recovery.
func PaymentStoreFailed(chargeID string) string {
	return "⚠️ <b>Оплата получена, но подписку сохранить не удалось.</b>\n" +
		"Напишите в поддержку и укажите код платежа:\n<code>" + Escape(chargeID) + "</code>"
}

func PaymentUnrecognized(chargeID string) string {
	return "⚠️ <b>Платёж получен, но мы не смогли его распознать.</b>\n" +
		"Напишите в поддержку и укажите код платежа:\n<code>" + Escape(chargeID) + "</code>"
}

func RefundUsage() string {
	return "Использование: /refund &lt;код платежа&gt;\nКод приходит в сообщении об оплате."
}

func RefundDone() string {
	return "↩️ <b>Возврат выполнен</b>\nЗвёзды вернутся на ваш баланс."
}

func RefundFailed(detail string) string {
	return "🚫 <b>Возврат не выполнен</b>\n" + Escape(detail)
}

func PaySupport() string {
	return "💬 <b>Помощь с платежами</b>\n" +
		"Для возврата используйте /refund с кодом платежа из сообщения об оплате.\n" +
		"Если код утерян — напишите в поддержку Ravell."
}

func Status(bound bool, premiumUntil *time.Time) string {
	var b strings.Builder
	b.WriteString("📡 <b>Статус</b>\n")
	if bound {
		b.WriteString("Привязка: ✅ активна\n")
	} else {
		b.WriteString("Привязка: ❌ нет\n")
	}
	switch {
	case premiumUntil == nil:
		b.WriteString("Премиум: нет")
	case premiumUntil.Before(time.Now()):
		b.WriteString(fmt.Sprintf("Премиум: истёк %s", premiumUntil.UTC().Format("02.01.2006")))
	default:
		b.WriteString(fmt.Sprintf("Премиум: до %s", premiumUntil.UTC().Format("02.01.2006 15:04 MST")))
	}
	return b.String()
}

func ErrorDefault() string {
	return "🚫 <b>Ошибка</b>\nПопробуйте ещё раз."
}
