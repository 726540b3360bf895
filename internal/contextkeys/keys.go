package contextkeys

import "context"

type contextKey string

const (
	messageTypeKey contextKey = "message_type"
)

type MessageType string

const (
	MessageTypeUnknown     MessageType = "unknown"
	MessageTypeCommand     MessageType = "command"
	MessageTypeText        MessageType = "text"
	MessageTypePreCheckout MessageType = "pre_checkout"
	MessageTypePayment     MessageType = "payment"
)

func WithMessageType(ctx context.Context, t MessageType) context.Context {
	return context.WithValue(ctx, messageTypeKey, t)
}

func GetMessageType(ctx context.Context) (MessageType, bool) {
	t, ok := ctx.Value(messageTypeKey).(MessageType)
	return t, ok
}
