package types

import "time"

type User struct {
	ID           int64
	TGChatID     *int64
	PremiumUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Payment struct {
	UserID                int64
	Currency              string
	TotalAmount           int64
	InvoicePayload        string
	TelegramPaymentCharge string
	ProviderPaymentCharge string
	CreatedAt             time.Time
}

// BindJob is a pending backend notification about a user/chat binding.
// Jobs live in Redis until the backend accepts them or Attempts runs out.
type BindJob struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	ChatID     int64     `json:"chat_id"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type EntitlementStore interface {
	GetUser(userID int64) (*User, error)
	BindChat(userID, chatID int64) error
	SetPremiumUntil(userID int64, until time.Time) error
	RecordPayment(p Payment) (inserted bool, err error)
}

type BindQueue interface {
	Enqueue(job BindJob) error
	Dequeue() (*BindJob, error)
}
