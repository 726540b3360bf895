package linker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ravell-app/tg-bridge/internal/backend"
	"github.com/ravell-app/tg-bridge/types"
)

// BindNotifier is the backend side of a binding.
type BindNotifier interface {
	NotifyBind(ctx context.Context, userID, chatID int64) error
}

// Linker associates a Ravell user with a Telegram chat. The store write is
// the source of truth; the backend call is a side channel that gets queued
// for background retry when the backend is unreachable.
type Linker struct {
	store   types.EntitlementStore
	backend BindNotifier
	queue   types.BindQueue
	log     *zap.Logger
}

func New(store types.EntitlementStore, backend BindNotifier, queue types.BindQueue, log *zap.Logger) *Linker {
	return &Linker{
		store:   store,
		backend: backend,
		queue:   queue,
		log:     log,
	}
}

// Bind attempts both writes even if one fails. The returned error is the
// store error first, otherwise the backend error, so callers can map it onto
// distinct user messages with errors.Is.
func (l *Linker) Bind(ctx context.Context, userID, chatID int64) error {
	storeErr := l.store.BindChat(userID, chatID)
	if storeErr != nil {
		l.log.Error("bind store write failed",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
			zap.Error(storeErr))
	}

	backendErr := l.backend.NotifyBind(ctx, userID, chatID)
	if backendErr != nil {
		l.log.Warn("backend bind notify failed",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
			zap.Error(backendErr))
		if errors.Is(backendErr, backend.ErrUnreachable) {
			job := types.BindJob{
				ID:         uuid.NewString(),
				UserID:     userID,
				ChatID:     chatID,
				EnqueuedAt: time.Now().UTC(),
			}
			if qerr := l.queue.Enqueue(job); qerr != nil {
				l.log.Error("failed to queue bind sync job",
					zap.String("job_id", job.ID),
					zap.Error(qerr))
			}
		}
	}

	if storeErr != nil {
		return fmt.Errorf("bind store write: %w", storeErr)
	}
	return backendErr
}
