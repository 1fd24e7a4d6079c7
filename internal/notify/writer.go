package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"thriveup/internal/common"
)

// Writer turns domain events into persisted notification records. Exactly
// one record is created per Write call; errors propagate unretried, retry
// policy belongs to the caller.
type Writer struct {
	notes    NotificationRepository
	counters CounterRepository
	log      *zap.Logger
}

func NewWriter(notes NotificationRepository, counters CounterRepository, log *zap.Logger) *Writer {
	return &Writer{
		notes:    notes,
		counters: counters,
		log:      log,
	}
}

// Write persists one notification and returns its id. A successful
// chat-message write also increments the recipient's unread counter for the
// chat; a failed increment is logged but does not undo the record.
func (w *Writer) Write(ctx context.Context, n *Notification) (string, error) {
	if err := validate(n); err != nil {
		return "", err
	}

	id, err := w.notes.Create(ctx, n)
	if err != nil {
		return "", common.WriteFailedf("create notification", err)
	}

	if n.Kind == KindChatMessage {
		if err := w.counters.Increment(ctx, n.UserID, n.ChatID); err != nil {
			w.log.Error("unread counter increment failed",
				zap.String("user_id", n.UserID),
				zap.String("chat_id", n.ChatID),
				zap.Error(err))
		}
	}

	w.log.Debug("notification written",
		zap.String("id", id),
		zap.String("kind", string(n.Kind)),
		zap.String("user_id", n.UserID))
	return id, nil
}

// WriteBatch persists all records atomically: either every recipient gets a
// record or none does. Returns the number written.
func (w *Writer) WriteBatch(ctx context.Context, ns []*Notification) (int, error) {
	if len(ns) == 0 {
		return 0, nil
	}
	for _, n := range ns {
		if err := validate(n); err != nil {
			return 0, err
		}
	}

	count, err := w.notes.CreateBatch(ctx, ns)
	if err != nil {
		return 0, common.WriteFailedf("batch create notifications", err)
	}

	for _, n := range ns {
		if n.Kind != KindChatMessage {
			continue
		}
		if err := w.counters.Increment(ctx, n.UserID, n.ChatID); err != nil {
			w.log.Error("unread counter increment failed",
				zap.String("user_id", n.UserID),
				zap.String("chat_id", n.ChatID),
				zap.Error(err))
		}
	}

	return count, nil
}

func validate(n *Notification) error {
	if n.UserID == "" {
		return fmt.Errorf("recipient user id is required")
	}
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	return nil
}
