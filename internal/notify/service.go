package notify

import (
	"context"

	"go.uber.org/zap"

	"thriveup/internal/common"
)

// Service is the surface the UI layer consumes: listening lifecycle,
// notification queries and the read/delete mutations.
type Service struct {
	identity Identity
	notes    NotificationRepository
	counters CounterRepository
	watcher  *WatchManager
	log      *zap.Logger
}

func NewService(
	identity Identity,
	notes NotificationRepository,
	counters CounterRepository,
	watcher *WatchManager,
	log *zap.Logger,
) *Service {
	return &Service{
		identity: identity,
		notes:    notes,
		counters: counters,
		watcher:  watcher,
		log:      log,
	}
}

// StartListening begins watching the current user's conversations.
func (s *Service) StartListening(ctx context.Context) error {
	uid, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return common.ErrNotAuthenticated
	}
	return s.watcher.StartListening(uid)
}

// StopListening tears down all subscriptions. Idempotent.
func (s *Service) StopListening() {
	s.watcher.StopListening()
}

// Notifications returns the current user's records, newest first.
func (s *Service) Notifications(ctx context.Context, limit, offset int) ([]*Notification, error) {
	uid, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return nil, common.ErrNotAuthenticated
	}
	return s.notes.ByUser(ctx, uid, limit, offset)
}

// MarkAsRead flips one notification's read flag.
func (s *Service) MarkAsRead(ctx context.Context, notificationID string) error {
	return s.notes.MarkRead(ctx, notificationID, "")
}

// MarkAllMessagesAsRead resets the unread counter for the chat to zero and
// marks every unread chat-message notification for it read. Reset is
// last-writer-wins: it always follows an explicit user action.
func (s *Service) MarkAllMessagesAsRead(ctx context.Context, chatID string) error {
	uid, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return common.ErrNotAuthenticated
	}

	if err := s.counters.Reset(ctx, uid, chatID); err != nil {
		return common.WriteFailedf("reset unread counter", err)
	}
	if err := s.notes.MarkChatRead(ctx, uid, chatID); err != nil {
		return common.WriteFailedf("mark chat notifications read", err)
	}
	return nil
}

// UnreadCount reads the per-chat unread counter for the current user.
func (s *Service) UnreadCount(ctx context.Context, chatID string) (int64, error) {
	uid, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return 0, common.ErrNotAuthenticated
	}
	return s.counters.Unread(ctx, uid, chatID)
}

// DeleteAllNotifications bulk-deletes every record owned by the current
// user, the only deletion path.
func (s *Service) DeleteAllNotifications(ctx context.Context) (int64, error) {
	uid, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return 0, common.ErrNotAuthenticated
	}

	deleted, err := s.notes.DeleteAllForUser(ctx, uid)
	if err != nil {
		return 0, common.WriteFailedf("delete notifications", err)
	}
	s.log.Info("deleted notifications",
		zap.String("user_id", uid), zap.Int64("count", deleted))
	return deleted, nil
}

// Shutdown stops listening. Provided for symmetric lifecycle wiring.
func (s *Service) Shutdown() {
	s.watcher.StopListening()
	s.log.Info("notification service shutdown complete")
}
