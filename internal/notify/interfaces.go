package notify

import (
	"context"
	"time"
)

// NotificationRepository persists notification records in the document store.
type NotificationRepository interface {
	// Create writes one record and returns its id. CreatedAt is assigned by
	// the store at commit time.
	Create(ctx context.Context, n *Notification) (string, error)

	// CreateBatch writes every record atomically: either all commit or none.
	// Records must carry pre-allocated IDs so callers can verify them.
	CreateBatch(ctx context.Context, ns []*Notification) (int, error)

	ByID(ctx context.Context, id string) (*Notification, error)
	ByUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, error)

	// MarkRead flips IsRead to true; a non-empty status also records the
	// one-way outcome tag.
	MarkRead(ctx context.Context, id string, status ResponseStatus) error

	// MarkChatRead marks every unread chat-message record for (user, chat).
	MarkChatRead(ctx context.Context, userID, chatID string) error

	DeleteAllForUser(ctx context.Context, userID string) (int64, error)

	// Exists reports whether a record with the given id is readable. Used by
	// the fanout verification pass.
	Exists(ctx context.Context, id string) (bool, error)
}

// CounterRepository maintains per-(user, chat) unread counters with
// store-managed transactions so concurrent increments are never lost.
type CounterRepository interface {
	Increment(ctx context.Context, userID, chatID string) error
	Reset(ctx context.Context, userID, chatID string) error
	Unread(ctx context.Context, userID, chatID string) (int64, error)
}

// TeamRepository mutates team membership. Approve and RemovePending update
// the team document atomically so a user is never in both member sets.
type TeamRepository interface {
	ByID(ctx context.Context, teamID string) (*Team, error)

	// Approve adds the user to Members and removes them from PendingMembers
	// in a single document update.
	Approve(ctx context.Context, teamID, userID string) error

	// AddPending is idempotent: re-adding an existing pending member is a no-op.
	AddPending(ctx context.Context, teamID, userID string) error

	RemovePending(ctx context.Context, teamID, userID string) error
}

// ChatRepository exposes the document store subscriptions the watch manager
// consumes. Both channels deliver an initial snapshot followed by live
// changes, and close when ctx is cancelled.
type ChatRepository interface {
	WatchConversations(ctx context.Context, userID string) (<-chan ConversationEvent, error)

	// WatchMessages delivers messages in chatID with timestamp after the
	// given instant, newest first in the initial snapshot.
	WatchMessages(ctx context.Context, chatID string, after time.Time) (<-chan MessageEvent, error)
}

// CursorRepository persists per-user watermarks outside the document store.
type CursorRepository interface {
	// Watermark returns the stored watermark and whether one exists.
	Watermark(ctx context.Context, userID string) (time.Time, bool, error)

	// SaveWatermark advances the watermark. Saves at or below the stored
	// value are no-ops: the watermark never moves backward.
	SaveWatermark(ctx context.Context, userID string, ts time.Time) error
}

// UserRepository resolves user profiles from the relational store.
type UserRepository interface {
	Profile(ctx context.Context, userID string) (*UserProfile, error)
}

// FriendRepository resolves friend edges, read-only to this engine.
type FriendRepository interface {
	FriendIDs(ctx context.Context, userID string) ([]string, error)
}

// Identity supplies the stable current-user id from the auth collaborator.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, error)
}
