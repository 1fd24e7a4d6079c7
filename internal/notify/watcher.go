package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultWatermarkWindow = 24 * time.Hour

// WatchManager subscribes to the conversations a user participates in and,
// per conversation, to messages newer than the user's watermark. Each new
// inbound message produces at most one notification per listening session.
type WatchManager struct {
	chats  ChatRepository
	cursor CursorRepository
	writer *Writer
	users  UserRepository
	log    *zap.Logger

	// window bounds how far back a first-ever listen reaches.
	window time.Duration

	mu          sync.Mutex
	cancel      context.CancelFunc
	chatCancels map[string]context.CancelFunc
	userID      string
	watermark   time.Time
	wg          sync.WaitGroup
	dedup       *dedupSet
}

func NewWatchManager(
	chats ChatRepository,
	cursor CursorRepository,
	writer *Writer,
	users UserRepository,
	window time.Duration,
	log *zap.Logger,
) *WatchManager {
	if window <= 0 {
		window = defaultWatermarkWindow
	}
	return &WatchManager{
		chats:       chats,
		cursor:      cursor,
		writer:      writer,
		users:       users,
		log:         log,
		window:      window,
		chatCancels: make(map[string]context.CancelFunc),
		dedup:       newDedupSet(0),
	}
}

// StartListening tears down any previous session, clears the dedup set and
// establishes one subscription over the user's conversations. The watermark
// resumes from its persisted value, defaulting to now minus the window on
// first-ever start.
func (m *WatchManager) StartListening(userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	m.StopListening()

	ctx, cancel := context.WithCancel(context.Background())

	wm, ok, err := m.cursor.Watermark(ctx, userID)
	if err != nil {
		m.log.Warn("watermark load failed, falling back to window",
			zap.String("user_id", userID), zap.Error(err))
		ok = false
	}
	if !ok || wm.IsZero() {
		wm = time.Now().Add(-m.window)
	}

	events, err := m.chats.WatchConversations(ctx, userID)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe conversations: %w", err)
	}

	m.mu.Lock()
	m.cancel = cancel
	m.userID = userID
	m.watermark = wm
	m.chatCancels = make(map[string]context.CancelFunc)
	m.mu.Unlock()
	m.dedup.Reset()

	m.wg.Add(1)
	go m.run(ctx, userID, events)

	m.log.Info("listening for new messages",
		zap.String("user_id", userID), zap.Time("watermark", wm))
	return nil
}

// StopListening tears down every active subscription and clears the dedup
// set. Safe to call when no session is active.
func (m *WatchManager) StopListening() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	for id, cancel := range m.chatCancels {
		cancel()
		delete(m.chatCancels, id)
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.dedup.Reset()
}

func (m *WatchManager) run(ctx context.Context, userID string, events <-chan ConversationEvent) {
	defer m.wg.Done()

	for ev := range events {
		if ev.Err != nil {
			// Prior state stays untouched; the subscription's own reconnect
			// resumes delivery from the same window.
			m.log.Error("conversation subscription error",
				zap.String("user_id", userID), zap.Error(ev.Err))
			continue
		}
		m.watchChat(ctx, userID, ev.ChatID, ev.Participants)
	}
}

func (m *WatchManager) watchChat(ctx context.Context, userID, chatID string, participants []string) {
	m.mu.Lock()
	if cancel, ok := m.chatCancels[chatID]; ok {
		// Replace the existing listener for this conversation.
		cancel()
	}
	chatCtx, cancel := context.WithCancel(ctx)
	m.chatCancels[chatID] = cancel
	after := m.watermark
	m.mu.Unlock()

	messages, err := m.chats.WatchMessages(chatCtx, chatID, after)
	if err != nil {
		m.log.Error("message subscription failed",
			zap.String("chat_id", chatID), zap.Error(err))
		cancel()
		return
	}

	m.wg.Add(1)
	go m.consume(chatCtx, userID, chatID, participants, messages)
}

func (m *WatchManager) consume(ctx context.Context, userID, chatID string, participants []string, messages <-chan MessageEvent) {
	defer m.wg.Done()

	for ev := range messages {
		if ev.Err != nil {
			m.log.Error("message subscription error",
				zap.String("chat_id", chatID), zap.Error(ev.Err))
			continue
		}
		m.handleMessage(ctx, userID, chatID, participants, ev.Message)
	}
}

func (m *WatchManager) handleMessage(ctx context.Context, userID, chatID string, participants []string, msg Message) {
	if !m.dedup.Add(msg.ID) {
		// Redundant delivery from subscription replay.
		return
	}

	// The watermark advances on every processed message, own messages
	// included, so a restart does not reprocess them.
	m.advanceWatermark(ctx, userID, msg.Timestamp)

	if msg.SenderID == userID {
		return
	}

	for _, participant := range participants {
		if participant == msg.SenderID || participant != userID {
			continue
		}

		n := &Notification{
			UserID:     participant,
			SenderID:   msg.SenderID,
			SenderName: m.senderName(ctx, msg.SenderID),
			Kind:       KindChatMessage,
			Message:    msg.Content,
			ChatID:     chatID,
			MessageID:  msg.ID,
		}
		n.Title = fmt.Sprintf("%s sent you a message", n.SenderName)

		if _, err := m.writer.Write(ctx, n); err != nil {
			m.log.Error("chat notification write failed",
				zap.String("message_id", msg.ID),
				zap.String("chat_id", chatID),
				zap.Error(err))
			// Evict so an in-session redelivery can retry the write.
			m.dedup.Remove(msg.ID)
		}
	}
}

func (m *WatchManager) advanceWatermark(ctx context.Context, userID string, ts time.Time) {
	m.mu.Lock()
	if !ts.After(m.watermark) {
		m.mu.Unlock()
		return
	}
	m.watermark = ts
	m.mu.Unlock()

	if err := m.cursor.SaveWatermark(ctx, userID, ts); err != nil {
		m.log.Warn("watermark save failed",
			zap.String("user_id", userID), zap.Time("watermark", ts), zap.Error(err))
	}
}

func (m *WatchManager) senderName(ctx context.Context, senderID string) string {
	profile, err := m.users.Profile(ctx, senderID)
	if err != nil || profile == nil || profile.Name == "" {
		return "Someone"
	}
	return profile.Name
}
