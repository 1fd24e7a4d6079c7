package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"thriveup/internal/common"
)

const defaultVerifySample = 5

// FriendNotifier fans out one notification per friend when the current user
// registers for an event. The fanout commits as a single atomic batch:
// either every friend is notified or none is.
type FriendNotifier struct {
	identity     Identity
	users        UserRepository
	friends      FriendRepository
	notes        NotificationRepository
	writer       *Writer
	log          *zap.Logger
	verifySample int
}

func NewFriendNotifier(
	identity Identity,
	users UserRepository,
	friends FriendRepository,
	notes NotificationRepository,
	writer *Writer,
	verifySample int,
	log *zap.Logger,
) *FriendNotifier {
	if verifySample <= 0 {
		verifySample = defaultVerifySample
	}
	return &FriendNotifier{
		identity:     identity,
		users:        users,
		friends:      friends,
		notes:        notes,
		writer:       writer,
		log:          log,
		verifySample: verifySample,
	}
}

// NotifyFriendsOfRegistration writes one event-registration notification per
// friend of the current user as one atomic batch, then reads back a sample
// of the committed records. A verification failure is diagnostic: the batch
// stays committed and the error reports the unconfirmed count.
func (f *FriendNotifier) NotifyFriendsOfRegistration(ctx context.Context, eventID, eventName, eventImageURL string) error {
	uid, err := f.identity.CurrentUserID(ctx)
	if err != nil {
		return common.ErrNotAuthenticated
	}

	profile, err := f.users.Profile(ctx, uid)
	if err != nil {
		return common.NotFoundf("profile %s", uid)
	}

	friendIDs, err := f.friends.FriendIDs(ctx, uid)
	if err != nil {
		return fmt.Errorf("resolve friends: %w", err)
	}
	if len(friendIDs) == 0 {
		// Nothing to notify is not an error.
		f.log.Info("no friends to notify", zap.String("user_id", uid))
		return nil
	}

	ns := make([]*Notification, len(friendIDs))
	for i, friendID := range friendIDs {
		ns[i] = &Notification{
			ID:             uuid.NewString(),
			UserID:         friendID,
			SenderID:       uid,
			SenderName:     profile.Name,
			SenderImageURL: profile.ProfileImageURL,
			Title:          fmt.Sprintf("%s is going to an event!", profile.Name),
			Message:        fmt.Sprintf("%s just registered for %s. Join them!", profile.Name, eventName),
			Kind:           KindEventRegistration,
			EventID:        eventID,
			EventName:      eventName,
			EventImageURL:  eventImageURL,
		}
	}

	count, err := f.writer.WriteBatch(ctx, ns)
	if err != nil {
		return err
	}
	f.log.Info("event registration fanout committed",
		zap.String("event_id", eventID), zap.Int("count", count))

	return f.verify(ctx, ns)
}

// CreateTestNotification writes a self-addressed record, used to exercise
// the full write path end to end.
func (f *FriendNotifier) CreateTestNotification(ctx context.Context) (string, error) {
	uid, err := f.identity.CurrentUserID(ctx)
	if err != nil {
		return "", common.ErrNotAuthenticated
	}

	return f.writer.Write(ctx, &Notification{
		UserID:     uid,
		SenderID:   uid,
		SenderName: "Test User",
		Title:      "Test Notification",
		Message:    "This is a test notification",
		Kind:       KindTest,
	})
}

// verify reads back up to verifySample committed records concurrently and
// joins on a wait group before reporting.
func (f *FriendNotifier) verify(ctx context.Context, ns []*Notification) error {
	sample := f.verifySample
	if len(ns) < sample {
		sample = len(ns)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	missing := 0

	for i := 0; i < sample; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			ok, err := f.notes.Exists(ctx, id)
			if err != nil || !ok {
				mu.Lock()
				missing++
				mu.Unlock()
				f.log.Warn("fanout verification miss",
					zap.String("notification_id", id), zap.Error(err))
			}
		}(ns[i].ID)
	}
	wg.Wait()

	if missing > 0 {
		return fmt.Errorf("%w: %d of %d sampled records unconfirmed",
			common.ErrVerificationFailed, missing, sample)
	}
	return nil
}
