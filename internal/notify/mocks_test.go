package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"thriveup/internal/common"
)

// Mock implementations for expectation-style tests.

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *Notification) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, ns []*Notification) (int, error) {
	args := m.Called(ctx, ns)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) ByID(ctx context.Context, id string) (*Notification, error) {
	args := m.Called(ctx, id)
	if n := args.Get(0); n != nil {
		return n.(*Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) ByUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if ns := args.Get(0); ns != nil {
		return ns.([]*Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id string, status ResponseStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkChatRead(ctx context.Context, userID, chatID string) error {
	args := m.Called(ctx, userID, chatID)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockCounterRepository struct {
	mock.Mock
}

func (m *MockCounterRepository) Increment(ctx context.Context, userID, chatID string) error {
	args := m.Called(ctx, userID, chatID)
	return args.Error(0)
}

func (m *MockCounterRepository) Reset(ctx context.Context, userID, chatID string) error {
	args := m.Called(ctx, userID, chatID)
	return args.Error(0)
}

func (m *MockCounterRepository) Unread(ctx context.Context, userID, chatID string) (int64, error) {
	args := m.Called(ctx, userID, chatID)
	return args.Get(0).(int64), args.Error(1)
}

// In-memory fakes for behavioural tests.

type memNotes struct {
	mu        sync.Mutex
	byID      map[string]*Notification
	seq       int
	createErr error
	batchErr  error
	missAll   bool            // Exists reports every id as absent
	missing   map[string]bool // ids Exists reports as absent
}

func newMemNotes() *memNotes {
	return &memNotes{
		byID:    make(map[string]*Notification),
		missing: make(map[string]bool),
	}
}

func (m *memNotes) Create(ctx context.Context, n *Notification) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return "", m.createErr
	}
	stored := *n
	if stored.ID == "" {
		m.seq++
		stored.ID = fmt.Sprintf("n-%d", m.seq)
	}
	stored.CreatedAt = time.Now()
	m.byID[stored.ID] = &stored
	return stored.ID, nil
}

func (m *memNotes) CreateBatch(ctx context.Context, ns []*Notification) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.batchErr != nil {
		return 0, m.batchErr
	}
	for _, n := range ns {
		stored := *n
		if stored.ID == "" {
			m.seq++
			stored.ID = fmt.Sprintf("n-%d", m.seq)
			n.ID = stored.ID
		}
		stored.CreatedAt = time.Now()
		m.byID[stored.ID] = &stored
	}
	return len(ns), nil
}

func (m *memNotes) ByID(ctx context.Context, id string) (*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.byID[id]
	if !ok {
		return nil, common.NotFoundf("notification %s", id)
	}
	copied := *n
	return &copied, nil
}

func (m *memNotes) ByUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*Notification
	for _, n := range m.byID {
		if n.UserID == userID {
			copied := *n
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if offset > 0 && offset < len(result) {
		result = result[offset:]
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *memNotes) MarkRead(ctx context.Context, id string, status ResponseStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.byID[id]
	if !ok {
		return common.NotFoundf("notification %s", id)
	}
	n.IsRead = true
	if status != "" {
		n.ResponseStatus = status
	}
	return nil
}

func (m *memNotes) MarkChatRead(ctx context.Context, userID, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.byID {
		if n.UserID == userID && n.ChatID == chatID && n.Kind == KindChatMessage {
			n.IsRead = true
		}
	}
	return nil
}

func (m *memNotes) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, n := range m.byID {
		if n.UserID == userID {
			delete(m.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memNotes) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.missAll || m.missing[id] {
		return false, nil
	}
	_, ok := m.byID[id]
	return ok, nil
}

func (m *memNotes) all() []*Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*Notification
	for _, n := range m.byID {
		copied := *n
		result = append(result, &copied)
	}
	return result
}

func (m *memNotes) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *memNotes) setCreateErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

type memCursor struct {
	mu      sync.Mutex
	marks   map[string]time.Time
	saveErr error
}

func newMemCursor() *memCursor {
	return &memCursor{marks: make(map[string]time.Time)}
}

func (m *memCursor) Watermark(ctx context.Context, userID string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts, ok := m.marks[userID]
	return ts, ok, nil
}

func (m *memCursor) SaveWatermark(ctx context.Context, userID string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	if current, ok := m.marks[userID]; ok && !ts.After(current) {
		return nil
	}
	m.marks[userID] = ts
	return nil
}

func (m *memCursor) get(userID string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.marks[userID]
	return ts, ok
}

type memCounters struct {
	mu     sync.Mutex
	counts map[string]int64
	incErr error
}

func newMemCounters() *memCounters {
	return &memCounters{counts: make(map[string]int64)}
}

func (m *memCounters) key(userID, chatID string) string {
	return userID + ":" + chatID
}

func (m *memCounters) Increment(ctx context.Context, userID, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.incErr != nil {
		return m.incErr
	}
	m.counts[m.key(userID, chatID)]++
	return nil
}

func (m *memCounters) Reset(ctx context.Context, userID, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[m.key(userID, chatID)] = 0
	return nil
}

func (m *memCounters) Unread(ctx context.Context, userID, chatID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[m.key(userID, chatID)], nil
}

type memTeams struct {
	mu    sync.Mutex
	teams map[string]*Team
}

func newMemTeams(teams ...*Team) *memTeams {
	m := &memTeams{teams: make(map[string]*Team)}
	for _, t := range teams {
		copied := *t
		m.teams[t.ID] = &copied
	}
	return m
}

func (m *memTeams) ByID(ctx context.Context, teamID string) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.teams[teamID]
	if !ok {
		return nil, common.NotFoundf("team %s", teamID)
	}
	copied := *t
	copied.Members = append([]string(nil), t.Members...)
	copied.PendingMembers = append([]string(nil), t.PendingMembers...)
	return &copied, nil
}

func (m *memTeams) Approve(ctx context.Context, teamID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.teams[teamID]
	if !ok {
		return common.NotFoundf("team %s", teamID)
	}
	t.PendingMembers = remove(t.PendingMembers, userID)
	if !contains(t.Members, userID) {
		t.Members = append(t.Members, userID)
	}
	return nil
}

func (m *memTeams) AddPending(ctx context.Context, teamID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.teams[teamID]
	if !ok {
		return common.NotFoundf("team %s", teamID)
	}
	if contains(t.Members, userID) || contains(t.PendingMembers, userID) {
		return nil
	}
	t.PendingMembers = append(t.PendingMembers, userID)
	return nil
}

func (m *memTeams) RemovePending(ctx context.Context, teamID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.teams[teamID]
	if !ok {
		return common.NotFoundf("team %s", teamID)
	}
	t.PendingMembers = remove(t.PendingMembers, userID)
	return nil
}

func (m *memTeams) get(teamID string) *Team {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.teams[teamID]
	copied := *t
	copied.Members = append([]string(nil), t.Members...)
	copied.PendingMembers = append([]string(nil), t.PendingMembers...)
	return &copied
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func remove(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// staticUsers resolves profiles from a fixed map.
type staticUsers map[string]*UserProfile

func (s staticUsers) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	p, ok := s[userID]
	if !ok {
		return nil, common.NotFoundf("user %s", userID)
	}
	copied := *p
	return &copied, nil
}

// staticFriends resolves friend edges from a fixed map.
type staticFriends map[string][]string

func (s staticFriends) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	return append([]string(nil), s[userID]...), nil
}

// fakeChats simulates the store subscriptions: each watch replays a backlog
// snapshot filtered by the watermark, then forwards live pushes. The channel
// closes when the context is cancelled, like the real repository. Each watch
// gets its own live channel so a replaced listener stops receiving pushes.
type fakeChats struct {
	mu            sync.Mutex
	conversations []ConversationEvent
	backlog       map[string][]Message
	liveConv      chan ConversationEvent
	liveMsgs      map[string]chan MessageEvent
	afters        map[string]time.Time
}

func newFakeChats() *fakeChats {
	return &fakeChats{
		backlog:  make(map[string][]Message),
		liveConv: make(chan ConversationEvent, 64),
		liveMsgs: make(map[string]chan MessageEvent),
		afters:   make(map[string]time.Time),
	}
}

func (f *fakeChats) addConversation(chatID string, participants ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conversations = append(f.conversations, ConversationEvent{ChatID: chatID, Participants: participants})
}

func (f *fakeChats) pushConversationEvent(ev ConversationEvent) {
	f.liveConv <- ev
}

// pushMessage records the message in the backlog and delivers it live,
// waiting briefly for an active watch to register.
func (f *fakeChats) pushMessage(chatID string, msg Message) {
	f.mu.Lock()
	f.backlog[chatID] = append(f.backlog[chatID], msg)
	f.mu.Unlock()

	for i := 0; i < 200; i++ {
		f.mu.Lock()
		ch := f.liveMsgs[chatID]
		f.mu.Unlock()
		if ch != nil {
			ch <- MessageEvent{Message: msg}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (f *fakeChats) pushMessageError(chatID string, err error) {
	f.mu.Lock()
	ch := f.liveMsgs[chatID]
	f.mu.Unlock()
	if ch != nil {
		ch <- MessageEvent{Err: err}
	}
}

func (f *fakeChats) WatchConversations(ctx context.Context, userID string) (<-chan ConversationEvent, error) {
	f.mu.Lock()
	snapshot := append([]ConversationEvent(nil), f.conversations...)
	f.mu.Unlock()

	out := make(chan ConversationEvent)
	go func() {
		defer close(out)
		for _, ev := range snapshot {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
		for {
			select {
			case ev := <-f.liveConv:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (f *fakeChats) WatchMessages(ctx context.Context, chatID string, after time.Time) (<-chan MessageEvent, error) {
	f.mu.Lock()
	f.afters[chatID] = after
	snapshot := make([]Message, 0)
	for _, msg := range f.backlog[chatID] {
		if msg.Timestamp.After(after) {
			snapshot = append(snapshot, msg)
		}
	}
	live := make(chan MessageEvent, 64)
	f.liveMsgs[chatID] = live
	f.mu.Unlock()

	out := make(chan MessageEvent)
	go func() {
		defer close(out)
		for _, msg := range snapshot {
			select {
			case out <- MessageEvent{Message: msg}:
			case <-ctx.Done():
				return
			}
		}
		for {
			select {
			case ev := <-live:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (f *fakeChats) lastAfter(chatID string) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.afters[chatID]
}
