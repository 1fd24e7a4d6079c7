package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"thriveup/internal/common"
)

func TestWriter_WriteChatMessageIncrementsCounter(t *testing.T) {
	notes := new(MockNotificationRepository)
	counters := new(MockCounterRepository)
	w := NewWriter(notes, counters, zap.NewNop())

	n := &Notification{
		UserID:  "u2",
		Title:   "Alice sent you a message",
		Kind:    KindChatMessage,
		ChatID:  "chat-1",
		Message: "hello",
	}
	notes.On("Create", mock.Anything, n).Return("n-1", nil)
	counters.On("Increment", mock.Anything, "u2", "chat-1").Return(nil)

	id, err := w.Write(context.Background(), n)

	assert.NoError(t, err)
	assert.Equal(t, "n-1", id)
	notes.AssertExpectations(t)
	counters.AssertExpectations(t)
}

func TestWriter_WriteNonChatKindSkipsCounter(t *testing.T) {
	notes := new(MockNotificationRepository)
	counters := new(MockCounterRepository)
	w := NewWriter(notes, counters, zap.NewNop())

	n := &Notification{
		UserID: "u2",
		Title:  "Team Invitation",
		Kind:   KindTeamInvitation,
	}
	notes.On("Create", mock.Anything, n).Return("n-2", nil)

	_, err := w.Write(context.Background(), n)

	assert.NoError(t, err)
	counters.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
}

func TestWriter_WriteCreateFailure(t *testing.T) {
	notes := new(MockNotificationRepository)
	counters := new(MockCounterRepository)
	w := NewWriter(notes, counters, zap.NewNop())

	n := &Notification{UserID: "u2", Title: "t", Kind: KindChatMessage, ChatID: "chat-1"}
	notes.On("Create", mock.Anything, n).Return("", errors.New("connection reset"))

	id, err := w.Write(context.Background(), n)

	assert.Empty(t, id)
	assert.ErrorIs(t, err, common.ErrWriteFailed)
	counters.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
}

func TestWriter_WriteCounterFailureDoesNotUndoRecord(t *testing.T) {
	notes := new(MockNotificationRepository)
	counters := new(MockCounterRepository)
	w := NewWriter(notes, counters, zap.NewNop())

	n := &Notification{UserID: "u2", Title: "t", Kind: KindChatMessage, ChatID: "chat-1"}
	notes.On("Create", mock.Anything, n).Return("n-3", nil)
	counters.On("Increment", mock.Anything, "u2", "chat-1").Return(errors.New("transient"))

	id, err := w.Write(context.Background(), n)

	assert.NoError(t, err)
	assert.Equal(t, "n-3", id)
}

func TestWriter_WriteValidation(t *testing.T) {
	tests := []struct {
		name string
		n    *Notification
	}{
		{"missing user id", &Notification{Title: "t", Kind: KindTest}},
		{"missing title", &Notification{UserID: "u1", Kind: KindTest}},
		{"missing kind", &Notification{UserID: "u1", Title: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := new(MockNotificationRepository)
			w := NewWriter(notes, new(MockCounterRepository), zap.NewNop())

			_, err := w.Write(context.Background(), tt.n)

			assert.Error(t, err)
			notes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestWriter_WriteBatchEmptyIsNoop(t *testing.T) {
	notes := new(MockNotificationRepository)
	w := NewWriter(notes, new(MockCounterRepository), zap.NewNop())

	count, err := w.WriteBatch(context.Background(), nil)

	assert.NoError(t, err)
	assert.Zero(t, count)
	notes.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestWriter_WriteBatchValidatesBeforeWriting(t *testing.T) {
	notes := new(MockNotificationRepository)
	w := NewWriter(notes, new(MockCounterRepository), zap.NewNop())

	ns := []*Notification{
		{UserID: "u1", Title: "t", Kind: KindEventRegistration},
		{UserID: "", Title: "t", Kind: KindEventRegistration},
	}

	_, err := w.WriteBatch(context.Background(), ns)

	assert.Error(t, err)
	notes.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestWriter_WriteBatchFailure(t *testing.T) {
	notes := new(MockNotificationRepository)
	w := NewWriter(notes, new(MockCounterRepository), zap.NewNop())

	ns := []*Notification{{UserID: "u1", Title: "t", Kind: KindEventRegistration}}
	notes.On("CreateBatch", mock.Anything, ns).Return(0, errors.New("transaction aborted"))

	count, err := w.WriteBatch(context.Background(), ns)

	assert.Zero(t, count)
	assert.ErrorIs(t, err, common.ErrWriteFailed)
}
