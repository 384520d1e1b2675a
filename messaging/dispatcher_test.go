package messaging

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
)

type fakeAuthorizer struct {
	status model.Status
}

func (a *fakeAuthorizer) StatusOf(ctx context.Context, x, y uint) (model.Status, error) {
	return a.status, nil
}

type memMsgStore struct {
	mu     sync.Mutex
	msgs   []model.Message
	lastID uint
}

func (s *memMsgStore) Append(ctx context.Context, senderID, receiverID uint, content string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	msg := model.Message{
		Base:       model.Base{ID: s.lastID, CreatedAt: time.Now()},
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
	s.msgs = append(s.msgs, msg)
	return &msg, nil
}

func (s *memMsgStore) ThreadBetween(ctx context.Context, a, b uint) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	// Newest first; the slice is in insertion order.
	for i := len(s.msgs) - 1; i >= 0; i-- {
		m := s.msgs[i]
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memMsgStore) SentBy(ctx context.Context, userID uint) ([]model.Message, error) {
	return s.byField(userID, true), nil
}

func (s *memMsgStore) ReceivedBy(ctx context.Context, userID uint) ([]model.Message, error) {
	return s.byField(userID, false), nil
}

func (s *memMsgStore) byField(userID uint, sender bool) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for i := len(s.msgs) - 1; i >= 0; i-- {
		m := s.msgs[i]
		if (sender && m.SenderID == userID) || (!sender && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	return out
}

func (s *memMsgStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
	return nil
}

type recordNotifier struct {
	mu    sync.Mutex
	calls []struct {
		userID uint
		n      Notification
	}
}

func (r *recordNotifier) Notify(userID uint, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, struct {
		userID uint
		n      Notification
	}{userID, n})
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sender() *model.User {
	return &model.User{Base: model.Base{ID: 1}, Username: "alice"}
}

func TestSend_PersistsAndNotifies(t *testing.T) {
	store := &memMsgStore{}
	notifier := &recordNotifier{}
	d := NewDispatcher(&fakeAuthorizer{status: model.StatusAccepted}, store, notifier, testLogger())

	msg, err := d.Send(context.Background(), sender(), 2, "hello")

	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, uint(1), msg.SenderID)
	assert.Equal(t, uint(2), msg.ReceiverID)

	require.Len(t, notifier.calls, 1)
	call := notifier.calls[0]
	assert.Equal(t, uint(2), call.userID)
	assert.Equal(t, TypeMessageNew, call.n.Type)
	assert.Equal(t, msg.ID, call.n.MessageID)
	assert.Equal(t, uint(1), call.n.FromID)
	assert.Equal(t, "alice", call.n.FromUsername)
	assert.NotEmpty(t, call.n.ID)
}

func TestSend_RequiresAcceptedFriendship(t *testing.T) {
	tests := []struct {
		name   string
		status model.Status
	}{
		{"no relationship", model.StatusNone},
		{"pending", model.StatusRequested},
		{"denied", model.StatusDenied},
		{"blocked", model.StatusBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memMsgStore{}
			notifier := &recordNotifier{}
			d := NewDispatcher(&fakeAuthorizer{status: tt.status}, store, notifier, testLogger())

			_, err := d.Send(context.Background(), sender(), 2, "hello")

			require.Error(t, err)
			assert.Equal(t, faults.Forbidden, faults.KindOf(err))
			assert.Empty(t, store.msgs)
			assert.Empty(t, notifier.calls)
		})
	}
}

func TestSend_Validation(t *testing.T) {
	tests := []struct {
		name       string
		receiverID uint
		content    string
	}{
		{"self message", 1, "hi"},
		{"empty content", 2, ""},
		{"content too long", 2, strings.Repeat("x", maxContentLen+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(&fakeAuthorizer{status: model.StatusAccepted}, &memMsgStore{}, &recordNotifier{}, testLogger())

			_, err := d.Send(context.Background(), sender(), tt.receiverID, tt.content)

			require.Error(t, err)
			assert.Equal(t, faults.InvalidArgument, faults.KindOf(err))
		})
	}
}

func TestThread_DirectionAgnostic(t *testing.T) {
	store := &memMsgStore{}
	d := NewDispatcher(&fakeAuthorizer{status: model.StatusAccepted}, store, &recordNotifier{}, testLogger())
	ctx := context.Background()

	_, err := d.Send(ctx, sender(), 2, "hi")
	require.NoError(t, err)
	_, err = d.Send(ctx, &model.User{Base: model.Base{ID: 2}, Username: "bob"}, 1, "yo")
	require.NoError(t, err)
	// Unrelated pair stays out of the thread.
	_, err = d.Send(ctx, sender(), 3, "other")
	require.NoError(t, err)

	ab, err := d.Thread(ctx, 1, 2)
	require.NoError(t, err)
	ba, err := d.Thread(ctx, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	require.Len(t, ab, 2)
	// Newest first.
	assert.Equal(t, "yo", ab[0].Content)
	assert.Equal(t, "hi", ab[1].Content)
}

func TestThread_RequiresAcceptedFriendship(t *testing.T) {
	d := NewDispatcher(&fakeAuthorizer{status: model.StatusBlocked}, &memMsgStore{}, &recordNotifier{}, testLogger())

	_, err := d.Thread(context.Background(), 1, 2)

	require.Error(t, err)
	assert.Equal(t, faults.Forbidden, faults.KindOf(err))
}

func TestMultiNotifier_FansOut(t *testing.T) {
	a, b := &recordNotifier{}, &recordNotifier{}
	m := MultiNotifier{a, b}

	m.Notify(7, Notification{Type: TypeMessageNew})

	require.Len(t, a.calls, 1)
	require.Len(t, b.calls, 1)
	assert.Equal(t, uint(7), a.calls[0].userID)
}
