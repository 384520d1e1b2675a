package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
)

const maxContentLen = 1000

// Authorizer answers whether a pair of users may exchange messages.
// *friendship.Resolver satisfies it.
type Authorizer interface {
	StatusOf(ctx context.Context, a, b uint) (model.Status, error)
}

// Dispatcher composes authorization, persistence and notification for the
// message send path.
type Dispatcher struct {
	auth     Authorizer
	store    Store
	notifier Notifier
	logger   *logrus.Logger
}

func NewDispatcher(auth Authorizer, store Store, notifier Notifier, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		auth:     auth,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Send persists a message from sender to receiver and notifies the
// receiver's live channels. Persistence and notification are not atomic:
// the message is durable once Append returns, a notification dropped after
// that is recoverable by the receiver re-polling. Send never fails because
// delivery did.
func (d *Dispatcher) Send(ctx context.Context, sender *model.User, receiverID uint, content string) (*model.Message, error) {
	if sender.ID == receiverID {
		return nil, faults.New(faults.InvalidArgument, "cannot message yourself")
	}
	if content == "" {
		return nil, faults.New(faults.InvalidArgument, "content must not be empty")
	}
	if len(content) > maxContentLen {
		return nil, faults.New(faults.InvalidArgument, "content too long")
	}
	if err := d.authorize(ctx, sender.ID, receiverID); err != nil {
		return nil, err
	}
	msg, err := d.store.Append(ctx, sender.ID, receiverID, content)
	if err != nil {
		return nil, err
	}
	d.notifier.Notify(receiverID, Notification{
		ID:           uuid.NewString(),
		Type:         TypeMessageNew,
		MessageID:    msg.ID,
		FromID:       sender.ID,
		FromUsername: sender.Username,
		SentAt:       msg.CreatedAt.Unix(),
	})
	return msg, nil
}

// Thread returns the conversation between userID and otherID, gated by the
// same friendship check as Send.
func (d *Dispatcher) Thread(ctx context.Context, userID, otherID uint) ([]model.Message, error) {
	if err := d.authorize(ctx, userID, otherID); err != nil {
		return nil, err
	}
	return d.store.ThreadBetween(ctx, userID, otherID)
}

// Messaging requires a current ACCEPTED status. Notably stricter than
// FriendsOf, which also lists blocked parties.
func (d *Dispatcher) authorize(ctx context.Context, a, b uint) error {
	st, err := d.auth.StatusOf(ctx, a, b)
	if err != nil {
		return err
	}
	if st != model.StatusAccepted {
		return faults.New(faults.Forbidden, "users are not friends")
	}
	return nil
}
