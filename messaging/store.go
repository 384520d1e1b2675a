// Package messaging persists direct messages and dispatches new-message
// notifications to live connections and push devices.
package messaging

import (
	"context"

	"github.com/sociable/messenger-backend/db/model"
)

// Store persists messages. Messages are immutable once created.
type Store interface {
	Append(ctx context.Context, senderID, receiverID uint, content string) (*model.Message, error)

	// ThreadBetween returns every message exchanged between a and b in
	// either direction, newest first.
	ThreadBetween(ctx context.Context, a, b uint) ([]model.Message, error)

	SentBy(ctx context.Context, userID uint) ([]model.Message, error)
	ReceivedBy(ctx context.Context, userID uint) ([]model.Message, error)

	// DeleteAll wipes all messages. Test/dev reset only.
	DeleteAll(ctx context.Context) error
}
