package messaging

import (
	"context"

	"gorm.io/gorm"

	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Append(ctx context.Context, senderID, receiverID uint, content string) (*model.Message, error) {
	msg := &model.Message{
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, faults.Wrap(faults.Unavailable, "message create failed", err)
	}
	return msg, nil
}

func (s *GormStore) ThreadBetween(ctx context.Context, a, b uint) ([]model.Message, error) {
	var msgs []model.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at DESC, id DESC").
		Preload("Sender").
		Preload("Receiver").
		Find(&msgs).Error
	if err != nil {
		return nil, faults.Wrap(faults.Unavailable, "thread lookup failed", err)
	}
	return msgs, nil
}

func (s *GormStore) SentBy(ctx context.Context, userID uint) ([]model.Message, error) {
	return s.byColumn(ctx, "sender_id", userID)
}

func (s *GormStore) ReceivedBy(ctx context.Context, userID uint) ([]model.Message, error) {
	return s.byColumn(ctx, "receiver_id", userID)
}

func (s *GormStore) byColumn(ctx context.Context, col string, userID uint) ([]model.Message, error) {
	var msgs []model.Message
	err := s.db.WithContext(ctx).
		Where(col+" = ?", userID).
		Order("created_at DESC, id DESC").
		Preload("Sender").
		Preload("Receiver").
		Find(&msgs).Error
	if err != nil {
		return nil, faults.Wrap(faults.Unavailable, "message lookup failed", err)
	}
	return msgs, nil
}

func (s *GormStore) DeleteAll(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM messages").Error; err != nil {
		return faults.Wrap(faults.Unavailable, "message wipe failed", err)
	}
	return nil
}
