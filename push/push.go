// Package push delivers new-message notifications to devices that
// registered an Expo push token, complementing the live websocket hub for
// users currently offline.
package push

import (
	"fmt"
	"strconv"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/messaging"
)

type Service struct {
	db     *gorm.DB
	client *expo.PushClient
	logger *logrus.Logger
}

func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		client: expo.NewPushClient(nil),
		logger: logger,
	}
}

// Notify implements messaging.Notifier. Delivery runs in the background so
// the Expo roundtrip never stalls the sender's request path.
func (s *Service) Notify(userID uint, n messaging.Notification) {
	go s.push(userID, n)
}

func (s *Service) push(userID uint, n messaging.Notification) {
	var sessions []model.Session
	err := s.db.
		Where("user_id = ? AND push_token <> ''", userID).
		Find(&sessions).Error
	if err != nil {
		s.logger.WithError(err).Warn("push token lookup failed")
		return
	}
	for _, sess := range sessions {
		token, err := expo.NewExponentPushToken(sess.PushToken)
		if err != nil {
			s.logger.WithField("user_id", userID).WithError(err).Warn("invalid push token")
			continue
		}
		resp, err := s.client.Publish(&expo.PushMessage{
			To:       []expo.ExponentPushToken{token},
			Title:    "New message",
			Body:     fmt.Sprintf("%s sent you a message", n.FromUsername),
			Data:     map[string]string{"message_id": strconv.FormatUint(uint64(n.MessageID), 10), "from_id": strconv.FormatUint(uint64(n.FromID), 10)},
			Sound:    "default",
			Priority: expo.DefaultPriority,
		})
		if err != nil {
			s.logger.WithField("user_id", userID).WithError(err).Warn("push publish failed")
			continue
		}
		if err := resp.ValidateResponse(); err != nil {
			// Stale tokens are pruned, not retried.
			s.logger.WithField("user_id", userID).WithError(err).Warn("push rejected, clearing token")
			s.db.Model(&model.Session{}).
				Where("user_id = ? AND ip = ?", sess.UserID, sess.IP).
				Update("push_token", "")
		}
	}
}
