package messaging

// Notification is the fixed payload pushed to a receiver's live channels
// when a message lands. It deliberately excludes the message content: live
// channels signal arrival, the thread endpoint delivers content.
type Notification struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	MessageID    uint   `json:"message_id"`
	FromID       uint   `json:"from_id"`
	FromUsername string `json:"from_username"`
	SentAt       int64  `json:"sent_at"`
}

const TypeMessageNew = "message.new"

// Notifier delivers a notification to every channel a user currently holds.
// Implementations must not block the caller and must not surface delivery
// failures; a missed notification is recoverable by re-polling.
type Notifier interface {
	Notify(userID uint, n Notification)
}

// MultiNotifier fans a notification out to several backends, e.g. the local
// hub, the cross-instance exchange and the push service.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(userID uint, n Notification) {
	for _, nt := range m {
		nt.Notify(userID, n)
	}
}
