// Package mq bridges new-message notifications between instances through
// NSQ. Every instance publishes to a shared topic and consumes it on its own
// server-id channel, so a receiver connected to another instance still gets
// its live notification.
package mq

import (
	"encoding/json"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"github.com/sociable/messenger-backend/messaging"
)

const TopicNotify = "notify"

// Event is the wire form of a notification crossing instances. Origin names
// the publishing instance so it can skip its own echo; the originating hub
// already delivered locally.
type Event struct {
	Origin       string                 `json:"origin"`
	UserID       uint                   `json:"user_id"`
	Notification messaging.Notification `json:"notification"`
}

type Exchange struct {
	serverID string
	producer *nsq.Producer
	consumer *nsq.Consumer
	logger   *logrus.Logger
}

// NewExchange connects the producer to nsqd and subscribes the consumer via
// nsqlookupd, delivering foreign events to local.
func NewExchange(nsqdAddr, lookupdAddr, serverID string, local messaging.Notifier, logger *logrus.Logger) (*Exchange, error) {
	cfg := nsq.NewConfig()
	producer, err := nsq.NewProducer(nsqdAddr, cfg)
	if err != nil {
		return nil, err
	}
	consumer, err := nsq.NewConsumer(TopicNotify, serverID, cfg)
	if err != nil {
		producer.Stop()
		return nil, err
	}
	consumer.AddHandler(nsq.HandlerFunc(func(message *nsq.Message) error {
		var ev Event
		if err := json.Unmarshal(message.Body, &ev); err != nil {
			logger.WithError(err).Warn("exchange event unmarshal failed")
			return nil
		}
		if ev.Origin == serverID {
			return nil
		}
		local.Notify(ev.UserID, ev.Notification)
		return nil
	}))
	if err := consumer.ConnectToNSQLookupd(lookupdAddr); err != nil {
		consumer.Stop()
		producer.Stop()
		return nil, err
	}
	return &Exchange{
		serverID: serverID,
		producer: producer,
		consumer: consumer,
		logger:   logger,
	}, nil
}

// Notify implements messaging.Notifier by broadcasting the event to every
// instance. Publish failures are logged and dropped, never surfaced.
func (e *Exchange) Notify(userID uint, n messaging.Notification) {
	b, err := json.Marshal(Event{
		Origin:       e.serverID,
		UserID:       userID,
		Notification: n,
	})
	if err != nil {
		e.logger.WithError(err).Error("exchange event marshal failed")
		return
	}
	if err := e.producer.PublishAsync(TopicNotify, b, nil); err != nil {
		e.logger.WithError(err).Warn("exchange publish failed")
	}
}

func (e *Exchange) Stop() {
	e.consumer.Stop()
	e.producer.Stop()
}
