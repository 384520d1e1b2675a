// Package ws tracks live notification connections and fans new-message
// events out to them.
package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/sociable/messenger-backend/messaging"
)

type clients struct {
	sync.Mutex
	// user_id -> set of live clients (one per device)
	c map[uint]map[*Client]struct{}
}

// Hub is the connection registry: a concurrency-safe multi-map from user id
// to live clients. It is constructed once in main and injected; there is no
// package-level instance.
type Hub struct {
	logger     *logrus.Logger
	clients    *clients
	register   chan *Client
	unregister chan *Client
	count      int64
	stop       bool
	OnComplete func()
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    &clients{c: make(map[uint]map[*Client]struct{})},
		register:   make(chan *Client),
		unregister: make(chan *Client),
		OnComplete: func() {},
	}
}

func (h *Hub) Register() chan<- *Client {
	return h.register
}

func (h *Hub) Unregister() chan<- *Client {
	return h.unregister
}

// Count reports the number of live clients across all users.
func (h *Hub) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

// Run processes register/unregister requests until Close drains the last
// client. unregister is idempotent: a client already gone is a no-op, so the
// read-pump exit and an explicit close can both request it safely.
func (h *Hub) Run() {
	defer func() {
		go h.OnComplete()
	}()
	for {
		select {
		case c := <-h.register:
			h.clients.Lock()
			if h.clients.c[c.userID] == nil {
				h.clients.c[c.userID] = make(map[*Client]struct{})
			}
			if _, ok := h.clients.c[c.userID][c]; !ok {
				h.clients.c[c.userID][c] = struct{}{}
				atomic.AddInt64(&h.count, 1)
			}
			h.clients.Unlock()
			h.logger.WithFields(logrus.Fields{
				"user_id":   c.userID,
				"client_id": c.ID,
			}).Info("client registered")
		case c := <-h.unregister:
			if c == nil {
				continue
			}
			h.clients.Lock()
			if set := h.clients.c[c.userID]; set != nil {
				if _, ok := set[c]; ok {
					delete(set, c)
					if len(set) == 0 {
						delete(h.clients.c, c.userID)
					}
					close(c.send)
					atomic.AddInt64(&h.count, -1)
					h.logger.WithFields(logrus.Fields{
						"user_id":   c.userID,
						"client_id": c.ID,
					}).Info("client unregistered")
				}
			}
			h.clients.Unlock()
			if h.stop && atomic.LoadInt64(&h.count) == 0 {
				return
			}
		}
	}
}

// Notify pushes the payload to every client currently registered for the
// user. Sends are non-blocking: a client whose buffer is full is treated as
// stalled and dropped, never retried.
func (h *Hub) Notify(userID uint, n messaging.Notification) {
	b, err := json.Marshal(n)
	if err != nil {
		h.logger.WithError(err).Error("notification marshal failed")
		return
	}
	h.clients.Lock()
	for c := range h.clients.c[userID] {
		select {
		case c.send <- b:
		default:
			h.logger.WithFields(logrus.Fields{
				"user_id":   userID,
				"client_id": c.ID,
			}).Warn("client stalled, dropping connection")
			go func(c *Client) {
				c.Close()
				h.unregister <- c
			}(c)
		}
	}
	h.clients.Unlock()
}

// Close drops every client and lets Run return once the count drains.
func (h *Hub) Close() {
	h.stop = true
	if atomic.LoadInt64(&h.count) == 0 {
		go h.OnComplete()
	}
	h.clients.Lock()
	for _, set := range h.clients.c {
		for c := range set {
			c.Close()
		}
	}
	h.clients.Unlock()
}
