// Package api holds the serializers and response helpers shared by the
// feature handler packages beneath it.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
)

type OutUser struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsOnline bool   `json:"is_online"`
}

func NewOutUser(u *model.User) *OutUser {
	if u == nil {
		return nil
	}
	return &OutUser{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		IsOnline: u.IsOnline,
	}
}

type OutMessage struct {
	ID        uint     `json:"id"`
	Content   string   `json:"content"`
	Sender    *OutUser `json:"sender,omitempty"`
	Receiver  *OutUser `json:"receiver,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

func NewOutMessage(m *model.Message) *OutMessage {
	return &OutMessage{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    NewOutUser(m.Sender),
		Receiver:  NewOutUser(m.Receiver),
		Timestamp: m.CreatedAt.Unix(),
	}
}

func NewOutMessages(msgs []model.Message) []*OutMessage {
	out := make([]*OutMessage, 0, len(msgs))
	for i := range msgs {
		out = append(out, NewOutMessage(&msgs[i]))
	}
	return out
}

type OutStatusEvent struct {
	RequesterID uint     `json:"requester_id"`
	AddresseeID uint     `json:"addressee_id"`
	Status      string   `json:"status"`
	Specifier   *OutUser `json:"specifier,omitempty"`
	Timestamp   int64    `json:"timestamp"`
}

func NewOutStatusEvent(ev *model.StatusEvent) *OutStatusEvent {
	return &OutStatusEvent{
		RequesterID: ev.RequesterID,
		AddresseeID: ev.AddresseeID,
		Status:      ev.Code.String(),
		Specifier:   NewOutUser(ev.Specifier),
		Timestamp:   ev.CreatedAt.Unix(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps the fault taxonomy to HTTP statuses and emits the stable
// denial reason; wrapped internals stay in the log.
func WriteError(logger *logrus.Logger, w http.ResponseWriter, err error) {
	var status int
	switch faults.KindOf(err) {
	case faults.InvalidArgument:
		status = http.StatusBadRequest
	case faults.NotFound:
		status = http.StatusNotFound
	case faults.Conflict:
		status = http.StatusConflict
	case faults.Unauthenticated:
		status = http.StatusUnauthorized
	case faults.Forbidden:
		status = http.StatusForbidden
	case faults.Unavailable:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
	}
	WriteJSON(w, status, map[string]string{"error": faults.ReasonOf(err)})
}
