package message

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/sociable/messenger-backend/api"
	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
	"github.com/sociable/messenger-backend/messaging"
	"github.com/sociable/messenger-backend/middleware"
)

type Handlers struct {
	logger     *logrus.Logger
	dispatcher *messaging.Dispatcher
}

func NewHandlers(logger *logrus.Logger, dispatcher *messaging.Dispatcher) *Handlers {
	return &Handlers{logger, dispatcher}
}

func (h *Handlers) send(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	o := r.Context().Value("opponent").(*model.User)
	var body struct {
		Content *string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == nil {
		api.WriteError(h.logger, w, faults.New(faults.InvalidArgument, "invalid format"))
		return
	}
	msg, err := h.dispatcher.Send(r.Context(), u, o.ID, *body.Content)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, api.NewOutMessage(msg))
}

func (h *Handlers) thread(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	o := r.Context().Value("opponent").(*model.User)
	msgs, err := h.dispatcher.Thread(r.Context(), u.ID, o.ID)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewOutMessages(msgs))
}

func (h *Handlers) SetupRoutes(r *chi.Mux, authenticator func(http.Handler) http.Handler) {
	r.Route("/messages", func(r chi.Router) {
		r.Use(authenticator, middleware.WithOpponent)
		r.Post("/{userID}", h.send)
		r.Get("/{userID}", h.thread)
	})
}
