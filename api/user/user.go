package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sociable/messenger-backend/api"
	"github.com/sociable/messenger-backend/db"
	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
	"github.com/sociable/messenger-backend/messaging"
)

type Handlers struct {
	logger   *logrus.Logger
	messages messaging.Store
}

func NewHandlers(logger *logrus.Logger, messages messaging.Store) *Handlers {
	return &Handlers{logger, messages}
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	api.WriteJSON(w, http.StatusOK, api.NewOutUser(u))
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	var u model.User
	if err := db.GetDB(r.Context()).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.WriteError(h.logger, w, faults.New(faults.NotFound, "user not found"))
		} else {
			api.WriteError(h.logger, w, faults.Wrap(faults.Unavailable, "user lookup failed", err))
		}
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewOutUser(&u))
}

// listUsers returns up to ?limit users; the limit is clamped to the user
// count so over-asking is not an error.
func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	gdb := db.GetDB(r.Context())
	var count int64
	if err := gdb.Model(&model.User{}).Count(&count).Error; err != nil {
		api.WriteError(h.logger, w, faults.Wrap(faults.Unavailable, "user count failed", err))
		return
	}
	limit := int(count)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			api.WriteError(h.logger, w, faults.New(faults.InvalidArgument, "invalid limit"))
			return
		}
		if n < limit {
			limit = n
		}
	}
	var users []model.User
	if err := gdb.Limit(limit).Find(&users).Error; err != nil {
		api.WriteError(h.logger, w, faults.Wrap(faults.Unavailable, "user lookup failed", err))
		return
	}
	out := make([]*api.OutUser, 0, len(users))
	for i := range users {
		out = append(out, api.NewOutUser(&users[i]))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) receivedMessages(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	msgs, err := h.messages.ReceivedBy(r.Context(), u.ID)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewOutMessages(msgs))
}

func (h *Handlers) sentMessages(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	msgs, err := h.messages.SentBy(r.Context(), u.ID)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewOutMessages(msgs))
}

func (h *Handlers) SetupRoutes(r *chi.Mux, authenticator func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.listUsers)
		r.Get("/me", h.me)
		r.Get("/me/messages/received", h.receivedMessages)
		r.Get("/me/messages/sent", h.sentMessages)
		r.Get("/{userID}", h.getUser)
	})
}
