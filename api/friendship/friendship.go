package friendship

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/sociable/messenger-backend/api"
	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/friendship"
	"github.com/sociable/messenger-backend/middleware"
)

type Handlers struct {
	logger   *logrus.Logger
	workflow *friendship.Workflow
	resolver *friendship.Resolver
}

func NewHandlers(logger *logrus.Logger, workflow *friendship.Workflow, resolver *friendship.Resolver) *Handlers {
	return &Handlers{logger, workflow, resolver}
}

func (h *Handlers) sendRequest(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	o := r.Context().Value("opponent").(*model.User)
	rel, err := h.workflow.SendRequest(r.Context(), u.ID, o.ID)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, rel)
}

func (h *Handlers) pendingRequests(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	evs, err := h.resolver.PendingRequestsTo(r.Context(), u.ID)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	out := make([]*api.OutStatusEvent, 0, len(evs))
	for i := range evs {
		out = append(out, api.NewOutStatusEvent(&evs[i]))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) accept(w http.ResponseWriter, r *http.Request) {
	h.respondToRequest(w, r, h.workflow.Accept)
}

func (h *Handlers) deny(w http.ResponseWriter, r *http.Request) {
	h.respondToRequest(w, r, h.workflow.Deny)
}

func (h *Handlers) respondToRequest(w http.ResponseWriter, r *http.Request, f func(ctx context.Context, userID, requesterID uint) (*model.StatusEvent, error)) {
	u := r.Context().Value("user").(*model.User)
	o := r.Context().Value("opponent").(*model.User)
	ev, err := f(r.Context(), u.ID, o.ID)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewOutStatusEvent(ev))
}

func (h *Handlers) block(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	o := r.Context().Value("opponent").(*model.User)
	ev, err := h.workflow.Block(r.Context(), u.ID, o.ID)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewOutStatusEvent(ev))
}

func (h *Handlers) friends(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	users, err := h.resolver.FriendsOf(r.Context(), u.ID)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	out := make([]*api.OutUser, 0, len(users))
	for i := range users {
		out = append(out, api.NewOutUser(&users[i]))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	o := r.Context().Value("opponent").(*model.User)
	st, err := h.resolver.StatusOf(r.Context(), u.ID, o.ID)
	if err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": st.String()})
}

func (h *Handlers) SetupRoutes(r *chi.Mux, authenticator func(http.Handler) http.Handler) {
	r.Route("/friends", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.friends)
		r.Get("/requests", h.pendingRequests)
		r.Group(func(r chi.Router) {
			r.Use(middleware.WithOpponent)
			r.Get("/{userID}/status", h.status)
			r.Post("/{userID}/request", h.sendRequest)
			r.Post("/{userID}/accept", h.accept)
			r.Post("/{userID}/deny", h.deny)
			r.Post("/{userID}/block", h.block)
		})
	})
}
