// Package admin exposes the bulk reset used by test and dev environments.
// main mounts it only when ENABLE_TEST_RESET is set; it must never be part
// of a production surface.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/sociable/messenger-backend/api"
	"github.com/sociable/messenger-backend/friendship"
	"github.com/sociable/messenger-backend/messaging"
)

type Handlers struct {
	logger        *logrus.Logger
	relationships friendship.Store
	messages      messaging.Store
}

func NewHandlers(logger *logrus.Logger, relationships friendship.Store, messages messaging.Store) *Handlers {
	return &Handlers{logger, relationships, messages}
}

func (h *Handlers) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.relationships.DeleteAll(r.Context()); err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	if err := h.messages.DeleteAll(r.Context()); err != nil {
		api.WriteError(h.logger, w, err)
		return
	}
	h.logger.Warn("test reset executed")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Delete("/admin/reset", h.reset)
}
