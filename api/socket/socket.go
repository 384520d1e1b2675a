package socket

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sociable/messenger-backend/auth"
	"github.com/sociable/messenger-backend/db"
	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/ws"
)

const handshakeWait = 10 * time.Second

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handlers struct {
	logger   *logrus.Logger
	verifier auth.Verifier
	hub      *ws.Hub
}

func NewHandlers(logger *logrus.Logger, verifier auth.Verifier, hub *ws.Hub) *Handlers {
	return &Handlers{logger, verifier, hub}
}

// handshake is the first frame a connecting channel must present before it
// is registered.
type handshake struct {
	Handle     string `json:"handle"`
	Credential string `json:"credential"`
}

// serveWs upgrades the connection, validates the handshake and only then
// registers the client with the hub. The handle gets a cheap syntax check
// before the credential verification, and the hub is not involved until the
// handshake has fully passed, so no registry lock is held across it.
func (h *Handlers) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	conn.SetReadDeadline(time.Now().Add(handshakeWait))
	var hs handshake
	if err := conn.ReadJSON(&hs); err != nil {
		h.reject(conn, websocket.ClosePolicyViolation, "handshake required")
		return
	}
	if !emailRe.MatchString(hs.Handle) {
		h.reject(conn, websocket.ClosePolicyViolation, "invalid handle")
		return
	}
	uid, err := h.verifier.Verify(hs.Credential)
	if err != nil {
		h.reject(conn, websocket.ClosePolicyViolation, "invalid credential")
		return
	}
	var u model.User
	if err := db.GetDB(r.Context()).First(&u, uid).Error; err != nil {
		h.reject(conn, websocket.ClosePolicyViolation, "unknown user")
		return
	}
	if u.Email != hs.Handle {
		h.reject(conn, websocket.ClosePolicyViolation, "handle mismatch")
		return
	}

	c := ws.NewClient(&ws.ClientCfg{
		ID:     uuid.NewString(),
		Logger: h.logger,
		Hub:    h.hub,
		Conn:   conn,
		UserID: u.ID,
		Send:   make(chan []byte, 256),
	})
	h.hub.Register() <- c
	go c.WritePump()
	go c.ReadPump()
}

func (h *Handlers) reject(conn *websocket.Conn, code int, reason string) {
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	conn.Close()
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Get("/ws", h.serveWs)
}
