package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sociable/messenger-backend/api"
	"github.com/sociable/messenger-backend/auth"
	"github.com/sociable/messenger-backend/db"
	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/env"
	"github.com/sociable/messenger-backend/faults"
)

type Handlers struct {
	logger *logrus.Logger
}

func NewHandlers(logger *logrus.Logger) *Handlers {
	return &Handlers{logger}
}

func (h *Handlers) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
		Password *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == nil || body.Username == nil || body.Password == nil {
		api.WriteError(h.logger, w, faults.New(faults.InvalidArgument, "invalid format"))
		return
	}
	hash, err := auth.HashPassword(*body.Password)
	if err != nil {
		api.WriteError(h.logger, w, faults.Wrap(faults.Internal, "password hash failed", err))
		return
	}
	u := &model.User{
		Email:    *body.Email,
		Username: *body.Username,
		Pass:     hash,
	}
	if err := db.GetDB(r.Context()).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			api.WriteError(h.logger, w, faults.New(faults.Conflict, "email already registered"))
		} else {
			api.WriteError(h.logger, w, faults.Wrap(faults.Unavailable, "user create failed", err))
		}
		return
	}
	api.WriteJSON(w, http.StatusCreated, api.NewOutUser(u))
}

func (h *Handlers) signin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     *string `json:"email"`
		Password  *string `json:"password"`
		PushToken *string `json:"push_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == nil || body.Password == nil {
		api.WriteError(h.logger, w, faults.New(faults.InvalidArgument, "invalid format"))
		return
	}
	gdb := db.GetDB(r.Context())
	var u model.User
	if err := gdb.Where(&model.User{Email: *body.Email}).First(&u).Error; err != nil {
		api.WriteError(h.logger, w, faults.New(faults.Unauthenticated, "invalid credentials"))
		return
	}
	if !auth.CheckPassword(u.Pass, *body.Password) {
		api.WriteError(h.logger, w, faults.New(faults.Unauthenticated, "invalid credentials"))
		return
	}
	token, err := auth.GenAccessToken(env.HS256_SECRET, u.ID)
	if err != nil {
		api.WriteError(h.logger, w, faults.Wrap(faults.Internal, "token sign failed", err))
		return
	}

	s := &model.Session{
		UserID: u.ID,
		IP:     deviceIP(r),
		Ch:     uuid.NewString(),
	}
	if body.PushToken != nil {
		s.PushToken = *body.PushToken
	}
	if err := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "ip"}},
		UpdateAll: true,
	}).Create(s).Error; err != nil {
		api.WriteError(h.logger, w, faults.Wrap(faults.Unavailable, "session create failed", err))
		return
	}
	gdb.Model(&u).Update("is_online", true)

	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    token,
		Expires:  time.Now().Add(2 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
	api.WriteJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (h *Handlers) signout(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	gdb := db.GetDB(r.Context())
	gdb.Where("user_id = ? AND ip = ?", u.ID, deviceIP(r)).Delete(&model.Session{})
	gdb.Model(u).Update("is_online", false)
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
	})
	w.WriteHeader(http.StatusOK)
}

func deviceIP(r *http.Request) string {
	return strings.Split(r.RemoteAddr, ":")[0]
}

func (h *Handlers) SetupRoutes(r *chi.Mux, authenticator func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.signup)
		r.Post("/signin", h.signin)
		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/signout", h.signout)
		})
	})
}
