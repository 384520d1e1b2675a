package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sociable/messenger-backend/auth"
	"github.com/sociable/messenger-backend/db"
	"github.com/sociable/messenger-backend/db/model"
)

// Authenticator resolves the bearer credential (accessToken cookie or
// Authorization header) to the acting user and stores it under "user".
func Authenticator(logger *logrus.Logger, verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			cred := credential(r)
			if cred == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			uid, err := verifier.Verify(cred)
			if err != nil {
				logger.WithError(err).Info("credential rejected")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var u model.User
			if err := db.GetDB(r.Context()).Preload("Sessions").First(&u, uid).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					w.WriteHeader(http.StatusForbidden)
				} else {
					w.WriteHeader(http.StatusInternalServerError)
				}
				return
			}
			ctx := context.WithValue(r.Context(), "user", &u)
			h.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

func credential(r *http.Request) string {
	if c, err := r.Cookie("accessToken"); err == nil && c.Value != "" {
		return c.Value
	}
	if v := r.Header.Get("Authorization"); strings.HasPrefix(v, "Bearer ") {
		return strings.TrimPrefix(v, "Bearer ")
	}
	return ""
}
