package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sociable/messenger-backend/env"
)

func SetupMiddlewares(r *chi.Mux) {
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	origins := []string{"*"}
	if env.ALLOWED_ORIGINS != "" {
		origins = strings.Split(env.ALLOWED_ORIGINS, ",")
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
}

func New(handler http.Handler) *http.Server {
	// No read/write timeouts: the websocket endpoint holds connections
	// open indefinitely and enforces its own deadlines.
	return &http.Server{
		Addr:              ":" + env.APP_PORT,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
