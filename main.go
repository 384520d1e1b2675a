package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	apiadmin "github.com/sociable/messenger-backend/api/admin"
	apiauth "github.com/sociable/messenger-backend/api/auth"
	apifriendship "github.com/sociable/messenger-backend/api/friendship"
	apimessage "github.com/sociable/messenger-backend/api/message"
	apisocket "github.com/sociable/messenger-backend/api/socket"
	apiuser "github.com/sociable/messenger-backend/api/user"
	"github.com/sociable/messenger-backend/auth"
	"github.com/sociable/messenger-backend/db"
	"github.com/sociable/messenger-backend/env"
	"github.com/sociable/messenger-backend/friendship"
	"github.com/sociable/messenger-backend/messaging"
	"github.com/sociable/messenger-backend/middleware"
	"github.com/sociable/messenger-backend/mq"
	"github.com/sociable/messenger-backend/push"
	"github.com/sociable/messenger-backend/server"
	"github.com/sociable/messenger-backend/ws"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	if err := env.Load(); err != nil {
		logger.Fatalln(err)
	}
	if err := db.Setup(env.DB_CONN); err != nil {
		logger.Fatalln(err)
	}

	relStore := friendship.NewGormStore(db.Get())
	resolver := friendship.NewResolver(relStore)
	workflow := friendship.NewWorkflow(relStore)
	msgStore := messaging.NewGormStore(db.Get())

	hub := ws.NewHub(logger)
	go hub.Run()

	notifiers := messaging.MultiNotifier{hub, push.NewService(db.Get(), logger)}
	var exchange *mq.Exchange
	if env.NSQD_TCP_ADDR != "" && env.NSQLOOKUPD_ADDR != "" {
		var err error
		exchange, err = mq.NewExchange(env.NSQD_TCP_ADDR, env.NSQLOOKUPD_ADDR, env.SERVER_ID, hub, logger)
		if err != nil {
			logger.Fatalln(err)
		}
		notifiers = append(notifiers, exchange)
	}
	dispatcher := messaging.NewDispatcher(resolver, msgStore, notifiers, logger)

	verifier := auth.NewJWTVerifier(env.HS256_SECRET)
	authenticator := middleware.Authenticator(logger, verifier)

	r := chi.NewRouter()
	server.SetupMiddlewares(r)
	apiauth.NewHandlers(logger).SetupRoutes(r, authenticator)
	apiuser.NewHandlers(logger, msgStore).SetupRoutes(r, authenticator)
	apifriendship.NewHandlers(logger, workflow, resolver).SetupRoutes(r, authenticator)
	apimessage.NewHandlers(logger, dispatcher).SetupRoutes(r, authenticator)
	apisocket.NewHandlers(logger, verifier, hub).SetupRoutes(r)
	if env.ENABLE_TEST_RESET {
		logger.Warn("test reset endpoint enabled")
		apiadmin.NewHandlers(logger, relStore, msgStore).SetupRoutes(r)
	}

	srv := server.New(r)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		hub.Close()
		if exchange != nil {
			exchange.Stop()
		}
		logger.Info("quit")
		os.Exit(0)
	}()

	logger.WithField("port", env.APP_PORT).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalln(err)
	}
	select {}
}
