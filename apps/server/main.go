package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"holdem-recorder/apps/server/internal/api"
	"holdem-recorder/apps/server/internal/config"
	"holdem-recorder/apps/server/internal/gateway"
	"holdem-recorder/apps/server/internal/session"
	"holdem-recorder/apps/server/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logger.WithField("component", "server")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	logger.SetLevel(cfg.LogLevel)

	st, storeMode, err := store.New(cfg.Store, logger.WithField("component", "store"))
	if err != nil {
		log.WithError(err).Fatal("failed to init store")
	}
	defer st.Close()

	gw := gateway.New(logrus.NewEntry(logger), cfg.AllowedOrigins)
	sessions := session.NewRegistry(logrus.NewEntry(logger), gw.Publish)
	sessions.OnDrop(gw.CloseSession)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sessions.RunSweeper(ctx, cfg.SessionTTL, time.Minute)

	srv := api.NewServer(api.Options{
		Sessions:    sessions,
		Store:       st,
		Websocket:   gw.Handler(sessions),
		DefaultLang: cfg.DefaultLang,
		Log:         logrus.NewEntry(logger),
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{
		"addr":        cfg.HTTPAddr,
		"store":       storeMode,
		"lang":        cfg.DefaultLang,
		"session_ttl": cfg.SessionTTL,
	}).Info("starting recorder server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("failed to start")
	}
	log.Info("server stopped")
}
