// Command trucoserver runs the websocket-facing truco match server. It
// replaces the teacher's dual CLI/WASM entrypoint with a single network
// daemon, since this domain's external interface is a long-lived
// websocket connection rather than an embedded bot/board.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marianogappa/truco-backend/internal/config"
	"github.com/marianogappa/truco-backend/internal/match"
	"github.com/marianogappa/truco-backend/internal/repository"
	"github.com/marianogappa/truco-backend/internal/transport/ws"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	store, closeStore := newStore(cfg, log)
	defer closeStore()

	hub := ws.NewHub(log)
	dispatcher := match.New(store, ws.NewBroadcaster(hub), log, cfg.MatchMaxPoints)
	if idx := newJoinableIndex(cfg, log); idx != nil {
		dispatcher.WithJoinableIndex(idx)
	}
	server := ws.NewServer(hub, dispatcher, log)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(),
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func newStore(cfg config.Config, log *logrus.Logger) (repository.Store, func()) {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL unset, using in-memory store")
		return repository.NewInMemory(), func() {}
	}

	pg, err := repository.NewPostgres(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	log.Info("using postgres store")
	return pg, pg.Close
}

// newJoinableIndex attaches a Redis-backed joinable-games index when
// REDIS_ADDR is configured; it's optional, so a bare in-memory/Postgres
// deployment runs without a Redis dependency at all.
func newJoinableIndex(cfg config.Config, log *logrus.Logger) *repository.JoinableIndex {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR unset, serving games-list from the store directly")
		return nil
	}
	rdb := repository.NewRedisClient(cfg.RedisAddr, cfg.RedisDB)
	log.WithField("addr", cfg.RedisAddr).Info("using redis joinable-games index")
	return repository.NewJoinableIndex(rdb)
}
