package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sparkbytes.org/internal/auth"
	"sparkbytes.org/internal/config"
	"sparkbytes.org/internal/event"
	"sparkbytes.org/internal/httpapi"
	"sparkbytes.org/internal/obs"
	"sparkbytes.org/internal/store/pg"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tokens, err := auth.NewTokenService(cfg.AuthSecret, cfg.AuthAlgorithm, cfg.TokenTTL())
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	// Without a DSN the server runs fully in memory, which is enough for
	// local frontend development.
	var (
		users  auth.UserStore = auth.NewInMemoryStore()
		events event.Service  = event.NewInMemory()
		probe  httpapi.ReadyProbe
	)
	var store *pg.Store
	if cfg.DatabaseDSN != "" {
		store, err = pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		users = auth.NewPGStore(store.DB())
		events = store
		probe = httpapi.ReadyProbe{DB: store.DB()}
	}

	authSvc := auth.NewService(users, tokens)
	api := httpapi.New(probe, version, authSvc, events).
		WithCORSOrigin(cfg.CORSOrigin).
		WithRateLimit(cfg.RateBurst, cfg.RatePerSec)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting sparkbytes-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if store != nil {
		_ = store.Close()
	}
	log.Println("Stopped")
}
