package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/fitsync/internal/api"
	"example.com/fitsync/internal/auth"
	"example.com/fitsync/internal/companion"
	"example.com/fitsync/internal/config"
	"example.com/fitsync/internal/observability"
	"example.com/fitsync/internal/settings"
	"example.com/fitsync/internal/store/sqlite"
	syncengine "example.com/fitsync/internal/sync"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	session := auth.NewSession()
	if cfg.AuthToken != "" {
		if err := session.SetToken(cfg.AuthToken); err != nil {
			log.Fatalf("invalid auth token: %v", err)
		}
	}
	client := api.NewClient(cfg.ServerBaseURL, session)

	watcher := settings.NewWatcher()
	watched := settings.NewWatched(store, watcher)
	go watchEngineState(watcher)

	hub := companion.NewHub(nil, companion.WithThrottle(cfg.WatchThrottle))
	publisher := companion.NewPublisher(store, session, hub,
		companion.WithThrottle(cfg.WatchThrottle))
	hub.SetHandler(companion.NewHandler(store, publisher))

	syncOpts := []syncengine.Option{syncengine.WithWorkers(cfg.SyncWorkers)}
	if cfg.TieBreakLocal {
		syncOpts = append(syncOpts, syncengine.WithTieBreak(syncengine.TieBreakLocal))
	}
	orchestrator := syncengine.NewOrchestrator(store, watched,
		syncengine.NewProgressService(store, client, syncOpts...),
		syncengine.NewExerciseService(store, client, syncOpts...),
		syncengine.NewActivityService(store, client, syncOpts...),
		append(syncOpts, syncengine.WithStatusPublisher(publisher))...)

	go runSyncLoop(ctx, orchestrator, hub, cfg.SyncInterval)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/companion", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("syncd listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// runSyncLoop runs one sync immediately and then on every tick.
func runSyncLoop(ctx context.Context, orchestrator *syncengine.Orchestrator, hub *companion.Hub, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		runOnce(ctx, orchestrator)
		observability.RecordCompanionConnected(hub.Reachable())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func runOnce(ctx context.Context, orchestrator *syncengine.Orchestrator) {
	entry, err := orchestrator.Run(ctx)
	switch {
	case errors.Is(err, syncengine.ErrNoUser), errors.Is(err, syncengine.ErrSyncInProgress):
		return
	case err != nil:
		log.Printf("[syncd] sync run failed: %v", err)
		return
	}
	log.Printf("[syncd] run %s finished: %s (%d errors)", entry.RunID, entry.Result, len(entry.Errors))
}

// watchEngineState mirrors settings changes into the engine gauges.
func watchEngineState(watcher *settings.Watcher) {
	changes, cancel := watcher.Subscribe(8)
	defer cancel()

	for change := range changes {
		switch change.Key {
		case settings.KeySyncState:
			observability.RecordState(change.Value)
		case settings.KeyLastSyncDate:
			if ts, err := time.Parse(time.RFC3339, change.Value); err == nil {
				observability.RecordLastSync(ts)
			}
		}
	}
}
