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

	"socialbot-gateway/internal/api"
	"socialbot-gateway/internal/config"
	"socialbot-gateway/internal/database"
	"socialbot-gateway/internal/voicedna"
	"socialbot-gateway/internal/ws"
)

const analysisWorkers = 2

func main() {
	cfg := config.LoadConfig()
	cfg.ConfigureLogging()

	db, err := database.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}
	database.SyncConfig(db, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	if cfg.ValkeyAddr != "" {
		relay, err := ws.NewValkeyRelay(cfg.ValkeyAddr, cfg.ValkeyPassword, cfg.InstanceID, hub)
		if err != nil {
			logrus.Fatalf("failed to connect to valkey at %s: %v", cfg.ValkeyAddr, err)
		}
		defer relay.Close()
		hub.SetRelay(relay)
		go relay.Run(ctx)
		logrus.Infof("realtime relay enabled via %s", cfg.ValkeyAddr)
	}

	profiles := database.NewVoiceDNARepository(db)
	notifications := database.NewNotificationRepository(db)
	runner := voicedna.NewRunner(profiles, notifications, hub, voicedna.NewAnalyzer(cfg.VoiceDNAMinSamples), cfg.VoiceDNAAnalysisDelay)
	runner.Start(ctx, analysisWorkers)

	router := api.NewRouter(api.Dependencies{Config: cfg, DB: db, Hub: hub, Queue: runner})

	if cfg.APIToken == "" {
		logrus.Warn("API_TOKEN is empty, /api/v1 is not authenticated")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("server shutdown: %v", err)
	}
	runner.Wait()
}
