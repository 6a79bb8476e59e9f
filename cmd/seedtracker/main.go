// Package main provides the entry point for the seed tracker.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/MrSnug/seedtracker/internal/api"
	"github.com/MrSnug/seedtracker/internal/appinfo"
	"github.com/MrSnug/seedtracker/internal/config"
	"github.com/MrSnug/seedtracker/internal/notify"
	"github.com/MrSnug/seedtracker/internal/roster"
	"github.com/MrSnug/seedtracker/internal/singleinstance"
	"github.com/MrSnug/seedtracker/internal/store"
	"github.com/MrSnug/seedtracker/internal/tracker"
	"github.com/MrSnug/seedtracker/internal/version"
)

func main() {
	// 1. Single instance check (Windows: mutex, other: no-op). Two trackers
	// would double every minute credited per tick.
	release, ok, err := singleinstance.AcquireLock()
	if err != nil {
		log.Fatalf("Failed to acquire lock: %v", err)
	}
	if !ok {
		log.Println("Another instance is already running")
		os.Exit(1)
	}
	defer release()

	// 2. Load configuration (corrupt config falls back to defaults with warning)
	cfg, _ := config.LoadConfig()
	cfg = config.ApplyEnvOverrides(cfg)

	secrets, secretsStatus, err := config.LoadSecrets()
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	// 3. Ensure admin API credentials exist
	updated, generatedPw, err := config.EnsureAdminAuth(&secrets)
	if err != nil {
		log.Fatalf("Failed to ensure admin auth: %v", err)
	}

	// Only save if loaded successfully or file was missing (prevent overwrite on fallback)
	if updated && secretsStatus != config.SecretsFallback {
		if err := config.SaveSecrets(secrets); err != nil {
			log.Fatalf("Failed to save secrets: %v", err)
		}
		if generatedPw != "" {
			log.Println("=== GENERATED ADMIN API CREDENTIALS ===")
			log.Printf("Username: %s", secrets.BasicAuthUsername)
			log.Printf("Password: %s", generatedPw)
			log.Println("=======================================")
		}
	} else if updated && secretsStatus == config.SecretsFallback {
		log.Println("WARNING: Secrets file has errors; new credentials not saved to avoid data loss")
		log.Println("Please fix or delete secrets.json and restart")
	}

	// 4. Parse flags (port can override config)
	port := flag.Int("port", cfg.Port, "admin API port")
	flag.Parse()

	logger := slog.Default()
	logger.Info("starting", "app", appinfo.AppName, "version", version.String())

	// 5. Open the SQLite store. Storage failure keeps the process alive with
	// an uninitialized engine so the admin API can report the condition.
	var db *store.Store
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		log.Fatalf("Failed to ensure data directory: %v", err)
	}
	dbPath := filepath.Join(dataDir, appinfo.DatabaseFileName)
	db, err = store.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database, tracker will stay uninitialized", "error", err)
		db = nil
	} else {
		defer db.Close()
	}

	// 6. Roster source
	var src roster.Source
	if cfg.RosterURL != "" {
		src = roster.NewHTTPSource(cfg.RosterURL, roster.WithLogger(logger))
	} else {
		logger.Warn("no roster URL configured, roster will be unknown")
		src = roster.Static(nil)
	}

	// 7. Publishers
	var leaderboardOut, alertsOut notify.Publisher
	if !secrets.LeaderboardWebhookURL.IsEmpty() {
		leaderboardOut = notify.NewWebhookPublisher(secrets.LeaderboardWebhookURL,
			notify.WithPublisherLogger(logger))
	} else {
		logger.Warn("no leaderboard webhook configured, leaderboard publishing disabled")
	}
	if !secrets.AlertWebhookURL.IsEmpty() {
		alertsOut = notify.NewWebhookPublisher(secrets.AlertWebhookURL,
			notify.WithPublisherLogger(logger))
	}

	// 8. Build and start the engine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := tracker.New(db, src, leaderboardOut, tracker.FromAppConfig(cfg),
		tracker.WithLogger(logger),
		tracker.WithAlertPublisher(alertsOut),
		tracker.WithConfigChangeHook(func(ec tracker.Config) {
			if err := config.SaveConfig(mergeEngineConfig(cfg, ec)); err != nil {
				logger.Warn("failed to persist config change", "error", err)
			}
		}),
	)
	engine.Start(ctx)
	defer engine.Stop()

	// 9. Admin API server
	addr := "127.0.0.1:" + strconv.Itoa(*port)
	server := api.NewServer(addr, engine,
		api.WithBasicAuth(secrets.BasicAuthUsername, secrets.BasicAuthPassword.Value()))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", "addr", addr)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 10. Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		logger.Error("admin API failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("admin API shutdown", "error", err)
	}
}

// mergeEngineConfig folds an engine config snapshot back into the persisted
// application config.
func mergeEngineConfig(app config.Config, ec tracker.Config) config.Config {
	app.PlayerList = append([]string(nil), ec.PlayerList...)
	app.ListMode = string(ec.ListMode)
	app.AlertsEnabled = ec.Alerts.Enabled
	app.AlertCritical = ec.Alerts.CriticalThreshold
	app.AlertLow = ec.Alerts.LowThreshold
	app.AlertCooldownMin = int(ec.Alerts.Cooldown / time.Minute)
	return app
}
