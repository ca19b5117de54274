package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/igestorphone/agent/internal/config"
	"github.com/igestorphone/agent/internal/database"
	"github.com/igestorphone/agent/internal/handler"
	"github.com/igestorphone/agent/internal/input"
	"github.com/igestorphone/agent/internal/logger"
	"github.com/igestorphone/agent/internal/monitor"
	"github.com/igestorphone/agent/internal/notifier"
	"github.com/igestorphone/agent/internal/queue"
	"github.com/igestorphone/agent/internal/repository"
	"github.com/igestorphone/agent/internal/router"
	"github.com/igestorphone/agent/internal/service"
	"github.com/igestorphone/agent/internal/session"
	"github.com/igestorphone/agent/internal/store"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/local.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting iGestorPhone agent",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
	)

	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Session side: activity store + input hub + provider
	activityStore := store.NewActivityStore(db.DB)
	hub := input.NewHub(log.Logger)
	provider := session.NewProvider(hub, activityStore, monitor.Options{
		Timeout:       time.Duration(cfg.Session.IdleTimeout) * time.Second,
		WriteThrottle: time.Duration(cfg.Session.ActivityThrottle) * time.Second,
		CheckInterval: time.Duration(cfg.Session.CheckInterval) * time.Second,
		AttachDelay:   time.Duration(cfg.Session.TouchStartDelay) * time.Millisecond,
	}, cfg.Session.TokenSecret, log.Logger)

	// Calendar side: repository + share queue + optional Telegram sender
	eventRepo := repository.NewEventRepository(db.DB)
	shareQueue := queue.NewShareQueue(db.DB, log.Logger)

	var sender notifier.Sender
	if cfg.Share.TelegramToken != "" {
		tg, err := notifier.NewTelegram(cfg.Share.TelegramToken, cfg.Share.TelegramChat, log.Logger)
		if err != nil {
			log.Warn("Telegram notifier unavailable, shares will be queued", zap.Error(err))
		} else {
			sender = tg
		}
	} else {
		log.Info("No Telegram token configured, share delivery disabled")
	}

	calendarService := service.NewCalendarService(
		eventRepo,
		shareQueue,
		sender,
		time.Duration(cfg.Share.RetryInterval)*time.Second,
		log.Logger,
	)
	calendarService.Start()

	sessionHandler := handler.NewSessionHandler(provider, hub, log.Logger)
	calendarHandler := handler.NewCalendarHandler(calendarService, log.Logger)

	addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router.New(sessionHandler, calendarHandler, log.Logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	log.Info("iGestorPhone agent started successfully",
		zap.Int("idle_timeout_s", cfg.Session.IdleTimeout),
		zap.String("storage_path", cfg.StoragePath),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// End any active session before closing the database
	provider.Logout()

	done := make(chan struct{})
	go func() {
		calendarService.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Calendar service stopped successfully")
	case <-time.After(3 * time.Second):
		log.Warn("Shutdown timeout reached, forcing immediate exit")
		os.Exit(1)
	}

	if err := shareQueue.CleanupOldShares(7 * 24 * time.Hour); err != nil {
		log.Error("Failed to cleanup old shares", zap.Error(err))
	}

	log.Info("iGestorPhone agent stopped")
}
