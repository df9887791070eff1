package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pricesniper/backend/internal/analytics"
	"github.com/pricesniper/backend/internal/api"
	"github.com/pricesniper/backend/internal/config"
	"github.com/pricesniper/backend/internal/database"
	"github.com/pricesniper/backend/internal/extract"
	"github.com/pricesniper/backend/internal/notify"
	"github.com/pricesniper/backend/internal/services"
	"github.com/pricesniper/backend/internal/storage"
)

func main() {
	cfg := config.Load()

	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	store := storage.NewGormStore(database.GetDB())

	// Retailer extraction pipeline behind one shared rate-limited fetcher
	fetcher := extract.NewFetcher(cfg.FetchRatePerSec)
	registry := extract.NewRegistry(
		extract.NewAmazon(fetcher),
		extract.NewFlipkart(fetcher),
		extract.NewMyntra(fetcher),
	)

	// Telegram when configured, log-only otherwise
	var notifier notify.Notifier
	if cfg.TelegramToken != "" {
		telegram, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram notifier: %v", err)
		}
		notifier = telegram
		log.Println("Notifier: Telegram")
	} else {
		notifier = notify.LogNotifier{}
		log.Println("Notifier: log only (TELEGRAM_BOT_TOKEN not set)")
	}

	analyzer := analytics.NewAnalyzer(analytics.DefaultConfig())
	trends := services.NewTrendService(store, store, analyzer)
	engine := services.NewAlertEngine(store)
	dispatcher := services.NewDispatcher(store, store, notifier, cfg.OutboxInterval)
	sampler := services.NewSampler(store, registry, engine, dispatcher, cfg.JobTimeout)
	scheduler := services.NewScheduler(store, sampler, cfg.CheckInterval, cfg.WorkerConcurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the scheduler in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in scheduler: %v - restarting in 30 seconds", r)
					}
				}()
				scheduler.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return
			case <-time.After(30 * time.Second):
				log.Println("Scheduler restarting after panic recovery...")
			}
		}
	}()

	// Outbox re-scan picks up anything that fired before the last
	// shutdown (or whose delivery failed) and retries it
	go dispatcher.Start(ctx)

	router := api.SetupRouter(cfg, store, registry, scheduler, trends)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the scheduler and dispatcher
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
