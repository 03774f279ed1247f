package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dealhound/dealhound/app/api"
	"github.com/dealhound/dealhound/app/bot"
	"github.com/dealhound/dealhound/app/cfg"
	"github.com/dealhound/dealhound/app/database"
	"github.com/dealhound/dealhound/app/market"
	"github.com/dealhound/dealhound/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to parse configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.Printf("Starting Dealhound %s...", appCfg.Version)

	// Database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready (schema version %d, dirty: %v)", version, dirty)

	// Initialize repositories
	monitorRepo := database.NewMonitorRepository(db)
	seenRepo := database.NewSeenItemRepository(db)
	bidRepo := database.NewBidRepository(db)
	userRepo := database.NewUserRepository(db)

	// Market client
	endpoints := market.NewEndpoints(appCfg.EbaySandbox)
	httpClient := &http.Client{Timeout: 30 * time.Second}
	tokens := market.NewTokenSource(httpClient, endpoints.TokenURL, appCfg.EbayAppID, appCfg.EbayCertID)
	marketClient := market.NewClient(httpClient, endpoints, tokens, appCfg.EbayAppID, appCfg.UserAgent)

	// Discord session
	log.Println("Opening discord session...")
	discordBot, err := bot.New(monitorRepo, seenRepo, bidRepo, userRepo, marketClient)
	if err != nil {
		log.Fatal("Failed to create discord bot:", err)
	}
	if err := discordBot.Open(); err != nil {
		log.Fatal("Failed to open discord session:", err)
	}
	defer discordBot.Close()

	notifier := bot.NewNotifier(discordBot.Session())

	// Initialize and start scheduler
	log.Printf("Starting background scheduler with %d workers...", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(monitorRepo, seenRepo, bidRepo, marketClient, notifier)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(userRepo, monitorRepo, seenRepo, bidRepo,
		marketClient, notifier, appCfg.EbayRedirectURI)
	server := api.NewServer(apiHandler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("  OAuth callback: http://localhost:%s/auth/ebay/callback", appCfg.Port)
		log.Printf("  Health check:   http://localhost:%s/health", appCfg.Port)
		log.Printf("  Statistics:     http://localhost:%s/stats", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Dealhound started successfully!")
	log.Println("Press Ctrl+C to shutdown gracefully...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	// Scheduler and discord session are stopped via defer
	log.Println("Dealhound shutdown complete")
}
