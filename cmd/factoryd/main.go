package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"factory-floor-backend/config"
	"factory-floor-backend/internal/api"
	"factory-floor-backend/internal/db"
	"factory-floor-backend/internal/notification"
	"factory-floor-backend/internal/status"
	"factory-floor-backend/internal/store"
	"factory-floor-backend/internal/ws"
)

func main() {
	logger := log.New(os.Stdout, "factoryd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	if err := db.SeedAdmin(gormDB, &cfg.Seed); err != nil {
		logger.Fatalf("failed to seed admin user: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	hub := ws.NewHub()
	gateways := api.Gateways{
		Hub:         hub,
		Machines:    ws.NewMachineGateway(hub),
		Annotations: ws.NewAnnotationGateway(hub, appStore),
		Chat:        ws.NewChatGateway(hub, appStore),
	}

	// Failure alerts are optional: without VAPID keys the worker pool is not
	// started and the propagator runs without an alerter.
	var webpushOptions *webpush.Options
	var alerter status.Alerter
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		pool.Start(ctx)
		alerter = pool
		logger.Println("failure-alert worker pool started")
	} else {
		logger.Println("VAPID keys not configured; failure alerts disabled")
	}

	statusSvc := status.NewService(cfg, appStore, gateways.Machines, alerter)
	go statusSvc.Run(ctx)

	router := api.NewRouter(cfg, appStore, statusSvc, gateways, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()
	hub.DisconnectAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
