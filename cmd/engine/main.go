package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"complaint_notification_engine/internal/app"
	"complaint_notification_engine/internal/domain/viewer"
	"complaint_notification_engine/internal/infra/config"
	idb "complaint_notification_engine/internal/infra/database"
	"complaint_notification_engine/internal/infra/logger"
	"complaint_notification_engine/internal/infra/scheduler"
	httpstream "complaint_notification_engine/internal/infra/stream"
)

func main() {
	fmt.Println("Complaint Notification Engine starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.Environment)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, ViewerRole: %s", cfg.LogLevel, cfg.Environment, cfg.ViewerRole)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize State Store
	stateStore := idb.NewPostgresStateStore(db)
	if err := stateStore.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("FATAL: Could not ensure state store schema: %v", err)
	}
	log.Info("State store initialized.")

	// Initialize Retention Scheduler
	retention := scheduler.NewRetentionScheduler(stateStore, log, cfg.CronSpecRetention, cfg.RetentionTTL)
	if err := retention.Start(); err != nil {
		log.Fatalf("FATAL: Could not start retention scheduler: %v", err)
	}

	// Initialize Stream Source
	source := httpstream.NewHTTPSource(cfg.StreamBaseURL, nil, cfg.StreamPollInterval, log)
	log.Info("Stream source initialized.")

	// Initialize and bind the Engine
	engine := app.NewEngine(source, stateStore, app.SystemClock(), cfg.Engine(), log)
	identity := viewer.Identity{UID: cfg.ViewerUID, Email: cfg.ViewerEmail, Role: cfg.ViewerRole}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.Bind(ctx, identity, viewer.Identity{}); err != nil {
		log.Fatalf("FATAL: Could not bind engine to viewer scope: %v", err)
	}
	if scope, ok := engine.Scope(); ok {
		log.Infof("Engine bound. Role: %s, ScopeKey: %s", scope.Kind, scope.Key)
	} else {
		log.Warn("Viewer scope unresolved; engine is idle.")
	}

	log.Info("Application setup complete. Engine is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")
	engine.Close()
	retention.Stop()
	// db.Close() is handled by defer
	log.Info("Application shut down gracefully.")
}
