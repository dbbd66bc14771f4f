package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pos-till/internal/config"
	"pos-till/internal/database"
	"pos-till/internal/logger"
	"pos-till/internal/server"

	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Open display streams are cut once the grace period runs out.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting POS till API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Backend),
	)

	ctx := context.Background()
	infra, err := server.OpenInfra(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}

	if infra.DB != nil {
		log.Info("Database health check", zap.Any("health", infra.DB.Health(ctx)))
		if err := database.RunMigrations(ctx, infra.DB.DB(), log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	srv, err := server.NewServer(cfg, log, infra)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	if err := srv.SeedDefaults(ctx); err != nil {
		log.Fatal("Failed to seed default accounts", zap.Error(err))
	}

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
