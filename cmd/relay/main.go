package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/lib/pq"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/messaging"
	"github.com/AchilleasB/campus-library/library-service/internal/adapters/outbox"
	"github.com/AchilleasB/campus-library/library-service/internal/adapters/repository"
	"github.com/AchilleasB/campus-library/library-service/internal/adapters/scheduler"
	"github.com/AchilleasB/campus-library/library-service/internal/config"
	"github.com/AchilleasB/campus-library/library-service/internal/core/services"
)

func main() {
	log.Println("Starting library worker (outbox relay + reservation sweeper)...")

	cfg := config.LoadRelayConfig()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("relay: failed to open database: %v", err)
	}
	defer db.Close()

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.EventQueue)
	if err != nil {
		log.Fatalf("relay: failed to connect to RabbitMQ: %v", err)
	}
	defer broker.Close()
	log.Printf("relay: connected to RabbitMQ, publishing to queue %q", cfg.EventQueue)

	relayWorker := outbox.NewRelay(db, cfg.DatabaseURL, broker)
	reservations := services.NewReservationService(repository.NewSQLRepository(db), cfg.Rules)
	sweeper := scheduler.NewReservationSweeper(reservations, cfg.SweepInterval)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", statusHandler(relayWorker.IsHealthy))
	healthMux.HandleFunc("/health/live", statusHandler(relayWorker.IsHealthy))
	healthMux.HandleFunc("/health/ready", statusHandler(relayWorker.IsReady))

	healthServer := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("relay: starting health check server on :%s", cfg.HealthPort)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("relay: health server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 2)

	go func() {
		if err := relayWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()
	go func() {
		if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("relay: received signal %v, initiating shutdown...", sig)
	case err := <-errChan:
		log.Printf("relay: fatal error, shutting down: %v", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("relay: error shutting down health server: %v", err)
	}

	log.Println("relay: shutdown complete")
}

func statusHandler(check func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "UP"
		httpStatus := http.StatusOK
		if !check() {
			status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		_ = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(map[string]string{
			"status":    status,
			"component": "library-worker",
		})
	}
}
