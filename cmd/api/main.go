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

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/cache"
	"github.com/AchilleasB/campus-library/library-service/internal/adapters/handler"
	"github.com/AchilleasB/campus-library/library-service/internal/adapters/metrics"
	"github.com/AchilleasB/campus-library/library-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-library/library-service/internal/adapters/repository"
	"github.com/AchilleasB/campus-library/library-service/internal/config"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/AchilleasB/campus-library/library-service/internal/core/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	repo := repository.NewSQLRepository(db)

	var (
		sessions    ports.SessionStore
		statsCache  ports.StatsCache
		redisPinger handler.RedisPinger
	)
	if cfg.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		log.Println("Connected to Redis successfully")

		sessions = cache.NewRedisSessionStore(redisClient)
		statsCache = cache.NewRedisStatsCache(redisClient)
		redisPinger = redisClient
	} else {
		log.Println("REDIS_ADDRESS not set: tokens cannot be revoked before they expire")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	withMetrics := services.WithMetrics(m)
	loanService := services.NewLoanService(repo, cfg.Rules, withMetrics)
	userService := services.NewUserService(repo, sessions)

	h := handler.Handlers{
		Auth:         handler.NewAuthHandler(services.NewAuthService(repo, sessions, cfg.JWTPrivateKey, cfg.TokenTTL)),
		Registration: handler.NewRegistrationHandler(userService),
		Users:        handler.NewUserHandler(userService),
		Catalog:      handler.NewCatalogHandler(services.NewCatalogService(repo)),
		Loans:        handler.NewLoanHandler(loanService),
		Reservations: handler.NewReservationHandler(services.NewReservationService(repo, cfg.Rules, withMetrics)),
		Fines:        handler.NewFineHandler(services.NewFineService(repo, withMetrics)),
		Requests:     handler.NewRequestHandler(services.NewRequestService(repo, loanService, withMetrics)),
		Reports:      handler.NewReportHandler(services.NewReportService(repo, statsCache)),
		Health:       handler.NewHealthHandler(db, redisPinger),
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, h, middleware.NewAuthMiddleware(cfg.JWTPublicKey, sessions))
	mux.Handle("GET /metrics", m.Handler())

	cors := middleware.CORSMiddleware(cfg.AllowedOrigins)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           cors(middleware.AccessLog(m.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("received signal %v, shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down server: %v", err)
	}
}
