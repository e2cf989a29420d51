package config

import (
	"os"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/rules"
)

// RelayConfig holds what the background worker process needs: the outbox
// relay and the reservation sweeper.
type RelayConfig struct {
	DatabaseURL   string
	RabbitMQURL   string
	EventQueue    string
	SweepInterval time.Duration
	HealthPort    string
	Rules         rules.Settings
}

func LoadRelayConfig() *RelayConfig {
	queue := os.Getenv("EVENT_QUEUE_NAME")
	if queue == "" {
		queue = "library-events"
	}

	healthPort := os.Getenv("HEALTH_PORT")
	if healthPort == "" {
		healthPort = "8090"
	}

	return &RelayConfig{
		DatabaseURL:   requiredEnv("DB_CONNECTION_STRING"),
		RabbitMQURL:   requiredEnv("RABBITMQ_URL"),
		EventQueue:    queue,
		SweepInterval: durationEnv("SWEEP_INTERVAL", time.Minute),
		HealthPort:    healthPort,
		Rules:         LoadRules(),
	}
}
