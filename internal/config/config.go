package config

import (
	"crypto/rsa"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/rules"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

type Config struct {
	JWTPrivateKey  *rsa.PrivateKey
	JWTPublicKey   *rsa.PublicKey
	TokenTTL       time.Duration
	DatabaseURL    string
	RedisAddress   string
	RedisPassword  string
	Port           string
	AllowedOrigins []string
	MigrateOnStart bool
	Rules          rules.Settings
}

func Load() *Config {
	privateKeyPath := os.Getenv("PRIVATE_KEY_PATH")
	if privateKeyPath == "" {
		privateKeyPath = "/etc/certs/private.pem"
	}
	privateKey, err := loadPrivateKey(privateKeyPath)
	if err != nil {
		panic("Failed to load private key: " + err.Error())
	}

	publicKeyPath := os.Getenv("PUBLIC_KEY_PATH")
	if publicKeyPath == "" {
		publicKeyPath = "/etc/certs/public.pem"
	}
	publicKey, err := loadPublicKey(publicKeyPath)
	if err != nil {
		panic("Failed to load public key: " + err.Error())
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		JWTPrivateKey:  privateKey,
		JWTPublicKey:   publicKey,
		TokenTTL:       durationEnv("TOKEN_TTL", 8*time.Hour),
		DatabaseURL:    requiredEnv("DB_CONNECTION_STRING"),
		RedisAddress:   os.Getenv("REDIS_ADDRESS"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		Port:           port,
		AllowedOrigins: listEnv("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		MigrateOnStart: boolEnv("MIGRATE_ON_START", false),
		Rules:          LoadRules(),
	}
}

// LoadRules starts from the built-in circulation thresholds and applies any
// overrides found in the environment.
func LoadRules() rules.Settings {
	s := rules.DefaultSettings()
	s.FinePerDay = decimalEnv("FINE_PER_DAY", s.FinePerDay)
	s.FineBlockThreshold = decimalEnv("FINE_BLOCK_THRESHOLD", s.FineBlockThreshold)
	s.MaxRenewals = intEnv("MAX_RENEWALS", s.MaxRenewals)
	s.MaxActiveReservations = intEnv("MAX_ACTIVE_RESERVATIONS", s.MaxActiveReservations)
	s.PickupWindow = time.Duration(intEnv("RESERVATION_PICKUP_HOURS", int(s.PickupWindow/time.Hour))) * time.Hour
	return s
}

func requiredEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(key + " environment variable is required")
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		panic(key + " must be a non-negative integer, got " + strconv.Quote(v))
	}
	return n
}

func decimalEnv(key string, fallback decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		panic(key + " must be a non-negative amount, got " + strconv.Quote(v))
	}
	return d
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		panic(key + " must be a positive duration, got " + strconv.Quote(v))
	}
	return d
}

func boolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(key + " must be a boolean, got " + strconv.Quote(v))
	}
	return b
}

func listEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return privateKey, nil
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}
