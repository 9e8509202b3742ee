package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

type Config struct {
	Port               string
	AllowedOrigin      string
	LogLevel           string
	StorageBackend     string
	DatabaseURL        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisKeyPrefix     string
	MongoURI           string
	MongoDBName        string
	AuthSecret         string
	AccessTokenTTL     int
	AdminPassword      string
	CashierPassword    string
	CurrencySymbol     string
	ReportCronSchedule string
	SessionIdleMinutes int
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	idle, err := strconv.Atoi(getEnv("SESSION_IDLE_MINUTES", "120"))
	if err != nil || idle < 1 {
		idle = 120
	}

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:5173"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		RedisKeyPrefix:     getEnv("REDIS_KEY_PREFIX", "sarisari:"),
		MongoURI:           os.Getenv("MONGODB_URI"),
		MongoDBName:        getEnv("MONGODB_DB_NAME", "sarisari"),
		AuthSecret:         strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTL:     tokenTTL,
		AdminPassword:      strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		CashierPassword:    strings.TrimSpace(os.Getenv("CASHIER_PASSWORD")),
		CurrencySymbol:     getEnv("CURRENCY_SYMBOL", "₱"),
		ReportCronSchedule: getEnv("REPORT_CRON_SCHEDULE", "0 20 * * *"),
		SessionIdleMinutes: idle,
	}
	cfg.StorageBackend = resolveBackend(strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND"))), cfg)

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// resolveBackend honors an explicit choice, otherwise picks the first
// configured external store and falls back to memory.
func resolveBackend(explicit string, cfg Config) string {
	switch explicit {
	case BackendMemory, BackendPostgres, BackendRedis, BackendMongo:
		return explicit
	}
	switch {
	case cfg.DatabaseURL != "":
		return BackendPostgres
	case cfg.MongoURI != "":
		return BackendMongo
	case cfg.RedisAddr != "":
		return BackendRedis
	default:
		return BackendMemory
	}
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
