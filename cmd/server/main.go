package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sarisari/backend/internal/cart"
	"sarisari/backend/internal/config"
	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/httpapi"
	"sarisari/backend/internal/logger"
	"sarisari/backend/internal/scheduler"
	"sarisari/backend/internal/service"
	"sarisari/backend/internal/store"
	"sarisari/backend/internal/store/memory"
	mongostore "sarisari/backend/internal/store/mongo"
	pgstore "sarisari/backend/internal/store/postgres"
	redisstore "sarisari/backend/internal/store/redis"
)

func main() {
	cfg := config.Load()
	log := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal("invalid security configuration", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, closers, err := openKV(ctx, cfg, log)
	if err != nil {
		log.Fatal("storage unavailable; refusing to start with in-memory fallback",
			zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}

	svc, err := service.New(ctx, kv, cfg.CurrencySymbol, log)
	if err != nil {
		log.Fatal("failed to load stores", zap.Error(err))
	}
	auth, err := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTL)*time.Minute,
		httpapi.SeedUser{Username: "admin", Password: cfg.AdminPassword, Role: domain.RoleAdmin},
		httpapi.SeedUser{Username: "cashier", Password: cfg.CashierPassword, Role: domain.RoleCashier},
	)
	if err != nil {
		log.Fatal("failed to seed users", zap.Error(err))
	}

	sessions := cart.NewSessions()
	api := httpapi.New(svc, sessions, auth, httpapi.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		Currency:      cfg.CurrencySymbol,
		Logger:        log,
	})

	jobs := scheduler.NewScheduler(svc, sessions, cfg.ReportCronSchedule,
		time.Duration(cfg.SessionIdleMinutes)*time.Minute, logger.Named(log, "scheduler"))
	if err := jobs.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("sari-sari POS backend listening", zap.String("addr", cfg.Address()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	jobs.Stop()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error("close error", zap.Error(err))
		}
	}

	log.Info("server stopped")
}

// openKV connects the configured backend. A configured but unreachable
// backend is an error; only an explicit or implied memory backend runs
// without persistence.
func openKV(ctx context.Context, cfg config.Config, log *zap.Logger) (store.KV, []func() error, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("storage: postgres")
		return pg, []func() error{pg.Close}, nil
	case config.BackendRedis:
		rs := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKeyPrefix)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, err
		}
		log.Info("storage: redis", zap.String("prefix", cfg.RedisKeyPrefix))
		return rs, []func() error{rs.Close}, nil
	case config.BackendMongo:
		ms, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		log.Info("storage: mongo", zap.String("database", cfg.MongoDBName))
		return ms, []func() error{ms.Close}, nil
	case config.BackendMemory:
		log.Warn("storage: in-memory, data is lost on restart")
		return memory.New(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set")
	}
	if err := validatePasswordStrength(cfg.AdminPassword); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD is too weak: %w", err)
	}
	// The cashier account stays disabled when no password is configured.
	if cfg.CashierPassword != "" {
		if err := validatePasswordStrength(cfg.CashierPassword); err != nil {
			return fmt.Errorf("CASHIER_PASSWORD is too weak: %w", err)
		}
	}
	return nil
}

// validatePasswordStrength rejects short passwords, single repeated
// characters, runs like "12345678" or "abcdefgh" and a few known defaults.
func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("must be at least 8 characters")
	}

	known := map[string]bool{
		"password": true, "12345678": true, "123456789": true, "admin123": true,
		"cashier123": true, "qwertyui": true, "sarisari": true, "changeme": true,
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}

	allSame := true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("repeated-character password not allowed")
	}

	ascending, descending := true, true
	for i := 1; i < len(password); i++ {
		diff := int(password[i]) - int(password[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
	}
	if ascending || descending {
		return fmt.Errorf("sequential password not allowed")
	}

	return nil
}
