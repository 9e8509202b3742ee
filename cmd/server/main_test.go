package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"sarisari/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cases := []config.Config{
		{AuthSecret: "short", AdminPassword: "Tindahan-2026"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", AdminPassword: ""},
		{AuthSecret: "0123456789abcdef0123456789abcdef", AdminPassword: "admin123"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", AdminPassword: "Tindahan-2026", CashierPassword: "aaaaaaaa"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", AdminPassword: "abcdefgh"},
	}
	for i, cfg := range cases {
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("case %d: expected weak security config to be rejected", i)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		AuthSecret:      "0123456789abcdef0123456789abcdef",
		AdminPassword:   "Tindahan-2026",
		CashierPassword: "kahera-umaga-7",
	})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestValidateSecurityConfigAllowsDisabledCashier(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		AuthSecret:    "0123456789abcdef0123456789abcdef",
		AdminPassword: "Tindahan-2026",
	})
	if err != nil {
		t.Fatalf("expected missing cashier password to be allowed, got %v", err)
	}
}

func TestOpenKVMemoryAndUnknownBackends(t *testing.T) {
	kv, closers, err := openKV(context.Background(), config.Config{StorageBackend: config.BackendMemory}, zap.NewNop())
	if err != nil || kv == nil {
		t.Fatalf("expected memory backend, got %v %v", kv, err)
	}
	if len(closers) != 0 {
		t.Fatalf("expected no closers for memory backend")
	}

	if _, _, err := openKV(context.Background(), config.Config{StorageBackend: "cassandra"}, zap.NewNop()); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
}
