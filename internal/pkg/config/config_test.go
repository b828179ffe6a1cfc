package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.StorageDriver != DriverMemory || cfg.SessionStore != DriverMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.Auth.LoginLockout != 15*time.Minute {
		t.Fatalf("unexpected durations: ttl=%v lockout=%v", cfg.TokenTTL, cfg.Auth.LoginLockout)
	}
	if !cfg.Auth.SeedDemoData || cfg.Auth.SeedPassword != "password" || cfg.Auth.AllowStaffSelfRegistration {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development by default")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORAGE_DRIVER":     "mongo",
		"SESSION_STORE":      "redis",
		"AUTH_LATENCY":       "1s",
		"DISPATCHER_WORKERS": "2",
		"MONGO_DB":           "portal",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorageDriver != DriverMongo || cfg.SessionStore != DriverRedis {
		t.Fatalf("drivers not applied: %+v", cfg)
	}
	if cfg.Auth.Latency != time.Second || cfg.Dispatcher.Workers != 2 || cfg.Mongo.Database != "portal" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadWith_UnknownDriver(t *testing.T) {
	if _, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{"STORAGE_DRIVER": "postgres"})); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
	if _, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{"SESSION_STORE": "mongo"})); err == nil {
		t.Fatal("expected error for unknown session store")
	}
}
