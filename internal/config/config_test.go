package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.WebSocket.PongWait != 60*time.Second {
		t.Errorf("WebSocket.PongWait = %v, want 60s", cfg.WebSocket.PongWait)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Kafka.Topic != "chat-activity" {
		t.Errorf("Kafka.Topic = %q, want chat-activity", cfg.Kafka.Topic)
	}
	if cfg.Redis.KeyTTL != 30*time.Second {
		t.Errorf("Redis.KeyTTL = %v, want 30s", cfg.Redis.KeyTTL)
	}
	if cfg.Log.ServiceName != "relay-service" {
		t.Errorf("Log.ServiceName = %q, want relay-service", cfg.Log.ServiceName)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "override-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "override-secret" {
		t.Errorf("Auth.JWTSecret = %q, want override-secret", cfg.Auth.JWTSecret)
	}
}
