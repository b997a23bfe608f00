package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigSuccess(t *testing.T) {
	original := AppConfig
	t.Cleanup(func() {
		AppConfig = original
	})

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	content := `{
		"database": {
			"host": "localhost",
			"user": "test-user",
			"password": "test-pass",
			"dbname": "testdb",
			"port": 5433,
			"sslmode": "disable"
		},
		"server": {
			"port": 9090,
			"timezone_offset_hours": 9
		},
		"auth": {
			"jwt_secret": "test-secret"
		},
		"slack": {
			"webhook_url": "https://hooks.slack.com/services/T/B/X"
		}
	}`

	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}

	if err := LoadConfig(configPath); err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if AppConfig.Database.Host != "localhost" {
		t.Errorf("expected host to be localhost, got %q", AppConfig.Database.Host)
	}
	if AppConfig.Database.Port != 5433 {
		t.Errorf("expected port to be 5433, got %d", AppConfig.Database.Port)
	}
	if AppConfig.Server.Port != 9090 {
		t.Errorf("expected server port to be 9090, got %d", AppConfig.Server.Port)
	}
	if AppConfig.Server.TimezoneOffsetHours != 9 {
		t.Errorf("expected offset 9, got %d", AppConfig.Server.TimezoneOffsetHours)
	}
	if AppConfig.Auth.JWTSecret != "test-secret" {
		t.Errorf("expected jwt secret to be test-secret, got %q", AppConfig.Auth.JWTSecret)
	}
	if AppConfig.Auth.TokenTTLHours != 24*14 {
		t.Errorf("expected default token TTL, got %d", AppConfig.Auth.TokenTTLHours)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	original := AppConfig
	t.Cleanup(func() {
		AppConfig = original
	})

	if err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error when loading a missing config file")
	}
}

func TestLoadConfigDefaultPort(t *testing.T) {
	original := AppConfig
	t.Cleanup(func() {
		AppConfig = original
	})

	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}
	if err := LoadConfig(configPath); err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if AppConfig.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", AppConfig.Server.Port)
	}
}
