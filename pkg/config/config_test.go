package config

import (
	"strings"
	"testing"
	"time"
)

func productionConfig() *Config {
	return &Config{
		Environment:          EnvProduction,
		LogLevel:             "info",
		SessionAuthKey:       strings.Repeat("a", 32),
		SessionEncryptionKey: strings.Repeat("b", 32),
		SFTPPassword:         "storage-box-secret",
		SFTPHostKey:          "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIOMqqnkVzrm0SdG6UOoqKLsabgH5C9okWi0dh2l9GKJl",
		LockDuration:         30 * time.Minute,
		AuthHeaderFallback:   false,
	}
}

func TestValidateForProduction_NonProductionNoop(t *testing.T) {
	cfg := &Config{Environment: EnvDevelopment, LogLevel: "debug"}
	if err := ValidateForProduction(cfg); err != nil {
		t.Fatalf("expected nil for development, got %v", err)
	}
}

func TestValidateForProduction_Valid(t *testing.T) {
	if err := ValidateForProduction(productionConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateForProduction_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short auth key", func(c *Config) { c.SessionAuthKey = "short" }, "SESSION_AUTH_KEY"},
		{"short encryption key", func(c *Config) { c.SessionEncryptionKey = "short" }, "SESSION_ENCRYPTION_KEY"},
		{"header identity fallback", func(c *Config) { c.AuthHeaderFallback = true }, "AUTH_HEADER_FALLBACK"},
		{"debug log level", func(c *Config) { c.LogLevel = "debug" }, "LOG_LEVEL"},
		{"default sftp password", func(c *Config) { c.SFTPPassword = "contractflow" }, "SFTP_PASSWORD"},
		{"missing sftp host key", func(c *Config) { c.SFTPHostKey = "" }, "SFTP_HOST_KEY"},
		{"zero lock duration", func(c *Config) { c.LockDuration = 0 }, "LOCK_DURATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := productionConfig()
			tt.mutate(cfg)
			err := ValidateForProduction(cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
