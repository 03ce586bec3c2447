package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no stray .env
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreFile {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.StoreKey != "items" {
		t.Errorf("StoreKey = %q", cfg.StoreKey)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.HTTPAddr != "localhost:8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Errorf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
}

func TestLoad_Env(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE", "sqlite")
	t.Setenv("DATABASE_URL", "/tmp/shop.db")
	t.Setenv("STORE_KEY", "groceries")
	t.Setenv("THEME", "mono")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.DatabaseURL != "/tmp/shop.db" || cfg.StoreKey != "groceries" || cfg.Theme != "mono" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(".env", []byte("STORE_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("STORE_KEY") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreKey != "from-dotenv" {
		t.Fatalf("StoreKey = %q", cfg.StoreKey)
	}
}

func TestLoad_BadEnum(t *testing.T) {
	tests := []struct {
		name, key, value, wantErr string
	}{
		{"store", "STORE", "floppy", "unknown store"},
		{"theme", "THEME", "sparkly", "unknown theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"file ok", Config{Store: StoreFile, StoreKey: "items", Theme: "classic"}, ""},
		{"postgres needs dsn", Config{Store: StorePostgres, StoreKey: "items", Theme: "classic"}, "DATABASE_URL"},
		{"redis needs url", Config{Store: StoreRedis, StoreKey: "items", Theme: "classic"}, "REDIS_URL"},
		{"empty key", Config{Store: StoreMemory, Theme: "classic"}, "STORE_KEY"},
		{"unknown store", Config{Store: "bogus", StoreKey: "items", Theme: "classic"}, "unknown store"},
		{"unknown theme", Config{Store: StoreFile, StoreKey: "items", Theme: "sparkly"}, "unknown theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestString_HidesSecrets(t *testing.T) {
	cfg := Config{Store: StorePostgres, StoreKey: "items", DatabaseURL: "postgres://u:secret@db/shop", APIToken: "tok-123"}
	out := cfg.String()
	if strings.Contains(out, "secret") || strings.Contains(out, "tok-123") {
		t.Fatalf("secrets leaked:\n%s", out)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
