package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "# comment\nexport DATABASE_URL='postgres://app@localhost/shop'\nPORT=9090\nCURRENCY_CODE=inr\nCURRENCY_SYMBOL=\"₹\"\nEXPORT_TTL=5m\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path, envFrom(nil))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DatabaseURL != "postgres://app@localhost/shop" || cfg.Port != 9090 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Currency.Code != "INR" || cfg.Currency.Symbol != "₹" || cfg.Currency.Locale != "en-US" {
		t.Fatalf("currency = %+v", cfg.Currency)
	}
	if cfg.ExportTTL != 5*time.Minute {
		t.Fatalf("export ttl = %v", cfg.ExportTTL)
	}
}

func TestEnvironmentWinsOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DATABASE_URL=from-file\nPORT=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path, envFrom(map[string]string{"DATABASE_URL": "from-env", "LOG_LEVEL": "debug"}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DatabaseURL != "from-env" || cfg.Port != 1 || cfg.LogLevel != "debug" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ".env")
	cases := []map[string]string{
		{},
		{"DATABASE_URL": "x", "PORT": "abc"},
		{"DATABASE_URL": "x", "REDIS_DB": "-1"},
		{"DATABASE_URL": "x", "EXPORT_TTL": "soon"},
	}
	for _, env := range cases {
		if _, err := LoadFrom(missing, envFrom(env)); err == nil {
			t.Errorf("expected error for %v", env)
		}
	}
}

func TestInvalidDotEnvLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("NOEQUALS\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path, envFrom(nil)); err == nil {
		t.Fatalf("expected parse error")
	}
}
