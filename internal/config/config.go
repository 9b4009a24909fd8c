package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shopdesk/backend/internal/money"
)

type Config struct {
	Port          int
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Currency      money.Settings
	LogLevel      string
	ExportTTL     time.Duration
	ImageTimeout  time.Duration
}

// Load reads the process environment, falling back to ./.env for keys that
// are not set.
func Load() (Config, error) {
	return LoadFrom(filepath.Join(".", ".env"), os.Getenv)
}

func LoadFrom(envPath string, getenv func(string) string) (Config, error) {
	values := map[string]string{}
	if _, err := os.Stat(envPath); err == nil {
		fileValues, err := loadDotEnvFile(envPath)
		if err != nil {
			return Config{}, err
		}
		values = fileValues
	} else if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat %s: %w", envPath, err)
	}
	lookup := func(key string) string {
		return firstNonEmpty(getenv(key), values[key])
	}

	cfg := Config{
		Port:         8080,
		LogLevel:     "info",
		ExportTTL:    15 * time.Minute,
		ImageTimeout: 10 * time.Second,
		Currency:     money.DefaultSettings(),
	}
	if portRaw := lookup("PORT"); portRaw != "" {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT: %q", portRaw)
		}
		cfg.Port = port
	}

	cfg.DatabaseURL = lookup("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required (environment variable or .env)")
	}

	cfg.RedisAddr = lookup("REDIS_ADDR")
	cfg.RedisPassword = lookup("REDIS_PASSWORD")
	if dbRaw := lookup("REDIS_DB"); dbRaw != "" {
		db, err := strconv.Atoi(dbRaw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("invalid REDIS_DB: %q", dbRaw)
		}
		cfg.RedisDB = db
	}

	if code := lookup("CURRENCY_CODE"); code != "" {
		cfg.Currency.Code = strings.ToUpper(code)
		cfg.Currency.Symbol = ""
	}
	if symbol := lookup("CURRENCY_SYMBOL"); symbol != "" {
		cfg.Currency.Symbol = symbol
	}
	if locale := lookup("LOCALE"); locale != "" {
		cfg.Currency.Locale = locale
	}
	if level := lookup("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	for _, d := range []struct {
		key    string
		target *time.Duration
	}{
		{"EXPORT_TTL", &cfg.ExportTTL},
		{"IMAGE_FETCH_TIMEOUT", &cfg.ImageTimeout},
	} {
		raw := lookup(d.key)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", d.key, raw)
		}
		*d.target = parsed
	}

	return cfg, nil
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}

func loadDotEnvFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found; create it from .env.example", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	values := map[string]string{}
	scanner := bufio.NewScanner(file)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keyValue := strings.SplitN(line, "=", 2)
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid .env line %d: %q", lineNo, line)
		}

		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "" {
			return nil, fmt.Errorf("invalid .env line %d: empty key", lineNo)
		}

		if strings.HasPrefix(key, "export ") {
			key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		}

		if len(value) >= 2 {
			if (value[0] == '\'' && value[len(value)-1] == '\'') ||
				(value[0] == '"' && value[len(value)-1] == '"') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return values, nil
}
