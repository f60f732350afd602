package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config contains runtime configuration required by the service.
type Config struct {
	HTTPAddr    string
	StoreDriver string
	DBURL       string

	// IngestConcurrency bounds the in-flight store writes of one batch.
	IngestConcurrency int
	FeedbackListLimit int
	ReadTimeout       time.Duration

	// DashboardKeys maps apiKey -> viewer name. Empty leaves the HTML pages open.
	DashboardKeys map[string]string

	LogLevel  string
	LogFormat string
}

// Load reads values from environment variables, seeded from .env when present.
// DASHBOARD_KEYS format: "name1:key1,name2:key2"
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DBURL:             getEnv("DB_URL", ""),
		IngestConcurrency: getIntEnv("INGEST_CONCURRENCY", 8),
		FeedbackListLimit: getIntEnv("FEEDBACK_LIST_LIMIT", 100),
		ReadTimeout:       getDuration("READ_TIMEOUT", 10*time.Second),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DBURL == "" {
			return Config{}, errors.New("DB_URL required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.IngestConcurrency < 1 {
		return Config{}, errors.New("INGEST_CONCURRENCY must be >= 1")
	}

	keys, err := parseKeys(getEnv("DASHBOARD_KEYS", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.DashboardKeys = keys

	return cfg, nil
}

func parseKeys(raw string) (map[string]string, error) {
	keys := map[string]string{}
	if raw == "" {
		return keys, nil
	}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`DASHBOARD_KEYS must be "name:key,name:key"`)
		}
		name := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if name == "" || key == "" {
			return nil, errors.New(`DASHBOARD_KEYS must be "name:key,name:key"`)
		}
		keys[key] = name
	}
	return keys, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
