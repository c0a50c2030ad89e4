package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	APIBase          string
	Timeout          time.Duration
	FetchDelay       time.Duration
	SubmissionCount  int
	RecentLimit      int
	FetchWorkerCount int
	FetchQueueSize   int
	RedisURL         string
	CacheTTL         time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:cftracker.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		APIBase:          envOr("CF_API_BASE", "https://codeforces.com/api"),
		Timeout:          time.Duration(envIntOr("CF_TIMEOUT_SECONDS", 15)) * time.Second,
		FetchDelay:       time.Duration(envIntOr("CF_FETCH_DELAY_MS", 500)) * time.Millisecond,
		SubmissionCount:  envIntOr("CF_SUBMISSION_COUNT", 100000),
		RecentLimit:      envIntOr("RECENT_LIMIT", 10),
		FetchWorkerCount: envIntOr("FETCH_WORKER_COUNT", 2),
		FetchQueueSize:   envIntOr("FETCH_QUEUE_SIZE", 16),
		RedisURL:         os.Getenv("REDIS_URL"),
		CacheTTL:         time.Duration(envIntOr("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if u, err := url.Parse(c.APIBase); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("CF_API_BASE must be an absolute URL, got %q", c.APIBase))
	}
	if c.Timeout <= 0 {
		problems = append(problems, "CF_TIMEOUT_SECONDS must be positive")
	}
	if c.FetchDelay < 0 {
		problems = append(problems, "CF_FETCH_DELAY_MS cannot be negative")
	}
	if c.SubmissionCount < 1 {
		problems = append(problems, "CF_SUBMISSION_COUNT must be at least 1")
	}
	if c.RecentLimit < 1 || c.RecentLimit > 100 {
		problems = append(problems, fmt.Sprintf("RECENT_LIMIT must be between 1 and 100, got %d", c.RecentLimit))
	}
	if c.FetchWorkerCount < 1 {
		problems = append(problems, "FETCH_WORKER_COUNT must be at least 1")
	}
	if c.FetchQueueSize < 1 {
		problems = append(problems, "FETCH_QUEUE_SIZE must be at least 1")
	}
	if c.RedisURL != "" && c.CacheTTL <= 0 {
		problems = append(problems, "CACHE_TTL_SECONDS must be positive when REDIS_URL is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
