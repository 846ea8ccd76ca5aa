// Package config loads collector settings from the environment.
// A .env file in the working directory is honoured when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Collector holds everything the collection binary needs at runtime.
// The SerpApi key is the single fatal precondition: without it no
// network activity is attempted.
type Collector struct {
	APIKey       string
	BaseURL      string
	PageSize     int
	MaxRetries   int
	RetryBackoff time.Duration // doubled per attempt
	RequestDelay time.Duration // courtesy pacing between page fetches
	HTTPTimeout  time.Duration
	OutputPath   string
	SamplePath   string
}

// LoadCollector builds a Collector config from environment variables.
func LoadCollector() (*Collector, error) {
	// Optional, mirrors local development setups. Absence is not an error.
	_ = godotenv.Load()

	c := &Collector{
		APIKey:       os.Getenv("SERPAPI_KEY"),
		BaseURL:      getEnv("SERPAPI_BASE_URL", "https://serpapi.com/search"),
		PageSize:     getInt("COLLECT_PAGE_SIZE", 10),
		MaxRetries:   getInt("COLLECT_MAX_RETRIES", 3),
		RetryBackoff: getDuration("COLLECT_RETRY_BACKOFF", "1s"),
		RequestDelay: getDuration("COLLECT_REQUEST_DELAY", "1s"),
		HTTPTimeout:  getDuration("COLLECT_HTTP_TIMEOUT", "30s"),
		OutputPath:   getEnv("COLLECT_OUTPUT", "data/raw/google_jobs.csv"),
		SamplePath:   getEnv("COLLECT_SAMPLE_OUTPUT", "data/raw/google_jobs_sample.csv"),
	}

	if c.APIKey == "" {
		return nil, fmt.Errorf("SERPAPI_KEY is not set")
	}
	if c.PageSize <= 0 {
		return nil, fmt.Errorf("COLLECT_PAGE_SIZE must be positive")
	}
	if c.MaxRetries <= 0 {
		return nil, fmt.Errorf("COLLECT_MAX_RETRIES must be positive")
	}
	if c.RetryBackoff <= 0 {
		return nil, fmt.Errorf("COLLECT_RETRY_BACKOFF must be positive")
	}
	if c.RequestDelay < 0 {
		return nil, fmt.Errorf("COLLECT_REQUEST_DELAY cannot be negative")
	}
	if c.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("COLLECT_HTTP_TIMEOUT must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}
