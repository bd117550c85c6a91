package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Select policy names accepted by SELECT_POLICY.
const (
	SelectPolicyLast   = "last"
	SelectPolicyByTime = "by-time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream source settings.
	RAMMBBaseURL     string
	FetchTimeout     time.Duration
	ResolveCacheSize int

	// Aggregation settings.
	RefreshInterval   time.Duration
	RunTimeout        time.Duration
	WorkerCount       int
	SelectPolicy      string
	TrackHistoryLimit int // 0 means unlimited

	// Optional Kafka feed.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	runTimeout, err := parseDuration("RUN_TIMEOUT", "2m")
	if err != nil {
		return nil, err
	}

	workerCount, err := parsePositiveInt("WORKER_COUNT", 4)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("RESOLVE_CACHE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	trackLimit, err := parseNonNegativeInt("TRACK_HISTORY_LIMIT", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RAMMBBaseURL:     sharedcfg.EnvOrDefault("RAMMB_BASE_URL", "https://rammb-data.cira.colostate.edu/tc_realtime/"),
		FetchTimeout:     fetchTimeout,
		ResolveCacheSize: cacheSize,

		RefreshInterval:   refreshInterval,
		RunTimeout:        runTimeout,
		WorkerCount:       workerCount,
		SelectPolicy:      sharedcfg.EnvOrDefault("SELECT_POLICY", SelectPolicyLast),
		TrackHistoryLimit: trackLimit,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "cyclone-features"),
	}

	if _, err := url.ParseRequestURI(cfg.RAMMBBaseURL); err != nil {
		return nil, fmt.Errorf("invalid RAMMB_BASE_URL: %w", err)
	}
	if cfg.SelectPolicy != SelectPolicyLast && cfg.SelectPolicy != SelectPolicyByTime {
		return nil, fmt.Errorf("invalid SELECT_POLICY %q (want %q or %q)", cfg.SelectPolicy, SelectPolicyLast, SelectPolicyByTime)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		for _, b := range cfg.KafkaBrokers {
			if strings.TrimSpace(b) == "" {
				return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS holds an empty broker")
			}
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

// Service-specific settings parsed in-repo; the shared helpers only cover the
// org-common keys.

func parseDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive duration", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive integer", key, s)
	}
	return n, nil
}

func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a non-negative integer", key, s)
	}
	return n, nil
}
