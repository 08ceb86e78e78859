// Package config loads the ambient settings for the health-checking daemon
// from the environment, using getEnv/getIntEnv helpers. Parsing of the
// per-peer probe directives themselves (what gets sent, what body is
// expected) is explicitly not the core health-check package's job; this
// package plays the role of whatever enclosing proxy config layer would
// normally hand the core a slice of already-parsed PeerConfig values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kflynn/healthcheckd/internal/healthcheck"
)

// Config is the full set of settings healthcheckd needs to start.
type Config struct {
	// Workers is the number of worker goroutines started, each sharing the
	// same Registry. It is the Go-native analogue of nginx's worker_processes.
	Workers int

	// StatusAddr is the listen address for the JSON/HTML status endpoint.
	StatusAddr string

	// MetricsAddr is the listen address for the prometheus /metrics endpoint.
	MetricsAddr string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string

	// Peers is the static set of upstream peers to probe. In a real
	// deployment these would come from whatever config format the
	// surrounding proxy uses; here they come from PEERS.
	Peers []healthcheck.PeerConfig
}

// LoadConfig reads every setting from the environment, applying a
// defaults-with-override pattern.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Workers:     getIntEnv("WORKERS", 2),
		StatusAddr:  getEnv("STATUS_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	peersStr := getEnv("PEERS", "")
	if peersStr != "" {
		peers, err := parsePeers(peersStr)
		if err != nil {
			return nil, err
		}
		cfg.Peers = peers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parsePeers parses the PEERS env var, a semicolon-separated list of
// comma-separated fields: upstream,addr,delay,timeout,failcount[,expected].
// Example:
//
//	PEERS="web,10.0.0.4:80,5s,1s,3,OK;web,10.0.0.5:80,5s,1s,3,OK"
func parsePeers(raw string) ([]healthcheck.PeerConfig, error) {
	var out []healthcheck.PeerConfig
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ",")
		if len(fields) < 5 {
			return nil, fmt.Errorf("malformed PEERS entry %q: need at least 5 fields", entry)
		}

		delay, err := time.ParseDuration(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("malformed PEERS entry %q: bad delay: %w", entry, err)
		}
		timeout, err := time.ParseDuration(strings.TrimSpace(fields[3]))
		if err != nil {
			return nil, fmt.Errorf("malformed PEERS entry %q: bad timeout: %w", entry, err)
		}
		failcount, err := strconv.Atoi(strings.TrimSpace(fields[4]))
		if err != nil {
			return nil, fmt.Errorf("malformed PEERS entry %q: bad failcount: %w", entry, err)
		}

		var expected []byte
		if len(fields) >= 6 && strings.TrimSpace(fields[5]) != "" {
			expected = []byte(strings.TrimSpace(fields[5]))
		}

		addr := strings.TrimSpace(fields[1])
		out = append(out, healthcheck.PeerConfig{
			Upstream: strings.TrimSpace(fields[0]),
			Addr:     addr,
			Enabled:  true,
			Delay:    delay,
			Timeout:  timeout,
			Failcount: int32(failcount),
			Send: healthcheck.BuildSendPayload(
				"GET /health HTTP/1.0",
				"Host: "+addr,
				"Connection: close",
			),
			Expected:   expected,
			BufferSize: 4096,
		})
	}
	return out, nil
}

// Validate rejects settings that would make the daemon meaningless to run.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.StatusAddr == "" {
		return errors.New("STATUS_ADDR cannot be empty")
	}
	if c.MetricsAddr == "" {
		return errors.New("METRICS_ADDR cannot be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug/info/warn/error, got %q", c.LogLevel)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
