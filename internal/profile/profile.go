package profile

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Config is the path of an optional cache config file
	Config string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your Educanexo360 instance.
	InstanceURL string

	// Cache tuning
	CacheMaxEntries           int  // EDUCANEXO_CACHE_MAX_ENTRIES (default: 1000)
	CacheDefaultTTLSeconds    int  // EDUCANEXO_CACHE_DEFAULT_TTL_SECONDS (default: 300)
	CacheSweepIntervalSeconds int  // EDUCANEXO_CACHE_SWEEP_INTERVAL_SECONDS (default: 60)
	CacheDisableCoalescing    bool // EDUCANEXO_CACHE_DISABLE_COALESCING (default: false)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvOrDefault returns the environment variable parsed as an int, or
// the default when the variable is unset or not a number.
func getIntEnvOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("ignoring non-numeric environment variable", slog.String("key", key), slog.String("value", value))
		return defaultValue
	}
	return n
}

// FromEnv loads the cache tuning knobs from EDUCANEXO_* environment
// variables. Flags already parsed into the profile keep precedence for the
// server fields; only the cache knobs live here.
func (p *Profile) FromEnv() {
	p.CacheMaxEntries = getIntEnvOrDefault("EDUCANEXO_CACHE_MAX_ENTRIES", 1000)
	p.CacheDefaultTTLSeconds = getIntEnvOrDefault("EDUCANEXO_CACHE_DEFAULT_TTL_SECONDS", 300)
	p.CacheSweepIntervalSeconds = getIntEnvOrDefault("EDUCANEXO_CACHE_SWEEP_INTERVAL_SECONDS", 60)
	p.CacheDisableCoalescing = getEnvOrDefault("EDUCANEXO_CACHE_DISABLE_COALESCING", "false") == "true"
	if p.InstanceURL == "" {
		p.InstanceURL = os.Getenv("EDUCANEXO_INSTANCE_URL")
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	// Negative tuning values fall back to the cache package defaults.
	if p.CacheMaxEntries < 0 {
		p.CacheMaxEntries = 0
	}
	if p.CacheDefaultTTLSeconds < 0 {
		p.CacheDefaultTTLSeconds = 0
	}
	if p.CacheSweepIntervalSeconds < 0 {
		p.CacheSweepIntervalSeconds = 0
	}

	return nil
}
