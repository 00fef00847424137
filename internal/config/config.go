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

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheOff    = "off"
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// DefaultRPCURLs are public Ethereum mainnet endpoints used when RPC_URLS is unset.
var DefaultRPCURLs = []string{
	"https://eth.llamarpc.com",
	"https://ethereum-rpc.publicnode.com",
	"https://cloudflare-eth.com",
}

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	RPCURLs       []string
	ENSRetries    int
	ENSRetryDelay time.Duration

	UpstreamTimeout time.Duration
	UpstreamRetries int

	EtherscanAPIKey string
	WebacyAPIKey    string
	POAPAPIKey      string
	TalentAPIKey    string
	Web3BioAPIKey   string
	TallyAPIKey     string
	SupabaseURL     string
	SupabaseAnonKey string

	CacheBackend       string
	CacheTTL           time.Duration
	CachePurgeInterval time.Duration
	RedisURL           string

	RefreshWorkerCount int
	RefreshQueueSize   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:     envOr("ADDR", ":8080"),
		DBPath:   envOr("DB_PATH", "file:web3profile.db"),
		LogLevel: envOr("LOG_LEVEL", "INFO"),

		RPCURLs:       envListOr("RPC_URLS", DefaultRPCURLs),
		ENSRetries:    envIntOr("ENS_RETRIES", 3),
		ENSRetryDelay: envDurationOr("ENS_RETRY_DELAY", 250*time.Millisecond),

		UpstreamTimeout: envDurationOr("UPSTREAM_TIMEOUT", 15*time.Second),
		UpstreamRetries: envIntOr("UPSTREAM_RETRIES", 2),

		EtherscanAPIKey: os.Getenv("ETHERSCAN_API_KEY"),
		WebacyAPIKey:    os.Getenv("WEBACY_API_KEY"),
		POAPAPIKey:      os.Getenv("POAP_API_KEY"),
		TalentAPIKey:    os.Getenv("TALENT_API_KEY"),
		Web3BioAPIKey:   os.Getenv("WEB3BIO_API_KEY"),
		TallyAPIKey:     os.Getenv("TALLY_API_KEY"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),

		CacheBackend:       strings.ToLower(envOr("CACHE_BACKEND", CacheSQLite)),
		CacheTTL:           envDurationOr("CACHE_TTL", 10*time.Minute),
		CachePurgeInterval: envDurationOr("CACHE_PURGE_INTERVAL", 30*time.Minute),
		RedisURL:           envOr("REDIS_URL", "redis://localhost:6379/0"),

		RefreshWorkerCount: envIntOr("REFRESH_WORKER_COUNT", 2),
		RefreshQueueSize:   envIntOr("REFRESH_QUEUE_SIZE", 32),
	}
}

// Validate reports the first configuration value that cannot work.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel)
	}
	if len(c.RPCURLs) == 0 {
		return fmt.Errorf("RPC_URLS must list at least one endpoint")
	}
	for _, raw := range c.RPCURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("RPC_URLS contains invalid endpoint %q", raw)
		}
	}
	if c.ENSRetries < 1 || c.ENSRetries > 10 {
		return fmt.Errorf("ENS_RETRIES must be between 1 and 10, got %d", c.ENSRetries)
	}
	if c.UpstreamRetries < 1 || c.UpstreamRetries > 5 {
		return fmt.Errorf("UPSTREAM_RETRIES must be between 1 and 5, got %d", c.UpstreamRetries)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	switch c.CacheBackend {
	case CacheOff, CacheMemory, CacheSQLite:
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of off, memory, sqlite, redis, got %q", c.CacheBackend)
	}
	if c.CacheBackend != CacheOff && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.RefreshWorkerCount < 1 {
		return fmt.Errorf("REFRESH_WORKER_COUNT must be at least 1")
	}
	if c.RefreshQueueSize < 1 {
		return fmt.Errorf("REFRESH_QUEUE_SIZE must be at least 1")
	}
	return nil
}

// Secrets returns the configured credentials that must never be logged.
func (c Config) Secrets() []string {
	var out []string
	for _, s := range []string{
		c.EtherscanAPIKey, c.WebacyAPIKey, c.POAPAPIKey, c.TalentAPIKey,
		c.Web3BioAPIKey, c.TallyAPIKey, c.SupabaseAnonKey,
	} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
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

// envDurationOr accepts Go durations ("15s") or a bare number of seconds.
func envDurationOr(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	return def
}

func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}
