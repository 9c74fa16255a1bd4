package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server         ServerConfig
	Postgres       PostgresConfig
	Redis          RedisConfig
	Auth           AuthConfig
	ReactionClient ReactionClientConfig
	Cache          CacheConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

// RedisConfig - shared summary cache. Disabled when Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type AuthConfig struct {
	JWTSecret string
	AccessTTL time.Duration
}

type ReactionClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

type CacheConfig struct {
	Capacity     int
	FetchTimeout time.Duration
	Optimistic   bool
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:               getenv("PORT", "8080"),
			CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
			TTL:      getenvDuration("SUMMARY_CACHE_TTL", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			AccessTTL: getenvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		},
		ReactionClient: ReactionClientConfig{
			BaseURL: getenv("REACTION_API_URL", "http://localhost:8080"),
			Timeout: getenvDuration("REACTION_API_TIMEOUT", 15*time.Second),
			Token:   os.Getenv("REACTION_API_TOKEN"),
		},
		Cache: CacheConfig{
			Capacity:     getenvInt("REACTION_CACHE_CAPACITY", 500),
			FetchTimeout: getenvDuration("REACTION_FETCH_TIMEOUT", 10*time.Second),
			Optimistic:   getenvBool("REACTION_OPTIMISTIC", false),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

// getenvDuration accepts Go durations ("30s", "5m") or plain seconds ("30").
func getenvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
