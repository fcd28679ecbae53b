package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds environment-driven configuration for both the API server and
// the command line client.
type Config struct {
	Port      string
	PublicURL string
	LogLevel  string

	Database DatabaseConfig
	Auth     AuthConfig
	Client   ClientConfig
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxIdle  time.Duration
	PingTimeout  time.Duration
}

type AuthConfig struct {
	Secret    string
	ExpiresIn time.Duration
	Username  string
	Password  string
	UserID    int
}

type ClientConfig struct {
	APIURL      string
	SessionFile string
	Timeout     time.Duration
}

const defaultSecret = "your-secret-key-change-in-production"

// Load reads configuration from environment variables. Call godotenv.Load
// beforehand to pick up a local .env file.
func Load() (Config, error) {
	expires, err := ParseExpiry(getEnv("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	port := getEnv("PORT", "3000")
	cfg := Config{
		Port:      port,
		PublicURL: getEnv("PUBLIC_URL", "http://localhost:"+port),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URL:          databaseURL(),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxIdle:  time.Duration(getEnvInt("DB_IDLE_TIMEOUT_SEC", 30)) * time.Second,
			PingTimeout:  time.Duration(getEnvInt("DB_CONNECT_TIMEOUT_SEC", 2)) * time.Second,
		},
		Auth: AuthConfig{
			Secret:    getEnv("JWT_SECRET", defaultSecret),
			ExpiresIn: expires,
			Username:  getEnv("AUTH_USERNAME", "user"),
			Password:  getEnv("AUTH_PASSWORD", "user123"),
			UserID:    getEnvInt("AUTH_USER_ID", 1),
		},
		Client: ClientConfig{
			APIURL:      getEnv("API_URL", "http://localhost:"+port),
			SessionFile: getEnv("SESSION_FILE", defaultSessionFile()),
			Timeout:     time.Duration(getEnvInt("API_TIMEOUT_SEC", 15)) * time.Second,
		},
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// InsecureSecret reports whether the JWT secret was left at its default.
func (c Config) InsecureSecret() bool {
	return c.Auth.Secret == defaultSecret
}

// ParseExpiry accepts Go durations ("24h", "90m") and whole days ("7d").
func ParseExpiry(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the DB_*
// pieces.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("DB_USER", "postgres"), getEnv("DB_PASSWORD", "postgres")),
		Host:     net.JoinHostPort(getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "5432")),
		Path:     "/" + getEnv("DB_NAME", "fakturera"),
		RawQuery: "sslmode=" + getEnv("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".fakturera-session.json"
	}
	return dir + "/fakturera/session.json"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
