package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Переменные окружения клиента
const (
	EnvConfig   = "DEVNEST_CONFIG"
	EnvServer   = "DEVNEST_SERVER"
	EnvDB       = "DEVNEST_DB"
	EnvTimeout  = "DEVNEST_TIMEOUT"
	EnvLogLevel = "DEVNEST_LOG_LEVEL"
)

// Переменные окружения сервера
const (
	EnvServerAddr   = "DEVNEST_SERVER_ADDR"
	EnvServerDB     = "DEVNEST_SERVER_DB"
	EnvJWTSecret    = "DEVNEST_JWT_SECRET"
	EnvTokenTTL     = "DEVNEST_TOKEN_TTL"
	EnvAuthStyle    = "DEVNEST_AUTH_STYLE"
	EnvRateLimit    = "DEVNEST_RATE_LIMIT"
	EnvServerLogLvl = "DEVNEST_SERVER_LOG_LEVEL"
)

// Client holds runtime settings for the devnest CLI.
type Client struct {
	ServerURL string
	DBPath    string
	LogLevel  string
	LogFormat string
	Timeout   time.Duration
}

// DefaultClient returns client defaults.
func DefaultClient() Client {
	return Client{
		ServerURL: "http://localhost:8080",
		DBPath:    "devnest-client.db",
		LogLevel:  "warn",
		LogFormat: "text",
		Timeout:   30 * time.Second,
	}
}

type clientFile struct {
	Server    string `toml:"server"`
	DB        string `toml:"db"`
	Timeout   string `toml:"timeout"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// LoadClient применяет defaults, затем TOML файл (если path не пустой), затем окружение.
// getenv обычно os.Getenv, в тестах подменяется.
func LoadClient(path string, getenv func(string) string) (Client, error) {
	cfg := DefaultClient()

	if path != "" {
		var raw clientFile
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Client{}, fmt.Errorf("load client config: %w", err)
		}
		if meta.IsDefined("server") {
			cfg.ServerURL = strings.TrimSpace(raw.Server)
		}
		if meta.IsDefined("db") {
			cfg.DBPath = strings.TrimSpace(raw.DB)
		}
		if meta.IsDefined("timeout") {
			d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
			if err != nil {
				return Client{}, fmt.Errorf("parse timeout: %w", err)
			}
			cfg.Timeout = d
		}
		if meta.IsDefined("log_level") {
			cfg.LogLevel = raw.LogLevel
		}
		if meta.IsDefined("log_format") {
			cfg.LogFormat = raw.LogFormat
		}
	}

	if v := getenv(EnvServer); v != "" {
		cfg.ServerURL = v
	}
	if v := getenv(EnvDB); v != "" {
		cfg.DBPath = v
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Client{}, fmt.Errorf("parse %s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// Validate проверяет итоговую конфигурацию клиента
func (c Client) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("server URL must start with http:// or https://")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Server holds runtime settings for devnest-server.
type Server struct {
	Addr              string
	DBPath            string
	JWTSecret         string
	AuthResponseStyle string
	LogLevel          string
	LogFormat         string
	TokenTTL          time.Duration
	RateWindow        time.Duration
	RateLimit         int
}

// DefaultServer returns server defaults.
func DefaultServer() Server {
	return Server{
		Addr:              ":8080",
		DBPath:            "devnest-server.db",
		JWTSecret:         "devnest-dev-secret",
		AuthResponseStyle: "nested",
		LogLevel:          "info",
		LogFormat:         "text",
		TokenTTL:          24 * time.Hour,
		RateLimit:         20,
		RateWindow:        time.Minute,
	}
}

type serverFile struct {
	Addr              string `toml:"addr"`
	DB                string `toml:"db"`
	JWTSecret         string `toml:"jwt_secret"`
	TokenTTL          string `toml:"token_ttl"`
	AuthResponseStyle string `toml:"auth_response_style"`
	RateWindow        string `toml:"rate_window"`
	LogLevel          string `toml:"log_level"`
	LogFormat         string `toml:"log_format"`
	RateLimit         int    `toml:"rate_limit"`
}

// LoadServer применяет defaults, TOML файл и окружение для сервера
func LoadServer(path string, getenv func(string) string) (Server, error) {
	cfg := DefaultServer()

	if path != "" {
		var raw serverFile
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Server{}, fmt.Errorf("load server config: %w", err)
		}
		if meta.IsDefined("addr") {
			cfg.Addr = strings.TrimSpace(raw.Addr)
		}
		if meta.IsDefined("db") {
			cfg.DBPath = strings.TrimSpace(raw.DB)
		}
		if meta.IsDefined("jwt_secret") {
			cfg.JWTSecret = raw.JWTSecret
		}
		if meta.IsDefined("token_ttl") {
			d, err := time.ParseDuration(strings.TrimSpace(raw.TokenTTL))
			if err != nil {
				return Server{}, fmt.Errorf("parse token_ttl: %w", err)
			}
			cfg.TokenTTL = d
		}
		if meta.IsDefined("auth_response_style") {
			cfg.AuthResponseStyle = strings.TrimSpace(raw.AuthResponseStyle)
		}
		if meta.IsDefined("rate_limit") {
			cfg.RateLimit = raw.RateLimit
		}
		if meta.IsDefined("rate_window") {
			d, err := time.ParseDuration(strings.TrimSpace(raw.RateWindow))
			if err != nil {
				return Server{}, fmt.Errorf("parse rate_window: %w", err)
			}
			cfg.RateWindow = d
		}
		if meta.IsDefined("log_level") {
			cfg.LogLevel = raw.LogLevel
		}
		if meta.IsDefined("log_format") {
			cfg.LogFormat = raw.LogFormat
		}
	}

	if v := getenv(EnvServerAddr); v != "" {
		cfg.Addr = v
	}
	if v := getenv(EnvServerDB); v != "" {
		cfg.DBPath = v
	}
	if v := getenv(EnvJWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := getenv(EnvTokenTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Server{}, fmt.Errorf("parse %s: %w", EnvTokenTTL, err)
		}
		cfg.TokenTTL = d
	}
	if v := getenv(EnvAuthStyle); v != "" {
		cfg.AuthResponseStyle = v
	}
	if v := getenv(EnvRateLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Server{}, fmt.Errorf("parse %s: %w", EnvRateLimit, err)
		}
		cfg.RateLimit = n
	}
	if v := getenv(EnvServerLogLvl); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// Validate проверяет итоговую конфигурацию сервера
func (c Server) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("rate limit and window must be positive")
	}
	return nil
}
