package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string

	AgentBaseURL     string
	TokenExchangeURL string
	AdminAPIToken    string
	AuthCookieName   string

	UpstreamTimeoutSecs  int
	ExchangeTimeoutSecs  int
	ExchangeCacheTTLSecs int

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int
	RateLimitFailClosed    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		AgentBaseURL:           os.Getenv("AGENT_BASE_URL"),
		TokenExchangeURL:       os.Getenv("TOKEN_EXCHANGE_URL"),
		AdminAPIToken:          os.Getenv("ADMIN_API_TOKEN"),
		AuthCookieName:         envDefault("AUTH_COOKIE_NAME", "auth_token"),
		UpstreamTimeoutSecs:    envIntDefault("UPSTREAM_TIMEOUT_SECONDS", 30),
		ExchangeTimeoutSecs:    envIntDefault("EXCHANGE_TIMEOUT_SECONDS", 10),
		ExchangeCacheTTLSecs:   envIntDefault("EXCHANGE_CACHE_TTL_SECONDS", 0),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RateLimitFailClosed:    envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

// Validate reports startup-fatal configuration problems. A missing admin
// token is deliberately not fatal: admin routes fail with a configuration
// error at call time instead.
func (c Config) Validate() error {
	if c.AgentBaseURL == "" {
		return errors.New("AGENT_BASE_URL is required")
	}
	return nil
}

func (c Config) UpstreamTimeout() time.Duration {
	if c.UpstreamTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.UpstreamTimeoutSecs) * time.Second
}

func (c Config) ExchangeTimeout() time.Duration {
	if c.ExchangeTimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ExchangeTimeoutSecs) * time.Second
}

func (c Config) ExchangeCacheTTL() time.Duration {
	if c.ExchangeCacheTTLSecs <= 0 {
		return 0
	}
	return time.Duration(c.ExchangeCacheTTLSecs) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	if c.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
