// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envListenAddr         = "MCP_LISTEN_ADDR"
	envLogLevel           = "MCP_LOG_LEVEL"
	envServerReadTimeout  = "MCP_SERVER_READ_TIMEOUT"
	envServerWriteTimeout = "MCP_SERVER_WRITE_TIMEOUT"
	envServerIdleTimeout  = "MCP_SERVER_IDLE_TIMEOUT"
	envGracefulShutdown   = "MCP_GRACEFUL_SHUTDOWN"
	envRequestTimeout     = "MCP_REQUEST_TIMEOUT"
	envInsecureSkipVerify = "MCP_UPSTREAM_INSECURE"

	envRefreshPeriod = "MCP_REFRESH_PERIOD"
	envEventBusCap   = "MCP_EVENT_BUS_CAPACITY"

	envBackendSourceKind   = "MCP_BACKEND_SOURCE"
	envBackendSourceTOML   = "MCP_BACKEND_SOURCE_TOML_PATH"
	envBackendSourceDSN    = "MCP_BACKEND_SOURCE_DSN"
	envBackendSourceURL    = "MCP_BACKEND_SOURCE_URL"
	envBackendSourceKey    = "MCP_BACKEND_SOURCE_API_KEY"
	envBackendSourceSecret = "MCP_BACKEND_SOURCE_API_SECRET"

	envRedisAddr    = "MCP_REDIS_ADDR"
	envRedisChannel = "MCP_REDIS_CHANNEL"

	defaultListenAddr         = "127.0.0.1:8080"
	defaultRequestTimeout     = 15 * time.Second
	defaultLogLevel           = "info"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerIdleTimeout  = 120 * time.Second
	defaultGracefulShutdown   = 10 * time.Second
	defaultRefreshPeriod      = 100 * time.Second
	defaultEventBusCapacity   = 100
	defaultRedisChannel       = "mcp-proxy:events"
)

// BackendSourceKind selects which BackendSource implementation main wires up.
type BackendSourceKind string

const (
	BackendSourceTOML     BackendSourceKind = "toml"
	BackendSourcePostgres BackendSourceKind = "postgres"
	BackendSourceHTTP     BackendSourceKind = "http"
)

// Config captures runtime settings for the proxy.
type Config struct {
	ListenAddr              string
	LogLevel                string
	RequestTimeout          time.Duration
	InsecureSkipVerify      bool
	ServerReadTimeout       time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	GracefulShutdownTimeout time.Duration

	RefreshPeriod    time.Duration
	EventBusCapacity int

	BackendSourceKind      BackendSourceKind
	BackendSourceTOMLPath  string
	BackendSourceDSN       string
	BackendSourceURL       string
	BackendSourceAPIKey    string
	BackendSourceAPISecret string

	RedisAddr    string
	RedisChannel string
}

// Load reads configuration from environment variables and validates that
// the selected backend source has the fields it needs.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:              getString(envListenAddr, defaultListenAddr),
		LogLevel:                strings.ToLower(getString(envLogLevel, defaultLogLevel)),
		RequestTimeout:          getDuration(envRequestTimeout, defaultRequestTimeout),
		InsecureSkipVerify:      getBool(envInsecureSkipVerify, false),
		ServerReadTimeout:       getDuration(envServerReadTimeout, defaultServerReadTimeout),
		ServerWriteTimeout:      getDuration(envServerWriteTimeout, defaultServerWriteTimeout),
		ServerIdleTimeout:       getDuration(envServerIdleTimeout, defaultServerIdleTimeout),
		GracefulShutdownTimeout: getDuration(envGracefulShutdown, defaultGracefulShutdown),

		RefreshPeriod:    getDuration(envRefreshPeriod, defaultRefreshPeriod),
		EventBusCapacity: getInt(envEventBusCap, defaultEventBusCapacity),

		BackendSourceKind:      BackendSourceKind(strings.ToLower(getString(envBackendSourceKind, string(BackendSourceTOML)))),
		BackendSourceTOMLPath:  getString(envBackendSourceTOML, ""),
		BackendSourceDSN:       getString(envBackendSourceDSN, ""),
		BackendSourceURL:       getString(envBackendSourceURL, ""),
		BackendSourceAPIKey:    getString(envBackendSourceKey, ""),
		BackendSourceAPISecret: getString(envBackendSourceSecret, ""),

		RedisAddr:    getString(envRedisAddr, ""),
		RedisChannel: getString(envRedisChannel, defaultRedisChannel),
	}

	if err := cfg.validateBackendSource(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validateBackendSource() error {
	switch c.BackendSourceKind {
	case BackendSourceTOML:
		if c.BackendSourceTOMLPath == "" {
			return errors.New(envBackendSourceTOML + " is required when MCP_BACKEND_SOURCE=toml")
		}
	case BackendSourcePostgres:
		if c.BackendSourceDSN == "" {
			return errors.New(envBackendSourceDSN + " is required when MCP_BACKEND_SOURCE=postgres")
		}
	case BackendSourceHTTP:
		if c.BackendSourceURL == "" {
			return errors.New(envBackendSourceURL + " is required when MCP_BACKEND_SOURCE=http")
		}
	default:
		return fmt.Errorf("unsupported %s %q", envBackendSourceKind, c.BackendSourceKind)
	}
	return nil
}

func getString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
