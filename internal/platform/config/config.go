package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file from the current working directory and sets
// environment variables. A missing .env is reported as an error that callers
// may ignore and fall back to the process environment or defaults. Pass one or
// more paths to load specific files; with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvDuration parses the variable with time.ParseDuration ("3s", "500ms").
// A bare integer is read as milliseconds. Unset or invalid values yield fallback.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}

// Settings is the resolved runtime configuration of the scoreboard monitor.
type Settings struct {
	APIURL string
	WSURL  string

	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
	PingInterval         time.Duration
	PongWait             time.Duration
	WriteWait            time.Duration
	MaxMessageSize       int64

	Phase     string
	TokenRole string

	Port      string
	LogLevel  string
	LogFormat string
}

// FromEnv resolves Settings from the environment, applying documented defaults.
func FromEnv() Settings {
	return Settings{
		APIURL:               GetEnv("API_URL", "http://localhost:8080"),
		WSURL:                GetEnv("WS_URL", "ws://localhost:8080/ws"),
		ReconnectDelay:       GetEnvDuration("RECONNECT_DELAY", 3*time.Second),
		MaxReconnectAttempts: GetEnvInt("RECONNECT_MAX_ATTEMPTS", 0),
		PingInterval:         GetEnvDuration("WS_PING_INTERVAL", 30*time.Second),
		PongWait:             GetEnvDuration("WS_PONG_WAIT", 60*time.Second),
		WriteWait:            GetEnvDuration("WS_WRITE_WAIT", 10*time.Second),
		MaxMessageSize:       int64(GetEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		Phase:                GetEnv("PHASE", "semi"),
		TokenRole:            GetEnv("TOKEN_ROLE", ""),
		Port:                 GetEnv("PORT", "9090"),
		LogLevel:             GetEnv("LOG_LEVEL", "info"),
		LogFormat:            GetEnv("LOG_FORMAT", "json"),
	}
}
