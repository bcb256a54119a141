package scoresocket

import "time"

// DefaultReconnectDelay is the fixed wait between a close and the next dial.
const DefaultReconnectDelay = 3 * time.Second

// Config tunes the score socket. Zero durations fall back to the defaults
// applied by withDefaults.
type Config struct {
	URL string

	ReconnectDelay time.Duration
	// MaxReconnectAttempts caps consecutive reconnects without a successful
	// open. Zero means retry forever.
	MaxReconnectAttempts int

	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
	MaxMessageSize   int64
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = "ws://localhost:8080/ws"
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
		c.PingInterval = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 65536
	}
	return c
}
