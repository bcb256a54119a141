// Package scoresocket keeps one live WebSocket to the score feed, reconnecting
// after every drop, and publishes decoded snapshots into the score store.
package scoresocket

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hoops-broadcast/internal/platform/logger"
	"hoops-broadcast/internal/platform/metrics"
	"hoops-broadcast/internal/scores"
	"hoops-broadcast/internal/state"
)

// ConnectionErrorMessage is written to the connection store on transport errors.
const ConnectionErrorMessage = "WebSocket connection error"

// Client owns at most one socket and at most one pending reconnect timer.
//
// Status writes to the connection store and snapshot writes to the score
// store happen while the client lock is held, so subscribers of either must
// not call Connect or Disconnect synchronously.
type Client struct {
	cfg       Config
	stores    *state.Stores
	dialer    *websocket.Dialer
	log       *slog.Logger
	metrics   *metrics.Metrics
	onMessage func(state.ScoreData)

	mu       sync.Mutex
	current  *Socket
	timer    *time.Timer
	timerGen uint64
	attempts int
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// WithMetrics enables socket counters. Metrics may be nil.
func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.metrics = m } }

// WithOnMessage registers an observer called after each snapshot is stored.
func WithOnMessage(fn func(state.ScoreData)) Option { return func(c *Client) { c.onMessage = fn } }

// WithDialer replaces the default dialer.
func WithDialer(d *websocket.Dialer) Option { return func(c *Client) { c.dialer = d } }

// New builds an idle client. Nothing is dialed until Connect.
func New(cfg Config, stores *state.Stores, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	c := &Client{cfg: cfg, stores: stores}
	for _, o := range opts {
		o(c)
	}
	if c.dialer == nil {
		c.dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		}
	}
	c.log = logger.Component(c.log, "websocket").With(slog.String("url", cfg.URL))
	return c
}

// Connect starts a connection attempt and returns its handle without
// blocking. If the current socket is open or still dialing, that socket is
// returned and nothing changes.
func (c *Client) Connect() *Socket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() *Socket {
	if s := c.current; s != nil && s.live() {
		return s
	}
	s := newSocket(c)
	c.current = s
	c.setStatusLocked(state.StatusConnecting)
	c.metrics.IncConnectAttempts()
	c.log.Debug("connecting", slog.String("socket", s.id))
	go s.run()
	return s
}

// Disconnect closes the live socket, cancels any pending reconnect and clears
// the handle. Events still in flight from the closed socket are ignored, so
// no reconnect follows. A later Connect starts a fresh socket.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.attempts = 0
	s := c.current
	c.current = nil
	if s != nil {
		s.teardown(c.cfg.WriteWait)
		c.log.Info("disconnected by caller", slog.String("socket", s.id))
	}
	if c.stores.Connection.Get().WebSocket != state.StatusDisconnected {
		c.setStatusLocked(state.StatusDisconnected)
	}
}

// Close is Disconnect, for use with defer and io.Closer.
func (c *Client) Close() error {
	c.Disconnect()
	return nil
}

// Current returns the socket handle, or nil after Disconnect.
func (c *Client) Current() *Socket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// ReconnectPending reports whether a reconnect timer is armed.
func (c *Client) ReconnectPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

func (c *Client) handleOpen(s *Socket, conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != s || s.closed {
		return false
	}
	s.conn = conn
	s.open = true
	c.attempts = 0
	c.stopTimerLocked()
	c.setStatusLocked(state.StatusConnected)
	c.log.Info("connected", slog.String("socket", s.id))
	return true
}

// handleError records a failed dial or handshake. It never touches the
// reconnect schedule; only handleClose does.
func (c *Client) handleError(s *Socket, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != s || s.closed {
		return
	}
	c.log.Error("transport error", slog.String("socket", s.id), slog.String("error", err.Error()))
	c.stores.Connection.Update(func(cs state.ConnectionState) state.ConnectionState {
		return cs.WithError(ConnectionErrorMessage)
	})
	c.metrics.SetChannelStatus(metrics.ChannelWebSocket, string(state.StatusError))
}

func (c *Client) handleClose(s *Socket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != s || s.closed {
		return
	}
	s.closed = true
	s.open = false
	c.setStatusLocked(state.StatusDisconnected)

	if max := c.cfg.MaxReconnectAttempts; max > 0 && c.attempts >= max {
		c.log.Warn("reconnect attempts exhausted", slog.Int("attempts", c.attempts))
		return
	}
	c.attempts++
	c.stopTimerLocked()
	c.timerGen++
	gen := c.timerGen
	c.timer = time.AfterFunc(c.cfg.ReconnectDelay, func() { c.fireReconnect(gen) })
	c.metrics.IncReconnectsScheduled()
	c.log.Info("socket closed, reconnect scheduled",
		slog.String("socket", s.id),
		slog.Duration("delay", c.cfg.ReconnectDelay),
		slog.Int("attempt", c.attempts))
}

func (c *Client) fireReconnect(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil || c.timerGen != gen {
		return
	}
	c.timer = nil
	c.log.Info("attempting to reconnect")
	c.connectLocked()
}

func (c *Client) handleFrame(s *Socket, data []byte) {
	if !c.isCurrent(s) {
		return
	}

	d, err := scores.Decode(data)
	if err != nil {
		c.metrics.IncMalformedMessages()
		c.log.Warn("dropping score message", slog.String("error", err.Error()), slog.Int("bytes", len(data)))
		return
	}
	for _, issue := range scores.Check(d) {
		c.log.Warn("score snapshot issue", slog.String("phase", string(d.Phase)), slog.String("issue", issue.String()))
	}

	if !c.applyScores(s, d) {
		return
	}
	c.metrics.IncScoreMessages()
	c.notify(d)
}

// applyScores writes d unless s was torn down while the frame was decoded.
func (c *Client) applyScores(s *Socket, d state.ScoreData) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != s || s.closed {
		return false
	}
	c.stores.Scores.Set(d)
	return true
}

func (c *Client) notify(d state.ScoreData) {
	if c.onMessage == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("score observer panicked", slog.Any("panic", r))
		}
	}()
	c.onMessage(d)
}

func (c *Client) isCurrent(s *Socket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current == s && !s.closed
}

func (c *Client) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) setStatusLocked(st state.Status) {
	c.stores.Connection.Update(func(cs state.ConnectionState) state.ConnectionState {
		return cs.WithWebSocket(st)
	})
	c.metrics.SetChannelStatus(metrics.ChannelWebSocket, string(st))
}

// isCleanClose reports whether err is the peer's close frame with a code
// other than abnormal closure.
func isCleanClose(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code != websocket.CloseAbnormalClosure
	}
	return false
}

func describe(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("timeout: %w", err)
	}
	return err
}
