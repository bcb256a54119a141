package scoresocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Socket is the handle of one connection attempt. Its fields other than id,
// ctx and done are guarded by the owning client's lock.
type Socket struct {
	id     string
	client *Client
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	conn   *websocket.Conn
	open   bool
	closed bool
}

func newSocket(c *Client) *Socket {
	ctx, cancel := context.WithCancel(context.Background())
	return &Socket{
		id:     uuid.NewString(),
		client: c,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID identifies the socket in log lines.
func (s *Socket) ID() string { return s.id }

// Open reports whether the socket completed its handshake and has not closed.
func (s *Socket) Open() bool {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	return s.open && !s.closed
}

// Done is closed once the socket has stopped reading.
func (s *Socket) Done() <-chan struct{} { return s.done }

// live reports whether the socket is dialing or open. Caller holds client.mu.
func (s *Socket) live() bool { return !s.closed }

// teardown closes the socket on behalf of Disconnect. Caller holds client.mu.
func (s *Socket) teardown(writeWait time.Duration) {
	s.closed = true
	s.open = false
	s.cancel()
	if s.conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = s.conn.Close()
	}
}

func (s *Socket) run() {
	defer close(s.done)
	defer s.cancel()
	c := s.client

	conn, _, err := c.dialer.DialContext(s.ctx, c.cfg.URL, nil)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		c.handleError(s, describe(err))
		c.handleClose(s)
		return
	}
	if !c.handleOpen(s, conn) {
		conn.Close()
		return
	}

	go s.keepalive(conn)
	s.readLoop(conn)
}

func (s *Socket) readLoop(conn *websocket.Conn) {
	c := s.client
	defer conn.Close()

	conn.SetReadLimit(c.cfg.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// A lost connection is a close, not a transport error.
			level := slog.LevelDebug
			if !isCleanClose(err) && s.ctx.Err() == nil {
				level = slog.LevelWarn
			}
			c.log.Log(s.ctx, level, "socket closed by peer or network",
				slog.String("socket", s.id),
				slog.String("reason", describe(err).Error()))
			c.handleClose(s)
			return
		}
		conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		c.handleFrame(s, data)
	}
}

// keepalive sends control pings only; the score feed never receives
// application frames from this client.
func (s *Socket) keepalive(conn *websocket.Conn) {
	c := s.client
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
		}
	}
}
