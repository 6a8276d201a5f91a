// Package stream implements the reconnecting streaming session client for
// the hosted transcription service. One Client owns at most one live
// transport; inbound tagged JSON events are normalized and dispatched to
// registered handlers, outbound control messages and raw audio frames are
// best-effort sends that are dropped while the transport is not open.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scribewire/internal/domain"
)

// ErrConnectionFailed reports a connect attempt that failed before the
// transport became ready. It is the only error surfaced directly to a
// caller; everything after a successful connect flows through status
// notifications instead.
var ErrConnectionFailed = errors.New("connection failed")

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = time.Second
)

// Conn is the minimal transport surface the client drives.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DialFunc opens a transport to the given URL.
type DialFunc func(ctx context.Context, url string) (Conn, error)

func defaultDial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Config controls client behavior.
type Config struct {
	// BaseURL is the http(s) origin of the transcription service; the
	// session path and ws(s) scheme are derived from it.
	BaseURL string
	// MaxAttempts bounds consecutive reconnect attempts after an abnormal
	// closure. Zero means the default of 5.
	MaxAttempts int
	// BaseDelay is the first reconnect delay; it doubles per attempt.
	// Zero means the default of 1s.
	BaseDelay time.Duration
	// Keepalive is the interval between ping commands while connected.
	// Zero disables keepalive.
	Keepalive time.Duration
	// Dial overrides the transport dialer. Nil means gorilla/websocket.
	Dial DialFunc
	// Logger receives dropped-message and reconnect diagnostics.
	Logger *slog.Logger
}

// Client manages one logical streaming session.
type Client struct {
	baseURL     string
	maxAttempts int
	baseDelay   time.Duration
	keepalive   time.Duration
	dial        DialFunc
	log         *slog.Logger

	handlerMu sync.RWMutex
	handlers  map[domain.EventType]func(domain.Event)
	statusFn  func(domain.ConnStatus)

	// mu guards the session state; writeMu serializes transport writes.
	mu         sync.Mutex
	writeMu    sync.Mutex
	conn       Conn
	topic      string
	status     domain.ConnStatus
	connecting bool
	attempts   int
	retry      *time.Timer
	gen        int
}

// NewClient creates a disconnected client.
func NewClient(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Dial == nil {
		cfg.Dial = defaultDial
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		keepalive:   cfg.Keepalive,
		dial:        cfg.Dial,
		log:         cfg.Logger,
		handlers:    make(map[domain.EventType]func(domain.Event)),
		status:      domain.StatusDisconnected,
	}
}

// On registers the handler for an event type. The last registration wins;
// a nil handler unregisters. The current handler is looked up at delivery
// time, so registration takes effect for the next event.
func (c *Client) On(t domain.EventType, h func(domain.Event)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	if h == nil {
		delete(c.handlers, t)
		return
	}
	c.handlers[t] = h
}

// OnStatusChange registers the status notification handler.
func (c *Client) OnStatusChange(h func(domain.ConnStatus)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.statusFn = h
}

// Status returns the current connection status.
func (c *Client) Status() domain.ConnStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connect opens a session for the given topic. It is a no-op while a
// connect is already in flight or when already connected to the topic;
// connecting to a different topic tears the existing transport down
// first. It returns once the transport is ready, or an
// ErrConnectionFailed wrapper when the transport fails before becoming
// ready. A Disconnect issued while the dial is in flight wins: the late
// transport is closed and discarded.
func (c *Client) Connect(ctx context.Context, topic string) error {
	c.mu.Lock()
	if c.connecting || (c.conn != nil && c.topic == topic) {
		c.mu.Unlock()
		return nil
	}
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	old := c.conn
	if old != nil {
		c.gen++
	}
	c.conn = nil
	c.connecting = true
	c.topic = topic
	gen := c.gen
	c.mu.Unlock()

	if old != nil {
		c.writeMu.Lock()
		_ = old.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		_ = old.Close()
	}

	c.setStatus(domain.StatusConnecting)

	conn, err := c.dial(ctx, SessionURL(c.baseURL, topic))

	c.mu.Lock()
	c.connecting = false
	if gen != c.gen {
		// Disconnect raced the dial; drop whatever we got.
		c.mu.Unlock()
		if err == nil {
			_ = conn.Close()
		}
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		c.setStatus(domain.StatusError)
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	c.gen++
	gen = c.gen
	c.conn = conn
	c.attempts = 0
	c.mu.Unlock()

	c.setStatus(domain.StatusConnected)
	go c.readLoop(conn, gen)
	if c.keepalive > 0 {
		go c.keepaliveLoop(gen)
	}
	return nil
}

// Disconnect forces a normal closure, cancels any pending reconnect and
// clears the transport. Calling it while already disconnected is a no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	pending := c.retry != nil
	if pending {
		c.retry.Stop()
		c.retry = nil
	}
	conn := c.conn
	c.conn = nil
	idle := conn == nil && !c.connecting && !pending && c.status == domain.StatusDisconnected
	c.connecting = false
	c.mu.Unlock()

	if idle {
		return
	}
	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		_ = conn.Close()
	}
	c.setStatus(domain.StatusDisconnected)
}

// ChangeTopic switches the session to a new topic. Already being connected
// to the topic is a no-op; otherwise the old transport is fully torn down
// before the new one is requested.
func (c *Client) ChangeTopic(ctx context.Context, topic string) error {
	c.mu.Lock()
	if c.conn != nil && c.topic == topic {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.Disconnect()
	return c.Connect(ctx, topic)
}

func (c *Client) readLoop(conn Conn, gen int) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, gen, err)
			return
		}
		c.dispatch(payload)
	}
}

func (c *Client) handleClose(conn Conn, gen int, err error) {
	c.mu.Lock()
	if gen != c.gen {
		// Disconnect or a topic change already superseded this transport.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	normal := websocket.IsCloseError(err, websocket.CloseNormalClosure)
	attempt := 0
	if !normal && c.attempts < c.maxAttempts {
		c.attempts++
		attempt = c.attempts
	}
	topic := c.topic
	c.mu.Unlock()
	_ = conn.Close()

	c.setStatus(domain.StatusDisconnected)

	if normal {
		return
	}
	if attempt == 0 {
		c.log.Warn("reconnect budget exhausted", "topic", topic, "maxAttempts", c.maxAttempts)
		return
	}

	delay := c.baseDelay << (attempt - 1)
	c.log.Info("connection lost, reconnecting", "topic", topic, "attempt", attempt, "delay", delay, "error", err)
	c.mu.Lock()
	if gen == c.gen && c.conn == nil {
		c.retry = time.AfterFunc(delay, func() { c.reconnect(topic, gen) })
	}
	c.mu.Unlock()
}

func (c *Client) reconnect(topic string, gen int) {
	c.mu.Lock()
	if gen != c.gen || c.conn != nil || c.connecting {
		c.mu.Unlock()
		return
	}
	c.connecting = true
	c.retry = nil
	c.mu.Unlock()

	c.setStatus(domain.StatusConnecting)

	conn, err := c.dial(context.Background(), SessionURL(c.baseURL, topic))

	c.mu.Lock()
	c.connecting = false
	if gen != c.gen {
		// Disconnect raced the dial; drop whatever we got.
		c.mu.Unlock()
		if err == nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		attempt := 0
		if c.attempts < c.maxAttempts {
			c.attempts++
			attempt = c.attempts
		}
		c.mu.Unlock()

		c.setStatus(domain.StatusDisconnected)
		if attempt == 0 {
			c.log.Warn("reconnect budget exhausted", "topic", topic, "maxAttempts", c.maxAttempts)
			return
		}
		delay := c.baseDelay << (attempt - 1)
		c.log.Info("reconnect failed, retrying", "topic", topic, "attempt", attempt, "delay", delay, "error", err)
		c.mu.Lock()
		if gen == c.gen && c.conn == nil && !c.connecting {
			c.retry = time.AfterFunc(delay, func() { c.reconnect(topic, gen) })
		}
		c.mu.Unlock()
		return
	}

	c.gen++
	next := c.gen
	c.conn = conn
	c.attempts = 0
	c.mu.Unlock()

	c.setStatus(domain.StatusConnected)
	go c.readLoop(conn, next)
	if c.keepalive > 0 {
		go c.keepaliveLoop(next)
	}
}

// keepaliveLoop pings the service until the transport it was started for
// is gone.
func (c *Client) keepaliveLoop(gen int) {
	ticker := time.NewTicker(c.keepalive)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		stale := gen != c.gen || c.conn == nil
		c.mu.Unlock()
		if stale {
			return
		}
		c.Ping()
	}
}

func (c *Client) setStatus(s domain.ConnStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()

	c.handlerMu.RLock()
	fn := c.statusFn
	c.handlerMu.RUnlock()
	if fn != nil {
		fn(s)
	}
}

func (c *Client) dispatch(payload []byte) {
	var msg wireEvent
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.log.Warn("dropping malformed message", "error", err)
		return
	}
	event, ok := normalize(msg, payload)
	if !ok {
		c.log.Warn("dropping unrecognized event", "type", msg.Type)
		return
	}

	c.handlerMu.RLock()
	handler := c.handlers[event.Type]
	c.handlerMu.RUnlock()
	if handler != nil {
		handler(event)
	}
}
