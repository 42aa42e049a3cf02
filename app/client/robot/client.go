package robot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"elizabot/app/config"

	"github.com/gorilla/websocket"
	"github.com/samber/do"
)

type EventHandler func(event Event)

// Client talks to the robot's realtime websocket API. Writes are serialized
// behind a mutex; events are dispatched to a single registered listener.
type Client struct {
	cfg *config.Config

	writeMu sync.Mutex
	conn    *websocket.Conn
	done    chan struct{}

	listenerMu sync.RWMutex
	listener   EventHandler
}

func NewClient(di *do.Injector) (*Client, error) {
	return &Client{
		cfg: do.MustInvoke[*config.Config](di),
	}, nil
}

// Connect dials the robot and starts the event read loop.
func (c *Client) Connect(ctx context.Context) error {
	endpoint := url.URL{
		Scheme: "ws",
		Host:   c.cfg.Robot.Host,
		Path:   "/api",
	}

	header := http.Header{}
	if c.cfg.Robot.AuthKey != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Robot.AuthKey)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		return fmt.Errorf("failed to dial robot at %s: %w", endpoint.String(), err)
	}

	c.conn = conn
	c.done = make(chan struct{})

	go c.readLoop()

	slog.Info("Connected to robot", "host", c.cfg.Robot.Host)

	return nil
}

// Done is closed when the read loop exits, i.e. the connection is gone.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Disconnect() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) SetListener(listener EventHandler) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	c.listener = listener
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			slog.Warn("Robot connection closed", "error", err)
			return
		}

		var event Event
		if err = json.Unmarshal(data, &event); err != nil {
			slog.Debug("Skipping unparseable robot frame", "error", err)
			continue
		}

		c.listenerMu.RLock()
		listener := c.listener
		c.listenerMu.RUnlock()

		if listener != nil {
			listener(event)
		}
	}
}

func (c *Client) send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(v)
}

func (c *Client) SpeakText(text string) error {
	return c.send(speakTextRequest{Type: requestSpeakText, Text: text})
}

func (c *Client) SpeakStop() error {
	return c.send(simpleRequest{Type: requestSpeakStop})
}

func (c *Client) Gesture(name string, intensity, duration float64) error {
	return c.send(gestureRequest{
		Type:      requestGestureStart,
		Name:      name,
		Intensity: intensity,
		Duration:  duration,
	})
}

func (c *Client) LedSet(color string) error {
	return c.send(ledRequest{Type: requestLedSet, Color: color})
}

func (c *Client) AttendUser() error {
	return c.send(simpleRequest{Type: requestAttendUser})
}

func (c *Client) ListenStart(opts ListenOptions) error {
	opts.Type = requestListenStart
	return c.send(opts)
}

func (c *Client) ListenStop() error {
	return c.send(simpleRequest{Type: requestListenStop})
}
