package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gfnpresence/internal/logging"
	"gfnpresence/internal/presence"
)

var (
	// ErrNoSocket means no Discord client is listening.
	ErrNoSocket = errors.New("discord ipc socket not found")
	// ErrNoClientID means presence was requested without an application id.
	ErrNoClientID = errors.New("discord client id not configured")
)

// CommandError is an ERROR event returned by Discord.
type CommandError struct {
	Cmd     string
	Code    int
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("discord %s failed (%d): %s", e.Cmd, e.Code, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithSocketPath pins the IPC socket instead of probing for one.
func WithSocketPath(path string) Option {
	return func(c *Client) { c.socketPath = strings.TrimSpace(path) }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithDialTimeout bounds connect and each request round trip.
func WithDialTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Client speaks the Discord local IPC protocol. It connects lazily and
// reconnects once when a write fails.
type Client struct {
	clientID   string
	socketPath string
	timeout    time.Duration
	logger     *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

// New builds a client for the given Discord application id.
func New(clientID string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrNoClientID
	}
	c := &Client{clientID: clientID, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "discord")
	return c, nil
}

var _ presence.Updater = (*Client)(nil)

// Connect dials the socket and performs the handshake if not yet connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	path := c.socketPath
	if path == "" {
		found, err := FindSocket()
		if err != nil {
			return err
		}
		path = found
	}

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return fmt.Errorf("dial discord ipc %s: %w", path, err)
	}
	c.setDeadline(ctx, conn)
	if err := writeFrame(conn, opHandshake, handshake{Version: 1, ClientID: c.clientID}); err != nil {
		conn.Close()
		return err
	}
	if _, err := c.readResponse(conn, "DISPATCH"); err != nil {
		conn.Close()
		return fmt.Errorf("discord handshake: %w", err)
	}
	c.conn = conn
	c.logger.Debug("connected to discord ipc", logging.String("socket", path))
	return nil
}

func (c *Client) setDeadline(ctx context.Context, conn net.Conn) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
}

// readResponse reads frames until a command response arrives, answering
// pings along the way.
func (c *Client) readResponse(conn net.Conn, cmd string) (response, error) {
	for {
		op, body, err := readFrame(conn)
		if err != nil {
			return response{}, err
		}
		switch op {
		case opPing:
			var pong any = struct{}{}
			if json.Valid(body) {
				pong = json.RawMessage(body)
			}
			if err := writeFrame(conn, opPong, pong); err != nil {
				return response{}, err
			}
			continue
		case opClose:
			var data errorData
			_ = json.Unmarshal(body, &data)
			return response{}, &CommandError{Cmd: cmd, Code: data.Code, Message: data.Message}
		}
		var resp response
		if err := json.Unmarshal(body, &resp); err != nil {
			return response{}, fmt.Errorf("decode ipc response: %w", err)
		}
		if resp.Evt == "ERROR" {
			var data errorData
			_ = json.Unmarshal(resp.Data, &data)
			return resp, &CommandError{Cmd: cmd, Code: data.Code, Message: data.Message}
		}
		if resp.Cmd == cmd {
			return resp, nil
		}
	}
}

// UpdatePresence sends SET_ACTIVITY for activity.
func (c *Client) UpdatePresence(ctx context.Context, activity presence.Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.setActivityLocked(ctx, activity)
	if err == nil {
		return nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) || errors.Is(err, ErrNoSocket) {
		return err
	}
	c.logger.Debug("discord ipc write failed; reconnecting", logging.Error(err))
	c.closeLocked()
	return c.setActivityLocked(ctx, activity)
}

func (c *Client) setActivityLocked(ctx context.Context, activity presence.Activity) error {
	if err := c.connectLocked(ctx); err != nil {
		return err
	}
	args, err := json.Marshal(activityArgs{PID: os.Getpid(), Activity: toWire(activity)})
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	c.setDeadline(ctx, c.conn)
	if err := writeFrame(c.conn, opFrame, command{Cmd: "SET_ACTIVITY", Args: args, Nonce: uuid.NewString()}); err != nil {
		return err
	}
	if _, err := c.readResponse(c.conn, "SET_ACTIVITY"); err != nil {
		return err
	}
	return nil
}

func toWire(activity presence.Activity) *wireActivity {
	wire := &wireActivity{
		Details:  activity.Details,
		State:    activity.State,
		Instance: activity.Instance,
	}
	if !activity.StartTimestamp.IsZero() {
		wire.Timestamps = &wireTimestamps{Start: activity.StartTimestamp.UnixMilli()}
	}
	if activity.LargeImageKey != "" {
		wire.Assets = &wireAssets{LargeImage: activity.LargeImageKey}
	}
	return wire
}

// Close terminates the IPC connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.conn == nil {
		return nil
	}
	_ = writeFrame(c.conn, opClose, struct{}{})
	err := c.conn.Close()
	c.conn = nil
	return err
}
