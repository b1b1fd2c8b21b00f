package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/PizzaHomicide/shuchu/internal/log"
)

// MPVIPCClient provides communication with a running MPV instance
type MPVIPCClient struct {
	socketPath string
	conn       net.Conn
	events     chan MPVEvent
	writeMu    sync.Mutex
}

// MPVEvent represents a line received from MPV.  Command replies carry a request ID and no event name.
type MPVEvent struct {
	Event     string          `json:"event"`
	ID        int             `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewMPVIPCClient creates a new MPV IPC client
func NewMPVIPCClient(socketPath string) *MPVIPCClient {
	return &MPVIPCClient{
		socketPath: socketPath,
		events:     make(chan MPVEvent, 100),
	}
}

// GetMPVSocketPath returns the socket path for MPV IPC communication
func GetMPVSocketPath() string {
	if path := os.Getenv("MPV_IPC_SOCKET"); path != "" {
		return path
	}

	name := fmt.Sprintf("shuchu-mpv-%d", os.Getpid())

	switch runtime.GOOS {
	case "windows":
		// Windows uses named pipes instead of unix sockets
		return `\\.\pipe\` + name
	default:
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			return filepath.Join(runtimeDir, name+".sock")
		}
		return filepath.Join(os.TempDir(), name+".sock")
	}
}

// Attach starts reading events from an established connection
func (c *MPVIPCClient) Attach(conn net.Conn) {
	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	go c.readEvents(conn)
}

// Connect dials the mpv IPC endpoint once and starts reading its events
func (c *MPVIPCClient) Connect(ctx context.Context) error {
	conn, err := dialIPC(ctx, c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to MPV at %s: %w", c.socketPath, err)
	}
	c.Attach(conn)
	return nil
}

// Connected reports whether a connection has been attached
func (c *MPVIPCClient) Connected() bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn != nil
}

// WaitForConnection attempts to connect to MPV with retries
func (c *MPVIPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for MPV to create socket", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if !socketReady(c.socketPath) {
			log.Debug("MPV socket does not exist yet", "attempt", attempt, "path", c.socketPath)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
				continue
			}
		}

		err := c.Connect(ctx)
		if err == nil {
			log.Info("Connected to MPV", "attempt", attempt)
			return nil
		}

		log.Debug("Failed to connect to MPV", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("failed to connect to MPV after %d attempts", maxAttempts)
}

// Close closes the connection to MPV
func (c *MPVIPCClient) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// readEvents continuously reads events from MPV until the connection closes
func (c *MPVIPCClient) readEvents(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw MPV event", "data", string(line))

		var event MPVEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Error("Failed to unmarshal MPV event", "error", err)
			continue
		}

		if event.Event == "" {
			if event.Error != "" && event.Error != "success" {
				log.Warn("MPV command failed", "request_id", event.RequestID, "error", event.Error)
			}
			continue
		}
		c.events <- event
	}

	if err := scanner.Err(); err != nil {
		log.Error("Error reading from MPV socket", "error", err)
	}

	log.Debug("MPV event reader stopped")
	close(c.events)
}

// Events returns the channel for MPV events
func (c *MPVIPCClient) Events() <-chan MPVEvent {
	return c.events
}

// SendCommand sends a command to MPV without waiting for its reply
func (c *MPVIPCClient) SendCommand(cmd ...any) error {
	data, err := json.Marshal(map[string]any{"command": cmd})
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected to MPV")
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// ObserveProperty starts observing an MPV property
func (c *MPVIPCClient) ObserveProperty(id int, name string) error {
	return c.SendCommand("observe_property", id, name)
}

// SetProperty sets an MPV property
func (c *MPVIPCClient) SetProperty(name string, value any) error {
	return c.SendCommand("set_property", name, value)
}
