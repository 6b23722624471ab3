package realtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Conn abstracts the write side of a WebSocket connection for testability.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// HubGateway is the process-local push gateway: it holds the live WebSocket
// connections accepted by this process and implements Deliver against them.
//
// The hub is NOT a connection registry. The ConnectionStore remains the
// source of truth for broadcast targeting; the hub only owns the physical
// sockets, the way a hosted push gateway owns its channels. Delivering to a
// connection id the hub does not hold returns ErrGone, which is exactly the
// stale-channel signal a hosted gateway would report.
type HubGateway struct {
	mu     sync.RWMutex
	conns  map[string]*hubConn
	logger zerolog.Logger
}

// hubConn serializes writes: gorilla/websocket allows one concurrent writer.
type hubConn struct {
	mu sync.Mutex
	ws Conn
}

// NewHubGateway creates an empty gateway.
func NewHubGateway(logger zerolog.Logger) *HubGateway {
	return &HubGateway{
		conns:  make(map[string]*hubConn),
		logger: logger.With().Str("component", "hub_gateway").Logger(),
	}
}

// Bind attaches a live connection to an id after a successful handshake.
func (g *HubGateway) Bind(connectionID string, ws Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns[connectionID] = &hubConn{ws: ws}
}

// Release detaches a connection. Releasing an unknown id is a no-op.
func (g *HubGateway) Release(connectionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.conns, connectionID)
}

// ConnCount returns the number of live connections held by this process.
func (g *HubGateway) ConnCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

// Deliver writes a serialized event to one connection. An unknown id or a
// write against a closed socket reports ErrGone; other write failures are
// returned as-is and classified as transient by the caller.
func (g *HubGateway) Deliver(_ context.Context, connectionID string, data []byte) error {
	g.mu.RLock()
	c, ok := g.conns[connectionID]
	g.mu.RUnlock()

	if !ok {
		return fmt.Errorf("deliver to %s: %w", connectionID, ErrGone)
	}

	c.mu.Lock()
	err := c.ws.WriteMessage(gorillawebsocket.TextMessage, data)
	c.mu.Unlock()

	if err == nil {
		return nil
	}

	if isClosedConn(err) {
		// The socket is dead for good; drop it so later deliveries
		// short-circuit to ErrGone without a write attempt.
		g.Release(connectionID)
		g.logger.Debug().Str("connection_id", connectionID).Msg("released closed connection")
		return fmt.Errorf("deliver to %s: %w", connectionID, ErrGone)
	}

	return fmt.Errorf("deliver to %s: %w", connectionID, err)
}

// isClosedConn reports whether a write error proves the peer socket is dead,
// as opposed to a transient failure such as a timeout.
func isClosedConn(err error) bool {
	if errors.Is(err, gorillawebsocket.ErrCloseSent) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var closeErr *gorillawebsocket.CloseError
	return errors.As(err, &closeErr)
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy Conn.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
