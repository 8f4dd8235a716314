// Package transport implements the async, framed TCP client that
// carries protocol messages to and from the robot (spec §4.2).
package transport

import (
	"sync"

	"github.com/tailu123/x30ctl/protocol"
)

// Transport is the contract the session controller and navigation
// procedure send through. *TCPTransport is the production
// implementation; TestTransport is a synchronous double for tests
// that don't need a real socket.
type Transport interface {
	// Connect resolves and dials host:port and starts the receive
	// loop. Returns an error on failure; NetworkError events cover
	// failures discovered later, on the live connection.
	Connect(host string, port int) error

	// Disconnect closes the connection. Idempotent.
	Disconnect() error

	// IsConnected reports whether the connection is currently live.
	IsConnected() bool

	// Send serializes msg and enqueues it on the write lane,
	// returning immediately (spec §4.2: "returns immediately").
	Send(msg protocol.Message) error
}

// TestTransport is a synchronous Transport double: Send appends to
// Outputs instead of touching a socket, and Connect/Disconnect just
// flip a flag. Used by session tests that exercise
// command handling without a TCP connection (modeled on the netconf
// package's own TestTransport).
type TestTransport struct {
	mu        sync.Mutex
	connected bool

	// Outputs captures every message handed to Send, in order.
	Outputs []protocol.Message
}

func (t *TestTransport) Connect(host string, port int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = true
	return nil
}

func (t *TestTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = false
	return nil
}

func (t *TestTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *TestTransport) Send(msg protocol.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Outputs = append(t.Outputs, msg)
	return nil
}
