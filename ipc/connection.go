package ipc

import (
	"errors"
	"io"
	"log/slog"
	"net"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Transport moves whole envelopes. The stream transport frames them over a
// net.Conn; the WebSocket transport sends one envelope per message.
type Transport interface {
	Read() (Envelope, error)
	Write(Envelope) error
	Close() error
}

// Connection represents a single engine bridge talking to the sidecar.
// Each player gets its own connection, identified after the hello handshake.
type Connection struct {
	transport Transport
	handlers  map[string]Handler
	Player    string
}

func NewConnection(t Transport, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		transport: t,
		handlers:  handlers,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

// ReadLoop blocks until the connection closes or errors. It owns the transport
// lifetime so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.transport.Close()

	for {
		env, err := c.transport.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				slog.Info("connection closed", "player", c.Player)
			} else {
				slog.Info("connection read ended", "player", c.Player, "error", err)
			}
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "error", err)
			continue
		}

		if resp != nil {
			if err := c.transport.Write(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "player", c.Player)
		}
	}
}

// StreamTransport frames envelopes over a byte stream (Unix socket).
type StreamTransport struct {
	conn net.Conn
}

func NewStreamTransport(conn net.Conn) *StreamTransport {
	return &StreamTransport{conn: conn}
}

func (t *StreamTransport) Read() (Envelope, error)   { return ReadEnvelope(t.conn) }
func (t *StreamTransport) Write(env Envelope) error { return WriteEnvelope(t.conn, env) }
func (t *StreamTransport) Close() error             { return t.conn.Close() }
