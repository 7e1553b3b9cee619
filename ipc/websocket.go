package ipc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Ticks can be slow under load; the engine is expected to send at least one
// message per minute.
const wsReadTimeout = 60 * time.Second

// WebSocketTransport carries one JSON envelope per text message.
type WebSocketTransport struct {
	conn *websocket.Conn
}

func NewWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	conn.SetReadLimit(maxFrame)
	return &WebSocketTransport{conn: conn}
}

func (t *WebSocketTransport) Read() (Envelope, error) {
	_ = t.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	_, msg, err := t.conn.ReadMessage()
	if err != nil {
		return Envelope{}, fmt.Errorf("read message: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

func (t *WebSocketTransport) Write(env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	_ = t.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return t.conn.WriteMessage(websocket.TextMessage, b)
}

func (t *WebSocketTransport) Close() error { return t.conn.Close() }

// WebSocketHandler upgrades HTTP requests and hands each transport to serve,
// which is expected to block for the life of the connection.
func WebSocketHandler(serve func(Transport)) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		serve(NewWebSocketTransport(conn))
	}
}
