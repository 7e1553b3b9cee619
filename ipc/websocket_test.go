package ipc

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketDispatch(t *testing.T) {
	srv := httptest.NewServer(WebSocketHandler(func(tr Transport) {
		c := NewConnection(tr, nil)
		c.RegisterHandler(TypeHello, func(env Envelope) (*Envelope, error) {
			var hello HelloMessage
			if err := json.Unmarshal(env.Data, &hello); err != nil {
				return nil, err
			}
			ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok", Session: hello.Player})
			return &ack, err
		})
		c.ReadLoop()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello, err := NewEnvelope(TypeHello, HelloMessage{Player: "me"})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply Envelope
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != TypeAck {
		t.Fatalf("reply type = %q, want %q", reply.Type, TypeAck)
	}
	var ack AckMessage
	if err := json.Unmarshal(reply.Data, &ack); err != nil {
		t.Fatal(err)
	}
	if ack.Session != "me" {
		t.Errorf("ack = %+v", ack)
	}
}
