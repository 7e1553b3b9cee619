package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"net"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	env, err := NewEnvelope(TypeHello, HelloMessage{Player: "tester"})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if err := WriteEnvelope(&buf, env); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}

	got, err := ReadEnvelope(&buf)
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	if got.Type != TypeHello {
		t.Errorf("type = %q, want %q", got.Type, TypeHello)
	}
	var hello HelloMessage
	if err := json.Unmarshal(got.Data, &hello); err != nil {
		t.Fatalf("unmarshal hello: %v", err)
	}
	if hello.Player != "tester" {
		t.Errorf("player = %q, want tester", hello.Player)
	}
}

func TestReadEnvelopeRejectsBadLength(t *testing.T) {
	for _, n := range []uint32{0, maxFrame + 1} {
		var buf bytes.Buffer
		_ = binary.Write(&buf, binary.LittleEndian, n)
		if _, err := ReadEnvelope(&buf); err == nil {
			t.Errorf("length %d: expected error", n)
		}
	}
}

func TestConnectionDispatch(t *testing.T) {
	server, client := net.Pipe()
	conn := NewConnection(NewStreamTransport(server), nil)
	conn.RegisterHandler(TypeHello, func(env Envelope) (*Envelope, error) {
		ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
		return &ack, err
	})

	done := make(chan struct{})
	go func() {
		conn.ReadLoop()
		close(done)
	}()

	env, _ := NewEnvelope(TypeHello, HelloMessage{Player: "p"})
	if err := WriteEnvelope(client, env); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err := ReadEnvelope(client)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != TypeAck {
		t.Errorf("response type = %q, want ack", resp.Type)
	}

	client.Close()
	<-done
}
