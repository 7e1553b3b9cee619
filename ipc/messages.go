package ipc

import "github.com/nstehr/hive/model"

// Message type constants. Must stay in sync with the engine-side bridge.
const (
	TypeHello    = "hello"
	TypeAck      = "ack"
	TypeTick     = "tick"
	TypeCommands = "commands"
)

type HelloMessage struct {
	Player string `json:"player"`
	Shard  string `json:"shard,omitempty"`
}

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
}

// TickMessage carries one full world snapshot.
type TickMessage struct {
	State model.GameState `json:"state"`
}

// CommandBatch is the reply to a tick: every command issued during it, in
// issue order.
type CommandBatch struct {
	Tick     int        `json:"tick"`
	Commands []Envelope `json:"commands"`
}
