// Package agent drives one engine session: the hello handshake loads the
// player's memory, and every tick runs the kernel, persists what changed and
// replies with the commands issued.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nstehr/hive/ipc"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/store"
)

// ErrNoSession is returned for a tick that arrives before hello.
var ErrNoSession = errors.New("tick before hello")

// Agent owns the decision-making for a single player session.
type Agent struct {
	ID     string
	Player string

	store       store.Store
	kernel      *Kernel
	strategist  *Strategist
	saveTimeout time.Duration

	mem      *store.Memory
	lastTick int
}

func New(st store.Store, kernel *Kernel, strategist *Strategist, saveTimeout time.Duration) *Agent {
	return &Agent{
		ID:          uuid.NewString(),
		store:       st,
		kernel:      kernel,
		strategist:  strategist,
		saveTimeout: saveTimeout,
	}
}

// HandleHello identifies the player and loads their memory.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}
	if hello.Player == "" {
		return nil, errors.New("hello without player")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.saveTimeout)
	defer cancel()
	mem, err := a.store.Load(ctx, hello.Player)
	if err != nil {
		return nil, fmt.Errorf("load memory for %s: %w", hello.Player, err)
	}

	a.Player = hello.Player
	a.mem = mem
	a.lastTick = 0
	slog.Info("player identified", "player", a.Player, "shard", hello.Shard, "session", a.ID,
		"units", len(mem.Creeps), "intel", len(mem.Intel), "queued", len(mem.SpawnQueue))

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: a.ID})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleTick runs one decision pass. A tick that does not advance time gets
// an empty batch.
func (a *Agent) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.mem == nil {
		return nil, ErrNoSession
	}
	var msg ipc.TickMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal tick: %w", err)
	}
	gs := msg.State
	if gs.Player == "" {
		gs.Player = a.Player
	}

	batch := ipc.CommandBatch{Tick: gs.Tick, Commands: []ipc.Envelope{}}
	if a.lastTick != 0 && gs.Tick <= a.lastTick {
		slog.Warn("tick did not advance, skipping", "tick", gs.Tick, "last", a.lastTick, "player", a.Player)
		return reply(batch)
	}
	a.lastTick = gs.Tick

	start := time.Now()
	if cmds := a.kernel.Tick(gs, a.mem); len(cmds) > 0 {
		batch.Commands = cmds
	}
	a.save(gs)
	a.strategist.UpdateTick(gs.Tick)

	slog.Debug("tick handled", "tick", gs.Tick, "player", a.Player, "commands", len(batch.Commands), "took", time.Since(start))
	return reply(batch)
}

// save flushes dirty segments. A failed save keeps them dirty for the next
// tick.
func (a *Agent) save(gs model.GameState) {
	dirty := a.mem.Dirty()
	if len(dirty) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.saveTimeout)
	defer cancel()
	if err := a.store.Save(ctx, a.Player, gs.Tick, a.mem); err != nil {
		slog.Error("failed to save memory", "player", a.Player, "tick", gs.Tick, "segments", dirty, "error", err)
	}
}

func reply(batch ipc.CommandBatch) (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeCommands, batch)
	if err != nil {
		return nil, err
	}
	return &env, nil
}
