package agent

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/defense"
	"github.com/nstehr/hive/ipc"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/movement"
	"github.com/nstehr/hive/pathcache"
	"github.com/nstehr/hive/planner"
	"github.com/nstehr/hive/remote"
	"github.com/nstehr/hive/roles"
	"github.com/nstehr/hive/rules"
	"github.com/nstehr/hive/spawn"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

// slowPhase is when a phase is worth a warning.
const slowPhase = 50 * time.Millisecond

// Kernel runs the decision pipeline for one session in a fixed phase order.
// Caches it owns live as long as the session.
type Kernel struct {
	cfg     config.Config
	paths   *pathcache.Cache
	moves   *movement.Supervisor
	defense *defense.Manager
	spawn   *spawn.Manager
	planner *planner.Planner
	remote  *remote.Manager
	roles   *roles.Registry

	prev *stateSnapshot
}

func NewKernel(cfg config.Config, seed int64) (*Kernel, error) {
	sm, err := spawn.New(cfg.Spawn)
	if err != nil {
		return nil, fmt.Errorf("spawn manager: %w", err)
	}
	paths := pathcache.New(cfg.PathCache)
	moves := movement.New(paths, cfg.Movement, seed)
	return &Kernel{
		cfg:     cfg,
		paths:   paths,
		moves:   moves,
		defense: defense.New(cfg.Defense),
		spawn:   sm,
		planner: planner.New(cfg.Planner, paths),
		remote:  remote.New(cfg.Expansion, moves),
		roles:   roles.NewRegistry(),
	}, nil
}

// Rules is the spawn directive engine, for live swaps.
func (k *Kernel) Rules() *rules.Engine { return k.spawn.Rules() }

// Tick runs one decision pass over gs and returns the commands issued, in
// issue order. gs must not be reused by the caller.
func (k *Kernel) Tick(gs model.GameState, mem *store.Memory) []ipc.Envelope {
	events := detectEvents(gs, k.prev)
	snap := takeSnapshot(gs)
	k.prev = &snap

	w := world.New(gs)
	tick := w.Time()

	if k.cfg.Agent.GCInterval > 0 && tick%k.cfg.Agent.GCInterval == 0 {
		k.phase("gc", "", tick, func() {
			if gone := mem.ForgetCreeps(w.Alive()); len(gone) > 0 {
				slog.Info("forgot dead units", "tick", tick, "count", len(gone), "names", gone)
			}
		})
	}
	k.phase("events", "", tick, func() { k.applyEvents(w, events) })

	for _, room := range w.OwnedRooms() {
		k.phase("defense", room.Name, tick, func() { k.defense.Run(w, mem, room) })
		k.phase("towers", room.Name, tick, func() { defense.RunTowers(w, room, mem.Room(room.Name)) })
		k.phase("spawn", room.Name, tick, func() { k.spawn.Run(w, mem, room) })
		k.phase("planner", room.Name, tick, func() { k.planner.Run(w, mem, room) })
	}
	k.phase("remote", "", tick, func() { k.remote.Run(w, mem) })
	k.phase("roles", "", tick, func() {
		k.roles.RunAll(&roles.Tick{World: w, Memory: mem, Moves: k.moves})
	})

	st := k.paths.Stats()
	slog.Debug("tick done", "tick", tick, "commands", len(w.Commands()), "path_hits", st.Hits, "path_misses", st.Misses, "path_entries", st.Size)
	return w.Commands()
}

// applyEvents bumps the path cache version of every room whose structures
// changed, once per room, whether the engine reported the change or the
// snapshot diff found it.
func (k *Kernel) applyEvents(w *world.World, detected []Event) {
	bumped := make(map[string]bool)
	bump := func(room string) {
		if !bumped[room] {
			bumped[room] = true
			k.paths.BumpVersion(room)
		}
	}
	for _, e := range w.Events() {
		switch e.Type {
		case model.EventStructureBuilt, model.EventStructureDestroyed:
			bump(e.Room)
		}
	}
	for _, e := range detected {
		switch e.Kind {
		case EventStructureBuilt, EventStructureDestroyed:
			bump(e.Room)
			slog.Debug("structure change", "tick", e.Tick, "room", e.Room, "kind", e.Kind, "detail", e.Detail)
		case EventFirstContact:
			slog.Warn("hostiles sighted", "tick", e.Tick, "room", e.Room)
		case EventLevelChanged:
			slog.Info("controller level changed", "tick", e.Tick, "room", e.Room, "level", e.Detail)
		case EventUnitLost:
			slog.Debug("unit gone", "tick", e.Tick, "creep", e.Detail)
		}
	}
}

// phase runs one pipeline step. A panic is logged and the tick continues.
func (k *Kernel) phase(name, room string, tick int, fn func()) {
	start := time.Now()
	defer func() {
		if err := recover(); err != nil {
			slog.Error("phase panicked", "phase", name, "room", room, "tick", tick, "error", err, "stack", string(debug.Stack()))
		}
		if d := time.Since(start); d > slowPhase {
			slog.Warn("slow phase", "phase", name, "room", room, "tick", tick, "took", d)
		}
	}()
	fn()
}
