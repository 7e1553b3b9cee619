// Package world turns one tick's snapshot into the environment the decision
// engines query and act through. Actions validate against the snapshot and
// record commands for the engine to execute after the tick.
package world

import (
	"log/slog"
	"sort"

	"github.com/nstehr/hive/ipc"
	"github.com/nstehr/hive/model"
)

type World struct {
	state model.GameState

	rooms  map[string]*model.Room
	creeps map[string]*model.Creep

	structures map[string]*model.Structure
	sources    map[string]*model.Source
	sites      map[string]*model.ConstructionSite
	hostiles   map[string]*model.Hostile
	creepByID  map[string]*model.Creep

	outbox       []ipc.Envelope
	usedSpawns   map[string]bool
	pending      map[string]bool // creep names spawned this tick
	plannedSites map[string]bool
}

// New indexes a snapshot. The World keeps pointers into gs, so the caller
// must not reuse it.
func New(gs model.GameState) *World {
	w := &World{
		state:      gs,
		rooms:      make(map[string]*model.Room, len(gs.Rooms)),
		creeps:     make(map[string]*model.Creep, len(gs.Creeps)),
		structures: make(map[string]*model.Structure),
		sources:    make(map[string]*model.Source),
		sites:      make(map[string]*model.ConstructionSite),
		hostiles:   make(map[string]*model.Hostile),
		creepByID:  make(map[string]*model.Creep, len(gs.Creeps)),
		usedSpawns: make(map[string]bool),
		pending:    make(map[string]bool),

		plannedSites: make(map[string]bool),
	}
	for i := range w.state.Rooms {
		r := &w.state.Rooms[i]
		w.rooms[r.Name] = r
		for j := range r.Structures {
			w.structures[r.Structures[j].ID] = &r.Structures[j]
		}
		for j := range r.Sources {
			w.sources[r.Sources[j].ID] = &r.Sources[j]
		}
		for j := range r.Sites {
			w.sites[r.Sites[j].ID] = &r.Sites[j]
		}
		for j := range r.Hostiles {
			w.hostiles[r.Hostiles[j].ID] = &r.Hostiles[j]
		}
	}
	for i := range w.state.Creeps {
		c := &w.state.Creeps[i]
		w.creeps[c.Name] = c
		if c.ID != "" {
			w.creepByID[c.ID] = c
		}
	}
	return w
}

func (w *World) Time() int      { return w.state.Tick }
func (w *World) Player() string { return w.state.Player }
func (w *World) CPUBucket() int { return w.state.CPUBucket }
func (w *World) GCLLevel() int  { return w.state.GCLLevel }

func (w *World) Events() []model.Event { return w.state.Events }

// Room returns a visible room.
func (w *World) Room(name string) (*model.Room, bool) {
	r, ok := w.rooms[name]
	return r, ok
}

// OwnedRooms returns our rooms sorted by name.
func (w *World) OwnedRooms() []*model.Room {
	var out []*model.Room
	for _, r := range w.rooms {
		if r.Owned() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Creep returns one of our units by name.
func (w *World) Creep(name string) (*model.Creep, bool) {
	c, ok := w.creeps[name]
	return c, ok
}

// Creeps returns all our units sorted by name.
func (w *World) Creeps() []*model.Creep {
	out := make([]*model.Creep, 0, len(w.creeps))
	for _, c := range w.creeps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Alive reports which unit names exist this tick, including units whose
// spawn was ordered during it.
func (w *World) Alive() map[string]bool {
	out := make(map[string]bool, len(w.creeps)+len(w.pending))
	for name := range w.creeps {
		out[name] = true
	}
	for name := range w.pending {
		out[name] = true
	}
	return out
}

func (w *World) Structure(id string) (*model.Structure, bool) {
	s, ok := w.structures[id]
	return s, ok
}

func (w *World) Source(id string) (*model.Source, bool) {
	s, ok := w.sources[id]
	return s, ok
}

func (w *World) Site(id string) (*model.ConstructionSite, bool) {
	s, ok := w.sites[id]
	return s, ok
}

func (w *World) Hostile(id string) (*model.Hostile, bool) {
	h, ok := w.hostiles[id]
	return h, ok
}

// Structures returns the structures of a visible room, or nil.
func (w *World) Structures(room string) []model.Structure {
	if r, ok := w.rooms[room]; ok {
		return r.Structures
	}
	return nil
}

// TerrainAt reads terrain; cells of rooms we cannot see are plain.
func (w *World) TerrainAt(p model.Pos) model.TerrainType {
	if r, ok := w.rooms[p.Room]; ok {
		return r.Terrain.At(p.X, p.Y)
	}
	if p.X < 0 || p.X >= model.RoomSize || p.Y < 0 || p.Y >= model.RoomSize {
		return model.Wall
	}
	return model.Plain
}

// Blocked reports whether a unit cannot stand on p because of terrain or a
// structure.
func (w *World) Blocked(p model.Pos) bool {
	if w.TerrainAt(p) == model.Wall {
		return true
	}
	r, ok := w.rooms[p.Room]
	if !ok {
		return false
	}
	for i := range r.Structures {
		s := &r.Structures[i]
		if s.Pos.X == p.X && s.Pos.Y == p.Y && !model.Walkable(s.Type, s.My) {
			return true
		}
	}
	return false
}

// Commands returns everything issued this tick, in issue order.
func (w *World) Commands() []ipc.Envelope { return w.outbox }

func (w *World) issue(msgType string, data any) {
	env, err := ipc.NewEnvelope(msgType, data)
	if err != nil {
		slog.Error("failed to encode command", "type", msgType, "error", err)
		return
	}
	w.outbox = append(w.outbox, env)
}
