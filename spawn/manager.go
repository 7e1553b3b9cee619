// Package spawn decides which unit each idle spawn produces this tick.
package spawn

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/nstehr/hive/body"
	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/rules"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

// Priority is the fixed order in which local roles are considered. The first
// role under its desired count is spawned even if a later role is further
// behind.
var Priority = []store.Role{
	store.RoleHarvester,
	store.RoleStaticHarvester,
	store.RoleHauler,
	store.RoleUpgrader,
	store.RoleBuilder,
	store.RoleRepairer,
}

// urgentPriority marks queued requests that jump ahead of the local list.
const urgentPriority = 1

type Manager struct {
	cfg   config.Spawn
	rules *rules.Engine
}

// New compiles the configured directives.
func New(cfg config.Spawn) (*Manager, error) {
	engine, err := rules.NewEngine(rules.FromDirectives(cfg.Directives))
	if err != nil {
		return nil, fmt.Errorf("spawn directives: %w", err)
	}
	return &Manager{cfg: cfg, rules: engine}, nil
}

// Rules exposes the directive engine so a new rule set can be swapped in.
func (m *Manager) Rules() *rules.Engine { return m.rules }

// Run gives every idle spawn in the room at most one production attempt.
func (m *Manager) Run(w *world.World, mem *store.Memory, room *model.Room) {
	var spawns []*model.Structure
	for _, s := range room.StructuresOf(model.StructureSpawn) {
		if s.My && !s.Spawning {
			spawns = append(spawns, s)
		}
	}
	if len(spawns) == 0 {
		return
	}

	desired := m.DesiredCounts(room)
	live := LiveCounts(w, mem, room.Name)
	for _, sp := range spawns {
		m.runSpawn(w, mem, room, sp, desired, live)
	}
}

func (m *Manager) runSpawn(w *world.World, mem *store.Memory, room *model.Room, sp *model.Structure, desired, live map[store.Role]int) {
	// Emergency: no harvesters at all. Only the energy on hand counts, and a
	// budget too small for any body means nothing is attempted this tick.
	if desired[store.RoleHarvester] > 0 && live[store.RoleHarvester] == 0 {
		parts := body.For(store.RoleHarvester, room.EnergyAvailable)
		if len(parts) == 0 {
			return
		}
		slog.Warn("emergency harvester", "room", room.Name, "energy", room.EnergyAvailable)
		m.spawnLocal(w, mem, room, sp, store.RoleHarvester, parts, live)
		return
	}

	queued := mem.RequestsFor(room.Name)
	for _, req := range queued {
		if req.Priority <= urgentPriority {
			m.spawnRequest(w, mem, room, sp, req, live)
			return
		}
	}

	for _, role := range Priority {
		if live[role] < desired[role] {
			m.spawnLocal(w, mem, room, sp, role, body.For(role, room.EnergyCapacity), live)
			return
		}
	}

	if len(queued) > 0 {
		m.spawnRequest(w, mem, room, sp, queued[0], live)
	}
}

func (m *Manager) spawnLocal(w *world.World, mem *store.Memory, room *model.Room, sp *model.Structure, role store.Role, parts []model.Part, live map[store.Role]int) {
	cm := store.CreepMemory{Role: role, HomeRoom: room.Name}
	if role == store.RoleStaticHarvester {
		cm.SourceID = freeSource(w, mem, room)
	}
	if m.attempt(w, mem, sp, role, parts, cm) {
		live[role]++
	}
}

func (m *Manager) spawnRequest(w *world.World, mem *store.Memory, room *model.Room, sp *model.Structure, req store.SpawnRequest, live map[store.Role]int) {
	cm := req.Memory
	if cm.HomeRoom == "" {
		cm.HomeRoom = room.Name
	}
	if m.attempt(w, mem, sp, req.Role, body.For(req.Role, room.EnergyCapacity), cm) {
		mem.RemoveSpawn(req.ID)
		live[req.Role]++
	}
}

// attempt issues one spawn command and records the unit's memory on success.
func (m *Manager) attempt(w *world.World, mem *store.Memory, sp *model.Structure, role store.Role, parts []model.Part, cm store.CreepMemory) bool {
	alive := w.Alive()
	name := fmt.Sprintf("%s-%d", role, w.Time())
	for n := 2; alive[name]; n++ {
		name = fmt.Sprintf("%s-%d-%d", role, w.Time(), n)
	}
	res := w.Spawn(sp.ID, name, parts)
	switch res {
	case model.OK:
		cm.Role = role
		mem.SetCreep(name, cm)
		slog.Info("spawning", "room", sp.Pos.Room, "spawn", sp.ID, "creep", name, "parts", len(parts))
		return true
	case model.ErrBusy:
	case model.ErrNotEnoughEnergy:
		slog.Debug("spawn waiting for energy", "room", sp.Pos.Room, "role", role, "cost", model.BodyCost(parts))
	default:
		slog.Warn("spawn failed", "room", sp.Pos.Room, "role", role, "result", res.String(), "cost", model.BodyCost(parts), "parts", len(parts))
	}
	return false
}

// LiveCounts counts living units by role for one home room.
func LiveCounts(w *world.World, mem *store.Memory, home string) map[store.Role]int {
	counts := make(map[store.Role]int)
	for _, c := range w.Creeps() {
		cm, ok := mem.Creeps[c.Name]
		if ok && cm.HomeRoom == home {
			counts[cm.Role]++
		}
	}
	return counts
}

// freeSource returns the first source, by ID, without a static harvester.
func freeSource(w *world.World, mem *store.Memory, room *model.Room) string {
	alive := w.Alive()
	taken := make(map[string]bool)
	for name, cm := range mem.Creeps {
		if cm.Role == store.RoleStaticHarvester && cm.HomeRoom == room.Name && alive[name] {
			taken[cm.SourceID] = true
		}
	}
	ids := make([]string, 0, len(room.Sources))
	for _, s := range room.Sources {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !taken[id] {
			return id
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}
