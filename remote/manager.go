// Package remote runs scouting and the remote operations around each owned
// room: reservation, remote harvesting and hauling, and remote defense.
package remote

import (
	"log/slog"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/expansion"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/movement"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

// requestPriority queues remote units behind the home room's own needs.
const requestPriority = 5

type Manager struct {
	cfg     config.Expansion
	planner *expansion.Planner
	moves   *movement.Supervisor
}

func New(cfg config.Expansion, moves *movement.Supervisor) *Manager {
	return &Manager{cfg: cfg, planner: expansion.New(cfg), moves: moves}
}

// Run performs one orchestration pass. Every enqueue is checked against live
// units and queued requests, so running twice on the same state adds nothing.
func (m *Manager) Run(w *world.World, mem *store.Memory) {
	owned := w.OwnedRooms()
	if len(owned) == 0 {
		return
	}
	m.requestScouting(w, mem, owned)
	m.dispatchScout(w, mem, owned)
	for _, room := range owned {
		if !m.canExpand(w, room) {
			continue
		}
		for _, target := range m.planner.TopTargets(mem, room.Name, w.Player(), w.Time()) {
			m.operate(w, mem, room, target, len(owned))
		}
	}
	m.runScouts(w, mem)
}

// requestScouting queues every neighbour with missing or aging intel.
func (m *Manager) requestScouting(w *world.World, mem *store.Memory, owned []*model.Room) {
	for _, room := range owned {
		for _, exit := range room.Exits {
			in, ok := mem.Intel[exit]
			if ok && w.Time()-in.LastScouted <= m.cfg.RescoutTicks {
				continue
			}
			if mem.EnqueueScout(exit) {
				slog.Debug("scout requested", "room", exit, "from", room.Name)
			}
		}
	}
}

// dispatchScout keeps at most one scout request queued, for the first queued
// room no living scout is already heading to.
func (m *Manager) dispatchScout(w *world.World, mem *store.Memory, owned []*model.Room) {
	for _, q := range mem.SpawnQueue {
		if q.Role == store.RoleScout {
			return
		}
	}
	inbound := make(map[string]bool)
	for _, c := range w.Creeps() {
		if cm, ok := mem.Creeps[c.Name]; ok && cm.Role == store.RoleScout {
			inbound[cm.TargetRoom] = true
		}
	}
	for _, target := range mem.ScoutQueue {
		if inbound[target] {
			continue
		}
		home := nearest(owned, target)
		req := store.NewSpawnRequest(store.RoleScout, home, store.CreepMemory{HomeRoom: home, TargetRoom: target}, requestPriority, w.Time())
		if mem.EnqueueSpawn(req, false) {
			slog.Info("scout queued", "target", target, "home", home)
		}
		return
	}
}

func nearest(owned []*model.Room, target string) string {
	best, bestDist := owned[0].Name, model.LinearDistance(owned[0].Name, target)
	for _, r := range owned[1:] {
		if d := model.LinearDistance(r.Name, target); d < bestDist {
			best, bestDist = r.Name, d
		}
	}
	return best
}

func (m *Manager) canExpand(w *world.World, room *model.Room) bool {
	return room.StorageEnergy() >= m.cfg.MinStorageEnergy && w.CPUBucket() >= m.cfg.MinBucket
}

func (m *Manager) operate(w *world.World, mem *store.Memory, home *model.Room, target expansion.ScoredRoom, ownedCount int) {
	if mem.AssignHome(target.Room, home.Name) != home.Name {
		return
	}
	if visible, ok := w.Room(target.Room); ok {
		mem.SetHostile(target.Room, len(visible.Hostiles) > 0)
	}
	in := mem.Intel[target.Room]

	base := store.CreepMemory{HomeRoom: home.Name, TargetRoom: target.Room}

	reserver := base
	reserver.Claim = m.planner.Action(in, ownedCount, w.GCLLevel()) == expansion.ActionClaim
	m.ensure(w, mem, store.RoleReserver, reserver)

	for _, src := range in.Sources {
		harvester := base
		harvester.SourceID = src.ID
		m.ensure(w, mem, store.RoleRemoteHarvester, harvester)
	}
	m.ensure(w, mem, store.RoleRemoteHauler, base)
	if in.Hostile {
		m.ensure(w, mem, store.RoleRemoteDefender, base)
	}
}

// ensure queues one unit unless a living unit or a queued request already
// covers the same role, target room and source.
func (m *Manager) ensure(w *world.World, mem *store.Memory, role store.Role, cm store.CreepMemory) {
	for _, c := range w.Creeps() {
		have, ok := mem.Creeps[c.Name]
		if ok && have.Role == role && have.TargetRoom == cm.TargetRoom && have.SourceID == cm.SourceID {
			return
		}
	}
	req := store.NewSpawnRequest(role, cm.HomeRoom, cm, requestPriority, w.Time())
	if mem.EnqueueSpawn(req, false) {
		slog.Info("remote unit queued", "role", role, "target", cm.TargetRoom, "home", cm.HomeRoom)
	}
}

// runScouts records intel for scouts standing in their target room and
// retires them; the rest keep walking to the room's center. A scout stuck on
// the way gives up its target so another can be sent, and a scout without a
// target is retired.
func (m *Manager) runScouts(w *world.World, mem *store.Memory) {
	for _, c := range w.Creeps() {
		if c.Spawning {
			continue
		}
		mem.UpdateCreep(c.Name, func(cm *store.CreepMemory) {
			if cm.Role == store.RoleScout {
				m.runScout(w, mem, c, cm)
			}
		})
	}
}

func (m *Manager) runScout(w *world.World, mem *store.Memory, c *model.Creep, cm *store.CreepMemory) {
	if cm.TargetRoom == "" {
		slog.Info("scout without target retired", "creep", c.Name)
		w.Suicide(c)
		return
	}
	if c.Pos.Room != cm.TargetRoom {
		if m.moves.MoveTo(w, c, cm, model.Center(cm.TargetRoom), model.SearchOpts{Range: 1}) == model.ErrStuck {
			slog.Warn("scout stuck, abandoning target", "creep", c.Name, "room", cm.TargetRoom)
			m.moves.Recover(w, c, cm, movement.ClearField(store.FieldTargetRoom))
			cm.Clear(store.FieldTargetRoom)
		}
		return
	}
	room, ok := w.Room(c.Pos.Room)
	if !ok {
		return
	}
	mem.PutIntel(Observe(room, w.Time(), w.Player()))
	mem.RemoveScout(cm.TargetRoom)
	w.Suicide(c)
	slog.Info("room scouted", "room", room.Name, "sources", len(room.Sources), "hostiles", len(room.Hostiles))
}

// Observe builds intel from a visible room. Rooms we own record player as
// the owner.
func Observe(room *model.Room, tick int, player string) store.Intel {
	in := store.Intel{
		Room:        room.Name,
		HasMineral:  room.Mineral != nil,
		Hostile:     len(room.Hostiles) > 0,
		LastScouted: tick,
	}
	for _, s := range room.Sources {
		in.Sources = append(in.Sources, store.SourceIntel{ID: s.ID, Pos: s.Pos})
	}
	if c := room.Controller; c != nil {
		in.Owner = c.Owner
		if c.My && in.Owner == "" {
			in.Owner = player
		}
		in.Level = c.Level
		if c.Reservation != nil {
			in.ReservedBy = c.Reservation.Username
		}
	}
	return in
}
