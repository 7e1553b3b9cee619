// Package defense assesses hostile presence per room, directs towers and
// defenders, and escalates to safe mode when ramparts cannot hold.
package defense

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

// defenderPriority puts defender requests ahead of the room's own spawn list.
const defenderPriority = 1

type Manager struct {
	cfg config.Defense
}

func New(cfg config.Defense) *Manager {
	return &Manager{cfg: cfg}
}

// Run overwrites the room's threat profile and defense status for this tick.
func (m *Manager) Run(w *world.World, mem *store.Memory, room *model.Room) {
	rm := mem.Room(room.Name)
	rm.Threat = Assess(room.Hostiles, w.Time())
	if rm.Threat.Level == store.ThreatNone {
		rm.Defense = store.DefenseStatus{Mode: store.ModeIdle}
		if rm.SafeModeTried {
			slog.Info("incident over", "room", room.Name)
			rm.SafeModeTried = false
		}
		return
	}

	m.alert(w, room, rm)
	m.target(room, rm)
	m.defenders(w, mem, room, rm)
	m.safeMode(w, room, rm)
}

func (m *Manager) alert(w *world.World, room *model.Room, rm *store.RoomMemory) {
	t := rm.Threat
	if w.Time()%m.cfg.LogInterval == 0 {
		slog.Warn("threat detected", "room", room.Name, "level", t.Level.String(), "dps", t.DPS, "heal", t.Heal, "hostiles", t.HostileCount)
	}
	if t.Level != store.ThreatCritical {
		return
	}
	if rm.LastCriticalAlert == 0 || w.Time()-rm.LastCriticalAlert > m.cfg.AlertInterval {
		w.Notify(fmt.Sprintf("CRITICAL THREAT in %s! DPS: %d, Heal: %d, Hostiles: %d", room.Name, t.DPS, t.Heal, t.HostileCount), 10)
		rm.LastCriticalAlert = w.Time()
	}
}

// target focuses the closest healer, or the closest hostile if none heal,
// measured from the first spawn or the controller.
func (m *Manager) target(room *model.Room, rm *store.RoomMemory) {
	ref, ok := referencePos(room)
	if !ok {
		slog.Error("no reference position for defense targeting", "room", room.Name)
		return
	}
	var healers []*model.Hostile
	all := make([]*model.Hostile, len(room.Hostiles))
	for i := range room.Hostiles {
		h := &room.Hostiles[i]
		all[i] = h
		if h.HasPart(model.Heal) {
			healers = append(healers, h)
		}
	}
	pool := all
	if len(healers) > 0 {
		pool = healers
	}
	focus := closest(ref, pool)
	if focus == nil {
		rm.Defense = store.DefenseStatus{Mode: store.ModeIdle}
		return
	}
	rm.Defense = store.DefenseStatus{Mode: store.ModeAttack, FocusTarget: focus.ID}
	slog.Debug("defense targeting", "room", room.Name, "target", focus.Name, "owner", focus.Owner)
}

func referencePos(room *model.Room) (model.Pos, bool) {
	for _, s := range room.Structures {
		if s.Type == model.StructureSpawn && s.My {
			return s.Pos, true
		}
	}
	if room.Controller != nil {
		return room.Controller.Pos, true
	}
	return model.Pos{}, false
}

func closest(from model.Pos, hostiles []*model.Hostile) *model.Hostile {
	var best *model.Hostile
	bestRange := 0
	for _, h := range hostiles {
		if r := from.RangeTo(h.Pos); best == nil || r < bestRange {
			best, bestRange = h, r
		}
	}
	return best
}

// defenders requests one more defender while the room is short and points
// every live defender at the focus target.
func (m *Manager) defenders(w *world.World, mem *store.Memory, room *model.Room, rm *store.RoomMemory) {
	if rm.Threat.Level < store.ThreatMedium {
		return
	}

	var names []string
	for _, c := range w.Creeps() {
		cm, ok := mem.Creeps[c.Name]
		if ok && cm.Role == store.RoleDefender && cm.HomeRoom == room.Name {
			names = append(names, c.Name)
		}
	}

	desired := min((rm.Threat.HostileCount+1)/2, m.cfg.MaxDefenders)
	if len(names) < desired {
		req := store.NewSpawnRequest(store.RoleDefender, room.Name, store.CreepMemory{HomeRoom: room.Name}, defenderPriority, w.Time())
		if mem.EnqueueSpawn(req, true) {
			slog.Info("queued defender", "room", room.Name, "have", len(names), "want", desired)
		}
	}

	if rm.Defense.Mode == store.ModeAttack && rm.Defense.FocusTarget != "" {
		for _, name := range names {
			mem.UpdateCreep(name, func(cm *store.CreepMemory) { cm.TargetID = rm.Defense.FocusTarget })
		}
	}
}

// safeMode fires at most once per incident, when there are no ramparts or
// the weakest one will fall within the breach horizon.
func (m *Manager) safeMode(w *world.World, room *model.Room, rm *store.RoomMemory) {
	if rm.Threat.Level != store.ThreatCritical || rm.SafeModeTried {
		return
	}
	ramparts := room.StructuresOf(model.StructureRampart)
	if len(ramparts) == 0 {
		m.activate(w, room, rm, "no defensive ramparts")
		return
	}
	weakest := ramparts[0]
	for _, r := range ramparts[1:] {
		if r.Hits < weakest.Hits {
			weakest = r
		}
	}
	net := rm.Threat.DPS - m.cfg.RepairThroughput
	if net <= 0 {
		return
	}
	if eta := weakest.Hits / net; eta < m.cfg.BreachHorizon {
		m.activate(w, room, rm, fmt.Sprintf("breach imminent: %d ticks remaining", eta))
	}
}

func (m *Manager) activate(w *world.World, room *model.Room, rm *store.RoomMemory, reason string) {
	rm.SafeModeTried = true
	res := w.ActivateSafeMode(room.Name)
	if res == model.OK {
		w.Notify(fmt.Sprintf("SAFE MODE ACTIVATED in %s: %s", room.Name, reason), 15)
		slog.Error("safe mode activated", "room", room.Name, "reason", reason)
		return
	}
	w.Notify(fmt.Sprintf("SAFE MODE UNAVAILABLE in %s (%s): %s", room.Name, res, reason), 15)
	slog.Error("safe mode unavailable", "room", room.Name, "reason", reason, "result", res.String())
}
