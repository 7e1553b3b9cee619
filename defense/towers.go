package defense

import (
	"log/slog"

	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

// RunTowers drives every tower in the room from the defense status. Without
// orders they shoot the closest hostile, then heal, then repair.
func RunTowers(w *world.World, room *model.Room, rm *store.RoomMemory) {
	var towers []*model.Structure
	for _, t := range room.StructuresOf(model.StructureTower) {
		if t.My {
			towers = append(towers, t)
		}
	}
	if len(towers) == 0 {
		return
	}

	status := rm.Defense
	if status.Mode == store.ModeAttack && status.FocusTarget != "" {
		if _, ok := w.Hostile(status.FocusTarget); ok {
			each(towers, func(id string) model.Result { return w.TowerAttack(id, status.FocusTarget) })
			slog.Debug("towers attacking", "room", room.Name, "target", status.FocusTarget)
			return
		}
	}
	if status.Mode == store.ModeRepair && status.RepairTarget != "" {
		if _, ok := w.Structure(status.RepairTarget); ok {
			each(towers, func(id string) model.Result { return w.TowerRepair(id, status.RepairTarget) })
			return
		}
	}

	if len(room.Hostiles) > 0 {
		var target *model.Hostile
		for i := range room.Hostiles {
			h := &room.Hostiles[i]
			if target == nil || towers[0].Pos.RangeTo(h.Pos) < towers[0].Pos.RangeTo(target.Pos) {
				target = h
			}
		}
		each(towers, func(id string) model.Result { return w.TowerAttack(id, target.ID) })
		return
	}

	if patient := mostDamagedCreep(w, room.Name); patient != nil {
		each(towers, func(id string) model.Result { return w.TowerHeal(id, patient.ID) })
		return
	}

	if s := criticalStructure(room); s != nil {
		each(towers, func(id string) model.Result { return w.TowerRepair(id, s.ID) })
	}
}

// each runs act for every tower; towers low on energy just sit out.
func each(towers []*model.Structure, act func(id string) model.Result) {
	for _, t := range towers {
		_ = act(t.ID)
	}
}

func mostDamagedCreep(w *world.World, room string) *model.Creep {
	var best *model.Creep
	for _, c := range w.Creeps() {
		if c.Pos.Room != room || c.Hits >= c.HitsMax || c.ID == "" {
			continue
		}
		if best == nil || c.HitsMax-c.Hits > best.HitsMax-best.Hits {
			best = c
		}
	}
	return best
}

// criticalStructure picks the weakest wall or rampart under 10%, or other
// structure under 50%.
func criticalStructure(room *model.Room) *model.Structure {
	var best *model.Structure
	for i := range room.Structures {
		s := &room.Structures[i]
		limit := 0.5
		if s.Type == model.StructureRampart || s.Type == model.StructureWall {
			limit = 0.1
		}
		if float64(s.Hits) >= float64(s.HitsMax)*limit {
			continue
		}
		if best == nil || s.Hits < best.Hits {
			best = s
		}
	}
	return best
}
