package roles

import (
	"log/slog"

	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/movement"
	"github.com/nstehr/hive/store"
)

// cycle is the gather/work loop shared by every energy-carrying role.
var cycle = store.Machine{
	Initial: store.StateGather,
	Next: map[store.State]store.State{
		store.StateGather: store.StateWork,
		store.StateWork:   store.StateGather,
	},
}

// refresh flips a carrier between gathering and working on full/empty.
func refresh(c *model.Creep, cm *store.CreepMemory) {
	if cm.State == "" {
		cm.State = cycle.Initial
	}
	switch {
	case cm.State == store.StateWork && c.Empty():
		cycle.Flip(cm)
	case cm.State == store.StateGather && c.Full():
		cycle.Flip(cm)
	}
}

// moveTo walks toward target and runs recovery when the unit is stuck.
func moveTo(t *Tick, c *model.Creep, cm *store.CreepMemory, target model.Pos, rng int, esc movement.Escalation) model.Result {
	res := t.Moves.MoveTo(t.World, c, cm, target, model.SearchOpts{Range: rng})
	if res == model.ErrStuck {
		t.Moves.Recover(t.World, c, cm, esc)
	}
	return res
}

// closest returns the element nearest to from among those keep accepts, by
// range. Ties go to the earlier element.
func closest[T any](from model.Pos, items []T, pos func(*T) model.Pos, keep func(*T) bool) *T {
	var best *T
	bestRange := 0
	for i := range items {
		it := &items[i]
		if keep != nil && !keep(it) {
			continue
		}
		r := pos(it).RangeTo(from)
		if best == nil || r < bestRange {
			best, bestRange = it, r
		}
	}
	return best
}

func structurePos(s *model.Structure) model.Pos { return s.Pos }

func closestStructure(room *model.Room, from model.Pos, keep func(*model.Structure) bool) *model.Structure {
	return closest(from, room.Structures, structurePos, keep)
}

// gatherEnergy fills a unit from storage, or harvests the nearest source with
// energy left when the room has no stored energy.
func gatherEnergy(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	room, ok := t.World.Room(c.Pos.Room)
	if !ok {
		return
	}
	if st, ok := room.Storage(); ok && st.Energy > 0 {
		if t.World.Withdraw(c, st.ID) == model.ErrNotInRange {
			moveTo(t, c, cm, st.Pos, 1, movement.FlipState(cycle))
		}
		return
	}
	harvestNearest(t, c, cm)
}

func harvestNearest(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	room, ok := t.World.Room(c.Pos.Room)
	if !ok {
		return
	}
	src := closest(c.Pos, room.Sources, func(s *model.Source) model.Pos { return s.Pos }, func(s *model.Source) bool { return s.Energy > 0 })
	if src == nil {
		return
	}
	if t.World.Harvest(c, src.ID) == model.ErrNotInRange {
		moveTo(t, c, cm, src.Pos, 1, movement.FlipState(cycle))
	}
}

// travel moves a unit toward the center of room. It reports whether the unit
// is already there.
func travel(t *Tick, c *model.Creep, cm *store.CreepMemory, room string, esc movement.Escalation) (arrived bool, res model.Result) {
	if c.Pos.Room == room {
		return true, model.NoOp
	}
	return false, moveTo(t, c, cm, model.Center(room), 1, esc)
}

// upgradeHome works on the controller of the unit's current room.
func upgradeHome(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	room, ok := t.World.Room(c.Pos.Room)
	if !ok || room.Controller == nil || !room.Controller.My {
		return
	}
	if t.World.Upgrade(c, room.Name) == model.ErrNotInRange {
		moveTo(t, c, cm, room.Controller.Pos, 3, movement.FlipState(cycle))
	}
}

// dangling clears a reference to an object that no longer exists.
func dangling(c *model.Creep, cm *store.CreepMemory, f store.Field, id string) {
	cm.Clear(f)
	slog.Info("cleared dangling reference", "creep", c.Name, "role", cm.Role, "field", f, "id", id)
}
