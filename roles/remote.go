package roles

import (
	"log/slog"

	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/movement"
	"github.com/nstehr/hive/store"
)

// reserver reserves, or claims when told to, the controller of its target
// room.
type reserver struct{}

func (reserver) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	if cm.TargetRoom == "" {
		slog.Error("reserver has no target room", "creep", c.Name)
		return
	}
	esc := movement.ClearField(store.FieldTargetRoom)
	if arrived, _ := travel(t, c, cm, cm.TargetRoom, esc); !arrived {
		return
	}
	room, ok := t.World.Room(cm.TargetRoom)
	if !ok || room.Controller == nil {
		slog.Error("reserver found no controller", "creep", c.Name, "room", cm.TargetRoom)
		return
	}

	var res model.Result
	if cm.Claim {
		res = t.World.Claim(c, room.Name)
	} else {
		res = t.World.Reserve(c, room.Name)
	}
	if res == model.ErrNotInRange {
		moveTo(t, c, cm, room.Controller.Pos, 1, esc)
	}
}

// remoteHarvester mines its assigned source in a remote room, keeping the
// container there repaired.
type remoteHarvester struct{}

func (remoteHarvester) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	if cm.TargetRoom == "" || cm.SourceID == "" {
		slog.Error("remote harvester has invalid memory", "creep", c.Name, "room", cm.TargetRoom, "source", cm.SourceID)
		return
	}
	if c.Pos.Room != cm.TargetRoom {
		// No recovery on the way out: a stuck harvester is retired.
		if t.Moves.MoveTo(t.World, c, cm, model.Center(cm.TargetRoom), model.SearchOpts{Range: 1}) == model.ErrStuck {
			slog.Warn("remote harvester stuck travelling, retiring", "creep", c.Name, "room", cm.TargetRoom)
			t.World.Suicide(c)
		}
		return
	}
	src, ok := t.World.Source(cm.SourceID)
	if !ok {
		dangling(c, cm, store.FieldSource, cm.SourceID)
		return
	}

	container := containerFor(t, c, cm, src.Pos)
	esc := movement.ClearField(store.FieldContainer)
	switch {
	case container != nil && c.Pos != container.Pos:
		moveTo(t, c, cm, container.Pos, 0, esc)
		return
	case container == nil && c.Pos.RangeTo(src.Pos) > 1:
		moveTo(t, c, cm, src.Pos, 1, esc)
		return
	}

	if container != nil && c.Energy > 0 && float64(container.Hits) < float64(container.HitsMax)*0.8 {
		t.World.Repair(c, container.ID)
		return
	}
	if !c.Full() {
		t.World.Harvest(c, src.ID)
	}
	if container != nil && c.Energy > 0 {
		t.World.Transfer(c, container.ID)
	}
}

// remoteHauler ferries energy from containers in its remote room back to
// storage, or a spawn, at home.
type remoteHauler struct{}

const remoteHaulThreshold = 100

func (remoteHauler) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	refresh(c, cm)
	esc := movement.FlipState(cycle)
	if cm.State == store.StateGather {
		if cm.TargetRoom == "" {
			slog.Error("remote hauler has no target room", "creep", c.Name)
			return
		}
		if arrived, _ := travel(t, c, cm, cm.TargetRoom, esc); !arrived {
			return
		}
		room, ok := t.World.Room(cm.TargetRoom)
		if !ok {
			return
		}
		src := closestStructure(room, c.Pos, func(s *model.Structure) bool {
			return s.Type == model.StructureContainer && s.Energy > remoteHaulThreshold
		})
		if src != nil && t.World.Withdraw(c, src.ID) == model.ErrNotInRange {
			moveTo(t, c, cm, src.Pos, 1, esc)
		}
		return
	}

	if cm.HomeRoom == "" {
		slog.Error("remote hauler has no home room", "creep", c.Name)
		return
	}
	if arrived, _ := travel(t, c, cm, cm.HomeRoom, esc); !arrived {
		return
	}
	room, ok := t.World.Room(cm.HomeRoom)
	if !ok {
		return
	}
	target, ok := room.Storage()
	if !ok {
		target = closestStructure(room, c.Pos, func(s *model.Structure) bool {
			return s.Type == model.StructureSpawn && s.My
		})
	}
	if target != nil && t.World.Transfer(c, target.ID) == model.ErrNotInRange {
		moveTo(t, c, cm, target.Pos, 1, esc)
	}
}
