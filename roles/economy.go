package roles

import (
	"log/slog"

	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/movement"
	"github.com/nstehr/hive/store"
)

// harvester mines the nearest source and fills spawns and extensions.
type harvester struct{}

func (harvester) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	refresh(c, cm)
	if cm.State == store.StateGather {
		harvestNearest(t, c, cm)
		return
	}
	room, ok := t.World.Room(c.Pos.Room)
	if !ok {
		return
	}
	target := closestStructure(room, c.Pos, func(s *model.Structure) bool {
		return (s.Type == model.StructureSpawn || s.Type == model.StructureExtension) && s.My && s.FreeCapacity() > 0
	})
	if target == nil {
		upgradeHome(t, c, cm)
		return
	}
	if t.World.Transfer(c, target.ID) == model.ErrNotInRange {
		moveTo(t, c, cm, target.Pos, 1, movement.FlipState(cycle))
	}
}

// staticHarvester stands on the container next to its assigned source and
// mines into it.
type staticHarvester struct{}

func (staticHarvester) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	if cm.SourceID == "" {
		slog.Error("static harvester has no source", "creep", c.Name)
		return
	}
	src, ok := t.World.Source(cm.SourceID)
	if !ok {
		dangling(c, cm, store.FieldSource, cm.SourceID)
		return
	}

	container := containerFor(t, c, cm, src.Pos)
	if container == nil {
		slog.Warn("no container at source", "creep", c.Name, "source", src.ID)
		return
	}
	if c.Pos != container.Pos {
		moveTo(t, c, cm, container.Pos, 0, movement.ClearField(store.FieldContainer))
		return
	}
	t.World.Harvest(c, src.ID)
}

// containerFor resolves the unit's remembered container, or finds the one in
// range 1 of the source and remembers it.
func containerFor(t *Tick, c *model.Creep, cm *store.CreepMemory, source model.Pos) *model.Structure {
	if cm.ContainerID != "" {
		if s, ok := t.World.Structure(cm.ContainerID); ok {
			return s
		}
		dangling(c, cm, store.FieldContainer, cm.ContainerID)
	}
	room, ok := t.World.Room(source.Room)
	if !ok {
		return nil
	}
	s := closestStructure(room, source, func(s *model.Structure) bool {
		return s.Type == model.StructureContainer && s.Pos.RangeTo(source) <= 1
	})
	if s != nil {
		cm.ContainerID = s.ID
	}
	return s
}

// hauler carries energy from source containers to spawns, extensions and
// towers, and to storage once those are full.
type hauler struct{}

// haulThreshold keeps haulers from making trips for a trickle.
const haulThreshold = 200

func (hauler) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	refresh(c, cm)
	room, ok := t.World.Room(c.Pos.Room)
	if !ok {
		return
	}
	if cm.State == store.StateGather {
		src := closestStructure(room, c.Pos, func(s *model.Structure) bool {
			return s.Type == model.StructureContainer && s.Energy > haulThreshold
		})
		if src != nil && t.World.Withdraw(c, src.ID) == model.ErrNotInRange {
			moveTo(t, c, cm, src.Pos, 1, movement.FlipState(cycle))
		}
		return
	}

	target := closestStructure(room, c.Pos, func(s *model.Structure) bool {
		switch s.Type {
		case model.StructureSpawn, model.StructureExtension, model.StructureTower:
			return s.My && s.FreeCapacity() > 0
		}
		return false
	})
	if target == nil {
		if st, ok := room.Storage(); ok && st.FreeCapacity() > 0 {
			target = st
		}
	}
	if target != nil && t.World.Transfer(c, target.ID) == model.ErrNotInRange {
		moveTo(t, c, cm, target.Pos, 1, movement.FlipState(cycle))
	}
}

type upgrader struct{}

func (upgrader) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	refresh(c, cm)
	if cm.State == store.StateGather {
		gatherEnergy(t, c, cm)
		return
	}
	upgradeHome(t, c, cm)
}

// builder builds the nearest construction site and upgrades when there is
// nothing to build.
type builder struct{}

func (builder) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	refresh(c, cm)
	if cm.State == store.StateGather {
		gatherEnergy(t, c, cm)
		return
	}
	site := builderSite(t, c, cm)
	if site == nil {
		upgradeHome(t, c, cm)
		return
	}
	if t.World.Build(c, site.ID) == model.ErrNotInRange {
		moveTo(t, c, cm, site.Pos, 3, movement.ClearField(store.FieldTarget))
	}
}

// builderSite keeps a builder on the site it started until the site is
// finished, then picks the nearest own site in its room.
func builderSite(t *Tick, c *model.Creep, cm *store.CreepMemory) *model.ConstructionSite {
	if cm.TargetID != "" {
		if s, ok := t.World.Site(cm.TargetID); ok {
			return s
		}
		dangling(c, cm, store.FieldTarget, cm.TargetID)
	}
	room, ok := t.World.Room(c.Pos.Room)
	if !ok {
		return nil
	}
	site := closest(c.Pos, room.Sites, func(s *model.ConstructionSite) model.Pos { return s.Pos }, func(s *model.ConstructionSite) bool { return s.My })
	if site != nil {
		cm.TargetID = site.ID
	}
	return site
}

// repairer keeps structures up, ramparts first while the room is under
// attack.
type repairer struct{}

func (repairer) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	refresh(c, cm)
	if cm.State == store.StateGather {
		repairerGather(t, c, cm)
		return
	}
	room, ok := t.World.Room(c.Pos.Room)
	if !ok {
		return
	}
	underAttack := false
	if rm, ok := t.Memory.Rooms[room.Name]; ok {
		underAttack = rm.Threat.Level != store.ThreatNone
	}

	target := repairTarget(room, c.Pos, underAttack)
	if target == nil {
		if spawns := room.StructuresOf(model.StructureSpawn); len(spawns) > 0 {
			moveTo(t, c, cm, spawns[0].Pos, 3, movement.FlipState(cycle))
		}
		return
	}
	if t.World.Repair(c, target.ID) == model.ErrNotInRange {
		moveTo(t, c, cm, target.Pos, 3, movement.FlipState(cycle))
	}
}

// repairTarget walks the repair priorities: critical ramparts in combat,
// containers under 50% then 80%, other infrastructure under 80%, and ramparts
// under 80% in peacetime.
func repairTarget(room *model.Room, from model.Pos, underAttack bool) *model.Structure {
	below := func(s *model.Structure, frac float64) bool {
		return s.HitsMax > 0 && float64(s.Hits) < float64(s.HitsMax)*frac
	}
	var steps []func(*model.Structure) bool
	if underAttack {
		steps = append(steps, func(s *model.Structure) bool { return s.Type == model.StructureRampart && below(s, 0.3) })
	}
	steps = append(steps,
		func(s *model.Structure) bool { return s.Type == model.StructureContainer && below(s, 0.5) },
		func(s *model.Structure) bool { return s.Type == model.StructureContainer && below(s, 0.8) },
		func(s *model.Structure) bool {
			return s.Type != model.StructureWall && s.Type != model.StructureRampart && below(s, 0.8)
		},
	)
	if !underAttack {
		steps = append(steps, func(s *model.Structure) bool { return s.Type == model.StructureRampart && below(s, 0.8) })
	}
	for _, keep := range steps {
		if s := closestStructure(room, from, keep); s != nil {
			return s
		}
	}
	return nil
}

func repairerGather(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	room, ok := t.World.Room(c.Pos.Room)
	if !ok {
		return
	}
	src, ok := room.Storage()
	if !ok || src.Energy == 0 {
		src = closestStructure(room, c.Pos, func(s *model.Structure) bool {
			return s.Type == model.StructureContainer && s.Energy > 0
		})
	}
	if src == nil {
		harvestNearest(t, c, cm)
		return
	}
	if t.World.Withdraw(c, src.ID) == model.ErrNotInRange {
		moveTo(t, c, cm, src.Pos, 1, movement.FlipState(cycle))
	}
}
