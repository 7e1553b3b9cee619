package spawn

import (
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/rules"
	"github.com/nstehr/hive/store"
)

// DesiredCounts computes the room's target population from the snapshot and
// the static configuration alone. No count is negative.
func (m *Manager) DesiredCounts(room *model.Room) map[store.Role]int {
	counts := make(map[store.Role]int, len(m.cfg.BaseCounts)+3)
	for role, n := range m.cfg.BaseCounts {
		counts[store.Role(role)] = n
	}

	if containers := SourceContainers(room); containers > 0 {
		counts[store.RoleStaticHarvester] = len(room.Sources)
		counts[store.RoleHauler] = max(1, (containers+1)/2)
		counts[store.RoleHarvester] = 0
	}

	if room.Controller != nil && room.Controller.Level >= 8 {
		counts[store.RoleUpgrader] = 1
	} else {
		energy := room.StorageEnergy()
		for _, tier := range m.cfg.StorageTiers {
			if energy >= tier {
				counts[store.RoleUpgrader]++
			}
		}
	}

	if needsRepair(room, m.cfg.RepairThreshold) {
		counts[store.RoleRepairer]++
	}

	base := make(map[string]int, len(counts))
	for role, n := range counts {
		base[string(role)] = n
	}
	m.rules.Apply(rules.RoomEnv{Room: room, Base: base}, counts)

	for role, n := range counts {
		if n < 0 {
			counts[role] = 0
		}
	}
	return counts
}

// SourceContainers counts containers within range 1 of any source.
func SourceContainers(room *model.Room) int {
	n := 0
	for _, c := range room.StructuresOf(model.StructureContainer) {
		for _, s := range room.Sources {
			if c.Pos.RangeTo(s.Pos) <= 1 {
				n++
				break
			}
		}
	}
	return n
}

func needsRepair(room *model.Room, threshold float64) bool {
	for _, s := range room.Structures {
		if s.Type == model.StructureWall || s.Type == model.StructureRampart || s.HitsMax == 0 {
			continue
		}
		if float64(s.Hits) < float64(s.HitsMax)*threshold {
			return true
		}
	}
	return false
}
