package rules

import (
	"github.com/nstehr/hive/model"
)

// RoomEnv wraps one room snapshot and exposes helper methods callable from
// expr expressions. It only reads the snapshot, so a rule's outcome depends
// on nothing but the room.
type RoomEnv struct {
	Room *model.Room
	Base map[string]int
}

func (e RoomEnv) Name() string { return e.Room.Name }

func (e RoomEnv) Level() int {
	if e.Room.Controller == nil {
		return 0
	}
	return e.Room.Controller.Level
}

func (e RoomEnv) StorageEnergy() int { return e.Room.StorageEnergy() }

func (e RoomEnv) EnergyAvailable() int { return e.Room.EnergyAvailable }

func (e RoomEnv) EnergyCapacity() int { return e.Room.EnergyCapacity }

func (e RoomEnv) SourceCount() int { return len(e.Room.Sources) }

func (e RoomEnv) HostileCount() int { return len(e.Room.Hostiles) }

func (e RoomEnv) SiteCount() int { return len(e.Room.Sites) }

// StructureCount counts structures of type t, e.g. StructureCount("tower").
func (e RoomEnv) StructureCount(t string) int { return len(e.Room.StructuresOf(t)) }

func (e RoomEnv) HasStorage() bool {
	_, ok := e.Room.Storage()
	return ok
}

// Desired returns the count computed for role before any rule ran.
func (e RoomEnv) Desired(role string) int { return e.Base[role] }

// DamagedRatio is the fraction of non-wall, non-rampart structures below frac
// of their max hits.
func (e RoomEnv) DamagedRatio(frac float64) float64 {
	total, damaged := 0, 0
	for _, s := range e.Room.Structures {
		if s.HitsMax == 0 || s.Type == model.StructureWall || s.Type == model.StructureRampart {
			continue
		}
		total++
		if float64(s.Hits) < float64(s.HitsMax)*frac {
			damaged++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(damaged) / float64(total)
}
