package agent

import (
	"testing"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/ipc"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

func newKernel(t *testing.T) *Kernel {
	t.Helper()
	k, err := NewKernel(config.Default(), 1)
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	return k
}

func countType(cmds []ipc.Envelope, typ string) int {
	n := 0
	for _, c := range cmds {
		if c.Type == typ {
			n++
		}
	}
	return n
}

func TestTickSpawnsAndWorks(t *testing.T) {
	k := newKernel(t)
	mem := store.NewMemory()
	mem.SetCreep("harvester-1", store.CreepMemory{Role: store.RoleHarvester, HomeRoom: "W1N1"})

	cmds := k.Tick(baseGameState(7), mem)

	if countType(cmds, ipc.TypeSpawn) != 1 {
		t.Errorf("spawn commands = %d, want 1", countType(cmds, ipc.TypeSpawn))
	}
	if countType(cmds, ipc.TypeHarvest) != 1 {
		t.Errorf("harvest commands = %d, want 1", countType(cmds, ipc.TypeHarvest))
	}
	// The new unit's memory is recorded as soon as it is ordered.
	if len(mem.Creeps) != 2 {
		t.Errorf("creep memory = %d entries, want 2", len(mem.Creeps))
	}
}

func TestTickGarbageCollectsOnInterval(t *testing.T) {
	tests := []struct {
		tick   int
		forgot bool
	}{
		{99, false},
		{100, true},
	}
	for _, tc := range tests {
		k := newKernel(t)
		mem := store.NewMemory()
		mem.SetCreep("dead", store.CreepMemory{Role: store.RoleBuilder})
		k.Tick(baseGameState(tc.tick), mem)
		if _, kept := mem.Creeps["dead"]; kept == tc.forgot {
			t.Errorf("tick %d: dead unit memory kept = %v", tc.tick, kept)
		}
	}
}

func TestReportedStructureEventInvalidatesPaths(t *testing.T) {
	k := newKernel(t)
	gs := baseGameState(7)
	w := world.New(baseGameState(7))
	k.paths.FindPath(w, pos(20, 20), pos(30, 20), model.SearchOpts{})
	k.paths.FindPath(w, pos(20, 20), pos(30, 20), model.SearchOpts{})
	before := k.paths.Stats()
	if before.Hits != 1 {
		t.Fatalf("second lookup should hit: %+v", before)
	}

	gs.Events = []model.Event{{Type: model.EventStructureBuilt, Room: "W1N1", StructureType: model.StructureRoad}}
	k.applyEvents(world.New(gs), nil)

	k.paths.FindPath(w, pos(20, 20), pos(30, 20), model.SearchOpts{})
	if after := k.paths.Stats(); after.Misses != before.Misses+1 {
		t.Errorf("lookup after structure event should miss: before %+v after %+v", before, after)
	}
}

func TestPhaseRecoversPanic(t *testing.T) {
	k := newKernel(t)
	ran := false
	k.phase("boom", "W1N1", 1, func() { panic("boom") })
	k.phase("next", "W1N1", 1, func() { ran = true })
	if !ran {
		t.Error("phase after a panic did not run")
	}
}
