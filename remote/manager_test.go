package remote

import (
	"testing"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/ipc"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/movement"
	"github.com/nstehr/hive/pathcache"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

func newManager() *Manager {
	cfg := config.Default()
	return New(cfg.Expansion, movement.New(pathcache.New(cfg.PathCache), cfg.Movement, 1))
}

func homeRoom(storage int) model.Room {
	return model.Room{
		Name:       "W1N1",
		Controller: &model.Controller{ID: "ctrl", Pos: model.Pos{X: 40, Y: 40, Room: "W1N1"}, My: true, Owner: "me", Level: 4},
		Exits:      []string{"W2N1"},
		Structures: []model.Structure{
			{ID: "st", Type: model.StructureStorage, Pos: model.Pos{X: 25, Y: 26, Room: "W1N1"}, My: true, Energy: storage, Hits: 10000, HitsMax: 10000},
		},
	}
}

func remoteIntel(tick int) store.Intel {
	return store.Intel{
		Room:        "W2N1",
		Sources:     []store.SourceIntel{{ID: "rs1"}, {ID: "rs2"}},
		LastScouted: tick,
	}
}

func state(tick int, rooms ...model.Room) model.GameState {
	return model.GameState{Tick: tick, Player: "me", CPUBucket: 9000, GCLLevel: 1, Rooms: rooms}
}

func queuedRoles(mem *store.Memory) map[store.Role]int {
	out := make(map[store.Role]int)
	for _, q := range mem.SpawnQueue {
		out[q.Role]++
	}
	return out
}

func TestRunTwiceNoDuplicates(t *testing.T) {
	mem := store.NewMemory()
	mem.PutIntel(remoteIntel(900))
	w := world.New(state(1000, homeRoom(60000)))
	m := newManager()

	m.Run(w, mem)
	first := len(mem.SpawnQueue)
	m.Run(w, mem)

	if len(mem.SpawnQueue) != first {
		t.Fatalf("second run grew queue from %d to %d", first, len(mem.SpawnQueue))
	}
	got := queuedRoles(mem)
	want := map[store.Role]int{store.RoleReserver: 1, store.RoleRemoteHarvester: 2, store.RoleRemoteHauler: 1}
	for role, n := range want {
		if got[role] != n {
			t.Errorf("%s queued = %d, want %d", role, got[role], n)
		}
	}
	if len(got) != len(want) {
		t.Errorf("queued roles = %v", got)
	}
	if mem.Intel["W2N1"].HomeRoom != "W1N1" {
		t.Errorf("home not assigned: %+v", mem.Intel["W2N1"])
	}
	for _, q := range mem.SpawnQueue {
		if !q.ProducedBy("W1N1") || q.Memory.TargetRoom != "W2N1" {
			t.Errorf("request %+v", q)
		}
	}
}

func TestLiveUnitsSatisfyDemand(t *testing.T) {
	mem := store.NewMemory()
	mem.PutIntel(remoteIntel(900))
	gs := state(1000, homeRoom(60000))
	live := map[string]store.CreepMemory{
		"reserver-1":        {Role: store.RoleReserver, TargetRoom: "W2N1"},
		"remoteHarvester-1": {Role: store.RoleRemoteHarvester, TargetRoom: "W2N1", SourceID: "rs1"},
	}
	for name, cm := range live {
		gs.Creeps = append(gs.Creeps, model.Creep{Name: name, Pos: model.Pos{X: 10, Y: 10, Room: "W1N1"}})
		mem.SetCreep(name, cm)
	}

	newManager().Run(world.New(gs), mem)

	got := queuedRoles(mem)
	if got[store.RoleReserver] != 0 || got[store.RoleRemoteHarvester] != 1 || got[store.RoleRemoteHauler] != 1 {
		t.Errorf("queued = %v", got)
	}
	for _, q := range mem.SpawnQueue {
		if q.Role == store.RoleRemoteHarvester && q.Memory.SourceID != "rs2" {
			t.Errorf("harvester for covered source: %+v", q.Memory)
		}
	}
}

func TestVisibleHostilesQueueDefender(t *testing.T) {
	mem := store.NewMemory()
	mem.PutIntel(remoteIntel(900))
	visible := model.Room{
		Name:     "W2N1",
		Hostiles: []model.Hostile{{ID: "h", Pos: model.Pos{X: 5, Y: 5, Room: "W2N1"}}},
	}
	w := world.New(state(1000, homeRoom(60000), visible))
	m := newManager()
	m.Run(w, mem)
	m.Run(w, mem)

	if !mem.Intel["W2N1"].Hostile {
		t.Error("hostile flag not refreshed from visibility")
	}
	if got := queuedRoles(mem)[store.RoleRemoteDefender]; got != 1 {
		t.Errorf("remote defenders queued = %d, want 1", got)
	}
}

func TestExpansionGates(t *testing.T) {
	tests := []struct {
		name    string
		storage int
		bucket  int
	}{
		{"low storage", 49999, 9000},
		{"low bucket", 60000, 6999},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mem := store.NewMemory()
			mem.PutIntel(remoteIntel(900))
			gs := state(1000, homeRoom(tc.storage))
			gs.CPUBucket = tc.bucket
			newManager().Run(world.New(gs), mem)
			if len(mem.SpawnQueue) != 0 {
				t.Errorf("queued %v below gate", queuedRoles(mem))
			}
		})
	}
}

func TestClaimWhenCapacity(t *testing.T) {
	mem := store.NewMemory()
	mem.PutIntel(remoteIntel(900))
	gs := state(1000, homeRoom(60000))
	gs.GCLLevel = 2
	newManager().Run(world.New(gs), mem)

	for _, q := range mem.SpawnQueue {
		if q.Role == store.RoleReserver && !q.Memory.Claim {
			t.Errorf("reserver not told to claim: %+v", q.Memory)
		}
	}
}

func TestScoutingRequests(t *testing.T) {
	mem := store.NewMemory()
	w := world.New(state(1000, homeRoom(0)))
	m := newManager()
	m.Run(w, mem)
	m.Run(w, mem)

	if len(mem.ScoutQueue) != 1 || mem.ScoutQueue[0] != "W2N1" {
		t.Fatalf("scout queue = %v", mem.ScoutQueue)
	}
	if len(mem.SpawnQueue) != 1 || mem.SpawnQueue[0].Role != store.RoleScout || mem.SpawnQueue[0].Memory.TargetRoom != "W2N1" {
		t.Errorf("spawn queue = %+v", mem.SpawnQueue)
	}

	// Fresh intel needs no scout; stale intel does.
	mem = store.NewMemory()
	mem.PutIntel(remoteIntel(1000 - 5000))
	m.Run(w, mem)
	if len(mem.ScoutQueue) != 0 {
		t.Errorf("fresh intel rescouted: %v", mem.ScoutQueue)
	}
	mem = store.NewMemory()
	mem.PutIntel(remoteIntel(1000 - 5001))
	m.Run(w, mem)
	if len(mem.ScoutQueue) != 1 {
		t.Errorf("stale intel not rescouted: %v", mem.ScoutQueue)
	}
}

func TestInboundScoutNotDuplicated(t *testing.T) {
	mem := store.NewMemory()
	gs := state(1000, homeRoom(0))
	gs.Creeps = []model.Creep{{Name: "scout-1", Pos: model.Pos{X: 25, Y: 25, Room: "W1N1"}, Body: []model.BodyPart{{Type: model.Move, Hits: 100}}}}
	mem.SetCreep("scout-1", store.CreepMemory{Role: store.RoleScout, TargetRoom: "W2N1"})

	w := world.New(gs)
	newManager().Run(w, mem)

	if len(mem.SpawnQueue) != 0 {
		t.Errorf("scout queued while one is inbound: %+v", mem.SpawnQueue)
	}
	moved := false
	for _, c := range w.Commands() {
		if c.Type == ipc.TypeMove {
			moved = true
		}
	}
	if !moved {
		t.Error("inbound scout did not move toward its target")
	}
}

func TestScoutArrival(t *testing.T) {
	mem := store.NewMemory()
	mem.EnqueueScout("W2N1")
	target := model.Room{
		Name:       "W2N1",
		Controller: &model.Controller{ID: "c2", Pos: model.Pos{X: 20, Y: 20, Room: "W2N1"}, Reservation: &model.Reservation{Username: "rival", TicksToEnd: 100}},
		Sources:    []model.Source{{ID: "rs1", Pos: model.Pos{X: 10, Y: 10, Room: "W2N1"}}},
		Mineral:    &model.Mineral{ID: "m", Type: "H"},
	}
	gs := state(1000, homeRoom(0), target)
	gs.Creeps = []model.Creep{{Name: "scout-1", Pos: model.Pos{X: 1, Y: 25, Room: "W2N1"}}}
	mem.SetCreep("scout-1", store.CreepMemory{Role: store.RoleScout, TargetRoom: "W2N1"})

	w := world.New(gs)
	newManager().Run(w, mem)

	in := mem.Intel["W2N1"]
	if in == nil || in.LastScouted != 1000 || !in.HasMineral || in.ReservedBy != "rival" || len(in.Sources) != 1 {
		t.Fatalf("intel = %+v", in)
	}
	if len(mem.ScoutQueue) != 0 {
		t.Errorf("scout queue = %v", mem.ScoutQueue)
	}
	suicides := 0
	for _, c := range w.Commands() {
		if c.Type == ipc.TypeSuicide {
			suicides++
		}
	}
	if suicides != 1 {
		t.Errorf("suicides = %d, want 1", suicides)
	}
}

func TestObserveOwnRoom(t *testing.T) {
	r := homeRoom(0)
	r.Controller.Owner = ""
	if in := Observe(&r, 5, "me"); in.Owner != "me" || in.Level != 4 {
		t.Errorf("intel = %+v", in)
	}
}

func TestStuckScoutGivesUpTarget(t *testing.T) {
	mem := store.NewMemory()
	mem.EnqueueScout("W2N1")
	at := model.Pos{X: 20, Y: 25, Room: "W1N1"}
	scout := model.Creep{Name: "scout-1", Pos: at, Body: []model.BodyPart{{Type: model.Move, Hits: 100}}}
	mem.SetCreep("scout-1", store.CreepMemory{Role: store.RoleScout, TargetRoom: "W2N1", LastPos: &at, StuckTicks: 2})
	m := newManager()

	gs := state(1000, homeRoom(0))
	gs.Creeps = []model.Creep{scout}
	w := world.New(gs)
	m.Run(w, mem)

	cm := mem.Creeps["scout-1"]
	if cm.TargetRoom != "" || cm.StuckTicks != 0 {
		t.Fatalf("stuck scout memory = %+v, want target cleared and counter reset", cm)
	}
	moves := 0
	for _, c := range w.Commands() {
		if c.Type == ipc.TypeMove {
			moves++
		}
	}
	if moves == 0 {
		t.Error("no recovery step issued")
	}
	if queuedRoles(mem)[store.RoleScout] != 0 {
		t.Errorf("replacement queued while the scout was still inbound")
	}

	// Next tick the idle scout is retired and the room gets a new scout.
	gs = state(1001, homeRoom(0))
	gs.Creeps = []model.Creep{scout}
	w = world.New(gs)
	m.Run(w, mem)

	if queuedRoles(mem)[store.RoleScout] != 1 {
		t.Errorf("scout requests = %d, want 1", queuedRoles(mem)[store.RoleScout])
	}
	retired := false
	for _, c := range w.Commands() {
		retired = retired || c.Type == ipc.TypeSuicide
	}
	if !retired {
		t.Error("scout without target not retired")
	}
}
