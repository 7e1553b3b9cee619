package planner

import (
	"encoding/json"
	"testing"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/ipc"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/pathcache"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

func at(x, y int) model.Pos { return model.Pos{X: x, Y: y, Room: "W1N1"} }

func room(level int) model.Room {
	return model.Room{
		Name:       "W1N1",
		Controller: &model.Controller{ID: "ctrl", Pos: at(10, 20), My: true, Level: level},
		Sources:    []model.Source{{ID: "src", Pos: at(10, 10)}},
		Structures: []model.Structure{
			{ID: "spawn", Type: model.StructureSpawn, Pos: at(30, 30), My: true, Hits: 5000, HitsMax: 5000},
		},
	}
}

func newPlanner() (*Planner, *pathcache.Cache) {
	cfg := config.Default()
	paths := pathcache.New(cfg.PathCache)
	return New(cfg.Planner, paths), paths
}

func sites(t *testing.T, w *world.World, structureType string) []model.Pos {
	t.Helper()
	var out []model.Pos
	for _, c := range w.Commands() {
		if c.Type != ipc.TypeCreateSite {
			continue
		}
		var cs ipc.CreateSiteCommand
		if err := json.Unmarshal(c.Data, &cs); err != nil {
			t.Fatal(err)
		}
		if cs.StructureType == structureType {
			out = append(out, cs.Pos)
		}
	}
	return out
}

func TestStructureCountInvalidatesPaths(t *testing.T) {
	p, paths := newPlanner()
	mem := store.NewMemory()

	r := room(1)
	w := world.New(model.GameState{Tick: 7, Rooms: []model.Room{r}})
	paths.FindPath(w, at(20, 20), at(25, 20), model.SearchOpts{})
	wr, _ := w.Room("W1N1")
	p.Run(w, mem, wr)
	if paths.Stats().Size != 1 {
		t.Fatalf("first observation should not invalidate, size = %d", paths.Stats().Size)
	}

	r.Structures = append(r.Structures, model.Structure{ID: "ext", Type: model.StructureExtension, Pos: at(31, 30), My: true})
	w = world.New(model.GameState{Tick: 8, Rooms: []model.Room{r}})
	wr, _ = w.Room("W1N1")
	p.Run(w, mem, wr)

	if paths.Stats().Size != 0 {
		t.Errorf("cache size = %d after structure count change", paths.Stats().Size)
	}
	if mem.Rooms["W1N1"].StructureCount != 2 {
		t.Errorf("count = %d", mem.Rooms["W1N1"].StructureCount)
	}
}

func TestContainers(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		tick     int
		existing bool
		want     int
	}{
		{"planned next to source", 2, 1000, false, 1},
		{"below level", 1, 1000, false, 0},
		{"off interval", 2, 1001, false, 0},
		{"already has one", 2, 1000, true, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, _ := newPlanner()
			mem := store.NewMemory()
			r := room(tc.level)
			if tc.existing {
				r.Structures = append(r.Structures, model.Structure{ID: "c", Type: model.StructureContainer, Pos: at(11, 9)})
			}
			w := world.New(model.GameState{Tick: tc.tick, Rooms: []model.Room{r}})
			wr, _ := w.Room("W1N1")
			p.Run(w, mem, wr)

			got := sites(t, w, model.StructureContainer)
			if len(got) != tc.want {
				t.Fatalf("container sites = %v, want %d", got, tc.want)
			}
			if tc.want == 0 {
				return
			}
			if got[0].RangeTo(at(10, 10)) != 1 || got[0].Y != 11 {
				t.Errorf("container at %v, want the step toward the controller", got[0])
			}
			if plan := mem.Plans["W1N1"]; plan == nil || len(plan.Containers) != 1 || plan.ContainerTick != tc.tick {
				t.Errorf("plan = %+v", plan)
			}
		})
	}
}

func TestRoadsPlannedAndBuilt(t *testing.T) {
	p, _ := newPlanner()
	mem := store.NewMemory()
	r := room(3)
	r.Structures = append(r.Structures, model.Structure{ID: "c", Type: model.StructureContainer, Pos: at(11, 9)})
	w := world.New(model.GameState{Tick: 1000, Rooms: []model.Room{r}})
	wr, _ := w.Room("W1N1")
	p.Run(w, mem, wr)

	plan := mem.Plans["W1N1"]
	if plan == nil || len(plan.Roads) == 0 {
		t.Fatalf("no road plan: %+v", plan)
	}
	if got := sites(t, w, model.StructureRoad); len(got) != len(plan.Roads) {
		t.Errorf("road sites = %d, plan = %d", len(got), len(plan.Roads))
	}

	// The plan is kept; the next road pass reuses it without replanning.
	roads := len(plan.Roads)
	w = world.New(model.GameState{Tick: 2000, Rooms: []model.Room{r}})
	wr, _ = w.Room("W1N1")
	p.Run(w, mem, wr)
	if len(mem.Plans["W1N1"].Roads) != roads || mem.Plans["W1N1"].RoadTick != 1000 {
		t.Errorf("road plan replaced")
	}
}

func TestHighways(t *testing.T) {
	tests := []struct {
		name    string
		hostile bool
		storage bool
		want    bool
	}{
		{"planned", false, true, true},
		{"hostile remote", true, true, false},
		{"no storage", false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, _ := newPlanner()
			mem := store.NewMemory()
			dest := model.Pos{X: 44, Y: 25, Room: "W2N1"}
			mem.PutIntel(store.Intel{Room: "W2N1", Sources: []store.SourceIntel{{ID: "rs", Pos: dest}}, Hostile: tc.hostile, HomeRoom: "W1N1"})

			r := room(4)
			if tc.storage {
				r.Structures = append(r.Structures, model.Structure{ID: "st", Type: model.StructureStorage, Pos: at(6, 25), My: true})
			}
			w := world.New(model.GameState{Tick: 2500, Rooms: []model.Room{r}})
			wr, _ := w.Room("W1N1")
			p.Run(w, mem, wr)

			h, ok := mem.Highways[store.HighwayKey("W1N1", "W2N1")]
			if ok != tc.want {
				t.Fatalf("highway present = %v, want %v", ok, tc.want)
			}
			if !ok {
				return
			}
			if last := h.Path[len(h.Path)-1]; last.RangeTo(dest) > 1 || h.Tick != 2500 {
				t.Errorf("highway ends at %v (tick %d)", last, h.Tick)
			}
			// Only the visible home room gets road sites.
			for _, pos := range sites(t, w, model.StructureRoad) {
				if pos.Room != "W1N1" {
					t.Errorf("road site in invisible room: %v", pos)
				}
			}
			if len(sites(t, w, model.StructureRoad)) == 0 {
				t.Error("no highway road sites in home room")
			}
		})
	}
}
