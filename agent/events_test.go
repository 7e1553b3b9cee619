package agent

import (
	"testing"

	"github.com/nstehr/hive/model"
)

func pos(x, y int) model.Pos { return model.Pos{X: x, Y: y, Room: "W1N1"} }

// baseGameState returns a minimal owned room with one unit.
func baseGameState(tick int) model.GameState {
	return model.GameState{
		Tick:   tick,
		Player: "me",
		Rooms: []model.Room{{
			Name:            "W1N1",
			Controller:      &model.Controller{ID: "ctrl", Pos: pos(40, 40), My: true, Level: 2},
			EnergyAvailable: 300,
			EnergyCapacity:  300,
			Sources:         []model.Source{{ID: "src", Pos: pos(10, 10), Energy: 3000, EnergyCapacity: 3000}},
			Structures: []model.Structure{
				{ID: "spawn", Type: model.StructureSpawn, Pos: pos(25, 25), My: true, Energy: 300, EnergyCapacity: 300, Hits: 5000, HitsMax: 5000},
			},
		}},
		Creeps: []model.Creep{{Name: "harvester-1", Pos: pos(11, 11), Body: []model.BodyPart{{Type: model.Work, Hits: 100}, {Type: model.Carry, Hits: 100}, {Type: model.Move, Hits: 100}}, Capacity: 50}},
	}
}

func kinds(events []Event) map[EventKind]int {
	out := make(map[EventKind]int)
	for _, e := range events {
		out[e.Kind]++
	}
	return out
}

func TestDetectEvents_NilPrev(t *testing.T) {
	if events := detectEvents(baseGameState(100), nil); events != nil {
		t.Errorf("expected nil events for nil prev, got %+v", events)
	}
}

func TestDetectEvents_NoEvents(t *testing.T) {
	prev := takeSnapshot(baseGameState(100))
	if events := detectEvents(baseGameState(101), &prev); len(events) != 0 {
		t.Errorf("expected 0 events, got %+v", events)
	}
}

func TestDetectEvents(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(gs *model.GameState)
		want   map[EventKind]int
	}{
		{
			name: "structure built",
			mutate: func(gs *model.GameState) {
				gs.Rooms[0].Structures = append(gs.Rooms[0].Structures, model.Structure{ID: "ext", Type: model.StructureExtension, Pos: pos(26, 25)})
			},
			want: map[EventKind]int{EventStructureBuilt: 1},
		},
		{
			name:   "structure destroyed",
			mutate: func(gs *model.GameState) { gs.Rooms[0].Structures = nil },
			want:   map[EventKind]int{EventStructureDestroyed: 1},
		},
		{
			name:   "room out of view is not a loss",
			mutate: func(gs *model.GameState) { gs.Rooms = nil },
			want:   map[EventKind]int{},
		},
		{
			name: "first contact",
			mutate: func(gs *model.GameState) {
				gs.Rooms[0].Hostiles = []model.Hostile{{ID: "h", Pos: pos(5, 5)}}
			},
			want: map[EventKind]int{EventFirstContact: 1},
		},
		{
			name:   "level change",
			mutate: func(gs *model.GameState) { gs.Rooms[0].Controller.Level = 3 },
			want:   map[EventKind]int{EventLevelChanged: 1},
		},
		{
			name:   "unit lost",
			mutate: func(gs *model.GameState) { gs.Creeps = nil },
			want:   map[EventKind]int{EventUnitLost: 1},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prev := takeSnapshot(baseGameState(100))
			gs := baseGameState(101)
			tc.mutate(&gs)
			got := kinds(detectEvents(gs, &prev))
			if len(got) != len(tc.want) {
				t.Fatalf("events = %v, want %v", got, tc.want)
			}
			for k, n := range tc.want {
				if got[k] != n {
					t.Errorf("%s = %d, want %d", k, got[k], n)
				}
			}
		})
	}
}

func TestDetectEvents_ContactOnlyOnce(t *testing.T) {
	gs := baseGameState(100)
	gs.Rooms[0].Hostiles = []model.Hostile{{ID: "h", Pos: pos(5, 5)}}
	prev := takeSnapshot(gs)

	next := baseGameState(101)
	next.Rooms[0].Hostiles = []model.Hostile{{ID: "h", Pos: pos(6, 5)}}
	if got := kinds(detectEvents(next, &prev)); got[EventFirstContact] != 0 {
		t.Errorf("contact reported again: %v", got)
	}
}
