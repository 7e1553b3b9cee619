package movement

import (
	"testing"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/pathcache"
	"github.com/nstehr/hive/store"
)

type fakeEnv struct {
	tick    int
	moveRes model.Result
	moves   []model.Direction
}

func (f *fakeEnv) Time() int { return f.tick }

// Search returns a straight-line path one step at a time.
func (f *fakeEnv) Search(origin, goal model.Pos, opts model.SearchOpts) (model.PathResult, error) {
	step := origin
	if goal.X > origin.X {
		step.X++
	} else if goal.X < origin.X {
		step.X--
	}
	return model.PathResult{Path: []model.Pos{step}}, nil
}

func (f *fakeEnv) Structures(string) []model.Structure { return nil }

func (f *fakeEnv) Move(c *model.Creep, d model.Direction) model.Result {
	f.moves = append(f.moves, d)
	return f.moveRes
}

func newSupervisor() *Supervisor {
	cfg := config.Default()
	return New(pathcache.New(cfg.PathCache), cfg.Movement, 1)
}

func walker(x int) *model.Creep {
	return &model.Creep{
		Name: "w",
		Pos:  model.Pos{X: x, Y: 10, Room: "W1N1"},
		Body: []model.BodyPart{{Type: model.Move, Hits: 100}},
	}
}

var goal = model.Pos{X: 30, Y: 10, Room: "W1N1"}

func TestStuckOnThirdUnchangedTick(t *testing.T) {
	s := newSupervisor()
	env := &fakeEnv{moveRes: model.OK}
	c := walker(10)
	mem := &store.CreepMemory{Role: store.RoleHarvester}

	// First attempt records the position; the next three see it unchanged.
	want := []model.Result{model.OK, model.OK, model.OK, model.ErrStuck}
	for i, w := range want {
		env.tick = i
		if got := s.MoveTo(env, c, mem, goal, model.SearchOpts{}); got != w {
			t.Fatalf("attempt %d = %v, want %v (stuck=%d)", i, got, w, mem.StuckTicks)
		}
	}
}

func TestPositionChangeResets(t *testing.T) {
	s := newSupervisor()
	env := &fakeEnv{moveRes: model.OK}
	c := walker(10)
	mem := &store.CreepMemory{}

	s.MoveTo(env, c, mem, goal, model.SearchOpts{})
	s.MoveTo(env, c, mem, goal, model.SearchOpts{})
	s.MoveTo(env, c, mem, goal, model.SearchOpts{})
	if mem.StuckTicks != 2 {
		t.Fatalf("stuck = %d, want 2", mem.StuckTicks)
	}
	c.Pos.X = 11
	if res := s.MoveTo(env, c, mem, goal, model.SearchOpts{}); res != model.OK {
		t.Errorf("after moving = %v", res)
	}
	if mem.StuckTicks != 0 {
		t.Errorf("stuck = %d after position change", mem.StuckTicks)
	}
}

func TestTiredCountsAndInRangeResets(t *testing.T) {
	s := newSupervisor()
	env := &fakeEnv{moveRes: model.OK}
	c := walker(10)
	c.Fatigue = 4
	mem := &store.CreepMemory{}

	for i := 0; i < 3; i++ {
		s.MoveTo(env, c, mem, goal, model.SearchOpts{})
	}
	if mem.StuckTicks != 2 {
		t.Fatalf("tired attempts: stuck = %d, want 2", mem.StuckTicks)
	}
	if len(env.moves) != 0 {
		t.Error("tired unit issued a move")
	}

	c.Fatigue = 0
	if res := s.MoveTo(env, c, mem, c.Pos, model.SearchOpts{}); res != model.NoOp {
		t.Errorf("in range = %v, want NO_OP", res)
	}
	if mem.StuckTicks != 0 {
		t.Errorf("stuck = %d after skipped attempt", mem.StuckTicks)
	}
}

func TestNoMovePart(t *testing.T) {
	s := newSupervisor()
	c := walker(10)
	c.Body = []model.BodyPart{{Type: model.Work, Hits: 100}}
	mem := &store.CreepMemory{StuckTicks: 2}
	if res := s.MoveTo(&fakeEnv{}, c, mem, goal, model.SearchOpts{}); res != model.ErrNoBodypart {
		t.Errorf("result = %v", res)
	}
	if mem.StuckTicks != 0 {
		t.Error("failed attempt did not reset counter")
	}
}

func TestRecover(t *testing.T) {
	machine := store.Machine{
		Initial: store.StateGather,
		Next:    map[store.State]store.State{store.StateGather: store.StateWork, store.StateWork: store.StateGather},
	}
	tests := []struct {
		name      string
		moveRes   model.Result
		esc       Escalation
		wantState store.State
		wantSrc   string
	}{
		{"random step works", model.OK, FlipState(machine), store.StateGather, "src"},
		{"flip state", model.ErrNoPath, FlipState(machine), store.StateWork, "src"},
		{"clear field", model.ErrNoPath, ClearField(store.FieldSource), store.StateGather, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newSupervisor()
			env := &fakeEnv{moveRes: tc.moveRes}
			mem := &store.CreepMemory{State: store.StateGather, SourceID: "src", StuckTicks: 3}
			s.Recover(env, walker(10), mem, tc.esc)
			if len(env.moves) != 1 {
				t.Fatalf("moves = %d, want one random step", len(env.moves))
			}
			if mem.StuckTicks != 0 {
				t.Errorf("stuck = %d", mem.StuckTicks)
			}
			if mem.State != tc.wantState || mem.SourceID != tc.wantSrc {
				t.Errorf("memory = %+v", mem)
			}
		})
	}
}
