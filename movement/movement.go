// Package movement wraps single-step movement with stuck detection and a
// two-stage recovery.
package movement

import (
	"log/slog"
	"math/rand"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/pathcache"
	"github.com/nstehr/hive/store"
)

// Env is the slice of the world movement needs.
type Env interface {
	pathcache.Env
	Move(c *model.Creep, d model.Direction) model.Result
}

type Supervisor struct {
	paths     *pathcache.Cache
	threshold int
	rng       *rand.Rand
}

func New(paths *pathcache.Cache, cfg config.Movement, seed int64) *Supervisor {
	return &Supervisor{
		paths:     paths,
		threshold: cfg.StuckThreshold,
		rng:       rand.New(rand.NewSource(seed)), // #nosec G404 -- unstick direction only
	}
}

// MoveTo steps c toward target and reports ErrStuck once the unit has tried
// to move without changing position for the configured number of ticks.
func (s *Supervisor) MoveTo(env Env, c *model.Creep, mem *store.CreepMemory, target model.Pos, opts model.SearchOpts) model.Result {
	res := s.step(env, c, target, opts)

	// Only attempts that moved or were rate-limited count toward stuck.
	if res != model.OK && res != model.ErrTired {
		mem.StuckTicks = 0
		return res
	}
	if mem.LastPos != nil {
		if *mem.LastPos == c.Pos {
			mem.StuckTicks++
		} else {
			mem.StuckTicks = 0
		}
	}
	p := c.Pos
	mem.LastPos = &p

	if mem.StuckTicks >= s.threshold {
		slog.Warn("unit stuck", "creep", c.Name, "role", mem.Role, "ticks", mem.StuckTicks, "pos", c.Pos.String())
		return model.ErrStuck
	}
	return res
}

func (s *Supervisor) step(env Env, c *model.Creep, target model.Pos, opts model.SearchOpts) model.Result {
	if c.Pos.InRangeTo(target, opts.Range) {
		return model.NoOp
	}
	if c.Spawning {
		return model.ErrBusy
	}
	if c.Fatigue > 0 {
		return model.ErrTired
	}
	if !c.HasPart(model.Move) {
		return model.ErrNoBodypart
	}

	res := s.paths.FindPath(env, c.Pos, target, opts)
	if len(res.Path) == 0 {
		return model.ErrNoPath
	}
	dir, ok := c.Pos.DirectionTo(res.Path[0])
	if !ok {
		return model.ErrNoPath
	}
	return env.Move(c, dir)
}

// Escalation is what Recover does when the random step fails: flip the
// unit's state through its role machine, or clear a target reference.
type Escalation struct {
	machine *store.Machine
	field   store.Field
}

func FlipState(m store.Machine) Escalation { return Escalation{machine: &m} }

func ClearField(f store.Field) Escalation { return Escalation{field: f} }

func (e Escalation) apply(mem *store.CreepMemory) {
	if e.machine != nil {
		e.machine.Flip(mem)
		return
	}
	mem.Clear(e.field)
}

// Recover tries one random step. If that fails the escalation is applied so
// the caller's state machine takes a different branch next tick. The stuck
// counter is reset either way.
func (s *Supervisor) Recover(env Env, c *model.Creep, mem *store.CreepMemory, esc Escalation) model.Result {
	dir := model.Directions[s.rng.Intn(len(model.Directions))]
	res := env.Move(c, dir)
	mem.StuckTicks = 0
	if res == model.OK {
		slog.Info("unit unstuck", "creep", c.Name, "role", mem.Role)
		return res
	}
	esc.apply(mem)
	slog.Error("unit could not unstick, escalating", "creep", c.Name, "role", mem.Role, "state", mem.State, "result", res.String())
	return res
}
