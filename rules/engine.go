// Package rules applies configured desired-count directives. Conditions are
// expr expressions compiled once against RoomEnv.
package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/hive/store"
)

// Engine runs compiled rules against a room each time desired counts are
// computed. Rules fire in priority order; exclusive rules block
// lower-priority rules for the same role.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Apply adds the adjustment of every firing rule to counts. Counts are not
// clamped here.
func (e *Engine) Apply(env RoomEnv, counts map[store.Role]int) {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	fired := make(map[store.Role]bool) // role → exclusive rule already fired
	for _, r := range rules {
		if fired[r.Role] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "room", env.Room.Name, "error", err)
			continue
		}
		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		counts[r.Role] += r.Adjust
		slog.Debug("rule fired", "rule", r.Name, "room", env.Room.Name, "role", r.Role, "adjust", r.Adjust)

		if r.Exclusive {
			fired[r.Role] = true
		}
	}
}

// Len reports how many rules are loaded.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Swap atomically replaces the rule set. Compiles first; if compilation
// fails the old rules remain active.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	slog.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RoomEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
