package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/store"
)

// Rule adjusts one role's desired count when its condition holds for a room.
// Rules for the same role are evaluated by priority; an exclusive rule that
// fires blocks lower-priority rules for that role.
type Rule struct {
	Name         string     // human-readable identifier
	Role         store.Role // count being adjusted
	Adjust       int        // added to the count when the rule fires
	Priority     int        // higher = evaluated first
	Exclusive    bool
	ConditionSrc string      // expr source
	program      *vm.Program // compiled bytecode
}

// FromDirectives converts configured directives into uncompiled rules.
func FromDirectives(ds []config.Directive) []*Rule {
	out := make([]*Rule, 0, len(ds))
	for _, d := range ds {
		out = append(out, &Rule{
			Name:         d.Name,
			Role:         store.Role(d.Role),
			Adjust:       d.Adjust,
			Priority:     d.Priority,
			Exclusive:    d.Exclusive,
			ConditionSrc: d.When,
		})
	}
	return out
}
