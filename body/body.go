// Package body builds unit bodies for a role within an energy budget.
package body

import (
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/store"
)

// Template describes a body as an optional fixed prefix followed by a
// repeated set. A budget that cannot afford the prefix plus one set yields an
// empty body.
type Template struct {
	Prefix  []model.Part
	Set     []model.Part
	MaxSets int // 0 means as many as fit
}

var basic = Template{Set: []model.Part{model.Work, model.Carry, model.Move}}

var templates = map[store.Role]Template{
	store.RoleHarvester:       basic,
	store.RoleUpgrader:        basic,
	store.RoleBuilder:         basic,
	store.RoleRepairer:        basic,
	store.RoleStaticHarvester: {Prefix: []model.Part{model.Move}, Set: []model.Part{model.Work}, MaxSets: 5},
	store.RoleHauler:          {Set: []model.Part{model.Carry, model.Carry, model.Move}, MaxSets: 10},
	store.RoleRemoteHauler:    {Set: []model.Part{model.Carry, model.Carry, model.Move}, MaxSets: 12},
	store.RoleRemoteHarvester: {Prefix: []model.Part{model.Carry}, Set: []model.Part{model.Work, model.Work, model.Move}, MaxSets: 3},
	store.RoleDefender:        {Set: []model.Part{model.Tough, model.Attack, model.Move}, MaxSets: 8},
	store.RoleRemoteDefender:  {Set: []model.Part{model.RangedAttack, model.Move}, MaxSets: 6},
	store.RoleReserver:        {Set: []model.Part{model.Claim, model.Move}, MaxSets: 2},
	store.RoleScout:           {Set: []model.Part{model.Move}, MaxSets: 1},
}

// For returns the body for role within budget. Unknown roles get the basic
// worker template.
func For(role store.Role, budget int) []model.Part {
	t, ok := templates[role]
	if !ok {
		t = basic
	}
	return t.Build(budget)
}

// Build never exceeds budget or the engine's part limit.
func (t Template) Build(budget int) []model.Part {
	prefixCost := model.BodyCost(t.Prefix)
	setCost := model.BodyCost(t.Set)
	if len(t.Set) == 0 || budget < prefixCost+setCost || len(t.Prefix)+len(t.Set) > model.MaxBodySize {
		return nil
	}

	body := append([]model.Part(nil), t.Prefix...)
	budget -= prefixCost
	sets := 0
	for budget >= setCost && len(body)+len(t.Set) <= model.MaxBodySize {
		if t.MaxSets > 0 && sets >= t.MaxSets {
			break
		}
		body = append(body, t.Set...)
		budget -= setCost
		sets++
	}
	return body
}
