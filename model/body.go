package model

// Part is a body part type.
type Part string

const (
	Move         Part = "move"
	Work         Part = "work"
	Carry        Part = "carry"
	Attack       Part = "attack"
	RangedAttack Part = "ranged_attack"
	Heal         Part = "heal"
	Claim        Part = "claim"
	Tough        Part = "tough"
)

// PartCost is the energy cost of each body part.
var PartCost = map[Part]int{
	Move:         50,
	Work:         100,
	Carry:        50,
	Attack:       80,
	RangedAttack: 150,
	Heal:         250,
	Claim:        600,
	Tough:        10,
}

// Per-part power constants.
const (
	AttackPower       = 30
	RangedAttackPower = 10
	HealPower         = 12
	RepairPower       = 100
)

// MaxBodySize is the engine's hard limit on parts per unit.
const MaxBodySize = 50

// BodyCost sums the energy cost of a body.
func BodyCost(body []Part) int {
	total := 0
	for _, p := range body {
		total += PartCost[p]
	}
	return total
}
