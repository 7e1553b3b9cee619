package defense

import (
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/store"
)

// Assess sums the damage and heal output of every hostile body part.
func Assess(hostiles []model.Hostile, tick int) store.ThreatProfile {
	if len(hostiles) == 0 {
		return store.ThreatProfile{Level: store.ThreatNone, Type: store.ThreatPeacetime, LastUpdated: tick}
	}
	dps, heal := 0, 0
	for _, h := range hostiles {
		for _, p := range h.Body {
			switch p.Type {
			case model.Attack:
				dps += model.AttackPower
			case model.RangedAttack:
				dps += model.RangedAttackPower
			case model.Heal:
				heal += model.HealPower
			}
		}
	}
	return store.ThreatProfile{
		Level:        Classify(dps, heal, len(hostiles)),
		Type:         store.ThreatHarass,
		DPS:          dps,
		Heal:         heal,
		HostileCount: len(hostiles),
		LastUpdated:  tick,
	}
}

// Classify grades a threat. Heal above 200 is critical regardless of damage.
func Classify(dps, heal, count int) store.ThreatLevel {
	if count == 0 {
		return store.ThreatNone
	}
	level := store.ThreatLow
	switch {
	case dps > 500 || count > 5:
		level = store.ThreatHigh
	case dps > 200:
		level = store.ThreatMedium
	}
	if heal > 200 {
		level = store.ThreatCritical
	}
	return level
}
