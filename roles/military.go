package roles

import (
	"log/slog"

	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/movement"
	"github.com/nstehr/hive/store"
)

// attackRange is where ranged units hold and fire.
const attackRange = 3

// defender engages the focus target the defense manager wrote into its
// memory, and rallies near the controller without one.
type defender struct{}

func (defender) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	if cm.TargetID == "" {
		room, ok := t.World.Room(c.Pos.Room)
		if !ok || room.Controller == nil {
			return
		}
		if t.Moves.MoveTo(t.World, c, cm, room.Controller.Pos, model.SearchOpts{Range: 5}) == model.ErrStuck {
			// Rallying is not worth a recovery; wait.
			cm.StuckTicks = 0
		}
		return
	}

	target, ok := t.World.Hostile(cm.TargetID)
	if !ok {
		dangling(c, cm, store.FieldTarget, cm.TargetID)
		return
	}
	engage(t, c, cm, target, movement.ClearField(store.FieldTarget))
}

// engage fires on a hostile in range and closes in otherwise. Ranged units
// hold at attackRange; units with only melee parts close to contact.
func engage(t *Tick, c *model.Creep, cm *store.CreepMemory, h *model.Hostile, esc movement.Escalation) {
	r := c.Pos.RangeTo(h.Pos)
	ranged := c.HasPart(model.RangedAttack)
	if r <= 1 && c.HasPart(model.Attack) {
		t.World.Attack(c, h.ID)
	}
	if ranged && r <= attackRange {
		t.World.RangedAttack(c, h.ID)
		return
	}
	hold := 1
	if ranged {
		hold = attackRange
	}
	if r > hold {
		moveTo(t, c, cm, h.Pos, hold, esc)
	}
}

// remoteDefender clears hostiles out of its remote room.
type remoteDefender struct{}

func (remoteDefender) Run(t *Tick, c *model.Creep, cm *store.CreepMemory) {
	if cm.TargetRoom == "" {
		return
	}
	esc := movement.ClearField(store.FieldTargetRoom)
	if arrived, _ := travel(t, c, cm, cm.TargetRoom, esc); !arrived {
		return
	}
	room, ok := t.World.Room(cm.TargetRoom)
	if !ok {
		return
	}
	h := closest(c.Pos, room.Hostiles, func(h *model.Hostile) model.Pos { return h.Pos }, nil)
	if h == nil {
		moveTo(t, c, cm, model.Center(room.Name), attackRange, esc)
		return
	}
	slog.Debug("remote defender engaging", "creep", c.Name, "room", room.Name, "hostile", h.ID)
	engage(t, c, cm, h, esc)
}
