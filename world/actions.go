package world

import (
	"github.com/nstehr/hive/ipc"
	"github.com/nstehr/hive/model"
)

const (
	towerEnergyPerAction = 10
	maxConstructionSites = 100
)

// Move issues a single step.
func (w *World) Move(c *model.Creep, d model.Direction) model.Result {
	if c.Spawning {
		return model.ErrBusy
	}
	if c.Fatigue > 0 {
		return model.ErrTired
	}
	if !c.HasPart(model.Move) {
		return model.ErrNoBodypart
	}
	dx, dy := d.Delta()
	if dx == 0 && dy == 0 {
		return model.ErrInvalidArgs
	}
	wx, wy, ok := c.Pos.World()
	if !ok {
		return model.ErrInvalidArgs
	}
	if w.Blocked(model.FromWorld(wx+dx, wy+dy)) {
		return model.ErrNoPath
	}
	w.issue(ipc.TypeMove, ipc.MoveCommand{Creep: c.Name, Direction: d})
	return model.OK
}

func (w *World) targeted(c *model.Creep, part model.Part, target model.Pos, rng int, msgType, targetID string) model.Result {
	if c.Spawning {
		return model.ErrBusy
	}
	if part != "" && !c.HasPart(part) {
		return model.ErrNoBodypart
	}
	if !c.Pos.InRangeTo(target, rng) {
		return model.ErrNotInRange
	}
	w.issue(msgType, ipc.TargetCommand{Creep: c.Name, TargetID: targetID})
	return model.OK
}

func (w *World) Harvest(c *model.Creep, sourceID string) model.Result {
	src, ok := w.sources[sourceID]
	if !ok {
		return model.ErrInvalidTarget
	}
	if src.Energy == 0 {
		return model.ErrNotEnoughEnergy
	}
	return w.targeted(c, model.Work, src.Pos, 1, ipc.TypeHarvest, sourceID)
}

// Transfer hands energy to a structure or one of our units.
func (w *World) Transfer(c *model.Creep, targetID string) model.Result {
	if c.Empty() {
		return model.ErrNotEnoughEnergy
	}
	if s, ok := w.structures[targetID]; ok {
		if s.EnergyCapacity > 0 && s.FreeCapacity() <= 0 {
			return model.ErrFull
		}
		return w.targeted(c, "", s.Pos, 1, ipc.TypeTransfer, targetID)
	}
	if other, ok := w.creepByID[targetID]; ok {
		if other.Full() {
			return model.ErrFull
		}
		return w.targeted(c, "", other.Pos, 1, ipc.TypeTransfer, targetID)
	}
	return model.ErrInvalidTarget
}

func (w *World) Withdraw(c *model.Creep, structureID string) model.Result {
	s, ok := w.structures[structureID]
	if !ok {
		return model.ErrInvalidTarget
	}
	if s.Energy == 0 {
		return model.ErrNotEnoughEnergy
	}
	if c.Full() {
		return model.ErrFull
	}
	return w.targeted(c, "", s.Pos, 1, ipc.TypeWithdraw, structureID)
}

func (w *World) Build(c *model.Creep, siteID string) model.Result {
	site, ok := w.sites[siteID]
	if !ok {
		return model.ErrInvalidTarget
	}
	if c.Empty() {
		return model.ErrNotEnoughEnergy
	}
	return w.targeted(c, model.Work, site.Pos, 3, ipc.TypeBuild, siteID)
}

func (w *World) Repair(c *model.Creep, structureID string) model.Result {
	s, ok := w.structures[structureID]
	if !ok {
		return model.ErrInvalidTarget
	}
	if c.Empty() {
		return model.ErrNotEnoughEnergy
	}
	return w.targeted(c, model.Work, s.Pos, 3, ipc.TypeRepair, structureID)
}

// Upgrade works on the controller of a room we own.
func (w *World) Upgrade(c *model.Creep, room string) model.Result {
	r, ok := w.rooms[room]
	if !ok || r.Controller == nil {
		return model.ErrInvalidTarget
	}
	if !r.Controller.My {
		return model.ErrNotOwner
	}
	if c.Empty() {
		return model.ErrNotEnoughEnergy
	}
	return w.targeted(c, model.Work, r.Controller.Pos, 3, ipc.TypeUpgrade, r.Controller.ID)
}

func (w *World) controllerAction(c *model.Creep, room, msgType string) model.Result {
	r, ok := w.rooms[room]
	if !ok || r.Controller == nil {
		return model.ErrInvalidTarget
	}
	ctrl := r.Controller
	if ctrl.My || ctrl.Owner != "" {
		return model.ErrInvalidTarget
	}
	if ctrl.Reservation != nil && ctrl.Reservation.Username != w.state.Player {
		return model.ErrInvalidTarget
	}
	return w.targeted(c, model.Claim, ctrl.Pos, 1, msgType, ctrl.ID)
}

func (w *World) Reserve(c *model.Creep, room string) model.Result {
	return w.controllerAction(c, room, ipc.TypeReserve)
}

func (w *World) Claim(c *model.Creep, room string) model.Result {
	return w.controllerAction(c, room, ipc.TypeClaim)
}

func (w *World) Attack(c *model.Creep, hostileID string) model.Result {
	h, ok := w.hostiles[hostileID]
	if !ok {
		return model.ErrInvalidTarget
	}
	return w.targeted(c, model.Attack, h.Pos, 1, ipc.TypeAttack, hostileID)
}

func (w *World) RangedAttack(c *model.Creep, hostileID string) model.Result {
	h, ok := w.hostiles[hostileID]
	if !ok {
		return model.ErrInvalidTarget
	}
	return w.targeted(c, model.RangedAttack, h.Pos, 3, ipc.TypeRangedAttack, hostileID)
}

func (w *World) Heal(c *model.Creep, targetID string) model.Result {
	other, ok := w.creepByID[targetID]
	if !ok {
		return model.ErrInvalidTarget
	}
	return w.targeted(c, model.Heal, other.Pos, 1, ipc.TypeHeal, targetID)
}

func (w *World) Suicide(c *model.Creep) model.Result {
	w.issue(ipc.TypeSuicide, ipc.SuicideCommand{Creep: c.Name})
	delete(w.creeps, c.Name)
	return model.OK
}

// Spawn orders a new unit. Energy is drawn from the room immediately so a
// second spawn in the same room sees what is left.
func (w *World) Spawn(spawnID, name string, body []model.Part) model.Result {
	s, ok := w.structures[spawnID]
	if !ok || s.Type != model.StructureSpawn {
		return model.ErrInvalidTarget
	}
	if !s.My {
		return model.ErrNotOwner
	}
	if s.Spawning || w.usedSpawns[spawnID] {
		return model.ErrBusy
	}
	if len(body) == 0 || len(body) > model.MaxBodySize {
		return model.ErrInvalidArgs
	}
	if _, exists := w.creeps[name]; exists || w.pending[name] {
		return model.ErrNameExists
	}
	r, ok := w.rooms[s.Pos.Room]
	if !ok {
		return model.ErrInvalidTarget
	}
	cost := model.BodyCost(body)
	if cost > r.EnergyAvailable {
		return model.ErrNotEnoughEnergy
	}
	r.EnergyAvailable -= cost
	w.usedSpawns[spawnID] = true
	w.pending[name] = true
	w.issue(ipc.TypeSpawn, ipc.SpawnCommand{SpawnID: spawnID, Name: name, Body: body})
	return model.OK
}

func (w *World) tower(towerID string) (*model.Structure, model.Result) {
	t, ok := w.structures[towerID]
	if !ok || t.Type != model.StructureTower {
		return nil, model.ErrInvalidTarget
	}
	if !t.My {
		return nil, model.ErrNotOwner
	}
	if t.Energy < towerEnergyPerAction {
		return nil, model.ErrNotEnoughEnergy
	}
	return t, model.OK
}

func (w *World) towerAction(towerID, targetID, msgType string) model.Result {
	t, res := w.tower(towerID)
	if res != model.OK {
		return res
	}
	t.Energy -= towerEnergyPerAction
	w.issue(msgType, ipc.TowerCommand{TowerID: towerID, TargetID: targetID})
	return model.OK
}

func (w *World) TowerAttack(towerID, hostileID string) model.Result {
	if _, ok := w.hostiles[hostileID]; !ok {
		return model.ErrInvalidTarget
	}
	return w.towerAction(towerID, hostileID, ipc.TypeTowerAttack)
}

func (w *World) TowerRepair(towerID, structureID string) model.Result {
	if _, ok := w.structures[structureID]; !ok {
		return model.ErrInvalidTarget
	}
	return w.towerAction(towerID, structureID, ipc.TypeTowerRepair)
}

func (w *World) TowerHeal(towerID, creepID string) model.Result {
	if _, ok := w.creepByID[creepID]; !ok {
		return model.ErrInvalidTarget
	}
	return w.towerAction(towerID, creepID, ipc.TypeTowerHeal)
}

// CreateSite places a construction site. Sites ordered earlier this tick
// count as occupying their cell.
func (w *World) CreateSite(p model.Pos, structureType string) model.Result {
	r, ok := w.rooms[p.Room]
	if !ok {
		return model.ErrInvalidTarget
	}
	if p.X <= 0 || p.X >= model.RoomSize-1 || p.Y <= 0 || p.Y >= model.RoomSize-1 {
		return model.ErrInvalidArgs
	}
	if r.Terrain.At(p.X, p.Y) == model.Wall {
		return model.ErrInvalidTarget
	}
	for _, s := range r.Structures {
		if s.Pos.X == p.X && s.Pos.Y == p.Y && (s.Type == structureType || !model.Walkable(s.Type, s.My)) {
			return model.ErrInvalidTarget
		}
	}
	for _, s := range r.Sites {
		if s.Pos.X == p.X && s.Pos.Y == p.Y {
			return model.ErrInvalidTarget
		}
	}
	key := p.String()
	if w.plannedSites[key] {
		return model.ErrInvalidTarget
	}
	if len(w.sites)+len(w.plannedSites) >= maxConstructionSites {
		return model.ErrFull
	}
	w.plannedSites[key] = true
	w.issue(ipc.TypeCreateSite, ipc.CreateSiteCommand{Pos: p, StructureType: structureType})
	return model.OK
}

// ActivateSafeMode asks the engine to enable safe mode in a room.
func (w *World) ActivateSafeMode(room string) model.Result {
	r, ok := w.rooms[room]
	if !ok || r.Controller == nil {
		return model.ErrInvalidTarget
	}
	ctrl := r.Controller
	switch {
	case !ctrl.My:
		return model.ErrNotOwner
	case ctrl.SafeMode > 0:
		return model.ErrBusy
	case ctrl.SafeModeCooldown > 0:
		return model.ErrTired
	case ctrl.SafeModeAvailable <= 0:
		return model.ErrNotEnoughEnergy
	}
	ctrl.SafeModeAvailable--
	ctrl.SafeMode = 1
	w.issue(ipc.TypeSafeMode, ipc.SafeModeCommand{Room: room})
	return model.OK
}

// Notify sends a message on the player's notification channel. Identical
// messages within groupInterval ticks are collapsed by the engine.
func (w *World) Notify(msg string, groupInterval int) {
	w.issue(ipc.TypeNotify, ipc.NotifyCommand{Message: msg, GroupInterval: groupInterval})
}
