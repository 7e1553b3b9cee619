package ipc

import "github.com/nstehr/hive/model"

// Command type constants. Must stay in sync with the engine-side executor.
const (
	TypeSpawn        = "spawn"
	TypeMove         = "move"
	TypeHarvest      = "harvest"
	TypeTransfer     = "transfer"
	TypeWithdraw     = "withdraw"
	TypeBuild        = "build"
	TypeRepair       = "repair"
	TypeUpgrade      = "upgrade"
	TypeReserve      = "reserve"
	TypeClaim        = "claim"
	TypeAttack       = "attack"
	TypeRangedAttack = "ranged_attack"
	TypeHeal         = "heal"
	TypeTowerAttack  = "tower_attack"
	TypeTowerRepair  = "tower_repair"
	TypeTowerHeal    = "tower_heal"
	TypeCreateSite   = "create_site"
	TypeSuicide      = "suicide"
	TypeSafeMode     = "safe_mode"
	TypeNotify       = "notify"
)

type SpawnCommand struct {
	SpawnID string       `json:"spawn_id"`
	Name    string       `json:"name"`
	Body    []model.Part `json:"body"`
}

type MoveCommand struct {
	Creep     string          `json:"creep"`
	Direction model.Direction `json:"direction"`
}

// TargetCommand covers every unit action aimed at a single object.
type TargetCommand struct {
	Creep    string `json:"creep"`
	TargetID string `json:"target_id"`
}

type TowerCommand struct {
	TowerID  string `json:"tower_id"`
	TargetID string `json:"target_id"`
}

type CreateSiteCommand struct {
	Pos           model.Pos `json:"pos"`
	StructureType string    `json:"structure_type"`
}

type SuicideCommand struct {
	Creep string `json:"creep"`
}

type SafeModeCommand struct {
	Room string `json:"room"`
}

type NotifyCommand struct {
	Message       string `json:"message"`
	GroupInterval int    `json:"group_interval"`
}
