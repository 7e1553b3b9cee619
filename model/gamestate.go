package model

// GameState is the full snapshot the engine sends once per tick.
type GameState struct {
	Tick      int     `json:"tick"`
	Player    string  `json:"player"`
	CPUBucket int     `json:"cpuBucket"`
	GCLLevel  int     `json:"gclLevel"`
	Rooms     []Room  `json:"rooms"`
	Creeps    []Creep `json:"creeps"`
	Events    []Event `json:"events"`
}

// Room is a visible room. Rooms we cannot see are absent from the snapshot.
type Room struct {
	Name            string             `json:"name"`
	Controller      *Controller        `json:"controller,omitempty"`
	EnergyAvailable int                `json:"energyAvailable"`
	EnergyCapacity  int                `json:"energyCapacity"`
	Sources         []Source           `json:"sources"`
	Mineral         *Mineral           `json:"mineral,omitempty"`
	Structures      []Structure        `json:"structures"`
	Sites           []ConstructionSite `json:"sites"`
	Hostiles        []Hostile          `json:"hostiles"`
	Exits           []string           `json:"exits"`
	Terrain         *Terrain           `json:"terrain,omitempty"`
}

// Owned reports whether we own the room's controller.
func (r *Room) Owned() bool { return r.Controller != nil && r.Controller.My }

// StorageEnergy returns the energy held in the room's storage, or 0 without one.
func (r *Room) StorageEnergy() int {
	for _, s := range r.Structures {
		if s.Type == StructureStorage {
			return s.Energy
		}
	}
	return 0
}

// Storage returns the room's storage structure if it has one.
func (r *Room) Storage() (*Structure, bool) {
	for i := range r.Structures {
		if r.Structures[i].Type == StructureStorage {
			return &r.Structures[i], true
		}
	}
	return nil, false
}

// StructuresOf returns all structures of type t.
func (r *Room) StructuresOf(t string) []*Structure {
	var out []*Structure
	for i := range r.Structures {
		if r.Structures[i].Type == t {
			out = append(out, &r.Structures[i])
		}
	}
	return out
}

type Controller struct {
	ID                string       `json:"id"`
	Pos               Pos          `json:"pos"`
	My                bool         `json:"my"`
	Owner             string       `json:"owner,omitempty"`
	Level             int          `json:"level"`
	Reservation       *Reservation `json:"reservation,omitempty"`
	SafeModeAvailable int          `json:"safeModeAvailable"`
	SafeMode          int          `json:"safeMode,omitempty"`
	SafeModeCooldown  int          `json:"safeModeCooldown,omitempty"`
}

type Reservation struct {
	Username   string `json:"username"`
	TicksToEnd int    `json:"ticksToEnd"`
}

type Source struct {
	ID             string `json:"id"`
	Pos            Pos    `json:"pos"`
	Energy         int    `json:"energy"`
	EnergyCapacity int    `json:"energyCapacity"`
}

type Mineral struct {
	ID   string `json:"id"`
	Pos  Pos    `json:"pos"`
	Type string `json:"type"`
}

type Structure struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Pos            Pos    `json:"pos"`
	Hits           int    `json:"hits"`
	HitsMax        int    `json:"hitsMax"`
	My             bool   `json:"my"`
	Energy         int    `json:"energy,omitempty"`
	EnergyCapacity int    `json:"energyCapacity,omitempty"`
	Spawning       bool   `json:"spawning,omitempty"`
}

// FreeCapacity returns the unused energy capacity of the structure.
func (s *Structure) FreeCapacity() int { return s.EnergyCapacity - s.Energy }

type ConstructionSite struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Pos  Pos    `json:"pos"`
	My   bool   `json:"my"`
}

// Creep is one of our own units.
type Creep struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Pos      Pos        `json:"pos"`
	Body     []BodyPart `json:"body"`
	Hits     int        `json:"hits"`
	HitsMax  int        `json:"hitsMax"`
	Fatigue  int        `json:"fatigue"`
	Energy   int        `json:"energy"`
	Capacity int        `json:"capacity"`
	Spawning bool       `json:"spawning,omitempty"`
}

func (c *Creep) Full() bool  { return c.Capacity > 0 && c.Energy >= c.Capacity }
func (c *Creep) Empty() bool { return c.Energy == 0 }

// HasPart reports whether the creep carries at least one active part of type p.
func (c *Creep) HasPart(p Part) bool { return hasActivePart(c.Body, p) }

// Hostile is a unit owned by another player.
type Hostile struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Owner   string     `json:"owner"`
	Pos     Pos        `json:"pos"`
	Body    []BodyPart `json:"body"`
	Hits    int        `json:"hits"`
	HitsMax int        `json:"hitsMax"`
}

// HasPart reports whether the hostile carries part p in its body.
func (h *Hostile) HasPart(p Part) bool {
	for _, b := range h.Body {
		if b.Type == p {
			return true
		}
	}
	return false
}

type BodyPart struct {
	Type Part `json:"type"`
	Hits int  `json:"hits"`
}

func hasActivePart(body []BodyPart, p Part) bool {
	for _, b := range body {
		if b.Type == p && b.Hits > 0 {
			return true
		}
	}
	return false
}

// Event types reported by the engine alongside the snapshot.
const (
	EventStructureBuilt     = "structure_built"
	EventStructureDestroyed = "structure_destroyed"
)

type Event struct {
	Type          string `json:"type"`
	Room          string `json:"room"`
	StructureType string `json:"structureType,omitempty"`
}

// Structure type constants.
const (
	StructureSpawn     = "spawn"
	StructureExtension = "extension"
	StructureRoad      = "road"
	StructureWall      = "constructedWall"
	StructureRampart   = "rampart"
	StructureContainer = "container"
	StructureStorage   = "storage"
	StructureTower     = "tower"
	StructureLink      = "link"
	StructureExtractor = "extractor"
	StructureTerminal  = "terminal"
)

// Walkable reports whether units may stand on a structure of type t.
// Ramparts are only walkable for their owner.
func Walkable(t string, my bool) bool {
	switch t {
	case StructureRoad, StructureContainer:
		return true
	case StructureRampart:
		return my
	}
	return false
}
