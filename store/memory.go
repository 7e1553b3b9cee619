package store

import (
	"sort"

	"github.com/nstehr/hive/model"
)

// Role names a unit's job. It is persisted as a plain string.
type Role string

const (
	RoleHarvester       Role = "harvester"
	RoleStaticHarvester Role = "staticHarvester"
	RoleHauler          Role = "hauler"
	RoleUpgrader        Role = "upgrader"
	RoleBuilder         Role = "builder"
	RoleRepairer        Role = "repairer"
	RoleDefender        Role = "defender"
	RoleScout           Role = "scout"
	RoleReserver        Role = "reserver"
	RoleRemoteHarvester Role = "remoteHarvester"
	RoleRemoteHauler    Role = "remoteHauler"
	RoleRemoteDefender  Role = "remoteDefender"
)

// State is a unit's position in its role's state machine. The zero value
// means "not yet chosen"; roles pick their initial state on first run.
type State string

const (
	StateGather State = "gather"
	StateWork   State = "work"
	StateTravel State = "travel"
)

// Machine is a role's state transition table. Next maps each state to the
// one a unit moves to when the state's work is done or cannot progress.
type Machine struct {
	Initial State
	Next    map[State]State
}

// Flip advances mem to the next state of the machine.
func (m Machine) Flip(mem *CreepMemory) {
	cur := mem.State
	if cur == "" {
		cur = m.Initial
	}
	if next, ok := m.Next[cur]; ok {
		mem.State = next
		return
	}
	mem.State = m.Initial
}

// Field names a clearable target reference in CreepMemory.
type Field string

const (
	FieldTarget     Field = "target"
	FieldSource     Field = "source"
	FieldContainer  Field = "container"
	FieldTargetRoom Field = "targetRoom"
)

// CreepMemory is the per-unit state that survives between ticks.
type CreepMemory struct {
	Role        Role       `json:"role"`
	HomeRoom    string     `json:"homeRoom,omitempty"`
	TargetRoom  string     `json:"targetRoom,omitempty"`
	State       State      `json:"state,omitempty"`
	TargetID    string     `json:"targetId,omitempty"`
	SourceID    string     `json:"sourceId,omitempty"`
	ContainerID string     `json:"containerId,omitempty"`
	Claim       bool       `json:"claim,omitempty"`
	LastPos     *model.Pos `json:"lastPos,omitempty"`
	StuckTicks  int        `json:"stuckTicks,omitempty"`
}

// snapshot copies m, including the position LastPos points at.
func (m *CreepMemory) snapshot() CreepMemory {
	out := *m
	if m.LastPos != nil {
		p := *m.LastPos
		out.LastPos = &p
	}
	return out
}

func (m *CreepMemory) same(o CreepMemory) bool {
	a, b := *m, o
	a.LastPos, b.LastPos = nil, nil
	if a != b {
		return false
	}
	switch {
	case m.LastPos == nil || o.LastPos == nil:
		return m.LastPos == o.LastPos
	default:
		return *m.LastPos == *o.LastPos
	}
}

// Clear empties one target reference. Unknown fields are ignored.
func (m *CreepMemory) Clear(f Field) {
	switch f {
	case FieldTarget:
		m.TargetID = ""
	case FieldSource:
		m.SourceID = ""
	case FieldContainer:
		m.ContainerID = ""
	case FieldTargetRoom:
		m.TargetRoom = ""
	}
}

// ThreatLevel grades how dangerous the hostiles in a room are.
type ThreatLevel int

const (
	ThreatNone ThreatLevel = iota
	ThreatLow
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

var threatNames = [...]string{"NONE", "LOW", "MEDIUM", "HIGH", "CRITICAL"}

func (l ThreatLevel) String() string {
	if l < 0 || int(l) >= len(threatNames) {
		return "UNKNOWN"
	}
	return threatNames[l]
}

// ThreatType classifies the intent of an attack. Only Peacetime and Harass
// are produced today.
type ThreatType string

const (
	ThreatPeacetime        ThreatType = "PEACETIME"
	ThreatHarass           ThreatType = "HARASS"
	ThreatSiege            ThreatType = "SIEGE"
	ThreatControllerAttack ThreatType = "CONTROLLER_ATTACK"
)

type ThreatProfile struct {
	Level        ThreatLevel `json:"level"`
	Type         ThreatType  `json:"type"`
	DPS          int         `json:"dps"`
	Heal         int         `json:"heal"`
	HostileCount int         `json:"hostileCount"`
	LastUpdated  int         `json:"lastUpdated"`
}

// DefenseMode is the posture towers and defenders follow.
type DefenseMode string

const (
	ModeIdle   DefenseMode = "IDLE"
	ModeAttack DefenseMode = "ATTACK"
	ModeRepair DefenseMode = "REPAIR"
)

type DefenseStatus struct {
	Mode         DefenseMode `json:"mode"`
	FocusTarget  string      `json:"focusTarget,omitempty"`
	RepairTarget string      `json:"repairTarget,omitempty"`
}

// RoomMemory is per-room defense state.
type RoomMemory struct {
	Threat            ThreatProfile `json:"threat"`
	Defense           DefenseStatus `json:"defense"`
	LastCriticalAlert int           `json:"lastCriticalAlert,omitempty"`
	SafeModeTried     bool          `json:"safeModeTried,omitempty"`
	StructureCount    int           `json:"structureCount,omitempty"`
}

type SourceIntel struct {
	ID  string    `json:"id"`
	Pos model.Pos `json:"pos"`
}

// Intel is what a scout saw the last time it stood in a room.
type Intel struct {
	Room        string        `json:"room"`
	Sources     []SourceIntel `json:"sources"`
	HasMineral  bool          `json:"hasMineral"`
	Owner       string        `json:"owner,omitempty"`
	ReservedBy  string        `json:"reservedBy,omitempty"`
	Level       int           `json:"level,omitempty"`
	Hostile     bool          `json:"hostile"`
	LastScouted int           `json:"lastScouted"`
	HomeRoom    string        `json:"homeRoom,omitempty"`
}

// Highway is a cached inter-room path.
type Highway struct {
	Path []model.Pos `json:"path"`
	Tick int         `json:"tick"`
}

// RoomPlan records what the planner has laid out in a room.
type RoomPlan struct {
	Containers    []model.Pos `json:"containers,omitempty"`
	Roads         []model.Pos `json:"roads,omitempty"`
	ContainerTick int         `json:"containerTick,omitempty"`
	RoadTick      int         `json:"roadTick,omitempty"`
	HighwayTick   int         `json:"highwayTick,omitempty"`
}

// Segment names one independently persisted part of Memory.
type Segment string

const (
	SegmentQueues   Segment = "queues"
	SegmentHighways Segment = "highways"
	SegmentPlans    Segment = "plans"
	SegmentIntel    Segment = "intel"
	SegmentRooms    Segment = "rooms"
	SegmentCreeps   Segment = "creeps"
)

// Segments lists every segment in save order.
var Segments = []Segment{SegmentQueues, SegmentHighways, SegmentPlans, SegmentIntel, SegmentRooms, SegmentCreeps}

// Memory is the persisted decision state of one player. Components receive it
// explicitly each tick; every mutation goes through a method that marks its
// segment dirty so the session knows what to flush.
type Memory struct {
	SpawnQueue []SpawnRequest
	ScoutQueue []string
	Highways   map[string]Highway
	Plans      map[string]*RoomPlan
	Intel      map[string]*Intel
	Rooms      map[string]*RoomMemory
	Creeps     map[string]*CreepMemory

	dirty map[Segment]bool
}

func NewMemory() *Memory {
	return &Memory{
		Highways: make(map[string]Highway),
		Plans:    make(map[string]*RoomPlan),
		Intel:    make(map[string]*Intel),
		Rooms:    make(map[string]*RoomMemory),
		Creeps:   make(map[string]*CreepMemory),
		dirty:    make(map[Segment]bool),
	}
}

func (m *Memory) MarkDirty(s Segment) { m.dirty[s] = true }

// Dirty returns the dirty segments in save order.
func (m *Memory) Dirty() []Segment {
	var out []Segment
	for _, s := range Segments {
		if m.dirty[s] {
			out = append(out, s)
		}
	}
	return out
}

func (m *Memory) ClearDirty() { clear(m.dirty) }

// Room returns the memory for a room, creating it on first use.
func (m *Memory) Room(name string) *RoomMemory {
	m.MarkDirty(SegmentRooms)
	rm, ok := m.Rooms[name]
	if !ok {
		rm = &RoomMemory{}
		m.Rooms[name] = rm
	}
	return rm
}

// UpdateCreep runs fn on a unit's memory and marks the creeps segment dirty
// only when fn changed something. It reports whether the unit has memory.
func (m *Memory) UpdateCreep(name string, fn func(cm *CreepMemory)) bool {
	cm, ok := m.Creeps[name]
	if !ok {
		return false
	}
	before := cm.snapshot()
	fn(cm)
	if !cm.same(before) {
		m.MarkDirty(SegmentCreeps)
	}
	return true
}

// SetCreep records memory for a newly spawned unit.
func (m *Memory) SetCreep(name string, cm CreepMemory) {
	m.Creeps[name] = &cm
	m.MarkDirty(SegmentCreeps)
}

// ForgetCreeps drops memory of units not in alive and returns the names removed.
func (m *Memory) ForgetCreeps(alive map[string]bool) []string {
	var gone []string
	for name := range m.Creeps {
		if !alive[name] {
			gone = append(gone, name)
		}
	}
	sort.Strings(gone)
	for _, name := range gone {
		delete(m.Creeps, name)
	}
	if len(gone) > 0 {
		m.MarkDirty(SegmentCreeps)
	}
	return gone
}

// Plan returns the plan for a room, creating it on first use.
func (m *Memory) Plan(room string) *RoomPlan {
	m.MarkDirty(SegmentPlans)
	p, ok := m.Plans[room]
	if !ok {
		p = &RoomPlan{}
		m.Plans[room] = p
	}
	return p
}

// SetHighway caches a path between two rooms.
func (m *Memory) SetHighway(from, to string, h Highway) {
	m.Highways[HighwayKey(from, to)] = h
	m.MarkDirty(SegmentHighways)
}

func HighwayKey(from, to string) string { return from + "->" + to }

// PutIntel replaces a room's intel with a fresh observation. A home room
// already assigned to the room is kept.
func (m *Memory) PutIntel(in Intel) {
	if prev, ok := m.Intel[in.Room]; ok && prev.HomeRoom != "" {
		in.HomeRoom = prev.HomeRoom
	}
	m.Intel[in.Room] = &in
	m.MarkDirty(SegmentIntel)
}

// AssignHome sets the home room of a room's intel if none is set yet and
// returns the effective home.
func (m *Memory) AssignHome(room, home string) string {
	in, ok := m.Intel[room]
	if !ok {
		return ""
	}
	if in.HomeRoom == "" {
		in.HomeRoom = home
		m.MarkDirty(SegmentIntel)
	}
	return in.HomeRoom
}

// SetHostile updates the hostile flag of existing intel.
func (m *Memory) SetHostile(room string, hostile bool) {
	in, ok := m.Intel[room]
	if !ok || in.Hostile == hostile {
		return
	}
	in.Hostile = hostile
	m.MarkDirty(SegmentIntel)
}
