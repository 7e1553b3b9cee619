package store

import (
	"slices"

	"github.com/google/uuid"
)

// SpawnRequest is a queued production order. Any component may enqueue one;
// the spawn manager consumes it once it spawns successfully.
type SpawnRequest struct {
	ID       string      `json:"id"`
	Role     Role        `json:"role"`
	Room     string      `json:"room,omitempty"`
	Memory   CreepMemory `json:"memory"`
	Priority int         `json:"priority"`
	Tick     int         `json:"tick"`
}

// NewSpawnRequest builds a request with a fresh ID. room is the producing
// room; when empty the memory's home room is used.
func NewSpawnRequest(role Role, room string, mem CreepMemory, priority, tick int) SpawnRequest {
	mem.Role = role
	return SpawnRequest{
		ID:       uuid.NewString(),
		Role:     role,
		Room:     room,
		Memory:   mem,
		Priority: priority,
		Tick:     tick,
	}
}

// Key identifies requests that would produce the same unit: role plus target
// room plus source. Defenders are one pool across all rooms and key on role
// alone.
func (r SpawnRequest) Key() string {
	if r.Role == RoleDefender {
		return string(r.Role)
	}
	return string(r.Role) + "|" + r.Memory.TargetRoom + "|" + r.Memory.SourceID
}

// ProducedBy reports whether a spawn in room should fulfil the request.
func (r SpawnRequest) ProducedBy(room string) bool {
	if r.Room != "" {
		return r.Room == room
	}
	return r.Memory.HomeRoom == room
}

// Queued reports whether a request with the same key is waiting.
func (m *Memory) Queued(key string) bool {
	return slices.ContainsFunc(m.SpawnQueue, func(q SpawnRequest) bool { return q.Key() == key })
}

// EnqueueSpawn adds req unless an equivalent request is already queued.
// Urgent requests go to the front. Returns false on a duplicate.
func (m *Memory) EnqueueSpawn(req SpawnRequest, front bool) bool {
	if m.Queued(req.Key()) {
		return false
	}
	if front {
		m.SpawnQueue = slices.Insert(m.SpawnQueue, 0, req)
	} else {
		m.SpawnQueue = append(m.SpawnQueue, req)
	}
	m.MarkDirty(SegmentQueues)
	return true
}

// RemoveSpawn drops the request with the given ID.
func (m *Memory) RemoveSpawn(id string) {
	n := len(m.SpawnQueue)
	m.SpawnQueue = slices.DeleteFunc(m.SpawnQueue, func(q SpawnRequest) bool { return q.ID == id })
	if len(m.SpawnQueue) != n {
		m.MarkDirty(SegmentQueues)
	}
}

// RequestsFor returns the queued requests a room should produce, in queue order.
func (m *Memory) RequestsFor(room string) []SpawnRequest {
	var out []SpawnRequest
	for _, q := range m.SpawnQueue {
		if q.ProducedBy(room) {
			out = append(out, q)
		}
	}
	return out
}

// EnqueueScout appends a room to the scout queue unless it is already there.
func (m *Memory) EnqueueScout(room string) bool {
	if slices.Contains(m.ScoutQueue, room) {
		return false
	}
	m.ScoutQueue = append(m.ScoutQueue, room)
	m.MarkDirty(SegmentQueues)
	return true
}

func (m *Memory) RemoveScout(room string) {
	i := slices.Index(m.ScoutQueue, room)
	if i < 0 {
		return
	}
	m.ScoutQueue = slices.Delete(m.ScoutQueue, i, i+1)
	m.MarkDirty(SegmentQueues)
}
