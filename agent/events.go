package agent

import (
	"fmt"
	"sort"

	"github.com/nstehr/hive/model"
)

// EventKind identifies a change detected by diffing consecutive snapshots.
type EventKind string

const (
	EventStructureBuilt     EventKind = model.EventStructureBuilt
	EventStructureDestroyed EventKind = model.EventStructureDestroyed
	EventUnitLost           EventKind = "unit_lost"
	EventFirstContact       EventKind = "first_contact"
	EventLevelChanged       EventKind = "level_changed"
)

// Event is one detected change. Structure events stand in for engine reports
// the snapshot did not carry.
type Event struct {
	Kind   EventKind
	Tick   int
	Room   string
	Detail string
}

// stateSnapshot captures the diffable parts of one tick's state.
type stateSnapshot struct {
	structures map[string]map[string]string // room → structure id → type
	creeps     map[string]bool
	contact    map[string]bool // owned rooms with hostiles in view
	levels     map[string]int  // owned room → controller level
}

func takeSnapshot(gs model.GameState) stateSnapshot {
	snap := stateSnapshot{
		structures: make(map[string]map[string]string, len(gs.Rooms)),
		creeps:     make(map[string]bool, len(gs.Creeps)),
		contact:    make(map[string]bool),
		levels:     make(map[string]int),
	}
	for i := range gs.Rooms {
		r := &gs.Rooms[i]
		ids := make(map[string]string, len(r.Structures))
		for _, s := range r.Structures {
			ids[s.ID] = s.Type
		}
		snap.structures[r.Name] = ids
		if r.Owned() {
			snap.contact[r.Name] = len(r.Hostiles) > 0
			snap.levels[r.Name] = r.Controller.Level
		}
	}
	for _, c := range gs.Creeps {
		snap.creeps[c.Name] = true
	}
	return snap
}

// detectEvents compares gs against the previous snapshot. Rooms that were not
// visible on both ticks are not diffed. Returns nil on the first tick.
func detectEvents(gs model.GameState, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}
	cur := takeSnapshot(gs)
	var events []Event

	for _, room := range sortedKeys(cur.structures) {
		before, ok := prev.structures[room]
		if !ok {
			continue
		}
		now := cur.structures[room]
		for _, id := range sortedKeys(now) {
			if _, existed := before[id]; !existed {
				events = append(events, Event{Kind: EventStructureBuilt, Tick: gs.Tick, Room: room, Detail: fmt.Sprintf("%s %s", now[id], id)})
			}
		}
		for _, id := range sortedKeys(before) {
			if _, exists := now[id]; !exists {
				events = append(events, Event{Kind: EventStructureDestroyed, Tick: gs.Tick, Room: room, Detail: fmt.Sprintf("%s %s", before[id], id)})
			}
		}
	}

	for _, room := range sortedKeys(cur.contact) {
		if cur.contact[room] && !prev.contact[room] {
			events = append(events, Event{Kind: EventFirstContact, Tick: gs.Tick, Room: room, Detail: "hostiles entered"})
		}
		if was, ok := prev.levels[room]; ok && was != cur.levels[room] {
			events = append(events, Event{Kind: EventLevelChanged, Tick: gs.Tick, Room: room, Detail: fmt.Sprintf("%d -> %d", was, cur.levels[room])})
		}
	}

	for _, name := range sortedKeys(prev.creeps) {
		if !cur.creeps[name] {
			events = append(events, Event{Kind: EventUnitLost, Tick: gs.Tick, Detail: name})
		}
	}
	return events
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
