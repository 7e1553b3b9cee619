package world

import (
	"container/heap"
	"fmt"
	"slices"

	"github.com/nstehr/hive/model"
)

const (
	defaultPlainCost = 1
	defaultSwampCost = 5
	defaultMaxOps    = 4000
	roadCost         = 1
	blockedCost      = -1
)

type cell [2]int

type openNode struct {
	at    cell
	f     int
	index int
}

type openSet []*openNode

func (s openSet) Len() int { return len(s) }
func (s openSet) Less(i, j int) bool {
	return s[i].f < s[j].f
}
func (s openSet) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].index = i
	s[j].index = j
}
func (s *openSet) Push(x any) {
	n := x.(*openNode)
	n.index = len(*s)
	*s = append(*s, n)
}
func (s *openSet) Pop() any {
	old := *s
	n := old[len(old)-1]
	*s = old[:len(old)-1]
	return n
}

// Search finds a path from origin to within opts.Range of goal across room
// boundaries, using world coordinates. When the goal cannot be reached within
// MaxOps expansions the path to the closest explored cell is returned with
// Incomplete set. An error means the positions themselves are invalid.
func (w *World) Search(origin, goal model.Pos, opts model.SearchOpts) (model.PathResult, error) {
	ox, oy, ok := origin.World()
	if !ok {
		return model.PathResult{Incomplete: true}, fmt.Errorf("search origin %s: bad room name", origin)
	}
	gx, gy, ok := goal.World()
	if !ok {
		return model.PathResult{Incomplete: true}, fmt.Errorf("search goal %s: bad room name", goal)
	}

	plain := opts.PlainCost
	if plain <= 0 {
		plain = defaultPlainCost
	}
	swamp := opts.SwampCost
	if swamp <= 0 {
		swamp = defaultSwampCost
	}
	maxOps := opts.MaxOps
	if maxOps <= 0 {
		maxOps = defaultMaxOps
	}

	heuristic := func(c cell) int {
		return max(0, max(abs(c[0]-gx), abs(c[1]-gy))-opts.Range)
	}
	start := cell{ox, oy}
	matrices := make(map[string]map[cell]int)

	stepCost := func(c cell) int {
		p := model.FromWorld(c[0], c[1])
		if slices.Contains(opts.AvoidRooms, p.Room) && p.Room != origin.Room && p.Room != goal.Room {
			return blockedCost
		}
		isGoal := c[0] == gx && c[1] == gy
		if !opts.IgnoreStructures {
			m, ok := matrices[p.Room]
			if !ok {
				m = w.costMatrix(p.Room)
				matrices[p.Room] = m
			}
			if v, ok := m[c]; ok {
				if v == blockedCost && !isGoal {
					return blockedCost
				}
				if v == roadCost {
					return roadCost
				}
			}
		}
		switch w.TerrainAt(p) {
		case model.Wall:
			if isGoal {
				return plain
			}
			return blockedCost
		case model.Swamp:
			return swamp
		}
		return plain
	}

	gScore := map[cell]int{start: 0}
	parent := map[cell]cell{}
	closed := map[cell]bool{}
	open := &openSet{}
	heap.Push(open, &openNode{at: start, f: heuristic(start)})

	best, bestH := start, heuristic(start)
	ops := 0
	found := false
	for open.Len() > 0 && ops < maxOps {
		cur := heap.Pop(open).(*openNode).at
		if closed[cur] {
			continue
		}
		closed[cur] = true
		ops++

		h := heuristic(cur)
		if h < bestH || (h == bestH && gScore[cur] < gScore[best]) {
			best, bestH = cur, h
		}
		if h == 0 {
			best, found = cur, true
			break
		}

		for _, d := range model.Directions {
			dx, dy := d.Delta()
			next := cell{cur[0] + dx, cur[1] + dy}
			if closed[next] {
				continue
			}
			cost := stepCost(next)
			if cost == blockedCost {
				continue
			}
			g := gScore[cur] + cost
			if prev, seen := gScore[next]; seen && g >= prev {
				continue
			}
			gScore[next] = g
			parent[next] = cur
			heap.Push(open, &openNode{at: next, f: g + heuristic(next)})
		}
	}

	var path []model.Pos
	for c := best; c != start; c = parent[c] {
		path = append(path, model.FromWorld(c[0], c[1]))
	}
	slices.Reverse(path)
	return model.PathResult{Path: path, Incomplete: !found, Ops: ops}, nil
}

// costMatrix marks structure cells of a visible room: roads are cheap and
// anything a unit cannot stand on is blocked.
func (w *World) costMatrix(room string) map[cell]int {
	m := make(map[cell]int)
	r, ok := w.rooms[room]
	if !ok {
		return m
	}
	for _, s := range r.Structures {
		wx, wy, ok := s.Pos.World()
		if !ok {
			continue
		}
		c := cell{wx, wy}
		switch {
		case !model.Walkable(s.Type, s.My):
			m[c] = blockedCost
		case s.Type == model.StructureRoad:
			if m[c] != blockedCost {
				m[c] = roadCost
			}
		}
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
