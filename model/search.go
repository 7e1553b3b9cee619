package model

// SearchOpts configures a pathfinding search. The JSON encoding is part of the
// path cache key, so every field that changes the result must be serialised.
type SearchOpts struct {
	Range            int      `json:"range,omitempty"`
	PlainCost        int      `json:"plainCost,omitempty"`
	SwampCost        int      `json:"swampCost,omitempty"`
	MaxOps           int      `json:"maxOps,omitempty"`
	IgnoreStructures bool     `json:"ignoreStructures,omitempty"`
	AvoidRooms       []string `json:"avoidRooms,omitempty"`
}

// PathResult is the outcome of a search. Path excludes the origin.
type PathResult struct {
	Path       []Pos `json:"path"`
	Incomplete bool  `json:"incomplete"`
	Ops        int   `json:"ops,omitempty"`
}

// Rooms returns the set of room names the path touches, in first-seen order,
// always including the endpoints.
func (r PathResult) Rooms(origin, destination Pos) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	add(origin.Room)
	add(destination.Room)
	for _, p := range r.Path {
		add(p.Room)
	}
	return out
}
