// Package planner lays out source containers, roads between a room's key
// points and highways to its remote rooms, and invalidates cached paths when
// a room's structure count changes.
package planner

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/pathcache"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

type Planner struct {
	cfg   config.Planner
	paths *pathcache.Cache
}

func New(cfg config.Planner, paths *pathcache.Cache) *Planner {
	return &Planner{cfg: cfg, paths: paths}
}

// Run plans one owned room. Each step runs on its own tick interval.
func (p *Planner) Run(w *world.World, mem *store.Memory, room *model.Room) {
	p.detectStructureChanges(mem, room)

	tick := w.Time()
	level := 0
	if room.Controller != nil {
		level = room.Controller.Level
	}
	if tick%p.cfg.ContainerInterval == 0 {
		slog.Debug("running container/road plan", "room", room.Name)
		if level >= p.cfg.MinLevelContainer {
			p.planContainers(w, mem, room)
		}
		if level >= p.cfg.MinLevelRoads {
			p.planRoads(w, mem, room)
		}
	}
	if tick%p.cfg.HighwayInterval == 0 {
		p.planHighways(w, mem, room)
	}
	if tick%p.cfg.RoadInterval == 0 {
		p.buildRoads(w, mem, room)
	}
}

// detectStructureChanges purges cached paths through the room as soon as its
// structure count moves, without waiting for the signature check.
func (p *Planner) detectStructureChanges(mem *store.Memory, room *model.Room) {
	rm := mem.Room(room.Name)
	n := len(room.Structures)
	if rm.StructureCount != 0 && rm.StructureCount != n {
		slog.Debug("structure count changed, invalidating paths", "room", room.Name, "was", rm.StructureCount, "now", n)
		p.paths.InvalidateRoom(room.Name)
	}
	rm.StructureCount = n
}

// planContainers orders a container next to every source that has neither a
// container nor a container site in range 1. The container goes on the first
// step from the source toward the controller.
func (p *Planner) planContainers(w *world.World, mem *store.Memory, room *model.Room) {
	if room.Controller == nil {
		return
	}
	for _, src := range room.Sources {
		if hasNear(room, src.Pos, model.StructureContainer) {
			continue
		}
		slog.Info("planning source container", "room", room.Name, "source", src.ID)
		res := p.paths.FindPath(w, src.Pos, room.Controller.Pos, model.SearchOpts{Range: 1})
		if len(res.Path) == 0 {
			continue
		}
		pos := res.Path[0]
		if w.CreateSite(pos, model.StructureContainer) == model.OK {
			plan := mem.Plan(room.Name)
			plan.Containers = append(plan.Containers, pos)
			plan.ContainerTick = w.Time()
		}
	}
}

func hasNear(room *model.Room, p model.Pos, structureType string) bool {
	for _, s := range room.Structures {
		if s.Type == structureType && s.Pos.RangeTo(p) <= 1 {
			return true
		}
	}
	for _, s := range room.Sites {
		if s.Type == structureType && s.Pos.RangeTo(p) <= 1 {
			return true
		}
	}
	return false
}

// planRoads connects the controller and every source pairwise. A plan is
// kept once made; incomplete paths are not recorded.
func (p *Planner) planRoads(w *world.World, mem *store.Memory, room *model.Room) {
	if plan, ok := mem.Plans[room.Name]; ok && len(plan.Roads) > 0 {
		return
	}
	var keypoints []model.Pos
	if room.Controller != nil {
		keypoints = append(keypoints, room.Controller.Pos)
	}
	for _, s := range room.Sources {
		keypoints = append(keypoints, s.Pos)
	}

	seen := make(map[model.Pos]bool)
	var roads []model.Pos
	for i := 0; i < len(keypoints); i++ {
		for j := i + 1; j < len(keypoints); j++ {
			res := p.paths.FindPath(w, keypoints[i], keypoints[j], model.SearchOpts{Range: 1, SwampCost: 1})
			if res.Incomplete {
				continue
			}
			for _, pos := range res.Path {
				if pos.Room == room.Name && !seen[pos] {
					seen[pos] = true
					roads = append(roads, pos)
				}
			}
		}
	}
	if len(roads) == 0 {
		return
	}
	plan := mem.Plan(room.Name)
	plan.Roads = roads
	plan.RoadTick = w.Time()
	slog.Info("planned roads", "room", room.Name, "tiles", len(roads))
}

// planHighways finds a path from the room's storage to the first source of
// every remote room homed here, avoiding rooms known to be hostile.
func (p *Planner) planHighways(w *world.World, mem *store.Memory, room *model.Room) {
	storage, ok := room.Storage()
	if !ok {
		return
	}

	var avoid []string
	var remotes []string
	for name, in := range mem.Intel {
		if in.Hostile {
			avoid = append(avoid, name)
		}
		if in.HomeRoom == room.Name && len(in.Sources) > 0 {
			remotes = append(remotes, name)
		}
	}
	sort.Strings(avoid)
	sort.Strings(remotes)

	for _, remote := range remotes {
		if _, ok := mem.Highways[store.HighwayKey(room.Name, remote)]; ok {
			continue
		}
		in := mem.Intel[remote]
		if in.Hostile {
			slog.Warn("no highway to hostile room", "from", room.Name, "to", remote)
			continue
		}
		dest := in.Sources[0].Pos
		dest.Room = remote
		res := p.paths.FindPath(w, storage.Pos, dest, model.SearchOpts{Range: 1, PlainCost: 2, SwampCost: 10, AvoidRooms: avoid})
		if res.Incomplete || len(res.Path) == 0 {
			slog.Warn("no highway found", "from", room.Name, "to", remote)
			continue
		}
		mem.SetHighway(room.Name, remote, store.Highway{Path: res.Path, Tick: w.Time()})
		mem.Plan(room.Name).HighwayTick = w.Time()
		slog.Info("planned highway", "from", room.Name, "to", remote, "steps", len(res.Path))
	}
}

// buildRoads places road sites along the room's road plan and along every
// highway leaving it, in rooms we can see.
func (p *Planner) buildRoads(w *world.World, mem *store.Memory, room *model.Room) {
	placed := 0
	if plan, ok := mem.Plans[room.Name]; ok {
		for _, pos := range plan.Roads {
			if w.CreateSite(pos, model.StructureRoad) == model.OK {
				placed++
			}
		}
	}

	keys := make([]string, 0, len(mem.Highways))
	for k := range mem.Highways {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	prefix := store.HighwayKey(room.Name, "")
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		for _, pos := range mem.Highways[k].Path {
			if _, visible := w.Room(pos.Room); !visible {
				continue
			}
			if w.CreateSite(pos, model.StructureRoad) == model.OK {
				placed++
			}
		}
	}
	if placed > 0 {
		slog.Debug("queued road construction", "room", room.Name, "sites", placed)
	}
}
