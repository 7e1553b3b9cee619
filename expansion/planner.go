// Package expansion scores scouted rooms as remote-mining or claim targets.
package expansion

import (
	"log/slog"
	"sort"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/store"
)

// Action is what to do with a target room.
type Action string

const (
	ActionClaim   Action = "claim"
	ActionReserve Action = "reserve"
	ActionNone    Action = "none"
)

// ScoredRoom is a ranked candidate. It is recomputed on every evaluation.
type ScoredRoom struct {
	Room     string
	Intel    *store.Intel
	Score    float64
	HomeRoom string
}

type Planner struct {
	cfg config.Expansion
}

func New(cfg config.Expansion) *Planner {
	return &Planner{cfg: cfg}
}

// Viable reports whether a room can be a target at all: it has a source, is
// not owned and showed no hostiles.
func Viable(in *store.Intel) bool {
	return in != nil && len(in.Sources) > 0 && in.Owner == "" && !in.Hostile
}

// Score weighs a room for home. A reservation held by player is not penalised.
func (p *Planner) Score(in *store.Intel, home, player string) float64 {
	w := p.cfg.Weights
	score := float64(len(in.Sources)) * w.Source
	score -= float64(model.LinearDistance(in.Room, home)) * w.DistancePenalty
	if in.HasMineral {
		score += w.MineralBonus
	}
	if in.Hostile {
		score -= w.HostilePenalty
	}
	switch {
	case in.Owner != "":
		score -= w.OwnedPenalty
	case in.ReservedBy != "" && in.ReservedBy != player:
		score -= w.ReservedPenalty
	}
	return score
}

// TopTargets ranks the viable, fresh rooms home may use, best first. Ties
// keep room-name order.
func (p *Planner) TopTargets(mem *store.Memory, home, player string, tick int) []ScoredRoom {
	names := make([]string, 0, len(mem.Intel))
	for name := range mem.Intel {
		names = append(names, name)
	}
	sort.Strings(names)

	var scored []ScoredRoom
	for _, name := range names {
		in := mem.Intel[name]
		if !Viable(in) {
			continue
		}
		if in.HomeRoom != "" && in.HomeRoom != home {
			continue
		}
		if tick-in.LastScouted > p.cfg.StaleTicks {
			continue
		}
		scored = append(scored, ScoredRoom{Room: name, Intel: in, Score: p.Score(in, home, player), HomeRoom: home})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > p.cfg.MaxTargets {
		scored = scored[:p.cfg.MaxTargets]
	}

	for i, s := range scored {
		slog.Debug("expansion target", "home", home, "rank", i+1, "room", s.Room, "score", s.Score)
	}
	return scored
}

// Action claims while the empire has room to grow and the target has two
// sources; otherwise it reserves for remote mining.
func (p *Planner) Action(in *store.Intel, ownedRooms, gclLevel int) Action {
	if !Viable(in) {
		return ActionNone
	}
	if ownedRooms < gclLevel && len(in.Sources) >= 2 {
		return ActionClaim
	}
	return ActionReserve
}
