// Package pathcache memoizes path searches. An entry stays usable while it is
// younger than the TTL and every room it touches still has the structure
// version captured when it was written.
package pathcache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/model"
)

// Env is what the cache needs from the world each call.
type Env interface {
	Time() int
	Search(origin, goal model.Pos, opts model.SearchOpts) (model.PathResult, error)
	Structures(room string) []model.Structure
}

type entry struct {
	result   model.PathResult
	tick     int
	versions map[string]uint64
}

// roomState tracks one room's structure version. The signature is a cheap
// fallback for changes no event reported; it is recomputed at most once per
// check interval.
type roomState struct {
	version   uint64
	signature [sha256.Size]byte
	checked   int
	known     bool
}

type Stats struct {
	Hits   int
	Misses int
	Size   int
}

type Cache struct {
	cfg     config.PathCache
	entries map[string]*entry
	rooms   map[string]*roomState
	hits    int
	misses  int
}

func New(cfg config.PathCache) *Cache {
	return &Cache{
		cfg:     cfg,
		entries: make(map[string]*entry),
		rooms:   make(map[string]*roomState),
	}
}

func key(origin, dest model.Pos, opts model.SearchOpts) string {
	b, _ := json.Marshal(opts)
	return fmt.Sprintf("%s:%d,%d-%s:%d,%d-%s", origin.Room, origin.X, origin.Y, dest.Room, dest.X, dest.Y, b)
}

// FindPath returns the same result an uncached search would.
func (c *Cache) FindPath(env Env, origin, dest model.Pos, opts model.SearchOpts) model.PathResult {
	k := key(origin, dest, opts)
	now := env.Time()

	if e, ok := c.entries[k]; ok {
		if now-e.tick < c.cfg.TTL && c.current(env, e) {
			c.hits++
			return detach(e.result)
		}
		delete(c.entries, k)
	}
	c.misses++

	res, err := env.Search(origin, dest, opts)
	if err != nil {
		slog.Warn("path search failed, not caching", "origin", origin.String(), "dest", dest.String(), "error", err)
		res.Incomplete = true
		return res
	}

	e := &entry{result: res, tick: now, versions: make(map[string]uint64)}
	for _, room := range res.Rooms(origin, dest) {
		e.versions[room] = c.version(env, room)
	}
	c.entries[k] = e
	c.evict()
	return detach(res)
}

// detach gives the caller its own copy of the path so the cached entry
// cannot be changed through it.
func detach(r model.PathResult) model.PathResult {
	r.Path = slices.Clone(r.Path)
	return r
}

func (c *Cache) current(env Env, e *entry) bool {
	for room, v := range e.versions {
		if c.version(env, room) != v {
			return false
		}
	}
	return true
}

// version returns the room's structure version, refreshing the signature if
// the check interval has passed.
func (c *Cache) version(env Env, room string) uint64 {
	rs, ok := c.rooms[room]
	if !ok {
		rs = &roomState{}
		c.rooms[room] = rs
	}
	now := env.Time()
	if rs.known && now-rs.checked < c.cfg.StructureCheckInterval {
		return rs.version
	}
	sig := signature(env.Structures(room))
	if rs.known && sig != rs.signature {
		rs.version++
		slog.Debug("structure signature changed", "room", room, "version", rs.version)
	}
	rs.signature = sig
	rs.checked = now
	rs.known = true
	return rs.version
}

func signature(structures []model.Structure) [sha256.Size]byte {
	parts := make([]string, len(structures))
	for i, s := range structures {
		parts[i] = fmt.Sprintf("%s:%d,%d", s.Type, s.Pos.X, s.Pos.Y)
	}
	sort.Strings(parts)
	return sha256.Sum256([]byte(strings.Join(parts, "|")))
}

// BumpVersion marks a room's structures as changed. Entries touching the room
// stop validating on their next lookup.
func (c *Cache) BumpVersion(room string) {
	rs, ok := c.rooms[room]
	if !ok {
		rs = &roomState{}
		c.rooms[room] = rs
	}
	rs.version++
}

// InvalidateRoom drops every entry touching room right away and forces the
// room's signature to be recomputed.
func (c *Cache) InvalidateRoom(room string) {
	n := 0
	for k, e := range c.entries {
		if _, ok := e.versions[room]; ok {
			delete(c.entries, k)
			n++
		}
	}
	c.BumpVersion(room)
	c.rooms[room].known = false
	if n > 0 {
		slog.Debug("path cache invalidated", "room", room, "entries", n)
	}
}

// evict drops the oldest fraction of entries once the cache is over capacity.
func (c *Cache) evict() {
	if len(c.entries) <= c.cfg.Capacity {
		return
	}
	type aged struct {
		key  string
		tick int
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.tick})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].tick != all[j].tick {
			return all[i].tick < all[j].tick
		}
		return all[i].key < all[j].key
	})
	n := max(1, int(float64(c.cfg.Capacity)*c.cfg.EvictFraction))
	for _, a := range all[:min(n, len(all))] {
		delete(c.entries, a.key)
	}
}

func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries)}
}
