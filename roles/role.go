// Package roles holds the per-unit action scripts. Each role is a small state
// machine over CreepMemory.State; movement goes through the supervisor so a
// stuck unit recovers the same way in every role.
package roles

import (
	"log/slog"

	"github.com/nstehr/hive/model"
	"github.com/nstehr/hive/movement"
	"github.com/nstehr/hive/store"
	"github.com/nstehr/hive/world"
)

// Tick is what a role can see and act through for one unit.
type Tick struct {
	World  *world.World
	Memory *store.Memory
	Moves  *movement.Supervisor
}

type Role interface {
	Run(t *Tick, c *model.Creep, cm *store.CreepMemory)
}

// Registry maps role names to scripts.
type Registry struct {
	roles map[store.Role]Role
}

// NewRegistry registers every role the kernel drives. Scouts are run by the
// remote manager and are not listed here.
func NewRegistry() *Registry {
	return &Registry{roles: map[store.Role]Role{
		store.RoleHarvester:       harvester{},
		store.RoleStaticHarvester: staticHarvester{},
		store.RoleHauler:          hauler{},
		store.RoleUpgrader:        upgrader{},
		store.RoleBuilder:         builder{},
		store.RoleRepairer:        repairer{},
		store.RoleDefender:        defender{},
		store.RoleReserver:        reserver{},
		store.RoleRemoteHarvester: remoteHarvester{},
		store.RoleRemoteHauler:    remoteHauler{},
		store.RoleRemoteDefender:  remoteDefender{},
	}}
}

func (r *Registry) Get(role store.Role) (Role, bool) {
	x, ok := r.roles[role]
	return x, ok
}

// RunAll runs the role of every unit that has memory and is not spawning,
// in name order. A panicking unit is logged and skipped. Memory is only
// marked for saving when a role changed it.
func (r *Registry) RunAll(t *Tick) {
	for _, c := range t.World.Creeps() {
		if c.Spawning {
			continue
		}
		has := t.Memory.UpdateCreep(c.Name, func(cm *store.CreepMemory) {
			if cm.Role == store.RoleScout {
				return
			}
			role, ok := r.roles[cm.Role]
			if !ok {
				slog.Warn("unknown role", "creep", c.Name, "role", cm.Role)
				return
			}
			r.runOne(t, role, c, cm)
		})
		if !has {
			slog.Debug("unit without memory", "creep", c.Name)
		}
	}
}

func (r *Registry) runOne(t *Tick, role Role, c *model.Creep, cm *store.CreepMemory) {
	defer func() {
		if err := recover(); err != nil {
			slog.Error("role panicked", "creep", c.Name, "role", cm.Role, "error", err)
		}
	}()
	role.Run(t, c, cm)
}
