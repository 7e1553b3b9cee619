package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaSrc string

// Config is the sidecar's tuning file. Every field has a default; a YAML file
// only needs to name what it overrides.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Listen struct {
		Socket    string `yaml:"socket"`
		WebSocket string `yaml:"websocket"`
	} `yaml:"listen"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	PathCache PathCache `yaml:"path_cache"`
	Movement  Movement  `yaml:"movement"`
	Defense   Defense   `yaml:"defense"`
	Spawn     Spawn     `yaml:"spawn"`
	Expansion Expansion `yaml:"expansion"`
	Planner   Planner   `yaml:"planner"`
	Agent     Agent     `yaml:"agent"`
}

type PathCache struct {
	TTL                    int     `yaml:"ttl"`
	Capacity               int     `yaml:"capacity"`
	EvictFraction          float64 `yaml:"evict_fraction"`
	StructureCheckInterval int     `yaml:"structure_check_interval"`
}

type Movement struct {
	StuckThreshold int `yaml:"stuck_threshold"`
}

type Defense struct {
	AlertInterval    int `yaml:"alert_interval"`
	LogInterval      int `yaml:"log_interval"`
	MaxDefenders     int `yaml:"max_defenders"`
	RepairThroughput int `yaml:"repair_throughput"`
	BreachHorizon    int `yaml:"breach_horizon"`
}

type Spawn struct {
	BaseCounts      map[string]int `yaml:"base_counts"`
	StorageTiers    []int          `yaml:"storage_tiers"`
	RepairThreshold float64        `yaml:"repair_threshold"`
	Directives      []Directive    `yaml:"directives"`
}

// Directive adjusts a role's desired count when its expr condition holds.
// Within one role, an exclusive directive blocks lower-priority ones.
type Directive struct {
	Name      string `yaml:"name"`
	When      string `yaml:"when"`
	Role      string `yaml:"role"`
	Adjust    int    `yaml:"adjust"`
	Priority  int    `yaml:"priority"`
	Exclusive bool   `yaml:"exclusive"`
}

type Expansion struct {
	MaxTargets       int          `yaml:"max_targets"`
	StaleTicks       int          `yaml:"stale_ticks"`
	RescoutTicks     int          `yaml:"rescout_ticks"`
	MinStorageEnergy int          `yaml:"min_storage_energy"`
	MinBucket        int          `yaml:"min_bucket"`
	Weights          ScoreWeights `yaml:"weights"`
}

type ScoreWeights struct {
	Source          float64 `yaml:"source"`
	DistancePenalty float64 `yaml:"distance_penalty"`
	MineralBonus    float64 `yaml:"mineral_bonus"`
	HostilePenalty  float64 `yaml:"hostile_penalty"`
	OwnedPenalty    float64 `yaml:"owned_penalty"`
	ReservedPenalty float64 `yaml:"reserved_penalty"`
}

type Planner struct {
	ContainerInterval int `yaml:"container_interval"`
	HighwayInterval   int `yaml:"highway_interval"`
	RoadInterval      int `yaml:"road_interval"`
	MinLevelContainer int `yaml:"min_level_containers"`
	MinLevelRoads     int `yaml:"min_level_roads"`
}

// Agent tunes the per-session tick kernel.
type Agent struct {
	GCInterval    int `yaml:"gc_interval"`
	SaveTimeoutMS int `yaml:"save_timeout_ms"`
	// ReloadTicks is how often the tuning file is re-read for new spawn
	// directives; 0 turns reloading off.
	ReloadTicks int `yaml:"reload_ticks"`
}

// Default returns the baseline tuning.
func Default() Config {
	var c Config
	c.LogLevel = "info"
	c.Listen.Socket = "/tmp/hive.sock"
	c.Store.Path = "hive.db"
	c.PathCache = PathCache{
		TTL:                    100,
		Capacity:               1000,
		EvictFraction:          0.2,
		StructureCheckInterval: 50,
	}
	c.Movement = Movement{StuckThreshold: 3}
	c.Defense = Defense{
		AlertInterval: 1000,
		LogInterval:   10,
		MaxDefenders:  4,
		// Two repairers with five work parts each.
		RepairThroughput: 2 * 5 * 100,
		BreachHorizon:    1500,
	}
	c.Spawn = Spawn{
		BaseCounts:      map[string]int{"harvester": 2, "upgrader": 1, "builder": 1},
		StorageTiers:    []int{50000, 100000, 200000, 400000},
		RepairThreshold: 0.8,
	}
	c.Expansion = Expansion{
		MaxTargets:       3,
		StaleTicks:       10000,
		RescoutTicks:     5000,
		MinStorageEnergy: 50000,
		MinBucket:        7000,
		Weights: ScoreWeights{
			Source:          10,
			DistancePenalty: 0.2,
			MineralBonus:    5,
			HostilePenalty:  50,
			OwnedPenalty:    100,
			ReservedPenalty: 25,
		},
	}
	c.Planner = Planner{
		ContainerInterval: 1000,
		HighwayInterval:   2500,
		RoadInterval:      100,
		MinLevelContainer: 2,
		MinLevelRoads:     3,
	}
	c.Agent = Agent{GCInterval: 100, SaveTimeoutMS: 2000, ReloadTicks: 500}
	return c
}

// Load reads a YAML tuning file on top of the defaults.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := Parse(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse validates raw YAML against the schema and decodes it into c.
func Parse(raw []byte, c *Config) error {
	if err := validate(raw); err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if doc == nil {
		return nil
	}

	// The validator wants JSON values; go through encoding/json so numbers
	// and maps have the types it expects.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	schema, err := jsonschema.CompileString("config.schema.json", schemaSrc)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level maps the configured log level onto slog.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
