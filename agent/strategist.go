package agent

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/rules"
)

// Strategist runs in the background, periodically re-reading the tuning file
// and swapping the spawn directive set when it changed.
type Strategist struct {
	mu       sync.Mutex
	engine   *rules.Engine
	path     string
	interval int // re-read every N ticks
	lastTick int // tick of last evaluation; -1 until the first tick is seen
	loaded   []config.Directive
	ready    chan struct{}
}

// NewStrategist creates a strategist for the tuning file at path. current is
// the directive set the engine was built from.
func NewStrategist(engine *rules.Engine, path string, interval int, current []config.Directive) *Strategist {
	return &Strategist{
		engine:   engine,
		path:     path,
		interval: interval,
		lastTick: -1,
		loaded:   slices.Clone(current),
		ready:    make(chan struct{}, 1),
	}
}

// Enabled reports whether there is a file to watch and an interval to do it on.
func (s *Strategist) Enabled() bool { return s.path != "" && s.interval > 0 }

// UpdateTick records the latest tick and signals on interval boundaries.
func (s *Strategist) UpdateTick(tick int) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	if s.lastTick < 0 {
		s.lastTick = tick
	}
	shouldSignal := tick-s.lastTick >= s.interval
	if shouldSignal {
		s.lastTick = tick
	}
	s.mu.Unlock()

	if shouldSignal {
		select {
		case s.ready <- struct{}{}:
		default:
		}
	}
}

// Start launches the background loop. It blocks until ctx is cancelled.
func (s *Strategist) Start(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	slog.Info("strategist started", "path", s.path, "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("strategist stopped")
			return
		case <-s.ready:
			s.evaluate()
		}
	}
}

// evaluate reloads the file and swaps rules if the directives differ. A file
// that fails to load or compile leaves the active rules in place.
func (s *Strategist) evaluate() {
	cfg, err := config.Load(s.path)
	if err != nil {
		slog.Error("strategist reload failed", "path", s.path, "error", err)
		return
	}

	s.mu.Lock()
	same := slices.Equal(cfg.Spawn.Directives, s.loaded)
	s.mu.Unlock()
	if same {
		slog.Debug("directives unchanged", "path", s.path)
		return
	}

	if err := s.engine.Swap(rules.FromDirectives(cfg.Spawn.Directives)); err != nil {
		slog.Error("strategist rule swap failed", "error", err)
		return
	}
	s.mu.Lock()
	s.loaded = slices.Clone(cfg.Spawn.Directives)
	s.mu.Unlock()
}
