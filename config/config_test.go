package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	c := Default()
	if c.PathCache.TTL != 100 || c.PathCache.Capacity != 1000 {
		t.Errorf("path cache defaults = %+v", c.PathCache)
	}
	if c.Movement.StuckThreshold != 3 {
		t.Errorf("stuck threshold = %d, want 3", c.Movement.StuckThreshold)
	}
	if c.Defense.BreachHorizon != 1500 || c.Defense.AlertInterval != 1000 {
		t.Errorf("defense defaults = %+v", c.Defense)
	}
	if len(c.Spawn.StorageTiers) != 4 {
		t.Errorf("storage tiers = %v, want 4 thresholds", c.Spawn.StorageTiers)
	}
}

func TestParseOverridesOnlyNamedFields(t *testing.T) {
	c := Default()
	raw := []byte(`
log_level: debug
path_cache:
  ttl: 250
spawn:
  base_counts:
    builder: 3
  directives:
    - name: late-upgraders
      when: StorageEnergy() > 300000
      role: upgrader
      adjust: 2
`)
	if err := Parse(raw, &c); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.PathCache.TTL != 250 {
		t.Errorf("ttl = %d, want 250", c.PathCache.TTL)
	}
	if c.PathCache.Capacity != 1000 {
		t.Errorf("capacity = %d, want default 1000", c.PathCache.Capacity)
	}
	if c.Spawn.BaseCounts["builder"] != 3 || c.Spawn.BaseCounts["harvester"] != 2 {
		t.Errorf("base counts = %v", c.Spawn.BaseCounts)
	}
	if len(c.Spawn.Directives) != 1 || c.Spawn.Directives[0].Adjust != 2 {
		t.Errorf("directives = %+v", c.Spawn.Directives)
	}
	if c.Level().String() != "DEBUG" {
		t.Errorf("level = %v, want DEBUG", c.Level())
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown key", "bogus: 1\n"},
		{"bad level", "log_level: loud\n"},
		{"negative ttl", "path_cache:\n  ttl: 0\n"},
		{"directive missing when", "spawn:\n  directives:\n    - name: x\n      role: builder\n      adjust: 1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			if err := Parse([]byte(tc.raw), &c); err == nil {
				t.Errorf("expected validation error for %q", tc.raw)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hive.yaml")
	if err := os.WriteFile(path, []byte("movement:\n  stuck_threshold: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Movement.StuckThreshold != 5 {
		t.Errorf("stuck threshold = %d, want 5", c.Movement.StuckThreshold)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("movement: [1, 2"), 0o644)
	_, err = Load(bad)
	if err == nil || !strings.Contains(err.Error(), "bad.yaml") {
		t.Errorf("expected error naming the file, got %v", err)
	}
}
