package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.ProtocolVersion != "1.0" {
		t.Fatalf("protocol_version=%q", d.ProtocolVersion)
	}
	if d.TickRateHz != 5 || d.MaxStackSize != 64 {
		t.Fatalf("core defaults: %+v", d)
	}
	if d.WorkTicks.Build != 25 || d.WorkTicks.Harvest != 10 {
		t.Fatalf("work_ticks defaults: %+v", d.WorkTicks)
	}
	if d.Robots.DetectRange != 8 || d.Robots.WanderRadius != 6 {
		t.Fatalf("robots defaults: %+v", d.Robots)
	}
	if d.Farm.GrowTicks != 200 || d.Farm.HarvestYield != 4 {
		t.Fatalf("farm defaults: %+v", d.Farm)
	}
}

func TestLoad_OverridesThenFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := []byte("tick_rate_hz: 20\nmax_stack_size: 99\nrobots:\n  wander_radius: 3\nfarm:\n  grow_ticks: 50\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TickRateHz != 20 || got.MaxStackSize != 99 {
		t.Fatalf("overrides lost: %+v", got)
	}
	if got.Robots.WanderRadius != 3 || got.Farm.GrowTicks != 50 {
		t.Fatalf("nested overrides lost: robots=%+v farm=%+v", got.Robots, got.Farm)
	}
	// Everything the file omits falls back to the defaults.
	if got.SnapshotEveryTicks != 3000 || got.WorkTicks.Build != 25 || got.Robots.ScanEveryTicks != 150 {
		t.Fatalf("defaults not filled: %+v", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("want os.IsNotExist error, got %v", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("tick_rate_hz: [oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed yaml must fail")
	}
}
