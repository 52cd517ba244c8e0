package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
	CleanupEveryTicks  int `yaml:"cleanup_every_ticks"`

	MaxStackSize int `yaml:"max_stack_size"`

	WorkTicks WorkTicks `yaml:"work_ticks"`
	Robots    Robots    `yaml:"robots"`
	Farm      Farm      `yaml:"farm"`
}

// WorkTicks are the default timed-work durations per job kind.
type WorkTicks struct {
	Build   int `yaml:"build"`
	Machine int `yaml:"machine"`
	Water   int `yaml:"water"`
	Plant   int `yaml:"plant"`
	Harvest int `yaml:"harvest"`
}

type Robots struct {
	DetectRange  int `yaml:"detect_range"`
	AttackRange  int `yaml:"attack_range"`
	AttackDamage int `yaml:"attack_damage"`

	WanderRadius     int `yaml:"wander_radius"`
	WanderEveryTicks int `yaml:"wander_every_ticks"`
	ScanEveryTicks   int `yaml:"scan_every_ticks"`
}

type Farm struct {
	GrowTicks       int `yaml:"grow_ticks"`
	ScanEveryTicks  int `yaml:"scan_every_ticks"`
	HarvestYield    int `yaml:"harvest_yield"`
	WateredDryTicks int `yaml:"watered_dry_ticks"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t.withDefaults(), nil
}

// Defaults returns a usable tuning when no tuning.yaml is available
// (e.g. resuming purely from a snapshot).
func Defaults() Tuning {
	return Tuning{}.withDefaults()
}

func (t Tuning) withDefaults() Tuning {
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = "1.0"
	}
	if t.TickRateHz <= 0 {
		t.TickRateHz = 5
	}
	if t.SnapshotEveryTicks <= 0 {
		t.SnapshotEveryTicks = 3000
	}
	if t.CleanupEveryTicks <= 0 {
		t.CleanupEveryTicks = 100
	}
	if t.MaxStackSize <= 0 {
		t.MaxStackSize = 64
	}
	if t.WorkTicks.Build <= 0 {
		t.WorkTicks.Build = 25
	}
	if t.WorkTicks.Machine <= 0 {
		t.WorkTicks.Machine = 15
	}
	if t.WorkTicks.Water <= 0 {
		t.WorkTicks.Water = 5
	}
	if t.WorkTicks.Plant <= 0 {
		t.WorkTicks.Plant = 5
	}
	if t.WorkTicks.Harvest <= 0 {
		t.WorkTicks.Harvest = 10
	}
	if t.Robots.DetectRange <= 0 {
		t.Robots.DetectRange = 8
	}
	if t.Robots.AttackRange <= 0 {
		t.Robots.AttackRange = 1
	}
	if t.Robots.AttackDamage <= 0 {
		t.Robots.AttackDamage = 2
	}
	if t.Robots.WanderRadius <= 0 {
		t.Robots.WanderRadius = 6
	}
	if t.Robots.WanderEveryTicks <= 0 {
		t.Robots.WanderEveryTicks = 50
	}
	if t.Robots.ScanEveryTicks <= 0 {
		t.Robots.ScanEveryTicks = 150
	}
	if t.Farm.GrowTicks <= 0 {
		t.Farm.GrowTicks = 200
	}
	if t.Farm.ScanEveryTicks <= 0 {
		t.Farm.ScanEveryTicks = 100
	}
	if t.Farm.HarvestYield <= 0 {
		t.Farm.HarvestYield = 4
	}
	if t.Farm.WateredDryTicks <= 0 {
		t.Farm.WateredDryTicks = 600
	}
	return t
}
