package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"botworks.ai/internal/sim/tasks"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 is the full authoritative world state, sufficient to resume a
// world deterministically (together with tuning).
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed int64 `json:"seed"`

	// World-level scan cooldowns, carried so a resumed world schedules its
	// next scans exactly where the original would have.
	NextFarmScanAt   uint64 `json:"next_farm_scan_at,omitempty"`
	NextSupplyScanAt uint64 `json:"next_supply_scan_at,omitempty"`

	Robots     []RobotV1     `json:"robots,omitempty"`
	Stacks     []StackV1     `json:"stacks,omitempty"`
	Zones      []ZoneV1      `json:"zones,omitempty"`
	GrowZones  []GrowZoneV1  `json:"grow_zones,omitempty"`
	Blueprints []BlueprintV1 `json:"blueprints,omitempty"`
	Machines   []MachineV1   `json:"machines,omitempty"`
	Structures []StructureV1 `json:"structures,omitempty"`
	Hostiles   []HostileV1   `json:"hostiles,omitempty"`
	Jobs       []JobV1       `json:"jobs,omitempty"`

	Counters CountersV1 `json:"counters"`
}

type CountersV1 struct {
	Stack     uint64 `json:"stack"`
	Zone      uint64 `json:"zone"`
	GrowZone  uint64 `json:"grow_zone"`
	Robot     uint64 `json:"robot"`
	Blueprint uint64 `json:"blueprint"`
	Machine   uint64 `json:"machine"`
	Hostile   uint64 `json:"hostile"`
	Job       uint64 `json:"job"`
}

type RobotV1 struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Pos  [2]int `json:"pos"`
	Home [2]int `json:"home"`

	State  string       `json:"state"`
	Resume string       `json:"resume,omitempty"`
	Queue  []tasks.Step `json:"queue,omitempty"`

	HasDest bool   `json:"has_dest,omitempty"`
	Dest    [2]int `json:"dest,omitempty"`

	JobID         string `json:"job_id,omitempty"`
	CarryKind     string `json:"carry_kind,omitempty"`
	CarryAmount   int    `json:"carry_amount,omitempty"`
	WorkUntil     uint64 `json:"work_until,omitempty"`
	NextWanderAt  uint64 `json:"next_wander_at,omitempty"`
	NextScanAt    uint64 `json:"next_scan_at,omitempty"`
	WanderSeed    uint64 `json:"wander_seed"`
}

type StackV1 struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Amount      int    `json:"amount"`
	Pos         [2]int `json:"pos"`
	CreatedTick uint64 `json:"created_tick,omitempty"`
}

type ZoneV1 struct {
	ID     string `json:"id"`
	Center [2]int `json:"center"`
	W      int    `json:"w"`
	H      int    `json:"h"`
}

type GrowZoneV1 struct {
	ID     string       `json:"id"`
	Center [2]int       `json:"center"`
	W      int          `json:"w"`
	H      int          `json:"h"`
	Crop   string       `json:"crop"`
	Tiles  []CropTileV1 `json:"tiles,omitempty"`
}

type CropTileV1 struct {
	Pos          [2]int `json:"pos"`
	Planted      bool   `json:"planted,omitempty"`
	Growth       int    `json:"growth,omitempty"`
	Ripe         bool   `json:"ripe,omitempty"`
	Watered      bool   `json:"watered,omitempty"`
	WateredUntil uint64 `json:"watered_until,omitempty"`
}

type BlueprintV1 struct {
	ID        string `json:"id"`
	Structure string `json:"structure"`
	Pos       [2]int `json:"pos"`
	Material  string `json:"material"`
	Needed    int    `json:"needed"`
	Delivered int    `json:"delivered"`
}

type MachineV1 struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Pos         [2]int `json:"pos"`
	InputKind   string `json:"input_kind"`
	Input       int    `json:"input"`
	OutputKind  string `json:"output_kind"`
	OutputCount int    `json:"output_count"`
}

type StructureV1 struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Pos       [2]int `json:"pos"`
	BuiltTick uint64 `json:"built_tick,omitempty"`
}

type HostileV1 struct {
	ID  string `json:"id"`
	Pos [2]int `json:"pos"`
	HP  int    `json:"hp"`
}

// JobV1 flattens the payload sum type: Kind selects which payload fields are
// meaningful on import.
type JobV1 struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	Completed   bool   `json:"completed,omitempty"`
	WorkTicks   int    `json:"work_ticks,omitempty"`
	CreatedTick uint64 `json:"created_tick,omitempty"`

	SourceID    string `json:"source_id,omitempty"`
	TargetID    string `json:"target_id,omitempty"`
	StackID     string `json:"stack_id,omitempty"`
	ZoneID      string `json:"zone_id,omitempty"`
	BlueprintID string `json:"blueprint_id,omitempty"`
	MachineID   string `json:"machine_id,omitempty"`
	GrowZoneID  string `json:"grow_zone_id,omitempty"`
	Tile        [2]int `json:"tile,omitempty"`
	Amount      int    `json:"amount,omitempty"`
}

// Write stores the snapshot as zstd-compressed JSON at path (atomic rename).
func Write(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := json.NewEncoder(bw).Encode(snap); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Read loads a snapshot written by Write.
func Read(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()
	if err := json.NewDecoder(bufio.NewReader(dec)).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Header.Version != 1 {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}
