package world

type JobKind string

const (
	JobMergeStacks        JobKind = "MERGE_STACKS"
	JobWorkMachine        JobKind = "WORK_MACHINE"
	JobBuild              JobKind = "BUILD"
	JobDeliverResource    JobKind = "DELIVER_RESOURCE"
	JobDeliverToInventory JobKind = "DELIVER_TO_INVENTORY"
	JobWaterTile          JobKind = "WATER_TILE"
	JobPlantSeed          JobKind = "PLANT_SEED"
	JobHarvestCrop        JobKind = "HARVEST_CROP"
)

// Payload is the kind-specific part of a Job. It is a closed set: one variant
// per job kind, so a job can never carry fields that do not apply to it.
// Payloads hold ids, never pointers; validity is re-checked by lookup at the
// point of use (a dangling id is recoverable, a dangling pointer is not).
type Payload interface {
	payloadKind() JobKind
}

// MergeStacksPayload moves the source stack onto the target stack.
type MergeStacksPayload struct {
	SourceID string
	TargetID string
}

// WorkMachinePayload runs one production cycle at a machine.
type WorkMachinePayload struct {
	MachineID string
}

// BuildPayload performs timed construction work at a fully supplied blueprint.
type BuildPayload struct {
	BlueprintID string
}

// DeliverResourcePayload hauls Amount of the source stack's kind to a
// blueprint or a machine (exactly one of the two is set).
type DeliverResourcePayload struct {
	StackID     string
	BlueprintID string
	MachineID   string
	Amount      int
}

// DeliverToInventoryPayload hauls a loose stack into a storage zone.
type DeliverToInventoryPayload struct {
	StackID string
	ZoneID  string
}

type WaterTilePayload struct {
	GrowZoneID string
	Tile       Vec2i
}

type PlantSeedPayload struct {
	GrowZoneID string
	Tile       Vec2i
}

type HarvestCropPayload struct {
	GrowZoneID string
	Tile       Vec2i
}

func (MergeStacksPayload) payloadKind() JobKind        { return JobMergeStacks }
func (WorkMachinePayload) payloadKind() JobKind        { return JobWorkMachine }
func (BuildPayload) payloadKind() JobKind              { return JobBuild }
func (DeliverResourcePayload) payloadKind() JobKind    { return JobDeliverResource }
func (DeliverToInventoryPayload) payloadKind() JobKind { return JobDeliverToInventory }
func (WaterTilePayload) payloadKind() JobKind          { return JobWaterTile }
func (PlantSeedPayload) payloadKind() JobKind          { return JobPlantSeed }
func (HarvestCropPayload) payloadKind() JobKind        { return JobHarvestCrop }

// Job is one unit of schedulable work. An unassigned incomplete job is open;
// an assigned incomplete job is in flight; a completed job is terminal and
// only ever removed.
type Job struct {
	JobID       string
	Kind        JobKind
	AssignedTo  string
	Completed   bool
	WorkTicks   int
	CreatedTick uint64
	Payload     Payload
}

func (j *Job) InFlight() bool { return j != nil && !j.Completed && j.AssignedTo != "" }
func (j *Job) Open() bool     { return j != nil && !j.Completed && j.AssignedTo == "" }
