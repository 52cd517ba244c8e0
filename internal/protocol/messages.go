package protocol

// HELLO (observer -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ObserverName    string `json:"observer_name"`
	Admin           bool   `json:"admin,omitempty"`
}

// WELCOME (server -> observer)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ObserverID      string      `json:"observer_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	WorldID      string `json:"world_id"`
	TickRateHz   int    `json:"tick_rate_hz"`
	MaxStackSize int    `json:"max_stack_size"`
	Seed         int64  `json:"seed"`
}

// STATE (server -> observer, one per tick)
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Robots     []RobotObs     `json:"robots"`
	Jobs       []JobObs       `json:"jobs"`
	Stacks     []StackObs     `json:"stacks"`
	Zones      []ZoneObs      `json:"zones"`
	GrowZones  []GrowZoneObs  `json:"grow_zones,omitempty"`
	Blueprints []BlueprintObs `json:"blueprints,omitempty"`
	Machines   []MachineObs   `json:"machines,omitempty"`
	Hostiles   []HostileObs   `json:"hostiles,omitempty"`
	Events     []Event        `json:"events,omitempty"`
	Digest     string         `json:"digest"`
}

type RobotObs struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Pos      [2]int    `json:"pos"`
	State    string    `json:"state"`
	JobID    string    `json:"job_id,omitempty"`
	Carrying *StackRef `json:"carrying,omitempty"`
	Queue    int       `json:"queue"`
}

type StackRef struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount"`
}

type JobObs struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	AssignedTo string `json:"assigned_to,omitempty"`
	Completed  bool   `json:"completed"`
	WorkTicks  int    `json:"work_ticks,omitempty"`
}

type StackObs struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Amount int    `json:"amount"`
	Pos    [2]int `json:"pos"`
}

type ZoneObs struct {
	ID     string `json:"id"`
	Center [2]int `json:"center"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Free   int    `json:"free_tiles"`
}

type GrowZoneObs struct {
	ID     string `json:"id"`
	Center [2]int `json:"center"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Ripe   int    `json:"ripe_tiles"`
}

type BlueprintObs struct {
	ID        string `json:"id"`
	Structure string `json:"structure"`
	Pos       [2]int `json:"pos"`
	Needed    int    `json:"needed"`
	Delivered int    `json:"delivered"`
	Done      bool   `json:"done"`
}

type MachineObs struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Pos    [2]int `json:"pos"`
	Input  int    `json:"input"`
	Output int    `json:"output"`
}

type HostileObs struct {
	ID  string `json:"id"`
	Pos [2]int `json:"pos"`
	HP  int    `json:"hp"`
}

// COMMAND (admin observer -> server). Applied at the next tick boundary.
type CommandMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Op              string `json:"op"`

	// Placement target (spawn/place ops).
	Pos    [2]int `json:"pos,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Amount int    `json:"amount,omitempty"`

	// ADD_ZONE / ADD_GROW_ZONE.
	Center [2]int `json:"center,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	// SPAWN_ROBOT.
	Name string `json:"name,omitempty"`

	// PLACE_BLUEPRINT.
	Structure string `json:"structure,omitempty"`

	// SPAWN_HOSTILE.
	HP int `json:"hp,omitempty"`

	// CANCEL_JOB.
	JobID string `json:"job_id,omitempty"`

	// CREATE_JOB (explicit collaborator entry points).
	JobKind  string `json:"job_kind,omitempty"`
	SourceID string `json:"source_id,omitempty"`
	TargetID string `json:"target_id,omitempty"`
	StackID  string `json:"stack_id,omitempty"`
}

// Command ops.
const (
	OpSpawnStack     = "SPAWN_STACK"
	OpSpawnRobot     = "SPAWN_ROBOT"
	OpSpawnHostile   = "SPAWN_HOSTILE"
	OpAddZone        = "ADD_ZONE"
	OpAddGrowZone    = "ADD_GROW_ZONE"
	OpPlaceBlueprint = "PLACE_BLUEPRINT"
	OpPlaceMachine   = "PLACE_MACHINE"
	OpCreateJob      = "CREATE_JOB"
	OpCancelJob      = "CANCEL_JOB"
)

// COMMAND_RESULT (server -> admin observer)
type CommandResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	EntityID        string `json:"entity_id,omitempty"`
}
