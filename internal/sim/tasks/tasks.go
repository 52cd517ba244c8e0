package tasks

// StepKind tags one queued sub-action of a robot's active job.
type StepKind string

const (
	StepMoveTo  StepKind = "MOVE_TO"
	StepPickup  StepKind = "PICKUP"
	StepDeliver StepKind = "DELIVER"
	StepWork    StepKind = "WORK"
)

// Step is a plain-data action descriptor interpreted by the robot system.
// Steps are data (not closures) so the queue is snapshotable and inspectable.
type Step struct {
	Kind StepKind

	// MOVE_TO
	Target Vec2i

	// PICKUP: take up to Amount from the stack at Target (0 = take all).
	// DELIVER: drop the carried stack at Target (stack tile, zone tile or
	// blueprint position).
	Amount int

	// DELIVER routing: set for blueprint/machine deliveries so the arrival
	// handler credits the right consumer instead of the stack index.
	BlueprintID string
	MachineID   string
}

// Vec2i is duplicated here to avoid an import cycle (tasks is used by world).
type Vec2i struct{ X, Y int }
