package world

import (
	"fmt"
	"sort"

	"botworks.ai/internal/protocol"
	"botworks.ai/internal/sim/tasks"
)

type RobotState string

const (
	StateIdle      RobotState = "IDLE"
	StateMoving    RobotState = "MOVING"
	StateWorking   RobotState = "WORKING"
	StateCarrying  RobotState = "CARRYING"
	StateReturning RobotState = "RETURNING"
	StateWandering RobotState = "WANDERING"
	StateDefending RobotState = "DEFENDING"
)

// Carried is a robot's private load: one kind, one amount, not indexed by
// tile. It becomes a Stack again only when delivered or dropped.
type Carried struct {
	Kind   string
	Amount int
}

type Robot struct {
	ID   string
	Name string

	Pos  Vec2i
	Home Vec2i

	State RobotState

	// Queue holds the remaining sub-actions of the active job. A popped
	// MOVE_TO leaves its arrival handler as the next queued step, so there is
	// no separate in-progress slot.
	Queue   []tasks.Step
	Dest    Vec2i
	HasDest bool

	JobID    string
	Carrying *Carried

	// WORKING deadline (absolute tick).
	WorkUntil uint64

	// resume is the state to restore when hostiles leave detection range.
	resume RobotState

	// Idle maintenance cooldowns (absolute next-allowed ticks).
	NextWanderAt uint64
	NextScanAt   uint64

	Events []protocol.Event

	// Deterministic per-robot wander source, seeded at spawn.
	wanderSeed uint64
}

func (w *World) newRobotID() string {
	n := w.nextRobotNum.Add(1)
	return fmt.Sprintf("R%06d", n)
}

func (w *World) spawnRobot(nowTick uint64, name string, pos Vec2i) *Robot {
	r := &Robot{
		ID:         w.newRobotID(),
		Name:       name,
		Pos:        pos,
		Home:       pos,
		State:      StateIdle,
		wanderSeed: uint64(len(w.robots))*0x9e3779b9 + w.cfg.uSeed() + nowTick,
	}
	w.robots[r.ID] = r
	return r
}

func (w *World) sortedRobots() []*Robot {
	out := make([]*Robot, 0, len(w.robots))
	for _, r := range w.robots {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Robot) AddEvent(e protocol.Event) {
	r.Events = append(r.Events, e)
}

func (r *Robot) TakeEvents() []protocol.Event {
	ev := r.Events
	r.Events = nil
	return ev
}

// clearJob abandons the active job locally (queue, movement, job ref). The
// scheduler entry is the caller's concern.
func (r *Robot) clearJob() {
	r.JobID = ""
	r.Queue = nil
	r.HasDest = false
	r.WorkUntil = 0
}

// nextWanderOffset is a small deterministic LCG so wander targets are stable
// across runs with the same seed.
func (r *Robot) nextWanderOffset(radius int) Vec2i {
	if radius <= 0 {
		return Vec2i{}
	}
	r.wanderSeed = r.wanderSeed*6364136223846793005 + 1442695040888963407
	span := 2*radius + 1
	dx := int(r.wanderSeed>>33)%span - radius
	r.wanderSeed = r.wanderSeed*6364136223846793005 + 1442695040888963407
	dy := int(r.wanderSeed>>33)%span - radius
	return Vec2i{X: dx, Y: dy}
}
