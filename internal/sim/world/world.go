package world

import (
	"sort"
	"sync/atomic"

	"botworks.ai/internal/protocol"
	"botworks.ai/internal/sim/tuning"
)

type WorldConfig struct {
	ID     string
	Seed   int64
	Tuning tuning.Tuning
}

func (c WorldConfig) uSeed() uint64 { return uint64(c.Seed) }

// ObserverJoinRequest attaches a read-only (or admin) observer stream.
type ObserverJoinRequest struct {
	Name  string
	Admin bool
	Out   chan []byte
	Resp  chan ObserverJoinResponse
}

type ObserverJoinResponse struct {
	ObserverID string
	Welcome    protocol.WelcomeMsg
}

// CommandEnvelope is an admin command queued for the next tick boundary.
type CommandEnvelope struct {
	ObserverID string
	Cmd        protocol.CommandMsg
	Resp       chan protocol.CommandResultMsg
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg WorldConfig

	tick atomic.Uint64

	sched *Scheduler

	robots map[string]*Robot

	stacks  map[string]*Stack
	stackAt map[Vec2i]string

	zones     map[string]*Zone
	zoneOrder []string

	growZones     map[string]*GrowZone
	growZoneOrder []string

	blueprints map[string]*Blueprint
	machines   map[string]*Machine
	structures map[string]*Structure
	structAt   map[Vec2i]string

	hostiles map[string]*Hostile

	// Events not attributable to a single robot (structure built, resets).
	worldEvents []protocol.Event

	observers map[string]*observerState

	inbox         chan CommandEnvelope
	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	stop          chan struct{}

	nextStackNum     atomic.Uint64
	nextZoneNum      atomic.Uint64
	nextGrowZoneNum  atomic.Uint64
	nextRobotNum     atomic.Uint64
	nextBlueprintNum atomic.Uint64
	nextMachineNum   atomic.Uint64
	nextHostileNum   atomic.Uint64
	nextObserverNum  atomic.Uint64

	// World-level scan cooldowns (absolute next-run ticks).
	nextFarmScanAt   uint64
	nextSupplyScanAt uint64

	// Optional logger (may be nil). Implemented in internal/persistence.
	tickLogger TickLogger

	// Optional snapshot sink (may be nil). Snapshot writing is off-thread.
	snapshotSink chan<- Snapshot

	metrics atomic.Value
}

type observerState struct {
	ID    string
	Admin bool
	Out   chan []byte
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick          uint64            `json:"tick"`
	Commands      []RecordedCommand `json:"commands,omitempty"`
	JobsCreated   int               `json:"jobs_created,omitempty"`
	JobsCompleted int               `json:"jobs_completed,omitempty"`
	Digest        string            `json:"digest"`
}

type RecordedCommand struct {
	ObserverID string              `json:"observer_id"`
	Cmd        protocol.CommandMsg `json:"cmd"`
}

func New(cfg WorldConfig) *World {
	w := &World{
		cfg:           cfg,
		sched:         NewScheduler(),
		robots:        map[string]*Robot{},
		stacks:        map[string]*Stack{},
		stackAt:       map[Vec2i]string{},
		zones:         map[string]*Zone{},
		growZones:     map[string]*GrowZone{},
		blueprints:    map[string]*Blueprint{},
		machines:      map[string]*Machine{},
		structures:    map[string]*Structure{},
		structAt:      map[Vec2i]string{},
		hostiles:      map[string]*Hostile{},
		observers:     map[string]*observerState{},
		inbox:         make(chan CommandEnvelope, 1024),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerLeave: make(chan string, 16),
		stop:          make(chan struct{}),
	}
	return w
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.Tuning.TickRateHz
}

func (w *World) Tick() uint64 { return w.tick.Load() }

// Scheduler exposes the job registry to collaborators (dependency injection,
// not a singleton). Must only be used from the world loop goroutine.
func (w *World) Scheduler() *Scheduler { return w.sched }

func (w *World) Inbox() chan<- CommandEnvelope            { return w.inbox }
func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }
func (w *World) ObserverLeave() chan<- string             { return w.observerLeave }

func (w *World) SetTickLogger(l TickLogger)         { w.tickLogger = l }
func (w *World) SetSnapshotSink(ch chan<- Snapshot) { w.snapshotSink = ch }

// AllJobs returns a telemetry snapshot of the job table.
func (w *World) AllJobs() []protocol.JobObs {
	jobs := w.sched.All()
	out := make([]protocol.JobObs, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, protocol.JobObs{
			ID:         j.JobID,
			Kind:       string(j.Kind),
			AssignedTo: j.AssignedTo,
			Completed:  j.Completed,
			WorkTicks:  j.WorkTicks,
		})
	}
	return out
}

// RobotInfo returns a telemetry snapshot of one robot, or false.
func (w *World) RobotInfo(id string) (protocol.RobotObs, bool) {
	r := w.robots[id]
	if r == nil {
		return protocol.RobotObs{}, false
	}
	return robotObs(r), true
}

func robotObs(r *Robot) protocol.RobotObs {
	o := protocol.RobotObs{
		ID:    r.ID,
		Name:  r.Name,
		Pos:   r.Pos.ToArray(),
		State: string(r.State),
		JobID: r.JobID,
		Queue: len(r.Queue),
	}
	if r.Carrying != nil {
		o.Carrying = &protocol.StackRef{Kind: r.Carrying.Kind, Amount: r.Carrying.Amount}
	}
	return o
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
