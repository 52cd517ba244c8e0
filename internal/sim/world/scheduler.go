package world

import "fmt"

// Scheduler is the process-wide job table: creation, claiming, completion,
// cancellation and queries. It is an explicitly constructed object owned by
// the World and handed to whoever needs it, never a package-level singleton.
//
// All methods are called from the world loop goroutine only. Claim's
// check-then-set is therefore atomic with respect to other robots; the
// contract (at most one holder per job) must survive even if a future host
// drives robots from multiple goroutines, which is why Claim is the single
// entry point for assignment.
type Scheduler struct {
	jobs       map[string]*Job
	order      []string // insertion order; defines iteration/tie-break order
	nextJobNum uint64
}

func NewScheduler() *Scheduler {
	return &Scheduler{jobs: map[string]*Job{}}
}

func (s *Scheduler) newJobID() string {
	s.nextJobNum++
	return fmt.Sprintf("J%06d", s.nextJobNum)
}

// Create inserts an open job. Payload feasibility is not validated here:
// callers that detect an already-satisfied request use CreateCompleted so
// they still receive a job handle.
func (s *Scheduler) Create(nowTick uint64, kind JobKind, payload Payload, workTicks int) *Job {
	j := &Job{
		JobID:       s.newJobID(),
		Kind:        kind,
		WorkTicks:   workTicks,
		CreatedTick: nowTick,
		Payload:     payload,
	}
	s.jobs[j.JobID] = j
	s.order = append(s.order, j.JobID)
	return j
}

// CreateCompleted inserts a pre-completed no-op job. Infeasible requests
// (e.g. a merge whose target is already full) resolve this way instead of
// erroring, so callers always get a handle.
func (s *Scheduler) CreateCompleted(nowTick uint64, kind JobKind, payload Payload) *Job {
	j := s.Create(nowTick, kind, payload, 0)
	j.Completed = true
	return j
}

// Claim assigns jobID to robotID. It fails when the job does not exist, is
// terminal, or already has a holder. A false return is normal control flow;
// the caller tries its next candidate.
func (s *Scheduler) Claim(jobID, robotID string) bool {
	j := s.jobs[jobID]
	if j == nil || j.Completed || j.AssignedTo != "" || robotID == "" {
		return false
	}
	j.AssignedTo = robotID
	return true
}

// Complete marks jobID terminal and clears its assignment. Completing a
// missing or already-terminal job is a no-op.
func (s *Scheduler) Complete(jobID string) {
	j := s.jobs[jobID]
	if j == nil || j.Completed {
		return
	}
	j.Completed = true
	j.AssignedTo = ""
}

// Cancel marks jobID terminal and removes it from the table, so Get returns
// nil afterwards. A robot holding the job notices on its next validity check
// and recovers (drops carried goods, returns to idle); the scheduler does not
// notify it.
func (s *Scheduler) Cancel(jobID string) {
	j := s.jobs[jobID]
	if j == nil {
		return
	}
	j.Completed = true
	j.AssignedTo = ""
	delete(s.jobs, jobID)
	s.compactOrder()
}

// Get returns the job or nil. Nil is how holders learn about cancellation.
func (s *Scheduler) Get(jobID string) *Job {
	if jobID == "" {
		return nil
	}
	return s.jobs[jobID]
}

// Available returns open jobs in insertion order. When preferred is non-empty
// and at least one open job matches a preferred kind, only preferred-kind
// jobs are returned (a strict filter, not a soft sort).
func (s *Scheduler) Available(preferred []JobKind) []*Job {
	open := make([]*Job, 0, len(s.jobs))
	for _, id := range s.order {
		if j := s.jobs[id]; j.Open() {
			open = append(open, j)
		}
	}
	if len(preferred) == 0 {
		return open
	}
	want := map[JobKind]bool{}
	for _, k := range preferred {
		want[k] = true
	}
	filtered := open[:0:0]
	for _, j := range open {
		if want[j.Kind] {
			filtered = append(filtered, j)
		}
	}
	if len(filtered) == 0 {
		return open
	}
	return filtered
}

// All returns every job (including terminal ones awaiting cleanup) in
// insertion order. Read-only snapshot for telemetry.
func (s *Scheduler) All() []*Job {
	out := make([]*Job, 0, len(s.jobs))
	for _, id := range s.order {
		if j := s.jobs[id]; j != nil {
			out = append(out, j)
		}
	}
	return out
}

// CleanupCompleted purges terminal jobs to bound memory and returns how many
// were removed.
func (s *Scheduler) CleanupCompleted() int {
	removed := 0
	for id, j := range s.jobs {
		if j.Completed {
			delete(s.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		s.compactOrder()
	}
	return removed
}

func (s *Scheduler) compactOrder() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.jobs[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// stackReferenced reports whether any non-terminal job's payload references
// stackID. Scan routines use it to avoid proposing work for a stack that is
// already spoken for.
func (s *Scheduler) stackReferenced(stackID string) bool {
	if stackID == "" {
		return false
	}
	for _, j := range s.jobs {
		if j.Completed {
			continue
		}
		switch p := j.Payload.(type) {
		case MergeStacksPayload:
			if p.SourceID == stackID || p.TargetID == stackID {
				return true
			}
		case DeliverResourcePayload:
			if p.StackID == stackID {
				return true
			}
		case DeliverToInventoryPayload:
			if p.StackID == stackID {
				return true
			}
		}
	}
	return false
}

// tileReferenced reports whether a non-terminal farm job already targets the
// given grow-zone tile.
func (s *Scheduler) tileReferenced(growZoneID string, tile Vec2i) bool {
	for _, j := range s.jobs {
		if j.Completed {
			continue
		}
		switch p := j.Payload.(type) {
		case WaterTilePayload:
			if p.GrowZoneID == growZoneID && p.Tile == tile {
				return true
			}
		case PlantSeedPayload:
			if p.GrowZoneID == growZoneID && p.Tile == tile {
				return true
			}
		case HarvestCropPayload:
			if p.GrowZoneID == growZoneID && p.Tile == tile {
				return true
			}
		}
	}
	return false
}

// blueprintReferenced reports whether a non-terminal job already serves the
// blueprint (delivery or build).
func (s *Scheduler) blueprintReferenced(blueprintID string) bool {
	if blueprintID == "" {
		return false
	}
	for _, j := range s.jobs {
		if j.Completed {
			continue
		}
		switch p := j.Payload.(type) {
		case BuildPayload:
			if p.BlueprintID == blueprintID {
				return true
			}
		case DeliverResourcePayload:
			if p.BlueprintID == blueprintID {
				return true
			}
		}
	}
	return false
}

// machineReferenced reports whether a non-terminal job already serves the
// machine (feed delivery or work cycle).
func (s *Scheduler) machineReferenced(machineID string) bool {
	if machineID == "" {
		return false
	}
	for _, j := range s.jobs {
		if j.Completed {
			continue
		}
		switch p := j.Payload.(type) {
		case WorkMachinePayload:
			if p.MachineID == machineID {
				return true
			}
		case DeliverResourcePayload:
			if p.MachineID == machineID {
				return true
			}
		}
	}
	return false
}
