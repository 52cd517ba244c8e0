package world

import (
	"botworks.ai/internal/protocol"
	"botworks.ai/internal/sim/tasks"
)

// systemRobots advances every robot by one tick in fixed id order. Within a
// tick robots act strictly sequentially, which is what makes the scheduler's
// check-then-set claim safe without locks.
func (w *World) systemRobots(nowTick uint64) {
	for _, r := range w.sortedRobots() {
		w.tickRobot(r, nowTick)
	}
}

func (w *World) tickRobot(r *Robot, nowTick uint64) {
	// Rule 1: hostiles pre-empt everything. The active job is kept, not
	// cancelled; normal processing resumes once the range is clear.
	if h := w.nearestHostile(r.Pos, w.cfg.Tuning.Robots.DetectRange); h != nil {
		if r.State != StateDefending {
			r.resume = r.State
			r.State = StateDefending
		}
		w.robotDefend(r, h, nowTick)
		return
	}
	if r.State == StateDefending {
		r.State = r.resume
		if r.State == "" {
			r.State = StateIdle
		}
	}

	// Rule 6: re-validate the active job before acting. A nil lookup means
	// the job was cancelled externally; drop any carried goods where we stand
	// and go back to idle.
	if r.JobID != "" && w.sched.Get(r.JobID) == nil {
		if r.Carrying != nil {
			w.dropCarried(r, nowTick, "JOB_CANCELLED")
		}
		r.clearJob()
		r.State = StateIdle
		r.AddEvent(protocol.Event{"t": nowTick, "type": "JOB_LOST", "robot": r.ID})
	}

	switch r.State {
	case StateWorking:
		if nowTick >= r.WorkUntil {
			w.finishWork(r, nowTick)
		}

	case StateMoving, StateCarrying, StateReturning, StateWandering:
		w.stepToward(r, nowTick)

	case StateIdle:
		w.tickIdle(r, nowTick)
	}
}

func (w *World) tickIdle(r *Robot, nowTick uint64) {
	// Drain instantaneous steps until one sets the robot in motion or the
	// queue empties. Bounded by the queue length, so this cannot spin.
	for len(r.Queue) > 0 {
		step := r.Queue[0]
		r.Queue = r.Queue[1:]
		if w.execStep(r, step, nowTick) {
			return
		}
		if r.State != StateIdle {
			return
		}
	}

	if r.JobID != "" {
		// Queue drained with the job still open: the last step's effect is
		// the job's completion point for non-timed jobs.
		w.sched.Complete(r.JobID)
		r.clearJob()
		return
	}

	// Rule 2: poll the registry for the closest claimable job.
	if w.pollAndClaim(r, nowTick) {
		w.tickIdle(r, nowTick) // start the first step this tick
		return
	}

	// Rule 7: nothing to do. Run maintenance scans, then wander, each on its
	// own cooldown so idle robots don't saturate the registry.
	if nowTick >= r.NextScanAt {
		r.NextScanAt = nowTick + uint64(w.cfg.Tuning.Robots.ScanEveryTicks)
		created := w.scanMergeOpportunities(nowTick) + w.scanLooseResources(nowTick)
		if created > 0 {
			return // claim next tick
		}
	}
	if nowTick >= r.NextWanderAt {
		r.NextWanderAt = nowTick + uint64(w.cfg.Tuning.Robots.WanderEveryTicks)
		off := r.nextWanderOffset(w.cfg.Tuning.Robots.WanderRadius)
		dest := Vec2i{X: r.Home.X + off.X, Y: r.Home.Y + off.Y}
		if dest != r.Pos {
			r.Dest = dest
			r.HasDest = true
			r.State = StateWandering
		}
	}
}

// execStep interprets one queued step. It returns true when the step put the
// robot into a non-idle state (movement or timed work).
func (w *World) execStep(r *Robot, step tasks.Step, nowTick uint64) bool {
	switch step.Kind {
	case tasks.StepMoveTo:
		r.Dest = Vec2i{X: step.Target.X, Y: step.Target.Y}
		r.HasDest = true
		if r.Carrying != nil {
			r.State = StateCarrying
		} else {
			r.State = StateMoving
		}
		// Already in range: run the arrival logic next tick via arrive.
		if w.arrived(r) {
			w.arrive(r, nowTick)
			return r.State != StateIdle
		}
		return true

	case tasks.StepPickup:
		w.doPickup(r, step, nowTick)
		return false

	case tasks.StepDeliver:
		w.doDeliver(r, step, nowTick)
		return false

	case tasks.StepWork:
		j := w.sched.Get(r.JobID)
		if j == nil {
			return false
		}
		r.State = StateWorking
		r.WorkUntil = nowTick + uint64(j.WorkTicks)
		return true
	}
	return false
}

// arrived uses tolerance 1: robots act on adjacent tiles (or the tile itself)
// rather than standing on top of the target.
func (w *World) arrived(r *Robot) bool {
	if !r.HasDest {
		return true
	}
	if r.State == StateWandering {
		return r.Pos == r.Dest
	}
	return Manhattan(r.Pos, r.Dest) <= 1
}

// stepToward moves one tile along the primary axis, falling back to the
// secondary axis when the next tile is occupied by a structure. Stacks do not
// block robots.
func (w *World) stepToward(r *Robot, nowTick uint64) {
	if !r.HasDest {
		r.State = StateIdle
		return
	}
	if w.arrived(r) {
		w.arrive(r, nowTick)
		return
	}
	dx := r.Dest.X - r.Pos.X
	dy := r.Dest.Y - r.Pos.Y
	primaryX := absInt(dx) >= absInt(dy)
	next := r.Pos
	if primaryX {
		next.X += sign(dx)
	} else {
		next.Y += sign(dy)
	}
	if _, blocked := w.structAt[next]; blocked {
		// Sidestep along the secondary axis; with no secondary preference
		// (straight-line path), try both perpendicular tiles in fixed order.
		var alts []Vec2i
		if primaryX {
			if s := sign(dy); s != 0 {
				alts = []Vec2i{{X: r.Pos.X, Y: r.Pos.Y + s}}
			} else {
				alts = []Vec2i{{X: r.Pos.X, Y: r.Pos.Y + 1}, {X: r.Pos.X, Y: r.Pos.Y - 1}}
			}
		} else {
			if s := sign(dx); s != 0 {
				alts = []Vec2i{{X: r.Pos.X + s, Y: r.Pos.Y}}
			} else {
				alts = []Vec2i{{X: r.Pos.X + 1, Y: r.Pos.Y}, {X: r.Pos.X - 1, Y: r.Pos.Y}}
			}
		}
		for _, alt := range alts {
			if _, blocked2 := w.structAt[alt]; !blocked2 {
				next = alt
				break
			}
		}
	}
	if _, blocked := w.structAt[next]; blocked {
		// Boxed in; give up on this destination rather than oscillating.
		r.HasDest = false
		r.State = StateIdle
		r.AddEvent(protocol.Event{"t": nowTick, "type": "MOVE_BLOCKED", "robot": r.ID, "dest": r.Dest.ToArray()})
		return
	}
	r.Pos = next
	if w.arrived(r) {
		w.arrive(r, nowTick)
	}
}

func (w *World) arrive(r *Robot, nowTick uint64) {
	r.HasDest = false
	if r.State == StateWandering {
		r.State = StateIdle
		return
	}
	r.State = StateIdle
	// The next queued step is the arrival handler (pickup, deliver, work);
	// it runs on this same tick.
	w.tickIdle(r, nowTick)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
