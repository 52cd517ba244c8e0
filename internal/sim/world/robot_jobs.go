package world

import (
	"botworks.ai/internal/sim/tasks"
)

// jobPriority is the polling order: construction first, then hauling, then
// production, then farming.
var jobPriority = [][]JobKind{
	{JobBuild},
	{JobDeliverResource},
	{JobDeliverToInventory},
	{JobMergeStacks},
	{JobWorkMachine},
	{JobWaterTile},
	{JobPlantSeed},
	{JobHarvestCrop},
}

// pollAndClaim scans priority tiers for the closest claimable job, claims it
// and decomposes it into the robot's step queue. Claim failures are normal
// (another robot got there first within the same tick) and just advance to
// the next candidate.
func (w *World) pollAndClaim(r *Robot, nowTick uint64) bool {
	for _, tier := range jobPriority {
		avail := w.sched.Available(tier)
		// Candidates sorted by squared Euclidean distance; ties keep registry
		// insertion order (implementation detail, not a guaranteed ordering).
		for {
			best := -1
			bestD := 0
			for i, j := range avail {
				if j == nil {
					continue
				}
				pos, ok := w.jobPos(j)
				if !ok {
					continue // dangling payload; the cleanup sweep will get it
				}
				d := distSq(r.Pos, pos)
				if best == -1 || d < bestD {
					best, bestD = i, d
				}
			}
			if best == -1 {
				break
			}
			j := avail[best]
			avail[best] = nil
			if !w.sched.Claim(j.JobID, r.ID) {
				continue
			}
			steps, ok := w.decompose(j)
			if !ok {
				// Payload went stale between scan and claim; retire the job.
				w.sched.Complete(j.JobID)
				continue
			}
			r.JobID = j.JobID
			r.Queue = steps
			return true
		}
	}
	return false
}

// jobPos is the position used for closest-job selection: where the robot
// will have to go first.
func (w *World) jobPos(j *Job) (Vec2i, bool) {
	switch p := j.Payload.(type) {
	case MergeStacksPayload:
		if s := w.getStack(p.SourceID); s != nil {
			return s.Pos, true
		}
	case WorkMachinePayload:
		if m := w.machines[p.MachineID]; m != nil {
			return m.Pos, true
		}
	case BuildPayload:
		if b := w.blueprints[p.BlueprintID]; b != nil {
			return b.Pos, true
		}
	case DeliverResourcePayload:
		if s := w.getStack(p.StackID); s != nil {
			return s.Pos, true
		}
	case DeliverToInventoryPayload:
		if s := w.getStack(p.StackID); s != nil {
			return s.Pos, true
		}
	case WaterTilePayload:
		return p.Tile, true
	case PlantSeedPayload:
		return p.Tile, true
	case HarvestCropPayload:
		return p.Tile, true
	}
	return Vec2i{}, false
}

// decompose turns a claimed job into the ordered sub-action queue the robot
// executes. It re-reads every payload reference; a missing one fails the
// decomposition so the caller can retire the job.
func (w *World) decompose(j *Job) ([]tasks.Step, bool) {
	switch p := j.Payload.(type) {
	case MergeStacksPayload:
		src := w.getStack(p.SourceID)
		dst := w.getStack(p.TargetID)
		if src == nil || dst == nil {
			return nil, false
		}
		return []tasks.Step{
			{Kind: tasks.StepMoveTo, Target: toTask(src.Pos)},
			{Kind: tasks.StepPickup, Target: toTask(src.Pos)}, // Amount 0: take all
			{Kind: tasks.StepMoveTo, Target: toTask(dst.Pos)},
			{Kind: tasks.StepDeliver, Target: toTask(dst.Pos)},
		}, true

	case DeliverToInventoryPayload:
		src := w.getStack(p.StackID)
		z := w.zones[p.ZoneID]
		if src == nil || z == nil {
			return nil, false
		}
		tile, ok := w.findAvailableTile(z, src.Kind)
		if !ok {
			return nil, false
		}
		return []tasks.Step{
			{Kind: tasks.StepMoveTo, Target: toTask(src.Pos)},
			{Kind: tasks.StepPickup, Target: toTask(src.Pos)},
			{Kind: tasks.StepMoveTo, Target: toTask(tile)},
			{Kind: tasks.StepDeliver, Target: toTask(tile)},
		}, true

	case DeliverResourcePayload:
		src := w.getStack(p.StackID)
		if src == nil {
			return nil, false
		}
		var dest Vec2i
		switch {
		case p.BlueprintID != "":
			b := w.blueprints[p.BlueprintID]
			if b == nil {
				return nil, false
			}
			dest = b.Pos
		case p.MachineID != "":
			m := w.machines[p.MachineID]
			if m == nil {
				return nil, false
			}
			dest = m.Pos
		default:
			return nil, false
		}
		return []tasks.Step{
			{Kind: tasks.StepMoveTo, Target: toTask(src.Pos)},
			{Kind: tasks.StepPickup, Target: toTask(src.Pos), Amount: p.Amount},
			{Kind: tasks.StepMoveTo, Target: toTask(dest)},
			{Kind: tasks.StepDeliver, Target: toTask(dest), BlueprintID: p.BlueprintID, MachineID: p.MachineID},
		}, true

	case BuildPayload:
		b := w.blueprints[p.BlueprintID]
		if b == nil {
			return nil, false
		}
		return []tasks.Step{
			{Kind: tasks.StepMoveTo, Target: toTask(b.Pos)},
			{Kind: tasks.StepWork},
		}, true

	case WorkMachinePayload:
		m := w.machines[p.MachineID]
		if m == nil {
			return nil, false
		}
		return []tasks.Step{
			{Kind: tasks.StepMoveTo, Target: toTask(m.Pos)},
			{Kind: tasks.StepWork},
		}, true

	case WaterTilePayload:
		if w.growTile(p.GrowZoneID, p.Tile) == nil {
			return nil, false
		}
		return moveAndWork(p.Tile), true
	case PlantSeedPayload:
		if w.growTile(p.GrowZoneID, p.Tile) == nil {
			return nil, false
		}
		return moveAndWork(p.Tile), true
	case HarvestCropPayload:
		if w.growTile(p.GrowZoneID, p.Tile) == nil {
			return nil, false
		}
		return moveAndWork(p.Tile), true
	}
	return nil, false
}

func moveAndWork(tile Vec2i) []tasks.Step {
	return []tasks.Step{
		{Kind: tasks.StepMoveTo, Target: toTask(tile)},
		{Kind: tasks.StepWork},
	}
}

func toTask(v Vec2i) tasks.Vec2i   { return tasks.Vec2i{X: v.X, Y: v.Y} }
func fromTask(v tasks.Vec2i) Vec2i { return Vec2i{X: v.X, Y: v.Y} }
