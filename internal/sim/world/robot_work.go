package world

import (
	"botworks.ai/internal/protocol"
	"botworks.ai/internal/sim/tasks"
)

// doPickup takes from the stack at the step target into the robot's carried
// slot. Pickup never takes more than the step asks for and never more than
// the stack holds.
func (w *World) doPickup(r *Robot, step tasks.Step, nowTick uint64) {
	pos := fromTask(step.Target)
	s := w.StackAt(pos)
	if s == nil {
		// Stale reference: the stack vanished while we were en route. Retire
		// the job and go back to idle; nothing was picked up, nothing to drop.
		w.sched.Complete(r.JobID)
		r.clearJob()
		r.AddEvent(protocol.Event{"t": nowTick, "type": "JOB_STALE", "robot": r.ID, "reason": "source stack gone"})
		return
	}
	want := step.Amount
	if want <= 0 || want > s.Amount {
		want = s.Amount
	}
	taken := w.TakeFromStack(pos, want)
	if taken <= 0 {
		w.sched.Complete(r.JobID)
		r.clearJob()
		return
	}
	if r.Carrying != nil && r.Carrying.Kind == s.Kind {
		r.Carrying.Amount += taken
	} else {
		r.Carrying = &Carried{Kind: s.Kind, Amount: taken}
	}
}

// doDeliver empties the carried slot into the step target: a blueprint, a
// machine, or a tile of the stack index. A remainder the target cannot absorb
// becomes a new stack at the robot's position.
func (w *World) doDeliver(r *Robot, step tasks.Step, nowTick uint64) {
	if r.Carrying == nil || r.Carrying.Amount <= 0 {
		r.Carrying = nil
		return
	}
	c := *r.Carrying

	if step.BlueprintID != "" {
		b := w.blueprints[step.BlueprintID]
		if b == nil || b.Done {
			w.dropCarried(r, nowTick, "TARGET_GONE")
			return
		}
		need := b.Needed - b.Delivered
		take := c.Amount
		if take > need {
			take = need
		}
		b.Delivered += take
		r.Carrying = nil
		if rem := c.Amount - take; rem > 0 {
			r.Carrying = &Carried{Kind: c.Kind, Amount: rem}
			w.dropCarried(r, nowTick, "SURPLUS")
		}
		return
	}

	if step.MachineID != "" {
		m := w.machines[step.MachineID]
		if m == nil {
			w.dropCarried(r, nowTick, "TARGET_GONE")
			return
		}
		m.Input += c.Amount
		r.Carrying = nil
		return
	}

	pos := fromTask(step.Target)
	_, absorbed := w.UpsertStack(nowTick, pos, c.Kind, c.Amount)
	if rem := c.Amount - absorbed; rem > 0 {
		r.Carrying = &Carried{Kind: c.Kind, Amount: rem}
		w.dropCarried(r, nowTick, "OVERFLOW")
	} else {
		r.Carrying = nil
	}
}

// dropCarried re-inserts the carried amount into the stack index at (or as
// close as possible to) the robot's position. This is both the cancellation
// recovery path and the overflow disposal path; goods are never discarded.
func (w *World) dropCarried(r *Robot, nowTick uint64, reason string) {
	if r.Carrying == nil || r.Carrying.Amount <= 0 {
		r.Carrying = nil
		return
	}
	c := *r.Carrying
	_, absorbed := w.UpsertStack(nowTick, r.Pos, c.Kind, c.Amount)
	rem := c.Amount - absorbed
	for rem > 0 {
		p, ok := w.nearestFreeTile(r.Pos, 4)
		if !ok {
			break
		}
		_, abs2 := w.UpsertStack(nowTick, p, c.Kind, rem)
		if abs2 <= 0 {
			break
		}
		rem -= abs2
	}
	if rem > 0 {
		// Nowhere to put it; keep carrying rather than destroy resources.
		r.Carrying = &Carried{Kind: c.Kind, Amount: rem}
	} else {
		r.Carrying = nil
	}
	r.AddEvent(protocol.Event{"t": nowTick, "type": "DROP", "robot": r.ID, "kind": c.Kind, "amount": c.Amount - rem, "reason": reason})
}

// finishWork applies the effect of a timed job when its deadline is reached.
func (w *World) finishWork(r *Robot, nowTick uint64) {
	j := w.sched.Get(r.JobID)
	if j == nil {
		r.clearJob()
		r.State = StateIdle
		return
	}

	switch p := j.Payload.(type) {
	case BuildPayload:
		if b := w.blueprints[p.BlueprintID]; b != nil && !b.Done {
			w.completeBlueprint(b, nowTick, r.ID)
		}

	case WorkMachinePayload:
		if m := w.machines[p.MachineID]; m != nil && m.Input > 0 {
			m.Input--
			w.spawnProduce(nowTick, m.Pos, m.OutputKind, m.OutputCount)
			r.AddEvent(protocol.Event{"t": nowTick, "type": "MACHINE_CYCLE", "robot": r.ID, "machine": m.ID, "output": m.OutputKind})
		}

	case WaterTilePayload:
		if t := w.growTile(p.GrowZoneID, p.Tile); t != nil {
			t.Watered = true
			t.WateredUntil = nowTick + uint64(w.cfg.Tuning.Farm.WateredDryTicks)
		}

	case PlantSeedPayload:
		if t := w.growTile(p.GrowZoneID, p.Tile); t != nil && !t.Planted {
			t.Planted = true
			t.Growth = 0
			t.Ripe = false
		}

	case HarvestCropPayload:
		if t := w.growTile(p.GrowZoneID, p.Tile); t != nil && t.Ripe {
			crop := w.growZones[p.GrowZoneID].Crop
			t.Planted = false
			t.Growth = 0
			t.Ripe = false
			w.spawnProduce(nowTick, p.Tile, crop, w.cfg.Tuning.Farm.HarvestYield)
			r.AddEvent(protocol.Event{"t": nowTick, "type": "HARVEST", "robot": r.ID, "crop": crop, "pos": p.Tile.ToArray()})
		}
	}

	w.sched.Complete(j.JobID)
	r.clearJob()
	r.State = StateIdle
	r.AddEvent(protocol.Event{"t": nowTick, "type": "JOB_DONE", "robot": r.ID, "job_id": j.JobID, "kind": string(j.Kind)})
}

// spawnProduce places produced goods at pos or the nearest free tile. A
// structure on pos (the producing machine itself) redirects the whole output.
func (w *World) spawnProduce(nowTick uint64, pos Vec2i, kind string, amount int) {
	if kind == "" || amount <= 0 {
		return
	}
	rem := amount
	if _, occupied := w.structAt[pos]; !occupied {
		_, absorbed := w.UpsertStack(nowTick, pos, kind, rem)
		rem -= absorbed
	}
	for rem > 0 {
		p, ok := w.nearestFreeTile(pos, 4)
		if !ok {
			return
		}
		_, abs2 := w.UpsertStack(nowTick, p, kind, rem)
		if abs2 <= 0 {
			return
		}
		rem -= abs2
	}
}
