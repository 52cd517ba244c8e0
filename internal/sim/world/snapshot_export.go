package world

import (
	"botworks.ai/internal/persistence/snapshot"
)

// Snapshot aliases the persisted world-state format.
type Snapshot = snapshot.SnapshotV1

// ExportSnapshot serializes the full authoritative state at nowTick. Lists
// are sorted by id so the snapshot bytes (and the digest derived from them)
// are stable for a given state.
func (w *World) ExportSnapshot(nowTick uint64) Snapshot {
	snap := Snapshot{
		Header:           snapshot.Header{Version: 1, WorldID: w.cfg.ID, Tick: nowTick},
		Seed:             w.cfg.Seed,
		NextFarmScanAt:   w.nextFarmScanAt,
		NextSupplyScanAt: w.nextSupplyScanAt,

		Counters: snapshot.CountersV1{
			Stack:     w.nextStackNum.Load(),
			Zone:      w.nextZoneNum.Load(),
			GrowZone:  w.nextGrowZoneNum.Load(),
			Robot:     w.nextRobotNum.Load(),
			Blueprint: w.nextBlueprintNum.Load(),
			Machine:   w.nextMachineNum.Load(),
			Hostile:   w.nextHostileNum.Load(),
			Job:       w.sched.nextJobNum,
		},
	}

	for _, r := range w.sortedRobots() {
		rv := snapshot.RobotV1{
			ID:           r.ID,
			Name:         r.Name,
			Pos:          r.Pos.ToArray(),
			Home:         r.Home.ToArray(),
			State:        string(r.State),
			Resume:       string(r.resume),
			Queue:        r.Queue,
			HasDest:      r.HasDest,
			Dest:         r.Dest.ToArray(),
			JobID:        r.JobID,
			WorkUntil:    r.WorkUntil,
			NextWanderAt: r.NextWanderAt,
			NextScanAt:   r.NextScanAt,
			WanderSeed:   r.wanderSeed,
		}
		if r.Carrying != nil {
			rv.CarryKind = r.Carrying.Kind
			rv.CarryAmount = r.Carrying.Amount
		}
		snap.Robots = append(snap.Robots, rv)
	}

	for _, s := range w.AllStacks() {
		snap.Stacks = append(snap.Stacks, snapshot.StackV1{
			ID:          s.StackID,
			Kind:        s.Kind,
			Amount:      s.Amount,
			Pos:         s.Pos.ToArray(),
			CreatedTick: s.CreatedTick,
		})
	}

	for _, z := range w.sortedZones() {
		snap.Zones = append(snap.Zones, snapshot.ZoneV1{
			ID:     z.ZoneID,
			Center: z.Center.ToArray(),
			W:      z.W,
			H:      z.H,
		})
	}

	for _, id := range w.growZoneOrder {
		g := w.growZones[id]
		if g == nil {
			continue
		}
		gv := snapshot.GrowZoneV1{
			ID:     g.ID,
			Center: g.Center.ToArray(),
			W:      g.W,
			H:      g.H,
			Crop:   g.Crop,
		}
		for _, p := range g.sortedTiles() {
			t := g.Tiles[p]
			gv.Tiles = append(gv.Tiles, snapshot.CropTileV1{
				Pos:          p.ToArray(),
				Planted:      t.Planted,
				Growth:       t.Growth,
				Ripe:         t.Ripe,
				Watered:      t.Watered,
				WateredUntil: t.WateredUntil,
			})
		}
		snap.GrowZones = append(snap.GrowZones, gv)
	}

	for _, id := range sortedKeys(w.blueprints) {
		b := w.blueprints[id]
		snap.Blueprints = append(snap.Blueprints, snapshot.BlueprintV1{
			ID:        b.ID,
			Structure: b.Structure,
			Pos:       b.Pos.ToArray(),
			Material:  b.Material,
			Needed:    b.Needed,
			Delivered: b.Delivered,
		})
	}

	for _, id := range sortedKeys(w.machines) {
		m := w.machines[id]
		snap.Machines = append(snap.Machines, snapshot.MachineV1{
			ID:          m.ID,
			Kind:        m.Kind,
			Pos:         m.Pos.ToArray(),
			InputKind:   m.InputKind,
			Input:       m.Input,
			OutputKind:  m.OutputKind,
			OutputCount: m.OutputCount,
		})
	}

	for _, id := range sortedKeys(w.structures) {
		s := w.structures[id]
		snap.Structures = append(snap.Structures, snapshot.StructureV1{
			ID:        s.ID,
			Kind:      s.Kind,
			Pos:       s.Pos.ToArray(),
			BuiltTick: s.BuiltTick,
		})
	}

	for _, id := range sortedKeys(w.hostiles) {
		h := w.hostiles[id]
		snap.Hostiles = append(snap.Hostiles, snapshot.HostileV1{
			ID:  h.ID,
			Pos: h.Pos.ToArray(),
			HP:  h.HP,
		})
	}

	for _, j := range w.sched.All() {
		snap.Jobs = append(snap.Jobs, exportJob(j))
	}

	return snap
}

func exportJob(j *Job) snapshot.JobV1 {
	jv := snapshot.JobV1{
		ID:          j.JobID,
		Kind:        string(j.Kind),
		AssignedTo:  j.AssignedTo,
		Completed:   j.Completed,
		WorkTicks:   j.WorkTicks,
		CreatedTick: j.CreatedTick,
	}
	switch p := j.Payload.(type) {
	case MergeStacksPayload:
		jv.SourceID = p.SourceID
		jv.TargetID = p.TargetID
	case WorkMachinePayload:
		jv.MachineID = p.MachineID
	case BuildPayload:
		jv.BlueprintID = p.BlueprintID
	case DeliverResourcePayload:
		jv.StackID = p.StackID
		jv.BlueprintID = p.BlueprintID
		jv.MachineID = p.MachineID
		jv.Amount = p.Amount
	case DeliverToInventoryPayload:
		jv.StackID = p.StackID
		jv.ZoneID = p.ZoneID
	case WaterTilePayload:
		jv.GrowZoneID = p.GrowZoneID
		jv.Tile = p.Tile.ToArray()
	case PlantSeedPayload:
		jv.GrowZoneID = p.GrowZoneID
		jv.Tile = p.Tile.ToArray()
	case HarvestCropPayload:
		jv.GrowZoneID = p.GrowZoneID
		jv.Tile = p.Tile.ToArray()
	}
	return jv
}
