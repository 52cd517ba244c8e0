package world

import (
	"botworks.ai/internal/persistence/snapshot"
)

// NewFromSnapshot rebuilds a world from a persisted state. The tuning comes
// from cfg (snapshots carry state, not policy), the seed from the snapshot.
func NewFromSnapshot(cfg WorldConfig, snap Snapshot) *World {
	cfg.Seed = snap.Seed
	if snap.Header.WorldID != "" {
		cfg.ID = snap.Header.WorldID
	}
	w := New(cfg)
	w.tick.Store(snap.Header.Tick)
	w.nextFarmScanAt = snap.NextFarmScanAt
	w.nextSupplyScanAt = snap.NextSupplyScanAt

	w.nextStackNum.Store(snap.Counters.Stack)
	w.nextZoneNum.Store(snap.Counters.Zone)
	w.nextGrowZoneNum.Store(snap.Counters.GrowZone)
	w.nextRobotNum.Store(snap.Counters.Robot)
	w.nextBlueprintNum.Store(snap.Counters.Blueprint)
	w.nextMachineNum.Store(snap.Counters.Machine)
	w.nextHostileNum.Store(snap.Counters.Hostile)
	w.sched.nextJobNum = snap.Counters.Job

	for _, rv := range snap.Robots {
		r := &Robot{
			ID:           rv.ID,
			Name:         rv.Name,
			Pos:          Vec2i{X: rv.Pos[0], Y: rv.Pos[1]},
			Home:         Vec2i{X: rv.Home[0], Y: rv.Home[1]},
			State:        RobotState(rv.State),
			resume:       RobotState(rv.Resume),
			Queue:        rv.Queue,
			Dest:         Vec2i{X: rv.Dest[0], Y: rv.Dest[1]},
			HasDest:      rv.HasDest,
			JobID:        rv.JobID,
			WorkUntil:    rv.WorkUntil,
			NextWanderAt: rv.NextWanderAt,
			NextScanAt:   rv.NextScanAt,
			wanderSeed:   rv.WanderSeed,
		}
		if rv.CarryAmount > 0 {
			r.Carrying = &Carried{Kind: rv.CarryKind, Amount: rv.CarryAmount}
		}
		w.robots[r.ID] = r
	}

	for _, sv := range snap.Stacks {
		s := &Stack{
			StackID:     sv.ID,
			Kind:        sv.Kind,
			Amount:      sv.Amount,
			Pos:         Vec2i{X: sv.Pos[0], Y: sv.Pos[1]},
			CreatedTick: sv.CreatedTick,
		}
		w.stacks[s.StackID] = s
		w.stackAt[s.Pos] = s.StackID
	}

	for _, zv := range snap.Zones {
		z := &Zone{
			ZoneID: zv.ID,
			Center: Vec2i{X: zv.Center[0], Y: zv.Center[1]},
			W:      zv.W,
			H:      zv.H,
		}
		w.zones[z.ZoneID] = z
		w.zoneOrder = append(w.zoneOrder, z.ZoneID)
	}

	for _, gv := range snap.GrowZones {
		g := &GrowZone{
			ID:     gv.ID,
			Center: Vec2i{X: gv.Center[0], Y: gv.Center[1]},
			W:      gv.W,
			H:      gv.H,
			Crop:   gv.Crop,
			Tiles:  map[Vec2i]*CropTile{},
		}
		for _, tv := range gv.Tiles {
			g.Tiles[Vec2i{X: tv.Pos[0], Y: tv.Pos[1]}] = &CropTile{
				Planted:      tv.Planted,
				Growth:       tv.Growth,
				Ripe:         tv.Ripe,
				Watered:      tv.Watered,
				WateredUntil: tv.WateredUntil,
			}
		}
		w.growZones[g.ID] = g
		w.growZoneOrder = append(w.growZoneOrder, g.ID)
	}

	for _, bv := range snap.Blueprints {
		w.blueprints[bv.ID] = &Blueprint{
			ID:        bv.ID,
			Structure: bv.Structure,
			Pos:       Vec2i{X: bv.Pos[0], Y: bv.Pos[1]},
			Material:  bv.Material,
			Needed:    bv.Needed,
			Delivered: bv.Delivered,
		}
	}

	for _, mv := range snap.Machines {
		m := &Machine{
			ID:          mv.ID,
			Kind:        mv.Kind,
			Pos:         Vec2i{X: mv.Pos[0], Y: mv.Pos[1]},
			InputKind:   mv.InputKind,
			Input:       mv.Input,
			OutputKind:  mv.OutputKind,
			OutputCount: mv.OutputCount,
		}
		w.machines[m.ID] = m
		w.structAt[m.Pos] = m.ID
	}

	for _, sv := range snap.Structures {
		s := &Structure{
			ID:        sv.ID,
			Kind:      sv.Kind,
			Pos:       Vec2i{X: sv.Pos[0], Y: sv.Pos[1]},
			BuiltTick: sv.BuiltTick,
		}
		w.structures[s.ID] = s
		w.structAt[s.Pos] = s.ID
	}

	for _, hv := range snap.Hostiles {
		w.hostiles[hv.ID] = &Hostile{
			ID:  hv.ID,
			Pos: Vec2i{X: hv.Pos[0], Y: hv.Pos[1]},
			HP:  hv.HP,
		}
	}

	for _, jv := range snap.Jobs {
		j := &Job{
			JobID:       jv.ID,
			Kind:        JobKind(jv.Kind),
			AssignedTo:  jv.AssignedTo,
			Completed:   jv.Completed,
			WorkTicks:   jv.WorkTicks,
			CreatedTick: jv.CreatedTick,
			Payload:     importPayload(jv),
		}
		w.sched.jobs[j.JobID] = j
		w.sched.order = append(w.sched.order, j.JobID)
	}

	return w
}

func importPayload(jv snapshot.JobV1) Payload {
	tile := Vec2i{X: jv.Tile[0], Y: jv.Tile[1]}
	switch JobKind(jv.Kind) {
	case JobMergeStacks:
		return MergeStacksPayload{SourceID: jv.SourceID, TargetID: jv.TargetID}
	case JobWorkMachine:
		return WorkMachinePayload{MachineID: jv.MachineID}
	case JobBuild:
		return BuildPayload{BlueprintID: jv.BlueprintID}
	case JobDeliverResource:
		return DeliverResourcePayload{
			StackID:     jv.StackID,
			BlueprintID: jv.BlueprintID,
			MachineID:   jv.MachineID,
			Amount:      jv.Amount,
		}
	case JobDeliverToInventory:
		return DeliverToInventoryPayload{StackID: jv.StackID, ZoneID: jv.ZoneID}
	case JobWaterTile:
		return WaterTilePayload{GrowZoneID: jv.GrowZoneID, Tile: tile}
	case JobPlantSeed:
		return PlantSeedPayload{GrowZoneID: jv.GrowZoneID, Tile: tile}
	case JobHarvestCrop:
		return HarvestCropPayload{GrowZoneID: jv.GrowZoneID, Tile: tile}
	}
	return nil
}
