package world

import (
	"fmt"
	"sort"
)

// GrowZone is a rectangular footprint of crop tiles worked by farm jobs:
// plant when empty, water when dry, harvest when ripe.
type GrowZone struct {
	ID     string
	Center Vec2i
	W, H   int
	Crop   string

	Tiles map[Vec2i]*CropTile
}

type CropTile struct {
	Planted bool
	Growth  int
	Ripe    bool

	Watered      bool
	WateredUntil uint64
}

func (w *World) newGrowZoneID() string {
	n := w.nextGrowZoneNum.Add(1)
	return fmt.Sprintf("G%06d", n)
}

func (w *World) addGrowZone(center Vec2i, width, height int, crop string) *GrowZone {
	g := &GrowZone{
		ID:     w.newGrowZoneID(),
		Center: center,
		W:      width,
		H:      height,
		Crop:   crop,
		Tiles:  map[Vec2i]*CropTile{},
	}
	min := Vec2i{X: center.X - width/2, Y: center.Y - height/2}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Tiles[Vec2i{X: min.X + x, Y: min.Y + y}] = &CropTile{}
		}
	}
	w.growZones[g.ID] = g
	w.growZoneOrder = append(w.growZoneOrder, g.ID)
	return g
}

func (w *World) growTile(zoneID string, tile Vec2i) *CropTile {
	g := w.growZones[zoneID]
	if g == nil {
		return nil
	}
	return g.Tiles[tile]
}

func (g *GrowZone) sortedTiles() []Vec2i {
	out := make([]Vec2i, 0, len(g.Tiles))
	for p := range g.Tiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// systemFarm advances crop growth. Only watered tiles progress; watering
// wears off after a while.
func (w *World) systemFarm(nowTick uint64) {
	grow := w.cfg.Tuning.Farm.GrowTicks
	for _, id := range w.growZoneOrder {
		g := w.growZones[id]
		if g == nil {
			continue
		}
		for _, p := range g.sortedTiles() {
			t := g.Tiles[p]
			if t.Watered && nowTick >= t.WateredUntil {
				t.Watered = false
			}
			if !t.Planted || t.Ripe || !t.Watered {
				continue
			}
			t.Growth++
			if t.Growth >= grow {
				t.Ripe = true
			}
		}
	}
}

// scanFarm proposes one job per tile needing attention, skipping tiles that
// already have a job in flight. Returns how many jobs were created.
func (w *World) scanFarm(nowTick uint64) int {
	wt := w.cfg.Tuning.WorkTicks
	created := 0
	for _, id := range w.growZoneOrder {
		g := w.growZones[id]
		if g == nil {
			continue
		}
		for _, p := range g.sortedTiles() {
			t := g.Tiles[p]
			if w.sched.tileReferenced(g.ID, p) {
				continue
			}
			switch {
			case t.Ripe:
				w.sched.Create(nowTick, JobHarvestCrop, HarvestCropPayload{GrowZoneID: g.ID, Tile: p}, wt.Harvest)
				created++
			case t.Planted && !t.Watered:
				w.sched.Create(nowTick, JobWaterTile, WaterTilePayload{GrowZoneID: g.ID, Tile: p}, wt.Water)
				created++
			case !t.Planted:
				w.sched.Create(nowTick, JobPlantSeed, PlantSeedPayload{GrowZoneID: g.ID, Tile: p}, wt.Plant)
				created++
			}
		}
	}
	return created
}
