package world

import (
	"testing"

	"botworks.ai/internal/sim/tuning"
)

// The row-major fallback in findAvailableTile assumes the spiral alone covers
// every footprint tile. This test is the proof: every W×H rectangle up to 7×7,
// including the degenerate 1×N strips, is covered exactly once.
func TestSpiralTiles_CoversAllRectangles(t *testing.T) {
	center := Vec2i{X: 10, Y: -3}
	for width := 1; width <= 7; width++ {
		for height := 1; height <= 7; height++ {
			tiles := spiralTiles(center, width, height, width*height)
			if len(tiles) != width*height {
				t.Fatalf("%dx%d: got %d tiles, want %d", width, height, len(tiles), width*height)
			}
			min := Vec2i{X: center.X - width/2, Y: center.Y - height/2}
			seen := map[Vec2i]bool{}
			for _, p := range tiles {
				if p.X < min.X || p.X >= min.X+width || p.Y < min.Y || p.Y >= min.Y+height {
					t.Fatalf("%dx%d: tile %v outside footprint (min %v)", width, height, p, min)
				}
				if seen[p] {
					t.Fatalf("%dx%d: tile %v visited twice", width, height, p)
				}
				seen[p] = true
			}
			if tiles[0] != center {
				t.Fatalf("%dx%d: first tile %v, want center %v", width, height, tiles[0], center)
			}
		}
	}
}

func TestSpiralTiles_OrderFor2x2(t *testing.T) {
	c := Vec2i{X: 5, Y: 5}
	got := spiralTiles(c, 2, 2, 4)
	want := []Vec2i{
		{X: 5, Y: 5},
		{X: 4, Y: 5},
		{X: 4, Y: 4},
		{X: 5, Y: 4},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tiles, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tile %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSpiralTiles_RespectsLimit(t *testing.T) {
	got := spiralTiles(Vec2i{}, 5, 5, 3)
	if len(got) != 3 {
		t.Fatalf("limit ignored: got %d tiles", len(got))
	}
}

func TestFindBestZone_PreferenceOrder(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())

	emptyZone := w.addZone(Vec2i{X: 0, Y: 0}, 3, 3)
	fullKindZone := w.addZone(Vec2i{X: 20, Y: 0}, 3, 3)
	partialKindZone := w.addZone(Vec2i{X: 40, Y: 0}, 3, 3)

	w.UpsertStack(0, fullKindZone.Center, "wood", 64)
	w.UpsertStack(0, partialKindZone.Center, "wood", 10)

	// Phase 1: a zone holding a non-full stack of the kind wins, even though
	// it is listed last.
	if z := w.findBestZone("wood", w.sortedZones()); z == nil || z.ZoneID != partialKindZone.ZoneID {
		t.Fatalf("want partial-stack zone, got %+v", z)
	}

	// Phase 2: with the partial stack gone, a zone that holds the kind at all
	// beats an empty one.
	w.RemoveStack(partialKindZone.Center)
	if z := w.findBestZone("wood", w.sortedZones()); z == nil || z.ZoneID != fullKindZone.ZoneID {
		t.Fatalf("want full-stack zone, got %+v", z)
	}

	// Phase 3: a kind stored nowhere goes to the first zone with room.
	if z := w.findBestZone("iron", w.sortedZones()); z == nil || z.ZoneID != emptyZone.ZoneID {
		t.Fatalf("want first free zone, got %+v", z)
	}
}

func TestFindBestZone_NoRoomAnywhere(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	z := w.addZone(Vec2i{X: 0, Y: 0}, 1, 1)
	w.UpsertStack(0, z.Center, "stone", 64)

	if got := w.findBestZone("wood", w.sortedZones()); got != nil {
		t.Fatalf("expected nil for a fully occupied zone set, got %+v", got)
	}
}

func TestFindAvailableTile_MergeTargetBeatsFreeTile(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	z := w.addZone(Vec2i{X: 10, Y: 10}, 3, 3)

	corner := z.Min()
	w.UpsertStack(0, corner, "wood", 30)

	p, ok := w.findAvailableTile(z, "wood")
	if !ok || p != corner {
		t.Fatalf("want merge target %v, got %v ok=%v", corner, p, ok)
	}

	// A different kind ignores the resident stack and takes the spiral's
	// first free tile, which is the center.
	p, ok = w.findAvailableTile(z, "stone")
	if !ok || p != z.Center {
		t.Fatalf("want center %v for fresh kind, got %v ok=%v", z.Center, p, ok)
	}
}

func TestFindAvailableTile_SpiralOrderIn2x2(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	z := w.addZone(Vec2i{X: 5, Y: 5}, 2, 2)

	// Fill tiles one at a time with full stacks; the allocator must hand out
	// tiles in spiral order from the center.
	want := []Vec2i{
		{X: 5, Y: 5},
		{X: 4, Y: 5},
		{X: 4, Y: 4},
		{X: 5, Y: 4},
	}
	for i, expect := range want {
		p, ok := w.findAvailableTile(z, "wood")
		if !ok {
			t.Fatalf("allocation %d: no tile", i)
		}
		if p != expect {
			t.Fatalf("allocation %d: got %v, want %v", i, p, expect)
		}
		w.UpsertStack(0, p, "wood", 64)
	}
	if _, ok := w.findAvailableTile(z, "wood"); ok {
		t.Fatalf("full zone still handing out tiles")
	}
}

func TestZoneContainsAndTiles(t *testing.T) {
	z := &Zone{ZoneID: "Z000001", Center: Vec2i{X: 0, Y: 0}, W: 5, H: 2}
	min := z.Min()
	if min != (Vec2i{X: -2, Y: -1}) {
		t.Fatalf("min=%v", min)
	}
	if !z.Contains(z.Center) {
		t.Fatalf("center must be inside the footprint")
	}
	if z.Contains(Vec2i{X: 3, Y: 0}) || z.Contains(Vec2i{X: 0, Y: 1}) {
		t.Fatalf("footprint too large")
	}
	if got := len(z.Tiles()); got != 10 {
		t.Fatalf("tiles=%d, want 10", got)
	}
}
