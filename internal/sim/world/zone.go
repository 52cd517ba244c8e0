package world

import "fmt"

// Zone is a rectangular storage area. Occupancy is derived from the global
// stack index, so the one-stack-per-tile rule holds inside and outside zones
// by construction.
type Zone struct {
	ZoneID string
	Center Vec2i
	W, H   int
}

func (w *World) newZoneID() string {
	n := w.nextZoneNum.Add(1)
	return fmt.Sprintf("Z%06d", n)
}

// Min returns the top-left tile of the footprint. The center tile is always
// inside the footprint.
func (z *Zone) Min() Vec2i {
	return Vec2i{X: z.Center.X - z.W/2, Y: z.Center.Y - z.H/2}
}

func (z *Zone) Contains(pos Vec2i) bool {
	min := z.Min()
	return pos.X >= min.X && pos.X < min.X+z.W && pos.Y >= min.Y && pos.Y < min.Y+z.H
}

// Tiles lists the footprint in row-major order (linear fallback order).
func (z *Zone) Tiles() []Vec2i {
	out := make([]Vec2i, 0, z.W*z.H)
	min := z.Min()
	for y := 0; y < z.H; y++ {
		for x := 0; x < z.W; x++ {
			out = append(out, Vec2i{X: min.X + x, Y: min.Y + y})
		}
	}
	return out
}

func (w *World) zoneAt(pos Vec2i) *Zone {
	for _, id := range w.zoneOrder {
		if z := w.zones[id]; z != nil && z.Contains(pos) {
			return z
		}
	}
	return nil
}

func (w *World) addZone(center Vec2i, width, height int) *Zone {
	z := &Zone{ZoneID: w.newZoneID(), Center: center, W: width, H: height}
	w.zones[z.ZoneID] = z
	w.zoneOrder = append(w.zoneOrder, z.ZoneID)
	return z
}

func (w *World) sortedZones() []*Zone {
	out := make([]*Zone, 0, len(w.zones))
	for _, id := range w.zoneOrder {
		if z := w.zones[id]; z != nil {
			out = append(out, z)
		}
	}
	return out
}

// freeTiles counts unoccupied footprint tiles.
func (w *World) freeTiles(z *Zone) int {
	n := 0
	for _, p := range z.Tiles() {
		if w.IsTileFree(p) {
			n++
		}
	}
	return n
}

// findBestZone picks a storage zone for kind, scanning zones in the supplied
// order. Preference: (1) a zone holding a non-full stack of kind (merge
// target), (2) a zone holding kind at all, so stacks of one type cluster,
// (3) any zone with a free tile. Ties resolve to the first match; the result
// is stable and order-dependent, not randomized.
func (w *World) findBestZone(kind string, zones []*Zone) *Zone {
	for _, z := range zones {
		if w.zoneHasStack(z, kind, true) {
			return z
		}
	}
	for _, z := range zones {
		if w.zoneHasStack(z, kind, false) && w.freeTiles(z) > 0 {
			return z
		}
	}
	for _, z := range zones {
		if w.freeTiles(z) > 0 {
			return z
		}
	}
	return nil
}

// zoneHasStack reports whether z contains a stack of kind; with nonFull set,
// only stacks below the cap count.
func (w *World) zoneHasStack(z *Zone, kind string, nonFull bool) bool {
	max := w.cfg.Tuning.MaxStackSize
	for _, p := range z.Tiles() {
		s := w.StackAt(p)
		if s == nil || s.Kind != kind {
			continue
		}
		if !nonFull || s.Amount < max {
			return true
		}
	}
	return false
}

// findAvailableTile picks the tile inside z that should receive kind:
// an existing non-full stack of kind wins (merge in place); otherwise the
// first unoccupied tile in spiral-from-center order. The row-major fallback
// scan below should be unreachable — the spiral covers every footprint tile
// for all W×H rectangles (see TestSpiralTiles_CoversAllRectangles).
func (w *World) findAvailableTile(z *Zone, kind string) (Vec2i, bool) {
	max := w.cfg.Tuning.MaxStackSize
	for _, p := range z.Tiles() {
		if s := w.StackAt(p); s != nil && s.Kind == kind && s.Amount < max {
			return p, true
		}
	}
	for _, p := range spiralTiles(z.Center, z.W, z.H, z.W*z.H) {
		if w.IsTileFree(p) {
			return p, true
		}
	}
	for _, p := range z.Tiles() {
		if w.IsTileFree(p) {
			return p, true
		}
	}
	return Vec2i{}, false
}

// spiralTiles walks outward from center cycling {right, down, left, up} with
// run lengths 1,1,2,2,3,3,... and collects tiles inside the W×H footprint
// centered on center, stopping after limit tiles or full coverage. Storing
// from the center first keeps goods clustered near the zone's access point
// instead of filling from a corner.
func spiralTiles(center Vec2i, width, height int, limit int) []Vec2i {
	if width <= 0 || height <= 0 || limit <= 0 {
		return nil
	}
	min := Vec2i{X: center.X - width/2, Y: center.Y - height/2}
	inside := func(p Vec2i) bool {
		return p.X >= min.X && p.X < min.X+width && p.Y >= min.Y && p.Y < min.Y+height
	}
	total := width * height
	if limit > total {
		limit = total
	}
	out := make([]Vec2i, 0, limit)

	p := center
	if inside(p) {
		out = append(out, p)
	}
	dirs := [4]Vec2i{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	run := 1
	dir := 0
	// The spiral covers the square of side 2R+1 around the center; any W×H
	// rectangle containing the center fits inside it, so walking enough rings
	// guarantees full coverage even for narrow or off-center footprints.
	side := width
	if height > side {
		side = height
	}
	maxSteps := (2*side + 1) * (2*side + 1) * 4
	steps := 0
	for len(out) < limit && steps < maxSteps {
		for leg := 0; leg < 2; leg++ {
			d := dirs[dir]
			for i := 0; i < run; i++ {
				p.X += d.X
				p.Y += d.Y
				steps++
				if inside(p) {
					out = append(out, p)
					if len(out) >= limit {
						return out
					}
				}
			}
			dir = (dir + 1) % 4
		}
		run++
	}
	return out
}
