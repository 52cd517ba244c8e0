package world

import (
	"fmt"
	"sort"

	"botworks.ai/internal/protocol"
)

// Hostile is a minimal enemy entity: robots in detection range drop into
// DEFENDING until it is destroyed or leaves. Spawning waves is out of scope;
// hostiles enter via admin command or tests.
type Hostile struct {
	ID  string
	Pos Vec2i
	HP  int
}

func (w *World) newHostileID() string {
	n := w.nextHostileNum.Add(1)
	return fmt.Sprintf("H%06d", n)
}

func (w *World) spawnHostile(pos Vec2i, hp int) *Hostile {
	if hp <= 0 {
		hp = 10
	}
	h := &Hostile{ID: w.newHostileID(), Pos: pos, HP: hp}
	w.hostiles[h.ID] = h
	return h
}

// nearestHostile returns the closest hostile within rng (Manhattan), ties
// broken by id, or nil.
func (w *World) nearestHostile(pos Vec2i, rng int) *Hostile {
	if len(w.hostiles) == 0 {
		return nil
	}
	ids := make([]string, 0, len(w.hostiles))
	for id := range w.hostiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var best *Hostile
	bestD := 0
	for _, id := range ids {
		h := w.hostiles[id]
		d := Manhattan(pos, h.Pos)
		if d > rng {
			continue
		}
		if best == nil || d < bestD {
			best, bestD = h, d
		}
	}
	return best
}

// robotDefend closes on the hostile and strikes when adjacent. The active
// job and queue are untouched; normal processing resumes when no hostile is
// in detection range.
func (w *World) robotDefend(r *Robot, h *Hostile, nowTick uint64) {
	t := w.cfg.Tuning.Robots
	if Manhattan(r.Pos, h.Pos) <= t.AttackRange {
		h.HP -= t.AttackDamage
		if h.HP <= 0 {
			delete(w.hostiles, h.ID)
			r.AddEvent(protocol.Event{"t": nowTick, "type": "HOSTILE_DOWN", "robot": r.ID, "hostile": h.ID})
		}
		return
	}
	dx := h.Pos.X - r.Pos.X
	dy := h.Pos.Y - r.Pos.Y
	if absInt(dx) >= absInt(dy) {
		r.Pos.X += sign(dx)
	} else {
		r.Pos.Y += sign(dy)
	}
}
