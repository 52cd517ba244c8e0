package world

import (
	"fmt"
	"sort"
)

// Stack is a bounded quantity of one resource kind on one tile.
// It is part of the authoritative sim state and must be snapshot/digest'd.
// A carried amount held by a robot is NOT a Stack; it is private to the robot
// and invisible to the tile index until dropped or delivered.
type Stack struct {
	StackID     string
	Kind        string
	Amount      int
	Pos         Vec2i
	CreatedTick uint64
}

func (w *World) newStackID() string {
	n := w.nextStackNum.Add(1)
	return fmt.Sprintf("S%06d", n)
}

// UpsertStack adds amount of kind at pos, merging into an existing stack when
// possible. It returns the stack at pos (nil only when amount <= 0 and the
// tile is empty) and how much was actually absorbed; the caller keeps the
// remainder. A different resource kind on the tile absorbs nothing.
func (w *World) UpsertStack(nowTick uint64, pos Vec2i, kind string, amount int) (*Stack, int) {
	if kind == "" || amount <= 0 {
		return w.StackAt(pos), 0
	}
	max := w.cfg.Tuning.MaxStackSize
	if id, ok := w.stackAt[pos]; ok {
		s := w.stacks[id]
		if s.Kind != kind {
			return s, 0
		}
		room := max - s.Amount
		if room <= 0 {
			return s, 0
		}
		take := amount
		if take > room {
			take = room
		}
		s.Amount += take
		return s, take
	}
	take := amount
	if take > max {
		take = max
	}
	s := &Stack{
		StackID:     w.newStackID(),
		Kind:        kind,
		Amount:      take,
		Pos:         pos,
		CreatedTick: nowTick,
	}
	w.stacks[s.StackID] = s
	w.stackAt[pos] = s.StackID
	return s, take
}

// TakeFromStack removes up to amount from the stack at pos and returns how
// much was taken. A stack drained to zero is removed from the index.
func (w *World) TakeFromStack(pos Vec2i, amount int) int {
	id, ok := w.stackAt[pos]
	if !ok || amount <= 0 {
		return 0
	}
	s := w.stacks[id]
	take := amount
	if take > s.Amount {
		take = s.Amount
	}
	s.Amount -= take
	if s.Amount <= 0 {
		w.RemoveStack(pos)
	}
	return take
}

func (w *World) RemoveStack(pos Vec2i) {
	id, ok := w.stackAt[pos]
	if !ok {
		return
	}
	delete(w.stacks, id)
	delete(w.stackAt, pos)
}

func (w *World) StackAt(pos Vec2i) *Stack {
	id, ok := w.stackAt[pos]
	if !ok {
		return nil
	}
	return w.stacks[id]
}

func (w *World) getStack(id string) *Stack {
	if id == "" {
		return nil
	}
	return w.stacks[id]
}

// AllStacks returns a snapshot of live stacks sorted by id. Mutating the
// index while iterating the result is safe.
func (w *World) AllStacks() []*Stack {
	out := make([]*Stack, 0, len(w.stacks))
	for _, s := range w.stacks {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StackID < out[j].StackID })
	return out
}

// IsTileFree reports whether pos holds no stack, structure, machine or
// blueprint. Consumed by placement collaborators and the zone allocator.
func (w *World) IsTileFree(pos Vec2i) bool {
	if _, ok := w.stackAt[pos]; ok {
		return false
	}
	if _, ok := w.structAt[pos]; ok {
		return false
	}
	for _, b := range w.blueprints {
		if b.Pos == pos {
			return false
		}
	}
	return true
}

// OccupiedTiles returns the derived occupied tile set, sorted for
// deterministic iteration.
func (w *World) OccupiedTiles() []Vec2i {
	out := make([]Vec2i, 0, len(w.stackAt)+len(w.structAt))
	for p := range w.stackAt {
		out = append(out, p)
	}
	for p := range w.structAt {
		if _, dup := w.stackAt[p]; !dup {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// nearestFreeTile spirals outward from pos looking for a free tile within
// radius r. Used when dropping carried goods on open ground.
func (w *World) nearestFreeTile(pos Vec2i, r int) (Vec2i, bool) {
	side := 2*r + 1
	for _, p := range spiralTiles(pos, side, side, side*side) {
		if w.IsTileFree(p) {
			return p, true
		}
	}
	return Vec2i{}, false
}
