package world

import (
	"testing"

	"botworks.ai/internal/sim/tuning"
)

func newTestWorld(t *testing.T, tune tuning.Tuning) *World {
	t.Helper()
	return New(WorldConfig{ID: "test_world", Seed: 42, Tuning: tune})
}

func TestUpsertStack_CapsAtMaxAndReportsAbsorbed(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	pos := Vec2i{X: 3, Y: 3}

	s, absorbed := w.UpsertStack(0, pos, "wood", 80)
	if s == nil {
		t.Fatalf("expected stack")
	}
	if absorbed != 64 || s.Amount != 64 {
		t.Fatalf("fresh oversized upsert: absorbed=%d amount=%d, want 64/64", absorbed, s.Amount)
	}

	// Full stack absorbs nothing more.
	s2, absorbed := w.UpsertStack(0, pos, "wood", 5)
	if s2.StackID != s.StackID {
		t.Fatalf("upsert on occupied tile must return the resident stack")
	}
	if absorbed != 0 || s.Amount != 64 {
		t.Fatalf("full stack absorbed %d (amount %d), want 0/64", absorbed, s.Amount)
	}
}

func TestUpsertStack_MergesPartialAndKeepsRemainder(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	pos := Vec2i{X: 0, Y: 0}

	w.UpsertStack(0, pos, "stone", 40)
	s, absorbed := w.UpsertStack(0, pos, "stone", 40)
	if absorbed != 24 {
		t.Fatalf("absorbed=%d, want 24 (room to the 64 cap)", absorbed)
	}
	if s.Amount != 64 {
		t.Fatalf("amount=%d, want 64", s.Amount)
	}
}

func TestUpsertStack_DifferentKindAbsorbsNothing(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	pos := Vec2i{X: 1, Y: 1}

	w.UpsertStack(0, pos, "wood", 10)
	s, absorbed := w.UpsertStack(0, pos, "stone", 10)
	if absorbed != 0 {
		t.Fatalf("cross-kind upsert absorbed %d, want 0", absorbed)
	}
	if s == nil || s.Kind != "wood" || s.Amount != 10 {
		t.Fatalf("resident stack disturbed: %+v", s)
	}
	if len(w.stacks) != 1 {
		t.Fatalf("one stack per tile violated: %d stacks", len(w.stacks))
	}
}

func TestTakeFromStack_RemovesDrainedStack(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	pos := Vec2i{X: 2, Y: 2}

	w.UpsertStack(0, pos, "wood", 10)
	if got := w.TakeFromStack(pos, 4); got != 4 {
		t.Fatalf("partial take=%d, want 4", got)
	}
	if s := w.StackAt(pos); s == nil || s.Amount != 6 {
		t.Fatalf("stack after partial take: %+v", s)
	}
	if got := w.TakeFromStack(pos, 100); got != 6 {
		t.Fatalf("draining take=%d, want 6", got)
	}
	if w.StackAt(pos) != nil {
		t.Fatalf("drained stack should be removed from the index")
	}
	if len(w.stacks) != 0 || len(w.stackAt) != 0 {
		t.Fatalf("index not empty after drain: stacks=%d tiles=%d", len(w.stacks), len(w.stackAt))
	}
}

func TestNearestFreeTile_SkipsOccupied(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	origin := Vec2i{X: 0, Y: 0}

	w.UpsertStack(0, origin, "wood", 5)
	p, ok := w.nearestFreeTile(origin, 2)
	if !ok {
		t.Fatalf("expected a free tile within radius 2")
	}
	if p == origin {
		t.Fatalf("nearestFreeTile returned the occupied origin")
	}
	if Manhattan(p, origin) != 1 {
		t.Fatalf("free tile %v is not adjacent to origin", p)
	}
}

func TestIsTileFree_StacksAndStructuresBlock(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())

	stackPos := Vec2i{X: 1, Y: 0}
	machPos := Vec2i{X: 2, Y: 0}
	bpPos := Vec2i{X: 3, Y: 0}
	w.UpsertStack(0, stackPos, "wood", 1)
	if _, err := w.placeMachine(machPos, "sawmill", "wood", "plank", 2); err != nil {
		t.Fatalf("place machine: %v", err)
	}
	if _, err := w.placeBlueprint(bpPos, "hut", "wood", 5); err != nil {
		t.Fatalf("place blueprint: %v", err)
	}

	if w.IsTileFree(stackPos) {
		t.Fatalf("tile with stack reported free")
	}
	if w.IsTileFree(machPos) {
		t.Fatalf("tile with machine reported free")
	}
	if w.IsTileFree(bpPos) {
		t.Fatalf("tile with blueprint ghost reported free")
	}
	if !w.IsTileFree(Vec2i{X: 0, Y: 0}) {
		t.Fatalf("empty tile reported occupied")
	}
}
