package world

import (
	"testing"

	"botworks.ai/internal/sim/tuning"
)

func TestScanMerge_PairsThatFitUnderTheCap(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	a, _ := w.UpsertStack(0, Vec2i{X: 0, Y: 0}, "wood", 40)
	b, _ := w.UpsertStack(0, Vec2i{X: 5, Y: 0}, "wood", 20)

	if created := w.scanMergeOpportunities(0); created != 1 {
		t.Fatalf("created=%d, want 1", created)
	}
	jobs := w.sched.All()
	if len(jobs) != 1 || jobs[0].Kind != JobMergeStacks {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
	p := jobs[0].Payload.(MergeStacksPayload)
	// The smaller stack travels.
	if p.SourceID != b.StackID || p.TargetID != a.StackID {
		t.Fatalf("source/target = %s/%s, want %s/%s", p.SourceID, p.TargetID, b.StackID, a.StackID)
	}
}

func TestScanMerge_SkipsPairsOverTheCap(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	w.UpsertStack(0, Vec2i{X: 0, Y: 0}, "wood", 40)
	w.UpsertStack(0, Vec2i{X: 5, Y: 0}, "wood", 30)

	if created := w.scanMergeOpportunities(0); created != 0 {
		t.Fatalf("40+30 exceeds the cap; created=%d, want 0", created)
	}
}

func TestScanMerge_SkipsReferencedAndCrossKind(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	a, _ := w.UpsertStack(0, Vec2i{X: 0, Y: 0}, "wood", 10)
	w.UpsertStack(0, Vec2i{X: 5, Y: 0}, "wood", 10)
	w.UpsertStack(0, Vec2i{X: 9, Y: 0}, "stone", 10)

	// First scan pairs the wood stacks; a second scan proposes nothing new
	// while that job is in flight.
	if created := w.scanMergeOpportunities(0); created != 1 {
		t.Fatalf("first scan created=%d, want 1", created)
	}
	if created := w.scanMergeOpportunities(1); created != 0 {
		t.Fatalf("rescan while in flight created=%d, want 0", created)
	}
	_ = a
}

func TestScanLooseResources_HaulsIntoBestZone(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	z := w.addZone(Vec2i{X: 20, Y: 20}, 3, 3)
	inside, _ := w.UpsertStack(0, z.Center, "wood", 10)
	loose, _ := w.UpsertStack(0, Vec2i{X: 0, Y: 0}, "wood", 10)

	if created := w.scanLooseResources(0); created != 1 {
		t.Fatalf("created=%d, want 1", created)
	}
	jobs := w.sched.All()
	p := jobs[0].Payload.(DeliverToInventoryPayload)
	if p.StackID != loose.StackID || p.ZoneID != z.ZoneID {
		t.Fatalf("payload %+v", p)
	}
	if w.sched.stackReferenced(inside.StackID) {
		t.Fatalf("in-zone stack must not be hauled")
	}
}

func TestScanLooseResources_NoZonesNoJobs(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	w.UpsertStack(0, Vec2i{X: 0, Y: 0}, "wood", 10)
	if created := w.scanLooseResources(0); created != 0 {
		t.Fatalf("created=%d without any zones", created)
	}
}

func TestCreateMergeJob_InfeasibleYieldsCompletedHandle(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	a, _ := w.UpsertStack(0, Vec2i{X: 0, Y: 0}, "wood", 40)
	b, _ := w.UpsertStack(0, Vec2i{X: 5, Y: 0}, "wood", 30)
	c, _ := w.UpsertStack(0, Vec2i{X: 9, Y: 0}, "stone", 5)

	// Over the cap.
	if j := w.CreateMergeJob(0, a.StackID, b.StackID); !j.Completed {
		t.Fatalf("over-cap merge must come back pre-completed")
	}
	// Kind mismatch.
	if j := w.CreateMergeJob(0, a.StackID, c.StackID); !j.Completed {
		t.Fatalf("cross-kind merge must come back pre-completed")
	}
	// Missing stack.
	if j := w.CreateMergeJob(0, "S999999", a.StackID); !j.Completed {
		t.Fatalf("dangling merge must come back pre-completed")
	}
	// Feasible.
	d, _ := w.UpsertStack(0, Vec2i{X: 12, Y: 0}, "wood", 20)
	if j := w.CreateMergeJob(0, d.StackID, b.StackID); j.Completed {
		t.Fatalf("feasible merge must be open")
	}
}

func TestCreateDeliverToInventoryJob(t *testing.T) {
	w := newTestWorld(t, tuning.Defaults())
	s, _ := w.UpsertStack(0, Vec2i{X: 0, Y: 0}, "wood", 10)

	// No zones yet.
	if j := w.CreateDeliverToInventoryJob(0, s.StackID); !j.Completed {
		t.Fatalf("no-zone delivery must come back pre-completed")
	}
	z := w.addZone(Vec2i{X: 20, Y: 20}, 3, 3)
	j := w.CreateDeliverToInventoryJob(0, s.StackID)
	if j.Completed {
		t.Fatalf("delivery with a willing zone must be open")
	}
	if p := j.Payload.(DeliverToInventoryPayload); p.ZoneID != z.ZoneID {
		t.Fatalf("zone=%s, want %s", p.ZoneID, z.ZoneID)
	}
}
