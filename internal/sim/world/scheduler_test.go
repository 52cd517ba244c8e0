package world

import "testing"

func TestScheduler_ClaimIsExclusive(t *testing.T) {
	s := NewScheduler()
	j := s.Create(0, JobMergeStacks, MergeStacksPayload{SourceID: "S000001", TargetID: "S000002"}, 0)

	if !s.Claim(j.JobID, "R000001") {
		t.Fatalf("first claim must succeed")
	}
	if s.Claim(j.JobID, "R000002") {
		t.Fatalf("second claim must fail while the job is held")
	}
	if j.AssignedTo != "R000001" {
		t.Fatalf("assigned_to=%q", j.AssignedTo)
	}
}

func TestScheduler_ClaimRejectsBadInputs(t *testing.T) {
	s := NewScheduler()
	j := s.Create(0, JobBuild, BuildPayload{BlueprintID: "B000001"}, 10)

	if s.Claim("J999999", "R000001") {
		t.Fatalf("claiming a missing job must fail")
	}
	if s.Claim(j.JobID, "") {
		t.Fatalf("claiming with an empty robot id must fail")
	}
	s.Complete(j.JobID)
	if s.Claim(j.JobID, "R000001") {
		t.Fatalf("claiming a terminal job must fail")
	}
}

func TestScheduler_CompleteIsIdempotent(t *testing.T) {
	s := NewScheduler()
	j := s.Create(0, JobBuild, BuildPayload{BlueprintID: "B000001"}, 10)
	s.Claim(j.JobID, "R000001")

	s.Complete(j.JobID)
	if !j.Completed || j.AssignedTo != "" {
		t.Fatalf("after complete: completed=%v assigned=%q", j.Completed, j.AssignedTo)
	}
	s.Complete(j.JobID) // no-op
	s.Complete("J999999")
	if !j.Completed {
		t.Fatalf("repeat complete flipped state")
	}
}

func TestScheduler_CancelRemovesFromTable(t *testing.T) {
	s := NewScheduler()
	j := s.Create(0, JobWorkMachine, WorkMachinePayload{MachineID: "M000001"}, 15)
	s.Claim(j.JobID, "R000001")

	s.Cancel(j.JobID)
	if s.Get(j.JobID) != nil {
		t.Fatalf("Get after Cancel must return nil; holders learn from the nil")
	}
	if len(s.All()) != 0 {
		t.Fatalf("cancelled job still listed")
	}
	s.Cancel(j.JobID) // idempotent
}

func TestScheduler_AvailableStrictPreferredFilter(t *testing.T) {
	s := NewScheduler()
	b := s.Create(0, JobBuild, BuildPayload{BlueprintID: "B000001"}, 10)
	m1 := s.Create(0, JobMergeStacks, MergeStacksPayload{SourceID: "S000001", TargetID: "S000002"}, 0)
	m2 := s.Create(0, JobMergeStacks, MergeStacksPayload{SourceID: "S000003", TargetID: "S000004"}, 0)

	got := s.Available([]JobKind{JobMergeStacks})
	if len(got) != 2 || got[0].JobID != m1.JobID || got[1].JobID != m2.JobID {
		t.Fatalf("strict filter broken: %d jobs", len(got))
	}

	// No preferred match at all: fall back to the full open set.
	got = s.Available([]JobKind{JobHarvestCrop})
	if len(got) != 3 {
		t.Fatalf("fallback to full set broken: %d jobs", len(got))
	}

	// Held and completed jobs never show up.
	s.Claim(m1.JobID, "R000001")
	s.Complete(b.JobID)
	got = s.Available(nil)
	if len(got) != 1 || got[0].JobID != m2.JobID {
		t.Fatalf("open filter broken: %d jobs", len(got))
	}
}

func TestScheduler_CleanupCompleted(t *testing.T) {
	s := NewScheduler()
	a := s.Create(0, JobBuild, BuildPayload{BlueprintID: "B000001"}, 10)
	b := s.Create(0, JobBuild, BuildPayload{BlueprintID: "B000002"}, 10)
	s.Complete(a.JobID)

	if removed := s.CleanupCompleted(); removed != 1 {
		t.Fatalf("removed=%d, want 1", removed)
	}
	if s.Get(a.JobID) != nil {
		t.Fatalf("completed job survived cleanup")
	}
	if s.Get(b.JobID) == nil {
		t.Fatalf("open job purged by cleanup")
	}
	if len(s.order) != 1 {
		t.Fatalf("order not compacted: %d", len(s.order))
	}
}

func TestScheduler_CreateCompletedIsTerminalHandle(t *testing.T) {
	s := NewScheduler()
	j := s.CreateCompleted(0, JobMergeStacks, MergeStacksPayload{SourceID: "S000001", TargetID: "S000002"})
	if !j.Completed {
		t.Fatalf("pre-completed job not terminal")
	}
	if s.Claim(j.JobID, "R000001") {
		t.Fatalf("pre-completed job must not be claimable")
	}
	if got := s.Get(j.JobID); got == nil {
		t.Fatalf("handle must stay queryable until cleanup")
	}
}

func TestScheduler_ReferenceChecks(t *testing.T) {
	s := NewScheduler()
	s.Create(0, JobMergeStacks, MergeStacksPayload{SourceID: "S000001", TargetID: "S000002"}, 0)
	done := s.Create(0, JobDeliverToInventory, DeliverToInventoryPayload{StackID: "S000009", ZoneID: "Z000001"}, 0)
	s.Complete(done.JobID)
	s.Create(0, JobWaterTile, WaterTilePayload{GrowZoneID: "G000001", Tile: Vec2i{X: 1, Y: 2}}, 5)
	s.Create(0, JobDeliverResource, DeliverResourcePayload{StackID: "S000005", BlueprintID: "B000001", Amount: 3}, 0)

	if !s.stackReferenced("S000001") || !s.stackReferenced("S000002") {
		t.Fatalf("merge payload stacks must count as referenced")
	}
	if s.stackReferenced("S000009") {
		t.Fatalf("terminal jobs must not pin their stacks")
	}
	if !s.tileReferenced("G000001", Vec2i{X: 1, Y: 2}) {
		t.Fatalf("farm tile must count as referenced")
	}
	if s.tileReferenced("G000001", Vec2i{X: 0, Y: 0}) {
		t.Fatalf("unrelated tile reported referenced")
	}
	if !s.blueprintReferenced("B000001") {
		t.Fatalf("delivery must pin its blueprint")
	}
	if s.machineReferenced("M000001") {
		t.Fatalf("no machine job exists")
	}
}
