package world

// Scan routines are read-only analyses over live stacks and zones that
// synthesize new jobs. They never touch a stack that is already the payload
// of a non-terminal job, so the same opportunity is not proposed twice.

// scanMergeOpportunities pairs under-filled stacks of the same kind whose
// combined quantity fits in one stack, and proposes hauling the smaller onto
// the larger. Returns how many jobs were created.
func (w *World) scanMergeOpportunities(nowTick uint64) int {
	max := w.cfg.Tuning.MaxStackSize
	byKind := map[string][]*Stack{}
	for _, s := range w.AllStacks() {
		if s.Amount >= max || w.sched.stackReferenced(s.StackID) {
			continue
		}
		byKind[s.Kind] = append(byKind[s.Kind], s)
	}
	created := 0
	for _, kind := range sortedKeys(byKind) {
		group := byKind[kind]
		used := make([]bool, len(group))
		for i := 0; i < len(group); i++ {
			if used[i] {
				continue
			}
			for j := i + 1; j < len(group); j++ {
				if used[j] {
					continue
				}
				a, b := group[i], group[j]
				if a.Amount+b.Amount > max {
					continue
				}
				src, dst := a, b
				if src.Amount > dst.Amount {
					src, dst = dst, src
				}
				w.sched.Create(nowTick, JobMergeStacks, MergeStacksPayload{
					SourceID: src.StackID,
					TargetID: dst.StackID,
				}, 0)
				used[i], used[j] = true, true
				created++
				break
			}
		}
	}
	return created
}

// scanLooseResources proposes hauling stacks that sit outside every storage
// zone into the best zone for their kind. Stacks with no willing zone stay
// where they are; that is a normal outcome, not an error.
func (w *World) scanLooseResources(nowTick uint64) int {
	zones := w.sortedZones()
	if len(zones) == 0 {
		return 0
	}
	created := 0
	for _, s := range w.AllStacks() {
		if w.zoneAt(s.Pos) != nil || w.sched.stackReferenced(s.StackID) {
			continue
		}
		z := w.findBestZone(s.Kind, zones)
		if z == nil {
			continue
		}
		w.sched.Create(nowTick, JobDeliverToInventory, DeliverToInventoryPayload{
			StackID: s.StackID,
			ZoneID:  z.ZoneID,
		}, 0)
		created++
	}
	return created
}

// CreateMergeJob is the explicit-collaborator entry point for a merge. An
// infeasible request (missing stack, kinds differ, combined quantity over the
// cap) yields a pre-completed no-op job, never an error: callers always get
// a handle.
func (w *World) CreateMergeJob(nowTick uint64, sourceID, targetID string) *Job {
	payload := MergeStacksPayload{SourceID: sourceID, TargetID: targetID}
	src := w.getStack(sourceID)
	dst := w.getStack(targetID)
	if src == nil || dst == nil || src.Kind != dst.Kind ||
		src.Amount+dst.Amount > w.cfg.Tuning.MaxStackSize {
		return w.sched.CreateCompleted(nowTick, JobMergeStacks, payload)
	}
	return w.sched.Create(nowTick, JobMergeStacks, payload, 0)
}

// CreateDeliverToInventoryJob hauls the stack into the best zone for its
// kind; with no zone available it returns a pre-completed no-op job.
func (w *World) CreateDeliverToInventoryJob(nowTick uint64, stackID string) *Job {
	s := w.getStack(stackID)
	if s == nil {
		return w.sched.CreateCompleted(nowTick, JobDeliverToInventory, DeliverToInventoryPayload{StackID: stackID})
	}
	z := w.findBestZone(s.Kind, w.sortedZones())
	if z == nil {
		return w.sched.CreateCompleted(nowTick, JobDeliverToInventory, DeliverToInventoryPayload{StackID: stackID})
	}
	return w.sched.Create(nowTick, JobDeliverToInventory, DeliverToInventoryPayload{
		StackID: stackID,
		ZoneID:  z.ZoneID,
	}, 0)
}
