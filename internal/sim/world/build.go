package world

import (
	"fmt"

	"botworks.ai/internal/protocol"
)

// Blueprint is a structure ghost: it first collects delivered material, then
// a single Build job turns it into a finished structure occupying its tile.
type Blueprint struct {
	ID        string
	Structure string
	Pos       Vec2i

	Material  string
	Needed    int
	Delivered int
	Done      bool
}

// Machine turns delivered input into output stacks, one cycle per
// WorkMachine job.
type Machine struct {
	ID   string
	Kind string
	Pos  Vec2i

	InputKind   string
	Input       int
	OutputKind  string
	OutputCount int
}

// Structure is a finished building; it only blocks its tile.
type Structure struct {
	ID        string
	Kind      string
	Pos       Vec2i
	BuiltTick uint64
}

func (w *World) newBlueprintID() string {
	n := w.nextBlueprintNum.Add(1)
	return fmt.Sprintf("B%06d", n)
}

func (w *World) newMachineID() string {
	n := w.nextMachineNum.Add(1)
	return fmt.Sprintf("M%06d", n)
}

func (w *World) placeBlueprint(pos Vec2i, structure, material string, needed int) (*Blueprint, error) {
	if !w.IsTileFree(pos) {
		return nil, fmt.Errorf("tile %v occupied", pos)
	}
	b := &Blueprint{
		ID:        w.newBlueprintID(),
		Structure: structure,
		Pos:       pos,
		Material:  material,
		Needed:    needed,
	}
	w.blueprints[b.ID] = b
	return b, nil
}

func (w *World) placeMachine(pos Vec2i, kind, inputKind, outputKind string, outputCount int) (*Machine, error) {
	if !w.IsTileFree(pos) {
		return nil, fmt.Errorf("tile %v occupied", pos)
	}
	if outputCount <= 0 {
		outputCount = 1
	}
	m := &Machine{
		ID:          w.newMachineID(),
		Kind:        kind,
		Pos:         pos,
		InputKind:   inputKind,
		OutputKind:  outputKind,
		OutputCount: outputCount,
	}
	w.machines[m.ID] = m
	w.structAt[pos] = m.ID
	return m, nil
}

func (w *World) completeBlueprint(b *Blueprint, nowTick uint64, builder string) {
	b.Done = true
	delete(w.blueprints, b.ID)
	s := &Structure{
		ID:        b.ID,
		Kind:      b.Structure,
		Pos:       b.Pos,
		BuiltTick: nowTick,
	}
	w.structures[s.ID] = s
	w.structAt[s.Pos] = s.ID
	w.worldEvents = append(w.worldEvents, protocol.Event{
		"t": nowTick, "type": "STRUCTURE_BUILT", "structure": s.Kind, "pos": s.Pos.ToArray(), "by": builder,
	})
}

// scanBlueprints proposes the next delivery toward each unsupplied blueprint,
// or the build itself once material is complete. One job per blueprint at a
// time keeps robots from dogpiling a single ghost.
func (w *World) scanBlueprints(nowTick uint64) int {
	created := 0
	for _, id := range sortedKeys(w.blueprints) {
		b := w.blueprints[id]
		if b.Done || w.sched.blueprintReferenced(b.ID) {
			continue
		}
		if b.Delivered >= b.Needed {
			w.sched.Create(nowTick, JobBuild, BuildPayload{BlueprintID: b.ID}, w.cfg.Tuning.WorkTicks.Build)
			created++
			continue
		}
		src := w.findSourceStack(b.Material)
		if src == nil {
			continue
		}
		w.sched.Create(nowTick, JobDeliverResource, DeliverResourcePayload{
			StackID:     src.StackID,
			BlueprintID: b.ID,
			Amount:      b.Needed - b.Delivered,
		}, 0)
		created++
	}
	return created
}

// scanMachines proposes feed deliveries for empty machines and work cycles
// for supplied ones.
func (w *World) scanMachines(nowTick uint64) int {
	created := 0
	for _, id := range sortedKeys(w.machines) {
		m := w.machines[id]
		if w.sched.machineReferenced(m.ID) {
			continue
		}
		if m.Input > 0 {
			w.sched.Create(nowTick, JobWorkMachine, WorkMachinePayload{MachineID: m.ID}, w.cfg.Tuning.WorkTicks.Machine)
			created++
			continue
		}
		src := w.findSourceStack(m.InputKind)
		if src == nil {
			continue
		}
		w.sched.Create(nowTick, JobDeliverResource, DeliverResourcePayload{
			StackID:   src.StackID,
			MachineID: m.ID,
			Amount:    src.Amount,
		}, 0)
		created++
	}
	return created
}

// findSourceStack picks the first unreferenced stack of kind, in id order.
func (w *World) findSourceStack(kind string) *Stack {
	if kind == "" {
		return nil
	}
	for _, s := range w.AllStacks() {
		if s.Kind == kind && !w.sched.stackReferenced(s.StackID) {
			return s
		}
	}
	return nil
}
