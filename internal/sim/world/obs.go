package world

import "botworks.ai/internal/protocol"

func (w *World) welcomeMsg(observerID string) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ObserverID:      observerID,
		WorldParams: protocol.WorldParams{
			WorldID:      w.cfg.ID,
			TickRateHz:   w.cfg.Tuning.TickRateHz,
			MaxStackSize: w.cfg.Tuning.MaxStackSize,
			Seed:         w.cfg.Seed,
		},
	}
}

// buildState assembles the per-tick observer frame. Every list is sorted so
// the frame is byte-stable for a given world state.
func (w *World) buildState(nowTick uint64, digest string) protocol.StateMsg {
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		Digest:          digest,
	}

	for _, r := range w.sortedRobots() {
		msg.Robots = append(msg.Robots, robotObs(r))
		msg.Events = append(msg.Events, r.TakeEvents()...)
	}
	msg.Events = append(msg.Events, w.worldEvents...)

	msg.Jobs = w.AllJobs()

	for _, s := range w.AllStacks() {
		msg.Stacks = append(msg.Stacks, protocol.StackObs{
			ID:     s.StackID,
			Kind:   s.Kind,
			Amount: s.Amount,
			Pos:    s.Pos.ToArray(),
		})
	}

	for _, z := range w.sortedZones() {
		msg.Zones = append(msg.Zones, protocol.ZoneObs{
			ID:     z.ZoneID,
			Center: z.Center.ToArray(),
			Width:  z.W,
			Height: z.H,
			Free:   w.freeTiles(z),
		})
	}

	for _, id := range w.growZoneOrder {
		g := w.growZones[id]
		if g == nil {
			continue
		}
		ripe := 0
		for _, t := range g.Tiles {
			if t.Ripe {
				ripe++
			}
		}
		msg.GrowZones = append(msg.GrowZones, protocol.GrowZoneObs{
			ID:     g.ID,
			Center: g.Center.ToArray(),
			Width:  g.W,
			Height: g.H,
			Ripe:   ripe,
		})
	}

	for _, id := range sortedKeys(w.blueprints) {
		b := w.blueprints[id]
		msg.Blueprints = append(msg.Blueprints, protocol.BlueprintObs{
			ID:        b.ID,
			Structure: b.Structure,
			Pos:       b.Pos.ToArray(),
			Needed:    b.Needed,
			Delivered: b.Delivered,
			Done:      b.Done,
		})
	}

	for _, id := range sortedKeys(w.machines) {
		m := w.machines[id]
		msg.Machines = append(msg.Machines, protocol.MachineObs{
			ID:     m.ID,
			Kind:   m.Kind,
			Pos:    m.Pos.ToArray(),
			Input:  m.Input,
			Output: m.OutputCount,
		})
	}

	for _, id := range sortedKeys(w.hostiles) {
		h := w.hostiles[id]
		msg.Hostiles = append(msg.Hostiles, protocol.HostileObs{
			ID:  h.ID,
			Pos: h.Pos.ToArray(),
			HP:  h.HP,
		})
	}

	return msg
}
