package world

import "botworks.ai/internal/protocol"

func cmdOK(ref, entityID string) protocol.CommandResultMsg {
	return protocol.CommandResultMsg{
		Type:            protocol.TypeCommandResult,
		ProtocolVersion: protocol.Version,
		Ref:             ref,
		OK:              true,
		EntityID:        entityID,
	}
}

func cmdFail(ref, code, msg string) protocol.CommandResultMsg {
	return protocol.CommandResultMsg{
		Type:            protocol.TypeCommandResult,
		ProtocolVersion: protocol.Version,
		Ref:             ref,
		OK:              false,
		Code:            code,
		Message:         msg,
	}
}

// applyCommand executes one admin command at the tick boundary. Failures are
// in-band results, never errors: a rejected command leaves the world
// untouched.
func (w *World) applyCommand(env CommandEnvelope, nowTick uint64) protocol.CommandResultMsg {
	obs := w.observers[env.ObserverID]
	if obs == nil || !obs.Admin {
		return cmdFail(env.Cmd.ID, protocol.ErrBadRequest, "admin observer required")
	}
	cmd := env.Cmd
	switch cmd.Op {
	case protocol.OpSpawnStack:
		if cmd.Kind == "" || cmd.Amount <= 0 {
			return cmdFail(cmd.ID, protocol.ErrBadRequest, "missing kind/amount")
		}
		pos := Vec2i{X: cmd.Pos[0], Y: cmd.Pos[1]}
		s, absorbed := w.UpsertStack(nowTick, pos, cmd.Kind, cmd.Amount)
		if absorbed <= 0 {
			return cmdFail(cmd.ID, protocol.ErrBlocked, "tile cannot absorb stack")
		}
		return cmdOK(cmd.ID, s.StackID)

	case protocol.OpSpawnRobot:
		pos := Vec2i{X: cmd.Pos[0], Y: cmd.Pos[1]}
		r := w.spawnRobot(nowTick, cmd.Name, pos)
		return cmdOK(cmd.ID, r.ID)

	case protocol.OpSpawnHostile:
		pos := Vec2i{X: cmd.Pos[0], Y: cmd.Pos[1]}
		h := w.spawnHostile(pos, cmd.HP)
		return cmdOK(cmd.ID, h.ID)

	case protocol.OpAddZone:
		if cmd.Width <= 0 || cmd.Height <= 0 {
			return cmdFail(cmd.ID, protocol.ErrBadRequest, "missing width/height")
		}
		z := w.addZone(Vec2i{X: cmd.Center[0], Y: cmd.Center[1]}, cmd.Width, cmd.Height)
		return cmdOK(cmd.ID, z.ZoneID)

	case protocol.OpAddGrowZone:
		if cmd.Width <= 0 || cmd.Height <= 0 || cmd.Kind == "" {
			return cmdFail(cmd.ID, protocol.ErrBadRequest, "missing width/height/kind")
		}
		g := w.addGrowZone(Vec2i{X: cmd.Center[0], Y: cmd.Center[1]}, cmd.Width, cmd.Height, cmd.Kind)
		return cmdOK(cmd.ID, g.ID)

	case protocol.OpPlaceBlueprint:
		if cmd.Structure == "" || cmd.Kind == "" || cmd.Amount <= 0 {
			return cmdFail(cmd.ID, protocol.ErrBadRequest, "missing structure/kind/amount")
		}
		pos := Vec2i{X: cmd.Pos[0], Y: cmd.Pos[1]}
		b, err := w.placeBlueprint(pos, cmd.Structure, cmd.Kind, cmd.Amount)
		if err != nil {
			return cmdFail(cmd.ID, protocol.ErrConflict, err.Error())
		}
		return cmdOK(cmd.ID, b.ID)

	case protocol.OpPlaceMachine:
		if cmd.Structure == "" || cmd.Kind == "" || cmd.Name == "" {
			return cmdFail(cmd.ID, protocol.ErrBadRequest, "missing structure/kind/name")
		}
		pos := Vec2i{X: cmd.Pos[0], Y: cmd.Pos[1]}
		// Structure = machine kind, Kind = input resource, Name = output resource.
		m, err := w.placeMachine(pos, cmd.Structure, cmd.Kind, cmd.Name, cmd.Amount)
		if err != nil {
			return cmdFail(cmd.ID, protocol.ErrConflict, err.Error())
		}
		return cmdOK(cmd.ID, m.ID)

	case protocol.OpCreateJob:
		// Explicit job creation goes through the same feasibility-checked
		// entry points the scans use; infeasible requests come back as
		// pre-completed handles, which is still an OK result.
		switch JobKind(cmd.JobKind) {
		case JobMergeStacks:
			j := w.CreateMergeJob(nowTick, cmd.SourceID, cmd.TargetID)
			return cmdOK(cmd.ID, j.JobID)
		case JobDeliverToInventory:
			j := w.CreateDeliverToInventoryJob(nowTick, cmd.StackID)
			return cmdOK(cmd.ID, j.JobID)
		}
		return cmdFail(cmd.ID, protocol.ErrBadRequest, "unsupported job kind")

	case protocol.OpCancelJob:
		j := w.sched.Get(cmd.JobID)
		if j == nil {
			return cmdFail(cmd.ID, protocol.ErrInvalidTarget, "unknown job")
		}
		if j.Completed {
			return cmdFail(cmd.ID, protocol.ErrStale, "job already terminal")
		}
		w.sched.Cancel(cmd.JobID)
		return cmdOK(cmd.ID, cmd.JobID)
	}
	return cmdFail(cmd.ID, protocol.ErrBadRequest, "unknown op")
}
