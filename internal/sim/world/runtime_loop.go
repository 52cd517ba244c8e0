package world

import (
	"context"
	"fmt"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.Tuning.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingCommands []CommandEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case id := <-w.observerLeave:
			delete(w.observers, id)
		case env := <-w.inbox:
			pendingCommands = append(pendingCommands, env)
		case <-ticker.C:
			w.stepInternal(pendingCommands)
			pendingCommands = pendingCommands[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick using the same ordering
// semantics as the server loop. Primarily for deterministic tests/replays.
func (w *World) StepOnce(commands []CommandEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.stepInternal(commands)
	return tick, w.stateDigest(tick)
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	n := w.nextObserverNum.Add(1)
	id := fmt.Sprintf("O%04d", n)
	w.observers[id] = &observerState{ID: id, Admin: req.Admin, Out: req.Out}
	if req.Resp != nil {
		req.Resp <- ObserverJoinResponse{ObserverID: id, Welcome: w.welcomeMsg(id)}
	}
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
