package world

import (
	"encoding/json"
	"time"
)

// stepInternal is the fixed per-tick order: commands, periodic supply/farm
// scans, robots, crop growth, cleanup, observer output, log, snapshot. All
// mutation happens synchronously inside this call, so nothing ever observes
// a half-applied tick.
func (w *World) stepInternal(commands []CommandEnvelope) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	w.worldEvents = w.worldEvents[:0]

	jobsBefore := w.sched.nextJobNum

	// Commands apply at the tick boundary, in arrival order.
	recorded := make([]RecordedCommand, 0, len(commands))
	for _, env := range commands {
		recorded = append(recorded, RecordedCommand{ObserverID: env.ObserverID, Cmd: env.Cmd})
		res := w.applyCommand(env, nowTick)
		if env.Resp != nil {
			env.Resp <- res
		}
	}

	// Periodic world scans (blueprint supply, machine supply, farm work).
	// Robot-idle maintenance scans (merge, loose-resource) run inside the
	// robot system on per-robot cooldowns.
	if nowTick >= w.nextSupplyScanAt {
		w.nextSupplyScanAt = nowTick + uint64(w.cfg.Tuning.Robots.ScanEveryTicks)
		w.scanBlueprints(nowTick)
		w.scanMachines(nowTick)
	}
	if nowTick >= w.nextFarmScanAt {
		w.nextFarmScanAt = nowTick + uint64(w.cfg.Tuning.Farm.ScanEveryTicks)
		w.scanFarm(nowTick)
	}

	completedBefore := w.completedJobs()

	w.systemRobots(nowTick)
	w.systemFarm(nowTick)

	if w.cfg.Tuning.CleanupEveryTicks > 0 && nowTick != 0 &&
		nowTick%uint64(w.cfg.Tuning.CleanupEveryTicks) == 0 {
		w.sched.CleanupCompleted()
	}

	digest := w.stateDigest(nowTick)

	// Observer stream: one STATE frame per tick.
	if len(w.observers) > 0 {
		state := w.buildState(nowTick, digest)
		if b, err := json.Marshal(state); err == nil {
			for _, obs := range w.observers {
				if obs.Out != nil {
					sendLatest(obs.Out, b)
				}
			}
		}
	}

	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:          nowTick,
			Commands:      recorded,
			JobsCreated:   int(w.sched.nextJobNum - jobsBefore),
			JobsCompleted: w.completedJobs() - completedBefore,
			Digest:        digest,
		})
	}

	if w.snapshotSink != nil && nowTick != 0 && w.cfg.Tuning.SnapshotEveryTicks > 0 {
		every := uint64(w.cfg.Tuning.SnapshotEveryTicks)
		if nowTick%every == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if the sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)

	pending := 0
	for _, j := range w.sched.All() {
		if !j.Completed {
			pending++
		}
	}
	w.metrics.Store(WorldMetrics{
		Tick:        nextTick,
		Robots:      len(w.robots),
		Observers:   len(w.observers),
		Stacks:      len(w.stacks),
		Jobs:        len(w.sched.jobs),
		JobsPending: pending,
		Hostiles:    len(w.hostiles),
		QueueDepths: QueueDepths{
			Inbox:        len(w.inbox),
			ObserverJoin: len(w.observerJoin),
		},
		StepMS: stepMS,
	})
}

func (w *World) completedJobs() int {
	n := 0
	for _, j := range w.sched.jobs {
		if j.Completed {
			n++
		}
	}
	return n
}
