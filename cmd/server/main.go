package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"botworks.ai/internal/persistence/indexdb"
	persistlog "botworks.ai/internal/persistence/log"
	"botworks.ai/internal/persistence/snapshot"
	"botworks.ai/internal/sim/tuning"
	"botworks.ai/internal/sim/world"
	"botworks.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh world)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read-model index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	// Optional: read-model index backend (does not affect sim determinism).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index backend: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("index backend: upsert tuning: %v", err)
		}
	}

	// Create world (fresh or resumed from snapshot).
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(worldDir)
	}

	var w *world.World
	if snapshotToLoad != "" {
		snap, err := snapshot.Read(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.WorldID != "" && snap.Header.WorldID != *worldID {
			logger.Fatalf("snapshot world id mismatch: flag=%s snap=%s", *worldID, snap.Header.WorldID)
		}
		w = world.NewFromSnapshot(world.WorldConfig{ID: *worldID, Tuning: tune}, snap)
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), w.Tick())
	} else {
		w = world.New(world.WorldConfig{ID: *worldID, Seed: *seed, Tuning: tune})
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()
	w.SetTickLogger(multiTickLogger{a: tickLog, b: idx})

	// Snapshot writer.
	snapCh := make(chan world.Snapshot, 2)
	w.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
				if err := snapshot.Write(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
			}
		}
	}()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := w.Metrics()
		tick := w.Tick()
		if m.Tick != 0 {
			tick = m.Tick
		}

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP botworks_world_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE botworks_world_tick gauge\n")
		fmt.Fprintf(rw, "botworks_world_tick{world=%q} %d\n", *worldID, tick)

		fmt.Fprintf(rw, "# HELP botworks_world_robots Current number of robots.\n")
		fmt.Fprintf(rw, "# TYPE botworks_world_robots gauge\n")
		fmt.Fprintf(rw, "botworks_world_robots{world=%q} %d\n", *worldID, m.Robots)

		fmt.Fprintf(rw, "# HELP botworks_world_observers Current number of connected observers.\n")
		fmt.Fprintf(rw, "# TYPE botworks_world_observers gauge\n")
		fmt.Fprintf(rw, "botworks_world_observers{world=%q} %d\n", *worldID, m.Observers)

		fmt.Fprintf(rw, "# HELP botworks_world_stacks Current resource stack count.\n")
		fmt.Fprintf(rw, "# TYPE botworks_world_stacks gauge\n")
		fmt.Fprintf(rw, "botworks_world_stacks{world=%q} %d\n", *worldID, m.Stacks)

		fmt.Fprintf(rw, "# HELP botworks_world_jobs Job table size and open jobs.\n")
		fmt.Fprintf(rw, "# TYPE botworks_world_jobs gauge\n")
		fmt.Fprintf(rw, "botworks_world_jobs{world=%q,state=%q} %d\n", *worldID, "all", m.Jobs)
		fmt.Fprintf(rw, "botworks_world_jobs{world=%q,state=%q} %d\n", *worldID, "pending", m.JobsPending)

		fmt.Fprintf(rw, "# HELP botworks_world_hostiles Current hostile count.\n")
		fmt.Fprintf(rw, "# TYPE botworks_world_hostiles gauge\n")
		fmt.Fprintf(rw, "botworks_world_hostiles{world=%q} %d\n", *worldID, m.Hostiles)

		fmt.Fprintf(rw, "# HELP botworks_world_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE botworks_world_queue_depth gauge\n")
		fmt.Fprintf(rw, "botworks_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "inbox", m.QueueDepths.Inbox)
		fmt.Fprintf(rw, "botworks_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "observer_join", m.QueueDepths.ObserverJoin)

		fmt.Fprintf(rw, "# HELP botworks_world_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE botworks_world_step_ms gauge\n")
		fmt.Fprintf(rw, "botworks_world_step_ms{world=%q} %.3f\n", *worldID, m.StepMS)
	})
	mux.HandleFunc("/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			WorldID string             `json:"world_id"`
			Tick    uint64             `json:"tick"`
			Metrics world.WorldMetrics `json:"metrics"`
		}{
			WorldID: *worldID,
			Tick:    w.Tick(),
			Metrics: w.Metrics(),
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}

// multiTickLogger fans one tick entry out to the JSONL log and the sqlite
// index. Either side may be nil.
type multiTickLogger struct {
	a world.TickLogger
	b world.TickLogger
}

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return nil
}
