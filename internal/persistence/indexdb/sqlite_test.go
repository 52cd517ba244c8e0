package indexdb

import (
	"path/filepath"
	"testing"
	"time"

	"botworks.ai/internal/persistence/snapshot"
	"botworks.ai/internal/protocol"
	"botworks.ai/internal/sim/tuning"
	"botworks.ai/internal/sim/world"
)

func openTestIndex(t *testing.T) (*SQLiteIndex, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, path
}

func TestSQLiteIndex_TicksAndCommandsSurviveReopen(t *testing.T) {
	s, path := openTestIndex(t)

	for i := uint64(0); i < 5; i++ {
		entry := world.TickLogEntry{Tick: i, Digest: "d", JobsCreated: 1}
		if i == 3 {
			entry.Commands = []world.RecordedCommand{
				{ObserverID: "O000001", Cmd: protocol.CommandMsg{Op: "SPAWN_STACK", Kind: "wood", Amount: 5}},
			}
		}
		if err := s.WriteTick(entry); err != nil {
			t.Fatalf("write tick %d: %v", i, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	var ticks, commands int
	if err := s2.db.QueryRow(`SELECT COUNT(*) FROM ticks`).Scan(&ticks); err != nil {
		t.Fatalf("count ticks: %v", err)
	}
	if err := s2.db.QueryRow(`SELECT COUNT(*) FROM commands WHERE op='SPAWN_STACK'`).Scan(&commands); err != nil {
		t.Fatalf("count commands: %v", err)
	}
	if ticks != 5 || commands != 1 {
		t.Fatalf("ticks=%d commands=%d, want 5/1", ticks, commands)
	}
}

func TestSQLiteIndex_LatestSnapshot(t *testing.T) {
	s, _ := openTestIndex(t)
	defer s.Close()

	if _, _, ok := s.LatestSnapshot(); ok {
		t.Fatalf("fresh index must have no snapshot")
	}

	for _, tick := range []uint64{3000, 9000, 6000} {
		s.RecordSnapshot(
			filepath.Join("snapshots", "x.snap.zst"),
			snapshot.SnapshotV1{Header: snapshot.Header{Version: 1, WorldID: "w", Tick: tick}},
		)
	}
	// The writer batches; wait for the rows to land.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, tick, ok := s.LatestSnapshot(); ok && tick == 9000 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("latest snapshot never reached tick 9000")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSQLiteIndex_UpsertTuningIsStable(t *testing.T) {
	s, _ := openTestIndex(t)
	defer s.Close()

	if err := s.UpsertTuning(tuning.Defaults()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	var first string
	if err := s.db.QueryRow(`SELECT value FROM meta WHERE key='tuning_digest'`).Scan(&first); err != nil {
		t.Fatalf("read digest: %v", err)
	}
	if first == "" {
		t.Fatalf("empty tuning digest")
	}
	if err := s.UpsertTuning(tuning.Defaults()); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	var second string
	if err := s.db.QueryRow(`SELECT value FROM meta WHERE key='tuning_digest'`).Scan(&second); err != nil {
		t.Fatalf("reread digest: %v", err)
	}
	if first != second {
		t.Fatalf("digest drifted for identical tuning: %s vs %s", first, second)
	}
}

func TestSQLiteIndex_NilAndClosedAreSafe(t *testing.T) {
	var nilIdx *SQLiteIndex
	if err := nilIdx.WriteTick(world.TickLogEntry{Tick: 1}); err != nil {
		t.Fatalf("nil receiver: %v", err)
	}
	nilIdx.RecordSnapshot("p", snapshot.SnapshotV1{})
	if _, _, ok := nilIdx.LatestSnapshot(); ok {
		t.Fatalf("nil receiver reported a snapshot")
	}

	s, _ := openTestIndex(t)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.WriteTick(world.TickLogEntry{Tick: 2}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	_ = s.Close() // idempotent
}
