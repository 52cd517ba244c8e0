package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"botworks.ai/internal/sim/world"
)

func TestTickLogger_WritesDecodableJSONL(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)

	for i := uint64(0); i < 3; i++ {
		if err := l.WriteTick(world.TickLogEntry{Tick: i, Digest: "d", JobsCreated: int(i)}); err != nil {
			t.Fatalf("write tick %d: %v", i, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ents, err := os.ReadDir(filepath.Join(dir, "ticks"))
	if err != nil || len(ents) != 1 {
		t.Fatalf("expected one rotated file, got %v (err %v)", ents, err)
	}
	f, err := os.Open(filepath.Join(dir, "ticks", ents[0].Name()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	var got []world.TickLogEntry
	for sc.Scan() {
		var e world.TickLogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %d: %v", len(got), err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 3 || got[2].Tick != 2 || got[2].JobsCreated != 2 {
		t.Fatalf("entries: %+v", got)
	}
}
