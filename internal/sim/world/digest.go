package world

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// stateDigest hashes the canonical snapshot encoding. Two worlds that applied
// the same commands in the same tick order produce the same digest, which is
// how replays and restored snapshots are checked for divergence.
func (w *World) stateDigest(nowTick uint64) string {
	snap := w.ExportSnapshot(nowTick)
	raw, err := json.Marshal(snap)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
