package schema

import (
	"encoding/binary"
	"hash/crc32"
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// StreamHash accumulates a deterministic hash over the (ts_event, seq)
// keys of an emitted row sequence. Two replays of the same logical
// dataset must produce the same sum.
type StreamHash struct {
	sum uint32
	n   int64
}

// Add folds one row's ordering key into the hash.
func (h *StreamHash) Add(row EventRow) {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(row.TsEvent))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(row.Seq))
	h.sum = crc32.Update(h.sum, crcTable, buf[:])
	h.n++
}

// Sum returns the accumulated hash.
func (h *StreamHash) Sum() uint32 {
	return h.sum
}

// Count returns the number of rows folded in.
func (h *StreamHash) Count() int64 {
	return h.n
}
