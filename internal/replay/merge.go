package replay

import (
	"container/heap"

	"main/internal/schema"
)

// mergeReader produces one totally ordered row stream from per-source
// sorted scans via a k-way heap merge. Order is decided by
// (ts_event, seq) with the normalized source index as the final
// tie-break, so equal keys across partitions still merge identically on
// every run.
type mergeReader struct {
	h mergeHeap
}

func newMergeReader(scans [][]schema.EventRow) *mergeReader {
	m := &mergeReader{h: make(mergeHeap, 0, len(scans))}
	for src, rows := range scans {
		if len(rows) == 0 {
			continue
		}
		m.h = append(m.h, &mergeEntry{rows: rows, src: src})
	}
	heap.Init(&m.h)
	return m
}

// next pops the globally smallest remaining row.
func (m *mergeReader) next() (schema.EventRow, bool) {
	if m.h.Len() == 0 {
		return schema.EventRow{}, false
	}
	entry := m.h[0]
	row := entry.rows[entry.idx]
	entry.idx++
	if entry.idx >= len(entry.rows) {
		heap.Pop(&m.h)
	} else {
		heap.Fix(&m.h, 0)
	}
	return row, true
}

type mergeEntry struct {
	rows []schema.EventRow
	idx  int
	src  int
}

type mergeHeap []*mergeEntry

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	ka := h[i].rows[h[i].idx].Key()
	kb := h[j].rows[h[j].idx].Key()
	if ka != kb {
		return ka.Less(kb)
	}
	return h[i].src < h[j].src
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(*mergeEntry)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}
