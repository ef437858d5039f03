package replay

import (
	"fmt"

	"main/internal/meta"
	"main/internal/schema"
)

// batchCursor drains the merge reader while enforcing the ordering
// invariant on every emitted row. It lives for one Replay call.
type batchCursor struct {
	mr      *mergeReader
	last    schema.Key
	primed  bool
	emitted int64
	tsMin   int64
	tsMax   int64
}

func newBatchCursor(mr *mergeReader) *batchCursor {
	return &batchCursor{mr: mr}
}

// next emits one row. A row that does not order strictly after the
// previous one is an internal defect of the merge stage, reported as a
// fatal ErrOrderingViolation: downstream consumers rely on monotonicity
// without re-checking it.
func (c *batchCursor) next() (schema.EventRow, bool, error) {
	row, ok := c.mr.next()
	if !ok {
		return schema.EventRow{}, false, nil
	}
	key := row.Key()
	if c.primed && key.Less(c.last) {
		return schema.EventRow{}, false, fmt.Errorf(
			"%w: (%d, %d) emitted after (%d, %d)",
			ErrOrderingViolation, key.TsEvent, key.Seq, c.last.TsEvent, c.last.Seq)
	}
	if !c.primed {
		c.tsMin = row.TsEvent
		c.primed = true
	}
	c.last = key
	c.tsMax = row.TsEvent
	c.emitted++
	return row, true, nil
}

// nextBatch appends up to max rows to dst and returns it.
func (c *batchCursor) nextBatch(dst []schema.EventRow, max int) ([]schema.EventRow, error) {
	for len(dst) < max {
		row, ok, err := c.next()
		if err != nil {
			return dst, err
		}
		if !ok {
			break
		}
		dst = append(dst, row)
	}
	return dst, nil
}

// result reports what the cursor actually emitted, for post-hoc checks.
func (c *batchCursor) result() meta.ScanResult {
	return meta.ScanResult{Rows: c.emitted, TsMin: c.tsMin, TsMax: c.tsMax}
}
