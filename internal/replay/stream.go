package replay

import (
	"sync/atomic"
	"time"

	"main/internal/meta"
	"main/internal/schema"
)

// Stream is the lazy, finite, ordered row sequence produced by one
// Replay call. It is not restartable; a new call to Session.Replay
// builds a new stream from the beginning.
type Stream struct {
	session *Session
	cursor  *batchCursor
	opts    Options
	hash    schema.StreamHash

	err      error
	finished bool
	closed   uint32
	released uint32
}

// Next emits one row. ok is false at end of stream, at which point err
// carries the post-hoc validation verdict for fully drained unfiltered
// streams. A mid-stream error is sticky and fatal.
func (st *Stream) Next() (schema.EventRow, bool, error) {
	if atomic.LoadUint32(&st.closed) != 0 {
		return schema.EventRow{}, false, ErrStreamClosed
	}
	if st.err != nil {
		return schema.EventRow{}, false, st.err
	}
	if st.finished {
		return schema.EventRow{}, false, nil
	}

	row, ok, err := st.cursor.next()
	if err != nil {
		st.err = err
		st.release()
		return schema.EventRow{}, false, err
	}
	if !ok {
		return schema.EventRow{}, false, st.finish()
	}
	st.hash.Add(row)
	st.session.metrics.AddRows(1)
	return row, true, nil
}

// NextBatch emits up to Options.BatchSize rows. A nil batch signals end
// of stream; the error mirrors Next's contract.
func (st *Stream) NextBatch() ([]schema.EventRow, error) {
	if atomic.LoadUint32(&st.closed) != 0 {
		return nil, ErrStreamClosed
	}
	if st.err != nil {
		return nil, st.err
	}
	if st.finished {
		return nil, nil
	}

	started := time.Now()
	batch, err := st.cursor.nextBatch(make([]schema.EventRow, 0, st.opts.BatchSize), st.opts.BatchSize)
	if err != nil {
		st.err = err
		st.release()
		return nil, err
	}
	for _, row := range batch {
		st.hash.Add(row)
	}
	st.session.metrics.AddRows(len(batch))
	if len(batch) == 0 {
		return nil, st.finish()
	}
	st.session.metrics.IncBatch(time.Since(started))
	return batch, nil
}

// Hash returns the cumulative hash over emitted (ts_event, seq) keys.
func (st *Stream) Hash() uint32 {
	return st.hash.Sum()
}

// Emitted returns the number of rows emitted so far.
func (st *Stream) Emitted() int64 {
	return st.cursor.emitted
}

// Close abandons the stream and lets the session start another replay.
// Partial consumption is safe and skips the completeness check.
func (st *Stream) Close() error {
	if !atomic.CompareAndSwapUint32(&st.closed, 0, 1) {
		return nil
	}
	st.release()
	return nil
}

func (st *Stream) finish() error {
	if st.finished {
		return st.err
	}
	st.finished = true
	st.session.metrics.IncStreamCompleted()
	st.release()

	res := st.cursor.result()
	if st.opts.filtered() {
		st.err = meta.ValidateFiltered(res, st.opts.StartTs, st.opts.EndTs)
	} else {
		st.err = meta.ValidatePostHoc(st.session.combined, res)
	}
	return st.err
}

func (st *Stream) release() {
	if atomic.CompareAndSwapUint32(&st.released, 0, 1) {
		st.session.releaseStream()
	}
}
