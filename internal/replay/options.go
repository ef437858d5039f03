package replay

import (
	"fmt"

	"main/internal/partition"
)

// DefaultBatchSize is used when Options.BatchSize is zero.
const DefaultBatchSize = 10000

// Options controls one Replay invocation. StartTs and EndTs are
// inclusive nanosecond bounds on ts_event; nil leaves that side open.
// BatchSize is a pure throughput knob: the emitted row sequence is
// identical for any batch size.
type Options struct {
	BatchSize int
	StartTs   *int64
	EndTs     *int64
}

func (o Options) withDefaults() Options {
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// Validate checks if the options are usable.
func (o Options) Validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("invalid replay options: BatchSize must be > 0")
	}
	if o.StartTs != nil && *o.StartTs < 0 {
		return fmt.Errorf("invalid replay options: StartTs must be >= 0")
	}
	if o.StartTs != nil && o.EndTs != nil && *o.StartTs > *o.EndTs {
		return fmt.Errorf("invalid replay options: StartTs %d > EndTs %d", *o.StartTs, *o.EndTs)
	}
	return nil
}

func (o Options) bounds() partition.Bounds {
	return partition.Bounds{StartTs: o.StartTs, EndTs: o.EndTs}
}

func (o Options) filtered() bool {
	return o.StartTs != nil || o.EndTs != nil
}
