package partition

import (
	"context"
	"errors"

	"main/internal/schema"
)

var (
	ErrSourceUnavailable = errors.New("partition source unavailable")
	ErrMalformedRow      = errors.New("partition row malformed")
	ErrSourceClosed      = errors.New("partition source closed")
)

// Source is one physical partition of a logical dataset. Implementations
// may read their rows in any internal order and with any internal
// parallelism; Scan must return them sorted by (ts_event, seq) so the
// merge stage can rely on per-source order.
type Source interface {
	// Name identifies the source for error messages and enumeration
	// normalization. Stable across runs.
	Name() string

	// Descriptor returns the declared shape of this partition.
	Descriptor() schema.MetaDescriptor

	// Scan returns every row whose ts_event falls inside bounds, sorted
	// by (ts_event, seq). A scan failure aborts the replay; rows are
	// never silently skipped.
	Scan(ctx context.Context, bounds Bounds) ([]schema.EventRow, error)

	// Close releases the underlying handle. Idempotent.
	Close() error
}

// Bounds is an optional inclusive ts_event window pushed down to scans.
type Bounds struct {
	StartTs *int64
	EndTs   *int64
}

// Contains reports whether ts falls inside the window.
func (b Bounds) Contains(ts int64) bool {
	if b.StartTs != nil && ts < *b.StartTs {
		return false
	}
	if b.EndTs != nil && ts > *b.EndTs {
		return false
	}
	return true
}

// IsOpen reports whether no filtering is requested.
func (b Bounds) IsOpen() bool {
	return b.StartTs == nil && b.EndTs == nil
}
