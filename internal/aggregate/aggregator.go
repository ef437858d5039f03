package aggregate

import (
	"fmt"
	"sort"

	"main/internal/schema"
)

// Mode selects how the aggregator reduces the ordered stream.
type Mode uint8

const (
	// ModePassthrough forwards every row unchanged.
	ModePassthrough Mode = iota
	// ModeFixedInterval emits only the last row per key observed within
	// each fixed time bucket.
	ModeFixedInterval
	// ModeFiltered emits only rows matching a payload predicate.
	ModeFiltered
)

// KeyFunc extracts the grouping key of a row in fixed-interval mode.
type KeyFunc func(schema.EventRow) string

// Predicate decides whether a row survives filtered mode.
type Predicate func(schema.EventRow) bool

// SymbolKey groups rows by their symbol payload field.
func SymbolKey(row schema.EventRow) string {
	return row.Symbol
}

// TradesOnly keeps rows that represent trade events.
func TradesOnly(row schema.EventRow) bool {
	return row.Kind == schema.KindTrade
}

// Config controls the aggregator.
type Config struct {
	Mode Mode
	// IntervalNs is the fixed bucket width in nanoseconds. Buckets are
	// aligned to the first observed timestamp.
	IntervalNs int64
	Key        KeyFunc
	Keep       Predicate
}

func (c Config) withDefaults() Config {
	if c.Key == nil {
		c.Key = SymbolKey
	}
	return c
}

// Validate checks if the config is usable.
func (c Config) Validate() error {
	switch c.Mode {
	case ModePassthrough:
		return nil
	case ModeFixedInterval:
		if c.IntervalNs <= 0 {
			return fmt.Errorf("invalid aggregate config: IntervalNs must be > 0")
		}
		return nil
	case ModeFiltered:
		if c.Keep == nil {
			return fmt.Errorf("invalid aggregate config: Keep predicate is nil")
		}
		return nil
	default:
		return fmt.Errorf("invalid aggregate config: unknown mode %d", c.Mode)
	}
}

// Aggregator downsamples an already-ordered row stream. It trusts its
// upstream for monotonicity and does not re-validate ordering. Callers
// in fixed-interval mode must call Flush at end of stream or the final
// partial bucket is silently dropped.
type Aggregator struct {
	cfg   Config
	state bucketState
}

// bucketState is the aggregator's explicit mutable state: the current
// bucket boundary plus the per-key last value buffer.
type bucketState struct {
	bucketStart int64
	primed      bool
	last        map[string]schema.EventRow
}

// New creates an aggregator for the given mode.
func New(cfg Config) (*Aggregator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{
		cfg:   cfg,
		state: bucketState{last: make(map[string]schema.EventRow)},
	}, nil
}

// Push feeds one row and returns any rows ready to emit. Passthrough
// and filtered modes emit immediately; fixed-interval mode emits the
// previous bucket's values when the row crosses a bucket boundary.
func (a *Aggregator) Push(row schema.EventRow) []schema.EventRow {
	switch a.cfg.Mode {
	case ModePassthrough:
		return []schema.EventRow{row}
	case ModeFiltered:
		if a.cfg.Keep(row) {
			return []schema.EventRow{row}
		}
		return nil
	default:
		return a.pushFixedInterval(row)
	}
}

// Flush emits any still-buffered per-key values, ending the final
// partial bucket. Only meaningful in fixed-interval mode.
func (a *Aggregator) Flush() []schema.EventRow {
	if a.cfg.Mode != ModeFixedInterval {
		return nil
	}
	return a.drain()
}

// Reset returns the aggregator state to its initial empty condition.
func (a *Aggregator) Reset() {
	a.state = bucketState{last: make(map[string]schema.EventRow)}
}

func (a *Aggregator) pushFixedInterval(row schema.EventRow) []schema.EventRow {
	var out []schema.EventRow
	if !a.state.primed {
		a.state.bucketStart = row.TsEvent
		a.state.primed = true
	} else if row.TsEvent >= a.state.bucketStart+a.cfg.IntervalNs {
		out = a.drain()
		elapsed := row.TsEvent - a.state.bucketStart
		a.state.bucketStart += (elapsed / a.cfg.IntervalNs) * a.cfg.IntervalNs
	}
	a.state.last[a.cfg.Key(row)] = row
	return out
}

// drain emits buffered values in key order, for determinism.
func (a *Aggregator) drain() []schema.EventRow {
	if len(a.state.last) == 0 {
		return nil
	}
	keys := make([]string, 0, len(a.state.last))
	for k := range a.state.last {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]schema.EventRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, a.state.last[k])
	}
	a.state.last = make(map[string]schema.EventRow)
	return out
}
