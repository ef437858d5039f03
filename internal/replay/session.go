package replay

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	internalerrors "main/internal/errors"
	"main/internal/meta"
	"main/internal/obs"
	"main/internal/partition"
	"main/internal/schema"
)

var (
	ErrOrderingViolation = errors.New("replay ordering violation")
	ErrSessionClosed     = errors.New("replay session closed")
	ErrStreamClosed      = errors.New("replay stream closed")
	ErrStreamActive      = errors.New("replay stream already active")
	ErrNoSources         = errors.New("replay session has no sources")
)

// Session is the replay engine facade. It owns its partition sources
// exclusively, holds no mutable read position between Replay calls, and
// supports one in-flight stream at a time; concurrent scans over the
// same files should use independent sessions.
type Session struct {
	sources  []partition.Source
	declared *schema.MetaDescriptor
	combined schema.MetaDescriptor
	metrics  *obs.Metrics

	closed uint32
	active uint32
}

// NewSession builds a session over the given partition sources.
// Enumeration order is normalized by declared time range, then name, so
// the caller's open order never perturbs the merged output.
func NewSession(sources ...partition.Source) (*Session, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	normalized := make([]partition.Source, len(sources))
	copy(normalized, sources)
	sort.SliceStable(normalized, func(i, j int) bool {
		di, dj := normalized[i].Descriptor(), normalized[j].Descriptor()
		if di.TsEventMin != dj.TsEventMin {
			return di.TsEventMin < dj.TsEventMin
		}
		if di.TsEventMax != dj.TsEventMax {
			return di.TsEventMax < dj.TsEventMax
		}
		return normalized[i].Name() < normalized[j].Name()
	})

	descs := make([]schema.MetaDescriptor, len(normalized))
	for i, src := range normalized {
		descs[i] = src.Descriptor()
	}
	combined, err := meta.Combine(descs...)
	if err != nil {
		return nil, err
	}
	return &Session{sources: normalized, combined: combined}, nil
}

// WithDeclared attaches a dataset-level descriptor to cross-check
// against the partitions during Validate.
func (s *Session) WithDeclared(d schema.MetaDescriptor) *Session {
	s.declared = &d
	return s
}

// WithMetrics attaches a metrics container.
func (s *Session) WithMetrics(m *obs.Metrics) *Session {
	s.metrics = m
	return s
}

// Validate runs the pre-flight checks: every partition descriptor and
// the combined descriptor must carry the supported schema version and
// sane bounds, and any dataset-level declaration must agree with the
// partitions. Returns the resolved combined descriptor.
func (s *Session) Validate() (schema.MetaDescriptor, error) {
	if s.isClosed() {
		return schema.MetaDescriptor{}, ErrSessionClosed
	}
	for _, src := range s.sources {
		if err := meta.Validate(src.Descriptor()); err != nil {
			return schema.MetaDescriptor{}, internalerrors.Wrapf(err, "partition %s", src.Name())
		}
	}
	if err := meta.Validate(s.combined); err != nil {
		return schema.MetaDescriptor{}, err
	}
	if s.declared != nil {
		if err := meta.Validate(*s.declared); err != nil {
			return schema.MetaDescriptor{}, err
		}
		if err := meta.ValidateDeclared(*s.declared, s.combined); err != nil {
			return schema.MetaDescriptor{}, err
		}
	}
	return s.combined, nil
}

// Meta returns the combined descriptor without re-validating.
func (s *Session) Meta() schema.MetaDescriptor {
	return s.combined
}

// Replay scans all sources and returns a fresh ordered stream from the
// beginning of the dataset. Each call owns its own cursor; a prior
// partially-consumed stream is never resumed.
func (s *Session) Replay(ctx context.Context, opts Options) (*Stream, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !atomic.CompareAndSwapUint32(&s.active, 0, 1) {
		return nil, ErrStreamActive
	}

	bounds := opts.bounds()
	scans := make([][]schema.EventRow, 0, len(s.sources))
	for _, src := range s.sources {
		started := time.Now()
		rows, err := src.Scan(ctx, bounds)
		if err != nil {
			s.metrics.IncSourceError()
			s.releaseStream()
			return nil, internalerrors.Wrapf(err, "scan %s", src.Name())
		}
		s.metrics.ObserveScan(time.Since(started))
		scans = append(scans, rows)
	}
	s.metrics.IncStreamStarted()

	return &Stream{
		session: s,
		cursor:  newBatchCursor(newMergeReader(scans)),
		opts:    opts,
	}, nil
}

// Close releases all partition sources. Idempotent; any later operation
// on the session fails with ErrSessionClosed.
func (s *Session) Close() error {
	if !atomic.CompareAndSwapUint32(&s.closed, 0, 1) {
		return nil
	}
	var errs []error
	for _, src := range s.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return internalerrors.Join(errs...)
}

func (s *Session) isClosed() bool {
	return atomic.LoadUint32(&s.closed) != 0
}

func (s *Session) releaseStream() {
	atomic.StoreUint32(&s.active, 0)
}
