package partition

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/parquet-go/parquet-go"

	"main/internal/schema"
)

const defaultFetchTimeout = 30 * time.Second

// ObjectConfig locates one remote partition in a JetStream object store.
type ObjectConfig struct {
	URL     string
	Bucket  string
	Object  string
	Timeout time.Duration
}

func (c ObjectConfig) withDefaults() ObjectConfig {
	if c.URL == "" {
		c.URL = nats.DefaultURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultFetchTimeout
	}
	return c
}

// Validate checks if the config is usable.
func (c ObjectConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("invalid object source config: Bucket is empty")
	}
	if c.Object == "" {
		return fmt.Errorf("invalid object source config: Object is empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid object source config: Timeout must be >= 0")
	}
	return nil
}

// ObjectSource reads one partition object from a remote store. The
// object bytes are fetched once, cached for the lifetime of the source
// and released by Close. A fetch timeout is reported as source
// unavailability, never as a data-completeness problem.
type ObjectSource struct {
	cfg    ObjectConfig
	desc   schema.MetaDescriptor
	data   []byte
	closed uint32
}

// NewObjectSource wraps a remote partition object and its declared descriptor.
func NewObjectSource(cfg ObjectConfig, desc schema.MetaDescriptor) (*ObjectSource, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ObjectSource{cfg: cfg, desc: desc}, nil
}

// Name identifies the object for error messages and enumeration order.
func (s *ObjectSource) Name() string {
	return s.cfg.Bucket + "/" + s.cfg.Object
}

// Descriptor returns the declared shape of this partition.
func (s *ObjectSource) Descriptor() schema.MetaDescriptor {
	return s.desc
}

// Scan fetches the object if needed, then filters and sorts its rows
// exactly like a local file scan.
func (s *ObjectSource) Scan(ctx context.Context, bounds Bounds) ([]schema.EventRow, error) {
	if atomic.LoadUint32(&s.closed) != 0 {
		return nil, ErrSourceClosed
	}
	if s.data == nil {
		data, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.data = data
	}

	pf, err := parquet.OpenFile(bytes.NewReader(s.data), int64(len(s.data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, s.Name(), err)
	}
	rows, err := readRows(ctx, pf, bounds, s.Name())
	if err != nil {
		return nil, err
	}
	sortRows(rows)
	return rows, nil
}

// Close drops the cached object bytes.
func (s *ObjectSource) Close() error {
	atomic.StoreUint32(&s.closed, 1)
	s.data = nil
	return nil
}

func (s *ObjectSource) fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	nc, err := nats.Connect(s.cfg.URL, nats.Timeout(s.cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %v", ErrSourceUnavailable, s.cfg.URL, err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("%w: jetstream: %v", ErrSourceUnavailable, err)
	}
	store, err := js.ObjectStore(ctx, s.cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: bucket %s: %v", ErrSourceUnavailable, s.cfg.Bucket, err)
	}
	data, err := store.GetBytes(ctx, s.cfg.Object)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrSourceUnavailable, s.Name(), err)
	}
	return data, nil
}
