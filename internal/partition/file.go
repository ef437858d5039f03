package partition

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync/atomic"

	"github.com/parquet-go/parquet-go"

	"main/internal/schema"
)

const scanChunkRows = 4096

// FileSource reads one local parquet partition file. The file is opened
// per scan and is never assumed to be sorted on disk.
type FileSource struct {
	path   string
	desc   schema.MetaDescriptor
	closed uint32
}

// NewFileSource wraps a parquet file path and its declared descriptor.
func NewFileSource(path string, desc schema.MetaDescriptor) *FileSource {
	return &FileSource{path: path, desc: desc}
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.path
}

// Descriptor returns the declared shape of this partition.
func (s *FileSource) Descriptor() schema.MetaDescriptor {
	return s.desc
}

// Scan reads the whole file, keeps rows inside bounds and sorts them by
// (ts_event, seq). I/O failures surface as ErrSourceUnavailable, decode
// failures as ErrMalformedRow; both abort the caller's replay.
func (s *FileSource) Scan(ctx context.Context, bounds Bounds) ([]schema.EventRow, error) {
	if atomic.LoadUint32(&s.closed) != 0 {
		return nil, ErrSourceClosed
	}
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, s.path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrSourceUnavailable, s.path, err)
	}
	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, s.path, err)
	}

	rows, err := readRows(ctx, pf, bounds, s.path)
	if err != nil {
		return nil, err
	}
	sortRows(rows)
	return rows, nil
}

// Close marks the source closed. The file handle itself is scan-scoped.
func (s *FileSource) Close() error {
	atomic.StoreUint32(&s.closed, 1)
	return nil
}

func readRows(ctx context.Context, pf *parquet.File, bounds Bounds, name string) ([]schema.EventRow, error) {
	reader := parquet.NewGenericReader[schema.EventRow](pf)
	defer reader.Close()

	var rows []schema.EventRow
	buf := make([]schema.EventRow, scanChunkRows)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		n, err := reader.Read(buf)
		for _, row := range buf[:n] {
			if row.TsEvent < 0 {
				return nil, fmt.Errorf("%w: %s: negative ts_event %d seq %d",
					ErrMalformedRow, name, row.TsEvent, row.Seq)
			}
			if bounds.Contains(row.TsEvent) {
				rows = append(rows, row)
			}
		}
		if err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, name, err)
		}
	}
}

func sortRows(rows []schema.EventRow) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Key().Less(rows[j].Key())
	})
}
