package archive

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"main/internal/adapter"
	"main/internal/errors"
	"main/internal/schema"
)

const defaultInsertBatch = 500

// Record is one archived row of a replay run, persisted in emission
// order for later dispute resolution.
type Record struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	RunID    string `gorm:"size:64;index"`
	Position int64
	TsEvent  int64
	Seq      int64
	Symbol   string `gorm:"size:32"`
	Kind     int32
	Price    string `gorm:"type:numeric"`
	Size     string `gorm:"type:numeric"`
}

// TableName returns the archive table name.
func (Record) TableName() string {
	return "replay_archive"
}

// RunSummary seals one archived run with its row count and stream hash.
type RunSummary struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	RunID      string `gorm:"size:64;uniqueIndex"`
	Rows       int64
	StreamHash uint32
	CreatedAt  time.Time
}

// TableName returns the summary table name.
func (RunSummary) TableName() string {
	return "replay_archive_runs"
}

// Writer persists the emitted row order of one replay run. Inserts are
// batched; Finish flushes the tail and writes the run summary.
type Writer struct {
	db       *gorm.DB
	cfg      Config
	runID    string
	buf      []Record
	position int64
	finished bool
}

// NewWriter connects to PostgreSQL, migrates the archive tables and
// starts a run.
func NewWriter(cfg Config, runID string) (*Writer, error) {
	cfg = cfg.withDefaults()
	if runID == "" {
		return nil, fmt.Errorf("invalid archive writer: runID is empty")
	}
	db, err := open(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connect archive database")
	}
	if err := db.AutoMigrate(&Record{}, &RunSummary{}); err != nil {
		return nil, errors.Wrap(err, "migrate archive tables")
	}
	return &Writer{
		db:    db,
		cfg:   cfg,
		runID: runID,
		buf:   make([]Record, 0, cfg.InsertBatch),
	}, nil
}

// Append buffers one emitted row, preserving its position in the stream.
func (w *Writer) Append(row schema.EventRow) error {
	if w.finished {
		return fmt.Errorf("archive writer already finished")
	}
	w.buf = append(w.buf, toRecord(w.runID, w.position, row, w.cfg))
	w.position++
	if len(w.buf) >= w.cfg.InsertBatch {
		return w.flush()
	}
	return nil
}

// Finish flushes buffered rows and seals the run with its stream hash.
func (w *Writer) Finish(streamHash uint32) error {
	if w.finished {
		return nil
	}
	if err := w.flush(); err != nil {
		return err
	}
	summary := RunSummary{
		RunID:      w.runID,
		Rows:       w.position,
		StreamHash: streamHash,
		CreatedAt:  time.Now().UTC(),
	}
	if err := w.db.Create(&summary).Error; err != nil {
		return errors.Wrap(err, "write run summary")
	}
	w.finished = true
	return nil
}

// Close releases the connection pool. A run abandoned before Finish
// keeps its partial records but gets no summary row.
func (w *Writer) Close() error {
	sqlDB, err := w.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if err := w.db.CreateInBatches(w.buf, w.cfg.InsertBatch).Error; err != nil {
		return errors.Wrap(err, "insert archive records")
	}
	w.buf = w.buf[:0]
	return nil
}

func toRecord(runID string, position int64, row schema.EventRow, cfg Config) Record {
	return Record{
		RunID:    runID,
		Position: position,
		TsEvent:  row.TsEvent,
		Seq:      row.Seq,
		Symbol:   row.Symbol,
		Kind:     int32(row.Kind),
		Price:    adapter.FixedString(row.Price, cfg.PriceScale),
		Size:     adapter.FixedString(row.Size, cfg.SizeScale),
	}
}
