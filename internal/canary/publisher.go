package canary

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/yanun0323/decimal"

	"main/internal/adapter"
	"main/internal/errors"
	"main/internal/schema"
)

const (
	defaultSubjectPrefix = "replay.canary"
	defaultFlushTimeout  = 5 * time.Second
)

// Config locates the NATS endpoint the canary comparison listens on.
type Config struct {
	URL           string
	SubjectPrefix string
	FlushTimeout  time.Duration
	PriceScale    int
	SizeScale     int
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = nats.DefaultURL
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = defaultSubjectPrefix
	}
	if c.FlushTimeout == 0 {
		c.FlushTimeout = defaultFlushTimeout
	}
	return c
}

// RowMessage is one replayed row published for canary comparison.
// Prices and sizes are carried as decimals so the comparison side never
// needs to know the payload's fixed-point scales.
type RowMessage struct {
	RunID    string          `json:"run_id"`
	Position int64           `json:"position"`
	TsEvent  int64           `json:"ts_event"`
	Seq      int64           `json:"seq"`
	Symbol   string          `json:"symbol"`
	Kind     int32           `json:"kind"`
	Price    decimal.Decimal `json:"price"`
	Size     decimal.Decimal `json:"size"`
}

// SummaryMessage seals a published run with its count and stream hash,
// letting the canary side verify it saw the complete ordered stream.
type SummaryMessage struct {
	RunID      string `json:"run_id"`
	Rows       int64  `json:"rows"`
	StreamHash uint32 `json:"stream_hash"`
}

// Publisher streams replayed rows to NATS subjects for live-canary
// comparison against another replay of the same dataset.
type Publisher struct {
	cfg      Config
	nc       *nats.Conn
	runID    string
	position int64
}

// NewPublisher connects to NATS and starts a publishing run.
func NewPublisher(cfg Config, runID string) (*Publisher, error) {
	cfg = cfg.withDefaults()
	if runID == "" {
		return nil, fmt.Errorf("invalid canary publisher: runID is empty")
	}
	nc, err := nats.Connect(cfg.URL, nats.Timeout(cfg.FlushTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "connect canary endpoint")
	}
	return &Publisher{cfg: cfg, nc: nc, runID: runID}, nil
}

// PublishRow emits one row on <prefix>.rows.<runID>.
func (p *Publisher) PublishRow(row schema.EventRow) error {
	msg := RowMessage{
		RunID:    p.runID,
		Position: p.position,
		TsEvent:  row.TsEvent,
		Seq:      row.Seq,
		Symbol:   row.Symbol,
		Kind:     int32(row.Kind),
		Price:    adapter.FixedDecimal(row.Price, p.cfg.PriceScale),
		Size:     adapter.FixedDecimal(row.Size, p.cfg.SizeScale),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode canary row")
	}
	if err := p.nc.Publish(p.subject("rows"), data); err != nil {
		return errors.Wrap(err, "publish canary row")
	}
	p.position++
	return nil
}

// PublishSummary emits the terminal message on <prefix>.runs.<runID>.
func (p *Publisher) PublishSummary(streamHash uint32) error {
	msg := SummaryMessage{
		RunID:      p.runID,
		Rows:       p.position,
		StreamHash: streamHash,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode canary summary")
	}
	if err := p.nc.Publish(p.subject("runs"), data); err != nil {
		return errors.Wrap(err, "publish canary summary")
	}
	return nil
}

// Close flushes outstanding messages and drops the connection.
func (p *Publisher) Close() error {
	err := p.nc.FlushTimeout(p.cfg.FlushTimeout)
	p.nc.Close()
	return err
}

func (p *Publisher) subject(kind string) string {
	return p.cfg.SubjectPrefix + "." + kind + "." + p.runID
}
