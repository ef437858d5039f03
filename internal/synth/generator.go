package synth

import (
	"fmt"

	"main/internal/schema"
)

// Config controls synthetic event generation. Generation is pure
// arithmetic: the same config always yields the same rows, which is what
// replay determinism tests depend on.
type Config struct {
	Symbols []string
	StartTs int64
	// StepNs is the timestamp advance per tick. All symbols share each
	// tick's timestamp, so every tick produces ts_event ties broken by seq.
	StepNs    int64
	BasePrice int64
	BaseSize  int64
	Spread    int64
	// TradeEvery marks every Nth event as a trade instead of a quote.
	TradeEvery int
}

func (c Config) withDefaults() Config {
	if len(c.Symbols) == 0 {
		c.Symbols = []string{"BTCUSDT"}
	}
	if c.StepNs == 0 {
		c.StepNs = 1_000_000
	}
	if c.BasePrice == 0 {
		c.BasePrice = 50_000_0000
	}
	if c.BaseSize == 0 {
		c.BaseSize = 100
	}
	if c.TradeEvery == 0 {
		c.TradeEvery = 5
	}
	return c
}

// Validate checks if the config is usable.
func (c Config) Validate() error {
	if c.StartTs < 0 {
		return fmt.Errorf("invalid synth config: StartTs must be >= 0")
	}
	if c.StepNs <= 0 {
		return fmt.Errorf("invalid synth config: StepNs must be > 0")
	}
	if c.TradeEvery <= 0 {
		return fmt.Errorf("invalid synth config: TradeEvery must be > 0")
	}
	return nil
}

// Generator creates a deterministic synthetic event stream.
type Generator struct {
	cfg   Config
	index int64
	seq   int64
}

// NewGenerator validates the config and creates a generator.
func NewGenerator(cfg Config) (*Generator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Next creates the next event in sequence.
func (g *Generator) Next() schema.EventRow {
	symbols := int64(len(g.cfg.Symbols))
	tick := g.index / symbols
	symbol := g.cfg.Symbols[g.index%symbols]

	price := g.cfg.BasePrice + (g.index%17)*3 - (g.index%7)*2
	size := g.cfg.BaseSize + g.index%11
	kind := schema.KindQuote
	if g.index%int64(g.cfg.TradeEvery) == 0 {
		kind = schema.KindTrade
	}

	row := schema.EventRow{
		TsEvent:  g.cfg.StartTs + tick*g.cfg.StepNs,
		Seq:      g.seq,
		Symbol:   symbol,
		Kind:     kind,
		Price:    price,
		Size:     size,
		BidPrice: price - g.cfg.Spread,
		BidSize:  size,
		AskPrice: price + g.cfg.Spread,
		AskSize:  size,
	}
	g.index++
	g.seq++
	return row
}

// Take creates the next n events.
func (g *Generator) Take(n int) []schema.EventRow {
	rows := make([]schema.EventRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, g.Next())
	}
	return rows
}

// Describe builds the meta descriptor matching a generated row slice.
func Describe(rows []schema.EventRow) schema.MetaDescriptor {
	d := schema.MetaDescriptor{
		SchemaVersion: schema.SchemaVersion,
		Rows:          int64(len(rows)),
		SourceFiles:   1,
	}
	for i, row := range rows {
		if i == 0 {
			d.TsEventMin = row.TsEvent
			d.TsEventMax = row.TsEvent
			continue
		}
		if row.TsEvent < d.TsEventMin {
			d.TsEventMin = row.TsEvent
		}
		if row.TsEvent > d.TsEventMax {
			d.TsEventMax = row.TsEvent
		}
	}
	return d
}

// Split partitions rows into parts contiguous slices of near-equal size,
// mimicking how the compaction pipeline cuts a dataset on time
// boundaries.
func Split(rows []schema.EventRow, parts int) [][]schema.EventRow {
	if parts <= 1 || len(rows) == 0 {
		return [][]schema.EventRow{rows}
	}
	if parts > len(rows) {
		parts = len(rows)
	}
	out := make([][]schema.EventRow, 0, parts)
	size := len(rows) / parts
	rest := len(rows) % parts
	offset := 0
	for i := 0; i < parts; i++ {
		n := size
		if i < rest {
			n++
		}
		out = append(out, rows[offset:offset+n])
		offset += n
	}
	return out
}
