package schema

// SchemaVersion is the single descriptor version this engine understands.
// Schema evolution must be explicit; any other value is a hard failure.
const SchemaVersion = 1

// EventKind labels the payload category of a row. The replay core never
// reads it; generators, aggregators and consumers do.
type EventKind int32

const (
	KindUnknown EventKind = iota
	KindQuote
	KindTrade
)

// EventRow is one market event as stored in a partition file.
//
// TsEvent and Seq are the only fields the engine interprets: TsEvent is
// the primary ordering key (nanoseconds since epoch), Seq breaks ties
// within a timestamp. Everything else is stream-specific payload passed
// through unchanged. Prices and sizes are fixed-point integers.
type EventRow struct {
	TsEvent  int64     `parquet:"ts_event" json:"ts_event"`
	Seq      int64     `parquet:"seq" json:"seq"`
	Symbol   string    `parquet:"symbol" json:"symbol"`
	Kind     EventKind `parquet:"kind" json:"kind"`
	Price    int64     `parquet:"price" json:"price"`
	Size     int64     `parquet:"size" json:"size"`
	BidPrice int64     `parquet:"bid_price" json:"bid_price"`
	BidSize  int64     `parquet:"bid_size" json:"bid_size"`
	AskPrice int64     `parquet:"ask_price" json:"ask_price"`
	AskSize  int64     `parquet:"ask_size" json:"ask_size"`
}

// Key returns the row's ordering key.
func (r EventRow) Key() Key {
	return Key{TsEvent: r.TsEvent, Seq: r.Seq}
}

// Key is the (ts_event, seq) ordering key of a row.
type Key struct {
	TsEvent int64
	Seq     int64
}

// Less reports whether k orders strictly before other.
func (k Key) Less(other Key) bool {
	if k.TsEvent != other.TsEvent {
		return k.TsEvent < other.TsEvent
	}
	return k.Seq < other.Seq
}
