package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func quote(ts, seq int64, symbol string) schema.EventRow {
	return schema.EventRow{TsEvent: ts, Seq: seq, Symbol: symbol, Kind: schema.KindQuote}
}

func trade(ts, seq int64, symbol string) schema.EventRow {
	return schema.EventRow{TsEvent: ts, Seq: seq, Symbol: symbol, Kind: schema.KindTrade}
}

func push(a *Aggregator, rows ...schema.EventRow) []schema.EventRow {
	var out []schema.EventRow
	for _, row := range rows {
		out = append(out, a.Push(row)...)
	}
	return out
}

func TestPassthrough(t *testing.T) {
	a, err := New(Config{Mode: ModePassthrough})
	require.NoError(t, err)

	rows := []schema.EventRow{quote(1, 0, "A"), trade(2, 1, "B")}
	assert.Equal(t, rows, push(a, rows...))
	assert.Nil(t, a.Flush())
}

func TestFilteredKeepsTradesOnly(t *testing.T) {
	a, err := New(Config{Mode: ModeFiltered, Keep: TradesOnly})
	require.NoError(t, err)

	out := push(a,
		quote(1, 0, "A"),
		trade(2, 1, "A"),
		quote(3, 2, "B"),
		trade(4, 3, "B"),
	)
	require.Len(t, out, 2)
	for _, row := range out {
		assert.Equal(t, schema.KindTrade, row.Kind)
	}
	assert.Nil(t, a.Flush())
}

func TestFixedIntervalLastPerKey(t *testing.T) {
	a, err := New(Config{Mode: ModeFixedInterval, IntervalNs: 100})
	require.NoError(t, err)

	// First bucket [0, 100): three updates for A, one for B. Only the
	// last value per key survives the boundary crossing.
	out := push(a,
		quote(0, 0, "A"),
		quote(10, 1, "B"),
		quote(50, 2, "A"),
		quote(90, 3, "A"),
	)
	assert.Empty(t, out)

	out = a.Push(quote(100, 4, "A"))
	require.Len(t, out, 2)
	assert.Equal(t, int64(3), out[0].Seq) // key order: A before B
	assert.Equal(t, "A", out[0].Symbol)
	assert.Equal(t, int64(1), out[1].Seq)
	assert.Equal(t, "B", out[1].Symbol)

	// Tail bucket comes out on Flush.
	flushed := a.Flush()
	require.Len(t, flushed, 1)
	assert.Equal(t, int64(4), flushed[0].Seq)
	assert.Nil(t, a.Flush())
}

func TestFixedIntervalSkipsEmptyBuckets(t *testing.T) {
	a, err := New(Config{Mode: ModeFixedInterval, IntervalNs: 100})
	require.NoError(t, err)

	require.Empty(t, a.Push(quote(0, 0, "A")))

	// A gap of several intervals drains once; the bucket realigns to
	// contain the new row.
	out := a.Push(quote(550, 1, "A"))
	require.Len(t, out, 1)
	assert.Equal(t, int64(0), out[0].Seq)

	out = a.Push(quote(580, 2, "A"))
	assert.Empty(t, out, "row at 580 belongs to the same bucket as 550")

	out = a.Push(quote(700, 3, "A"))
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].Seq)
}

func TestReset(t *testing.T) {
	a, err := New(Config{Mode: ModeFixedInterval, IntervalNs: 100})
	require.NoError(t, err)

	a.Push(quote(0, 0, "A"))
	a.Reset()
	assert.Nil(t, a.Flush())

	// After reset the first row re-anchors the bucket alignment.
	require.Empty(t, a.Push(quote(1000, 1, "A")))
	require.Len(t, a.Flush(), 1)
}

func TestConfigValidate(t *testing.T) {
	_, err := New(Config{Mode: ModeFixedInterval})
	assert.Error(t, err)

	_, err = New(Config{Mode: ModeFiltered})
	assert.Error(t, err)

	_, err = New(Config{Mode: Mode(42)})
	assert.Error(t, err)
}
