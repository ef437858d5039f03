package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorDeterminism(t *testing.T) {
	cfg := Config{Symbols: []string{"BTCUSDT", "ETHUSDT"}, StartTs: 1000}

	g1, err := NewGenerator(cfg)
	require.NoError(t, err)
	g2, err := NewGenerator(cfg)
	require.NoError(t, err)

	assert.Equal(t, g1.Take(500), g2.Take(500))
}

func TestGeneratorTies(t *testing.T) {
	gen, err := NewGenerator(Config{Symbols: []string{"A", "B", "C"}, StartTs: 0, StepNs: 10})
	require.NoError(t, err)

	rows := gen.Take(9)
	// All symbols share each tick's timestamp; seq is globally unique and
	// monotonically increasing.
	for i, row := range rows {
		assert.Equal(t, int64(i/3*10), row.TsEvent)
		assert.Equal(t, int64(i), row.Seq)
	}
}

func TestGeneratorValidate(t *testing.T) {
	_, err := NewGenerator(Config{StartTs: -1})
	assert.Error(t, err)

	_, err = NewGenerator(Config{StepNs: -5})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	gen, err := NewGenerator(Config{Symbols: []string{"A"}, StartTs: 100, StepNs: 10})
	require.NoError(t, err)

	rows := gen.Take(5)
	d := Describe(rows)
	assert.Equal(t, int64(5), d.Rows)
	assert.Equal(t, int64(100), d.TsEventMin)
	assert.Equal(t, int64(140), d.TsEventMax)
	assert.Equal(t, 1, d.SourceFiles)

	empty := Describe(nil)
	assert.Equal(t, int64(0), empty.Rows)
}

func TestSplit(t *testing.T) {
	gen, err := NewGenerator(Config{Symbols: []string{"A"}})
	require.NoError(t, err)
	rows := gen.Take(10)

	chunks := Split(rows, 3)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 4)
	assert.Len(t, chunks[1], 3)
	assert.Len(t, chunks[2], 3)

	// Contiguity: concatenation restores the original slice.
	var flat []int64
	for _, chunk := range chunks {
		for _, row := range chunk {
			flat = append(flat, row.Seq)
		}
	}
	for i, seq := range flat {
		assert.Equal(t, int64(i), seq)
	}

	assert.Len(t, Split(rows, 1), 1)
	assert.Len(t, Split(rows, 20), 10)
}
