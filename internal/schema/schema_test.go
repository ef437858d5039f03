package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLess(t *testing.T) {
	assert.True(t, Key{TsEvent: 1, Seq: 5}.Less(Key{TsEvent: 2, Seq: 0}))
	assert.True(t, Key{TsEvent: 1, Seq: 0}.Less(Key{TsEvent: 1, Seq: 1}))
	assert.False(t, Key{TsEvent: 1, Seq: 1}.Less(Key{TsEvent: 1, Seq: 1}))
	assert.False(t, Key{TsEvent: 2, Seq: 0}.Less(Key{TsEvent: 1, Seq: 5}))
}

func TestStreamHashDeterminism(t *testing.T) {
	rows := []EventRow{
		{TsEvent: 10, Seq: 0},
		{TsEvent: 10, Seq: 1},
		{TsEvent: 20, Seq: 2},
	}

	var a, b StreamHash
	for _, row := range rows {
		a.Add(row)
		b.Add(row)
	}
	assert.Equal(t, a.Sum(), b.Sum())
	assert.Equal(t, int64(3), a.Count())
}

func TestStreamHashOrderSensitive(t *testing.T) {
	var fwd, rev StreamHash
	fwd.Add(EventRow{TsEvent: 10, Seq: 0})
	fwd.Add(EventRow{TsEvent: 20, Seq: 1})
	rev.Add(EventRow{TsEvent: 20, Seq: 1})
	rev.Add(EventRow{TsEvent: 10, Seq: 0})

	assert.NotEqual(t, fwd.Sum(), rev.Sum())
}

func TestStreamHashIgnoresPayload(t *testing.T) {
	var a, b StreamHash
	a.Add(EventRow{TsEvent: 10, Seq: 0, Symbol: "BTCUSDT", Price: 1})
	b.Add(EventRow{TsEvent: 10, Seq: 0, Symbol: "ETHUSDT", Price: 2})

	assert.Equal(t, a.Sum(), b.Sum())
}
