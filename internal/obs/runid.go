package obs

import (
	"fmt"
	"sync/atomic"
	"time"
)

// RunIDGenerator creates monotonically increasing replay run IDs, used
// to label archive and canary output of one replay invocation.
type RunIDGenerator struct {
	next uint64
}

// NewRunIDGenerator returns a generator seeded with the given value.
func NewRunIDGenerator(seed uint64) *RunIDGenerator {
	if seed == 0 {
		seed = uint64(time.Now().UTC().UnixNano())
	}
	return &RunIDGenerator{next: seed}
}

// Next returns the next run ID.
func (g *RunIDGenerator) Next() string {
	if g == nil {
		return "replay-0"
	}
	return fmt.Sprintf("replay-%d", atomic.AddUint64(&g.next, 1))
}
