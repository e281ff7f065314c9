package og

import "sync/atomic"

// IDGenerator hands out process-unique monotonic identifiers for
// entities. Collections own one instead of relying on package-level
// counters, which keeps entity identity testable.
//
// The zero value is ready to use. IDGenerator is safe for concurrent use.
type IDGenerator struct {
	last atomic.Uint64
}

// Next returns the next identifier. The first call returns 1, so the
// zero id can mean "not yet assigned".
func (g *IDGenerator) Next() uint64 {
	return g.last.Add(1)
}
