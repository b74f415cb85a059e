package probe

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now, which carries a monotonic reading.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// seqCounter hands out arm sequence numbers.
//
// Thread-safety: seqCounter is safe for concurrent use (atomic operations).
type seqCounter struct {
	seq atomic.Int64
}

// next returns the next sequence number. The first call returns 1.
func (c *seqCounter) next() int64 {
	return c.seq.Add(1)
}

// current returns the last sequence number handed out.
func (c *seqCounter) current() int64 {
	return c.seq.Load()
}
