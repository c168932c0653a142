package script

import "sync/atomic"

// Sequencer hands out strictly increasing step sequence numbers.
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock. Traces are ordered by its values,
// never by wall time, so identical scripts produce identical traces.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock resuming after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments and returns the sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
