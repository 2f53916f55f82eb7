package rrule

import "time"

// MAXYEAR is the largest year the expander will advance into. Iteration
// past it terminates the stream instead of overflowing time.Time's
// internal representation.
const MAXYEAR = 9999

// Next pulls the next occurrence off an iterator. It returns false once
// the stream is exhausted; callers should stop calling Next after that.
type Next func() (time.Time, bool)
