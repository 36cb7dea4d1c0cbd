package shared

import (
	"time"

	"github.com/rickb777/date/v2/timespan"
)

type TimeSpan = timespan.TimeSpan

// Change is delivered to subscribers after the value of a key changed.
// Span covers the interval during which the new value became durable.
type Change[T any] struct {
	Key   string
	Value T
	Span  TimeSpan
}

func spanSince(start time.Time) TimeSpan {
	return timespan.BetweenTimes(start, time.Now())
}
