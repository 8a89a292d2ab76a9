package series

import "strings"

// Interval is the sampling granularity for historical price points. The
// values are Yahoo Finance interval codes and travel on the wire unchanged.
type Interval string

const (
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval60m Interval = "60m"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
)

// Intervals lists every accepted value, in the order user-facing messages
// present them.
func Intervals() []Interval {
	return []Interval{Interval15m, Interval30m, Interval60m, Interval1d, Interval1wk, Interval1mo}
}

func (i Interval) Valid() bool {
	switch i {
	case Interval15m, Interval30m, Interval60m, Interval1d, Interval1wk, Interval1mo:
		return true
	}
	return false
}

// Intraday reports whether points at this granularity need a time-of-day
// component in their stamp.
func (i Interval) Intraday() bool {
	switch i {
	case Interval15m, Interval30m, Interval60m:
		return true
	}
	return false
}

// IntervalList renders the accepted values for error messages.
func IntervalList() string {
	vals := Intervals()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
