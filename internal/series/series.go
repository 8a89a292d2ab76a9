// Package series holds the charting-friendly price series model shared by
// the request router and the offline fetcher: ordered (time, value) points
// plus the summary statistics derived from them.
package series

import (
	"errors"
	"math"
	"time"
)

// JST is the fixed UTC+9 offset used for provider timestamps and
// user-facing clock strings.
var JST = time.FixedZone("JST", 9*60*60)

// ErrEmpty is returned when a series would contain no valid points.
var ErrEmpty = errors.New("series: no valid points")

// Point is one charting sample. Value is never NaN; entries with missing
// prices are dropped before a Point is built.
type Point struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Summary holds the statistics reduced from an ordered non-empty sequence
// of points.
type Summary struct {
	CurrentPrice  float64 `json:"current_price"`
	YearHigh      float64 `json:"year_high"`
	YearLow       float64 `json:"year_low"`
	YearChangePct float64 `json:"year_change_pct"`
	DataPoints    int     `json:"data_points"`
}

// Series is a reduced price history for one ticker. Name is the provider's
// display label, falling back to the raw ticker.
type Series struct {
	Name   string
	Points []Point
	Summary
}

// Build reduces an ordered point sequence into a Series. It fails with
// ErrEmpty rather than producing a zeroed summary.
func Build(name string, points []Point) (*Series, error) {
	if len(points) == 0 {
		return nil, ErrEmpty
	}
	first := points[0].Value
	s := &Series{
		Name:   name,
		Points: points,
		Summary: Summary{
			CurrentPrice: points[len(points)-1].Value,
			YearHigh:     points[0].Value,
			YearLow:      points[0].Value,
			DataPoints:   len(points),
		},
	}
	for _, p := range points[1:] {
		if p.Value > s.YearHigh {
			s.YearHigh = p.Value
		}
		if p.Value < s.YearLow {
			s.YearLow = p.Value
		}
	}
	if len(points) > 1 {
		s.YearChangePct = Round2((s.CurrentPrice - first) / first * 100)
	}
	return s, nil
}

// Round2 rounds to two decimal places, ties away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Stamp formats an instant for charting output. Daily and coarser intervals
// carry a date only; intraday intervals keep the minute. The interval, not
// the data, decides the shape.
func Stamp(t time.Time, iv Interval) string {
	if iv.Intraday() {
		return t.Format("2006-01-02 15:04")
	}
	return t.Format("2006-01-02")
}
