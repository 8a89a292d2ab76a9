// Package chartlib implements source.HistorySource on top of the
// finance-go charting library instead of hand-rolled HTTP. The offline
// fetcher uses it; the router keeps the direct JSON client.
package chartlib

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"github.com/TaktoSasaki/stock-analysis-mvp/internal/series"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/source"
)

// Config controls the library-backed source.
type Config struct {
	LookbackDays int
}

// Source fetches history through finance-go's chart iterator.
type Source struct {
	cfg Config
}

var _ source.HistorySource = (*Source)(nil)

func New(cfg Config) *Source {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	return &Source{cfg: cfg}
}

// History fetches the lookback window ending now. Unlike the direct HTTP
// source, stamps keep the dates as returned by the library with no JST
// conversion. Bars without a positive close are dropped.
func (s *Source) History(ctx context.Context, ticker string, interval series.Interval) (*series.Series, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -s.cfg.LookbackDays)

	iter := chart.Get(&chart.Params{
		Params:   finance.Params{Context: &ctx},
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.Interval(interval),
	})

	var points []series.Point
	for iter.Next() {
		bar := iter.Bar()
		if !bar.Close.GreaterThan(decimal.Zero) {
			continue
		}
		value, _ := bar.Close.Float64()
		points = append(points, series.Point{
			Time:  series.Stamp(time.Unix(int64(bar.Timestamp), 0).UTC(), interval),
			Value: value,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("chartlib %s: %w", ticker, err)
	}
	if len(points) == 0 {
		return nil, source.ErrNoData
	}
	return series.Build(ticker, points)
}
