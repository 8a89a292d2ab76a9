// Package source defines the data-source abstraction shared by the request
// router and the offline fetcher. A HistorySource fetches raw close-price
// history for one ticker and interval; concrete implementations live in the
// yahoo (direct HTTP JSON) and chartlib (finance-go) subpackages.
package source

import (
	"context"
	"errors"

	"github.com/TaktoSasaki/stock-analysis-mvp/internal/series"
)

// ErrNoData marks the absence outcome: the provider answered but carried no
// usable points for the ticker. Distinct from transport or decode failures.
var ErrNoData = errors.New("source: no data")

// HistorySource fetches a reduced price history for a ticker.
//
//go:generate mockgen -package=handler_test -destination=../handler/mock_source_test.go -source=source.go
type HistorySource interface {
	History(ctx context.Context, ticker string, interval series.Interval) (*series.Series, error)
}

// Searcher looks up instruments matching a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// SearchResult is one matching instrument, already filtered to the Tokyo
// market suffix.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Exchange string `json:"exchange"`
}
