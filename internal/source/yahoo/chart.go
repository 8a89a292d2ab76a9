// Package yahoo implements the direct HTTP sources backed by the public
// Yahoo Finance v8 chart and v1 search endpoints. Neither endpoint needs
// credentials, but both reject requests without a browser-like User-Agent.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/TaktoSasaki/stock-analysis-mvp/internal/httpx"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/series"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/source"
)

// ChartConfig controls the chart client behavior.
type ChartConfig struct {
	BaseURL      string
	Timeout      time.Duration
	LookbackDays int
}

// ChartClient fetches close-price history from the v8 chart endpoint and
// implements source.HistorySource.
type ChartClient struct {
	cfg    ChartConfig
	client *httpx.Client
}

var _ source.HistorySource = (*ChartClient)(nil)

func NewChartClient(cfg ChartConfig, hc *httpx.Client) *ChartClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query2.finance.yahoo.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 3650
	}
	return &ChartClient{cfg: cfg, client: hc}
}

// chartResponse mirrors the nested chart→result→[0] shape of the v8 API.
// Close prices arrive as a nullable array positionally paired with the
// timestamp array.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ShortName string `json:"shortName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches history over the configured lookback window ending now
// and reduces it to a Series. Timestamps are converted to JST; the stamp
// shape is keyed off the interval. Missing closes are dropped; a series
// with no valid points is source.ErrNoData, not an error with a zeroed
// summary.
func (c *ChartClient) History(ctx context.Context, ticker string, interval series.Interval) (*series.Series, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -c.cfg.LookbackDays)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		c.cfg.BaseURL, url.PathEscape(ticker), start.Unix(), end.Unix(), interval)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chart fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("chart: status %d: %s", resp.StatusCode, string(b))
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("chart decode: %w", err)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error: %s", body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, source.ErrNoData
	}

	result := body.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, source.ErrNoData
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]series.Point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, series.Point{
			Time:  series.Stamp(time.Unix(ts, 0).In(series.JST), interval),
			Value: *closes[i],
		})
	}
	if len(points) == 0 {
		return nil, source.ErrNoData
	}

	name := result.Meta.ShortName
	if name == "" {
		name = ticker
	}
	return series.Build(name, points)
}
