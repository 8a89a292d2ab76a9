package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TaktoSasaki/stock-analysis-mvp/internal/config"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/httpx"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/source"
)

// SearchConfig controls the search client behavior.
type SearchConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SearchClient looks up instruments on the v1 search endpoint and implements
// source.Searcher. Results are filtered to Tokyo-market symbols.
type SearchClient struct {
	cfg    SearchConfig
	client *httpx.Client
}

var _ source.Searcher = (*SearchClient)(nil)

func NewSearchClient(cfg SearchConfig, hc *httpx.Client) *SearchClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query2.finance.yahoo.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &SearchClient{cfg: cfg, client: hc}
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		TypeDisp  string `json:"typeDisp"`
		Exchange  string `json:"exchange"`
	} `json:"quotes"`
}

// Search issues one fuzzy-matching lookup for up to 10 instruments and keeps
// only symbols bearing the Tokyo market suffix.
func (c *SearchClient) Search(ctx context.Context, query string) ([]source.SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("quotesCount", "10")
	q.Set("newsCount", "0")
	q.Set("enableFuzzyQuery", "true")
	q.Set("quotesQueryId", "tss_match_phrase_query")
	u := fmt.Sprintf("%s/v1/finance/search?%s", c.cfg.BaseURL, q.Encode())

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("search: status %d: %s", resp.StatusCode, string(b))
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("search decode: %w", err)
	}

	results := make([]source.SearchResult, 0, len(body.Quotes))
	for _, quote := range body.Quotes {
		if !strings.HasSuffix(quote.Symbol, config.MarketSuffix) {
			continue
		}
		name := quote.ShortName
		if name == "" {
			name = quote.LongName
		}
		if name == "" {
			name = quote.Symbol
		}
		typ := quote.TypeDisp
		if typ == "" {
			typ = "Stock"
		}
		results = append(results, source.SearchResult{
			Symbol:   quote.Symbol,
			Name:     name,
			Type:     typ,
			Exchange: quote.Exchange,
		})
	}
	return results, nil
}
