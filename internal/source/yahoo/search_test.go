package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TaktoSasaki/stock-analysis-mvp/internal/httpx"
)

func newSearchTestClient(t *testing.T, handler http.HandlerFunc) *SearchClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	hc := httpx.New(5 * time.Second)
	return NewSearchClient(SearchConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, hc)
}

const searchBody = `{
  "quotes": [
    {"symbol": "7203.T", "shortname": "トヨタ自動車", "typeDisp": "Equity", "exchange": "JPX"},
    {"symbol": "TM", "shortname": "Toyota Motor Corporation", "typeDisp": "Equity", "exchange": "NYQ"},
    {"symbol": "6758.T", "longname": "Sony Group Corporation", "exchange": "JPX"},
    {"symbol": "9984.T"}
  ]
}`

func TestSearch_FiltersToTokyoSuffix(t *testing.T) {
	c := newSearchTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "トヨタ" {
			t.Errorf("q=%q", q.Get("q"))
		}
		if q.Get("quotesCount") != "10" || q.Get("newsCount") != "0" {
			t.Errorf("count params wrong: %v", q)
		}
		if q.Get("enableFuzzyQuery") != "true" || q.Get("quotesQueryId") != "tss_match_phrase_query" {
			t.Errorf("query mode params wrong: %v", q)
		}
		w.Write([]byte(searchBody))
	})

	results, err := c.Search(context.Background(), "トヨタ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results=%d, want 3 (TM filtered out): %+v", len(results), results)
	}
	for _, r := range results {
		if r.Symbol == "TM" {
			t.Errorf("non-Tokyo symbol kept: %+v", r)
		}
	}

	// Name prefers shortname, then longname, then symbol.
	if results[0].Name != "トヨタ自動車" {
		t.Errorf("name=%q", results[0].Name)
	}
	if results[1].Name != "Sony Group Corporation" {
		t.Errorf("longname fallback=%q", results[1].Name)
	}
	if results[2].Name != "9984.T" {
		t.Errorf("symbol fallback=%q", results[2].Name)
	}

	// Type falls back to Stock, exchange to empty.
	if results[0].Type != "Equity" || results[1].Type != "Stock" {
		t.Errorf("type fallback wrong: %+v", results)
	}
	if results[2].Exchange != "" {
		t.Errorf("exchange fallback=%q", results[2].Exchange)
	}
}

func TestSearch_Non2xxIsError(t *testing.T) {
	c := newSearchTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	if _, err := c.Search(context.Background(), "sony"); err == nil {
		t.Fatal("want error on non-2xx")
	}
}

func TestSearch_NoMatchesIsEmptyNotNil(t *testing.T) {
	c := newSearchTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quotes":[{"symbol":"AAPL"}]}`))
	})
	results, err := c.Search(context.Background(), "apple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", results)
	}
}
