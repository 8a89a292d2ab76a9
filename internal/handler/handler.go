// Package handler implements the request router behind the Lambda HTTP
// endpoint: action dispatch, parameter validation, CORS and the JSON
// response envelopes. It is stateless per invocation.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/TaktoSasaki/stock-analysis-mvp/internal/config"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/series"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/source"
)

// User-facing messages are Japanese to match the frontend locale.
const (
	msgQueryRequired  = "検索クエリが必要です"
	msgTickerRequired = "銘柄コードが必要です"
)

// Config wires the router's collaborators.
type Config struct {
	History     source.HistorySource
	Search      source.Searcher
	CacheMaxAge int
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

type Handler struct {
	history     source.HistorySource
	search      source.Searcher
	cacheMaxAge int
	now         func() time.Time
}

func New(cfg Config) *Handler {
	if cfg.CacheMaxAge <= 0 {
		cfg.CacheMaxAge = 300
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Handler{
		history:     cfg.History,
		search:      cfg.Search,
		cacheMaxAge: cfg.CacheMaxAge,
		now:         cfg.Now,
	}
}

// stockEntry is one ticker's series in a response body. The summary fields
// marshal inline next to the points.
type stockEntry struct {
	Name   string         `json:"name"`
	Ticker string         `json:"ticker"`
	Data   []series.Point `json:"data"`
	series.Summary
}

type stockResponse struct {
	stockEntry
	UpdatedAtJST string `json:"updated_at_jst"`
}

type searchResponse struct {
	Results      []source.SearchResult `json:"results"`
	Query        string                `json:"query"`
	UpdatedAtJST string                `json:"updated_at_jst"`
}

type batchSummary struct {
	TotalTickers  int      `json:"total_tickers"`
	Successful    int      `json:"successful"`
	Failed        int      `json:"failed"`
	FailedTickers []string `json:"failed_tickers"`
}

type batchResponse struct {
	UpdatedAt    string                `json:"updated_at"`
	UpdatedAtJST string                `json:"updated_at_jst"`
	Timezone     string                `json:"timezone"`
	Stocks       map[string]stockEntry `json:"stocks"`
	Summary      batchSummary          `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handle routes one API Gateway v2 HTTP event. It never returns a non-nil
// error; every outcome is an HTTP response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	now := h.now().In(series.JST)

	// CORS preflight: headers only, empty body.
	if req.RequestContext.HTTP.Method == http.MethodOptions {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusOK,
			Headers:    corsHeaders(),
		}, nil
	}

	params := req.QueryStringParameters
	if params == nil {
		params = map[string]string{}
	}
	action := params["action"]
	if action == "" {
		action = "get_stocks"
	}

	switch action {
	case "search":
		return h.handleSearch(ctx, params, now), nil
	case "get_stock":
		return h.handleGetStock(ctx, params, now), nil
	default:
		return h.handleGetStocks(ctx, params, now), nil
	}
}

func (h *Handler) handleSearch(ctx context.Context, params map[string]string, now time.Time) events.APIGatewayV2HTTPResponse {
	query := params["q"]
	if query == "" {
		return respond(http.StatusBadRequest, nil, errorResponse{Error: msgQueryRequired})
	}

	results, err := h.search.Search(ctx, query)
	if err != nil {
		// Search failures degrade to an empty result list, never a 5xx.
		log.Printf("search %q: %v", query, err)
		results = nil
	}
	if results == nil {
		results = []source.SearchResult{}
	}
	return respond(http.StatusOK, h.cacheControl(), searchResponse{
		Results:      results,
		Query:        query,
		UpdatedAtJST: jstStamp(now),
	})
}

func (h *Handler) handleGetStock(ctx context.Context, params map[string]string, now time.Time) events.APIGatewayV2HTTPResponse {
	interval, resp, ok := h.interval(params)
	if !ok {
		return resp
	}
	ticker := params["ticker"]
	if ticker == "" {
		return respond(http.StatusBadRequest, nil, errorResponse{Error: msgTickerRequired})
	}
	ticker = config.NormalizeTicker(ticker)

	s, err := h.history.History(ctx, ticker, interval)
	if err != nil {
		logFetch(ticker, err)
		return respond(http.StatusNotFound, nil, errorResponse{
			Error: fmt.Sprintf("銘柄 %s のデータを取得できませんでした", ticker),
		})
	}
	log.Printf("fetch %s: %d data points (%s)", ticker, s.DataPoints, interval)

	return respond(http.StatusOK, h.cacheControl(), stockResponse{
		stockEntry: stockEntry{
			Name:    s.Name,
			Ticker:  ticker,
			Data:    s.Points,
			Summary: s.Summary,
		},
		UpdatedAtJST: jstStamp(now),
	})
}

func (h *Handler) handleGetStocks(ctx context.Context, params map[string]string, now time.Time) events.APIGatewayV2HTTPResponse {
	interval, resp, ok := h.interval(params)
	if !ok {
		return resp
	}

	var tickers []config.Ticker
	if raw := params["tickers"]; raw != "" {
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			t = config.NormalizeTicker(t)
			tickers = append(tickers, config.Ticker{Symbol: t, Name: t})
		}
	} else {
		tickers = config.DefaultTickers()
	}

	body := batchResponse{
		UpdatedAt:    now.Format(time.RFC3339),
		UpdatedAtJST: jstStamp(now),
		Timezone:     "Asia/Tokyo (UTC+9)",
		Stocks:       map[string]stockEntry{},
		Summary: batchSummary{
			TotalTickers:  len(tickers),
			FailedTickers: []string{},
		},
	}

	for _, t := range tickers {
		s, err := h.history.History(ctx, t.Symbol, interval)
		if err != nil {
			logFetch(t.Symbol, err)
			body.Summary.Failed++
			body.Summary.FailedTickers = append(body.Summary.FailedTickers, t.Symbol)
			continue
		}
		log.Printf("fetch %s: %d data points (%s)", t.Symbol, s.DataPoints, interval)
		body.Stocks[t.Symbol] = stockEntry{
			Name:    s.Name,
			Ticker:  t.Symbol,
			Data:    s.Points,
			Summary: s.Summary,
		}
		body.Summary.Successful++
	}

	status := http.StatusOK
	if body.Summary.Successful == 0 {
		status = http.StatusInternalServerError
	}
	headers := h.cacheControl()
	headers["X-Request-Time-JST"] = now.Format("2006-01-02 15:04:05")
	headers["X-Success-Count"] = fmt.Sprintf("%d", body.Summary.Successful)
	headers["X-Failed-Count"] = fmt.Sprintf("%d", body.Summary.Failed)
	return respond(status, headers, body)
}

// interval validates the interval parameter, defaulting to daily. ok=false
// carries a ready 400 response listing the accepted values.
func (h *Handler) interval(params map[string]string) (series.Interval, events.APIGatewayV2HTTPResponse, bool) {
	raw := params["interval"]
	if raw == "" {
		raw = string(series.Interval1d)
	}
	iv := series.Interval(raw)
	if !iv.Valid() {
		resp := respond(http.StatusBadRequest, nil, errorResponse{
			Error: fmt.Sprintf("無効なintervalです。有効な値: %s", series.IntervalList()),
		})
		return "", resp, false
	}
	return iv, events.APIGatewayV2HTTPResponse{}, true
}

func (h *Handler) cacheControl() map[string]string {
	return map[string]string{
		"Cache-Control": fmt.Sprintf("public, max-age=%d", h.cacheMaxAge),
	}
}

func logFetch(ticker string, err error) {
	if errors.Is(err, source.ErrNoData) {
		log.Printf("fetch %s: no usable data", ticker)
		return
	}
	log.Printf("fetch %s: %v", ticker, err)
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Methods": "GET,OPTIONS,POST",
		"Access-Control-Max-Age":       "86400",
	}
}

// respond builds a JSON envelope with the CORS set on every branch. Extra
// headers layer on top.
func respond(status int, extra map[string]string, v any) events.APIGatewayV2HTTPResponse {
	headers := corsHeaders()
	headers["Content-Type"] = "application/json; charset=utf-8"
	for k, val := range extra {
		headers[k] = val
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("encode response: %v", err)
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"error":"internal error"}`,
		}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       strings.TrimRight(buf.String(), "\n"),
	}
}

func jstStamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05") + " JST"
}
