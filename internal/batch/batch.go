// Package batch runs the offline price snapshot: a sequential loop over the
// fixed watch list with bounded retries, producing a single JSON document
// for static hosting.
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/TaktoSasaki/stock-analysis-mvp/internal/config"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/series"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/source"
)

// Stock is one ticker's series in the output document.
type Stock struct {
	Name   string         `json:"name"`
	Ticker string         `json:"ticker"`
	Data   []series.Point `json:"data"`
	series.Summary
}

type Summary struct {
	TotalTickers  int      `json:"total_tickers"`
	Successful    int      `json:"successful"`
	Failed        int      `json:"failed"`
	FailedTickers []string `json:"failed_tickers"`
}

// Report is the consolidated output document.
type Report struct {
	UpdatedAt string           `json:"updated_at"`
	Stocks    map[string]Stock `json:"stocks"`
	Summary   Summary          `json:"summary"`
}

// Runner drives the batch fetch.
type Runner struct {
	Source   source.HistorySource
	Tickers  []config.Ticker
	Interval series.Interval
	Attempts int
	Delay    time.Duration
	// Sleep is overridable for tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Run fetches every ticker sequentially, retrying each up to Attempts times
// with a fixed delay. Per-ticker failure is recorded and the loop continues.
func (r *Runner) Run(ctx context.Context) *Report {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	interval := r.Interval
	if interval == "" {
		interval = series.Interval1d
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	report := &Report{
		UpdatedAt: time.Now().Format(time.RFC3339),
		Stocks:    map[string]Stock{},
		Summary: Summary{
			TotalTickers:  len(r.Tickers),
			FailedTickers: []string{},
		},
	}

	for _, t := range r.Tickers {
		log.Printf("fetching %s (%s)...", t.Name, t.Symbol)

		var s *series.Series
		var err error
		for attempt := 1; attempt <= attempts; attempt++ {
			s, err = r.Source.History(ctx, t.Symbol, interval)
			if err == nil {
				break
			}
			log.Printf("  attempt %d failed: %v", attempt, err)
			if attempt < attempts {
				sleep(r.Delay)
			}
		}
		if err != nil {
			log.Printf("  %s: giving up after %d attempts", t.Symbol, attempts)
			report.Summary.Failed++
			report.Summary.FailedTickers = append(report.Summary.FailedTickers, t.Symbol)
			continue
		}

		name := t.Name
		if name == "" {
			name = s.Name
		}
		report.Stocks[t.Symbol] = Stock{
			Name:    name,
			Ticker:  t.Symbol,
			Data:    s.Points,
			Summary: s.Summary,
		}
		report.Summary.Successful++
		log.Printf("  %s: %d data points", t.Symbol, s.DataPoints)
	}

	return report
}

// WriteFile writes the report as indented UTF-8 JSON, creating the
// containing directory if needed.
func WriteFile(report *Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	b, err := marshalIndent(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// marshalIndent keeps Japanese names unescaped in the output file.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
