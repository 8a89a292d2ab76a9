// Command fetch is the offline snapshot fetcher: it pulls one year of daily
// history for the fixed watch list through the finance-go source and writes
// a consolidated JSON file. The exit code signals total failure to CI.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/TaktoSasaki/stock-analysis-mvp/internal/batch"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/config"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/series"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/source/chartlib"
)

func main() {
	var outPath string
	var cfgPath string
	var attempts int
	var delaySec int

	flag.StringVar(&outPath, "out", "", "output JSON file path (default from config)")
	flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.IntVar(&attempts, "attempts", 0, "max fetch attempts per ticker (default from config)")
	flag.IntVar(&delaySec, "delay", -1, "seconds between attempts (default from config)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if outPath == "" {
		outPath = cfg.Batch.OutPath
	}
	if attempts <= 0 {
		attempts = cfg.Batch.Attempts
	}
	if delaySec < 0 {
		delaySec = cfg.Batch.DelaySec
	}

	runner := &batch.Runner{
		Source:   chartlib.New(chartlib.Config{LookbackDays: cfg.Batch.LookbackDays}),
		Tickers:  config.DefaultTickers(),
		Interval: series.Interval1d,
		Attempts: attempts,
		Delay:    time.Duration(delaySec) * time.Second,
	}

	report := runner.Run(context.Background())

	if err := batch.WriteFile(report, outPath); err != nil {
		log.Fatalf("write %s: %v", outPath, err)
	}

	log.Printf("done: %d/%d tickers -> %s", report.Summary.Successful, report.Summary.TotalTickers, outPath)
	if len(report.Summary.FailedTickers) > 0 {
		log.Printf("failed tickers: %v", report.Summary.FailedTickers)
	}
	if report.Summary.Successful == 0 {
		os.Exit(1)
	}
}
