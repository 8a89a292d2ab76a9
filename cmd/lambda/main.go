package main

import (
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/TaktoSasaki/stock-analysis-mvp/internal/config"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/handler"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/httpx"
	"github.com/TaktoSasaki/stock-analysis-mvp/internal/source/yahoo"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	httpClient := httpx.New(time.Duration(cfg.Yahoo.ChartTimeoutSec) * time.Second)
	httpClient.UserAgent = cfg.Yahoo.UserAgent

	chart := yahoo.NewChartClient(yahoo.ChartConfig{
		BaseURL:      cfg.Yahoo.ChartBaseURL,
		Timeout:      time.Duration(cfg.Yahoo.ChartTimeoutSec) * time.Second,
		LookbackDays: cfg.Yahoo.LookbackDays,
	}, httpClient)
	search := yahoo.NewSearchClient(yahoo.SearchConfig{
		BaseURL: cfg.Yahoo.SearchBaseURL,
		Timeout: time.Duration(cfg.Yahoo.SearchTimeoutSec) * time.Second,
	}, httpClient)

	h := handler.New(handler.Config{
		History:     chart,
		Search:      search,
		CacheMaxAge: cfg.Router.CacheMaxAgeSec,
	})
	lambda.Start(h.Handle)
}
